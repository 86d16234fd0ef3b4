package backend

import (
	"context"
	"fmt"
	"log/slog"

	"donordash/internal/amqp"
	"donordash/internal/source/google"
	"donordash/internal/source/jsonfile"
	"donordash/internal/source/memory"
	"donordash/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var result *Result
	var err error

	switch config.Type {
	case MemoryBackend:
		result, err = f.createMemoryBackend()
	case JSONFileBackend:
		result, err = f.createJSONFileBackend(config)
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(config)
	case SheetsBackend:
		result, err = f.createSheetsBackend(ctx)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	// The refresh bus is optional and orthogonal to the dataset backend.
	if config.AMQPURL != "" {
		client, amqpErr := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if amqpErr != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without refresh bus",
				"error", amqpErr)
		} else {
			result.AMQP = client
			f.logger.Info("Initialized AMQP refresh bus",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	return result, nil
}

func (f *DefaultFactory) createMemoryBackend() (*Result, error) {
	f.logger.Info("Initialized memory backend with demo dataset")
	return &Result{Source: memory.NewSample()}, nil
}

func (f *DefaultFactory) createJSONFileBackend(config Config) (*Result, error) {
	f.logger.Info("Initialized jsonfile backend", "path", config.DatasetPath)
	return &Result{Source: jsonfile.New(config.DatasetPath)}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &Result{
		Source:  repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context) (*Result, error) {
	cli, err := google.NewFromEnv(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend")

	return &Result{Source: cli}, nil
}
