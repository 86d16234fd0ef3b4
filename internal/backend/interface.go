package backend

import (
	"context"

	"donordash/internal/amqp"
	"donordash/internal/source"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result bundles the dataset source with the optional refresh bus client
// and a cleanup function for whatever the factory opened.
type Result struct {
	Source  source.TransactionSource
	AMQP    *amqp.Client
	Cleanup CleanupFunc
}

// Factory creates dataset backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type Type

	// JSON file specific
	DatasetPath string

	// SQLite specific
	SQLiteDBPath string

	// Google Sheets specific
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// AMQP refresh bus (optional, any backend)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// Type selects the dataset backend.
type Type string

const (
	MemoryBackend   Type = "memory"
	JSONFileBackend Type = "jsonfile"
	SQLiteBackend   Type = "sqlite"
	SheetsBackend   Type = "sheets"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, JSONFileBackend, SQLiteBackend, SheetsBackend:
		return true
	default:
		return false
	}
}
