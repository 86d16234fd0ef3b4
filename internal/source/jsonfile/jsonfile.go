// Package jsonfile loads the donation dataset from a JSON file on disk,
// the same array-of-objects shape the dashboard's original data feed used.
package jsonfile

import (
	"context"
	"fmt"
	"os"

	"donordash/internal/core"
)

type Source struct {
	path string
}

func New(path string) *Source {
	return &Source{path: path}
}

// Load reads and decodes the whole dataset. Decoding is tolerant at the
// field level; only unreadable files or non-array payloads fail.
func (s *Source) Load(ctx context.Context) ([]core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read dataset file: %w", err)
	}
	records, err := core.DecodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", s.path, err)
	}
	return records, nil
}
