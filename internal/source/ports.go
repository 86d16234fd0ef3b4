package source

import (
	"context"

	"donordash/internal/core"
)

// TransactionSource is the outbound port for loading the full historical
// dataset. The engine always pulls the complete record set; there is no
// incremental feed.
type TransactionSource interface {
	Load(ctx context.Context) ([]core.Record, error)
}
