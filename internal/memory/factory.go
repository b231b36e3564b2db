package memory

import (
	"context"
	"strings"
)

// NewStore creates a postgres-backed store when configured, otherwise
// the JSON file store.
func NewStore(ctx context.Context, opts Options) (Store, error) {
	if strings.TrimSpace(opts.DatabaseURL) == "" {
		return NewFileStore(opts)
	}
	return NewPostgresStore(ctx, opts)
}
