package memory

import (
	"context"
	"time"
)

// Record stores one completed user/assistant exchange.
type Record struct {
	ID        string    `json:"id,omitempty"`
	User      string    `json:"user"`
	AI        string    `json:"ai"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Store persists and retrieves the rolling exchange log.
//
// Record applies the store's own qualifying gate: user messages at or
// below the minimum length are silently skipped. Recent returns the
// most recent n records in oldest-first order.
type Store interface {
	Record(ctx context.Context, userMsg, aiMsg string) error
	Recent(ctx context.Context, n int) ([]Record, error)
	Len() int
	Close() error
}

// Options controls store construction.
type Options struct {
	// Path is the JSON log location used by the file backend.
	Path string
	// DatabaseURL selects the postgres backend when non-empty.
	DatabaseURL string
	// Cap bounds the log; the oldest records are evicted first.
	Cap int
	// MinUserLen is the exclusive minimum user message length a
	// qualifying exchange must exceed.
	MinUserLen int
}

const (
	defaultCap        = 200
	defaultMinUserLen = 6
)

func (o *Options) applyDefaults() {
	if o.Cap <= 0 {
		o.Cap = defaultCap
	}
	if o.MinUserLen <= 0 {
		o.MinUserLen = defaultMinUserLen
	}
}
