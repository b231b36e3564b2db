package memory

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists the exchange log in PostgreSQL.
type PostgresStore struct {
	pool   *pgxpool.Pool
	cap    int
	minLen int
}

func NewPostgresStore(ctx context.Context, opts Options) (*PostgresStore, error) {
	opts.applyDefaults()

	pool, err := pgxpool.New(ctx, opts.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool, cap: opts.Cap, minLen: opts.MinUserLen}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS chat_exchanges (
			id TEXT PRIMARY KEY,
			user_msg TEXT NOT NULL,
			ai_msg TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chat_exchanges_created ON chat_exchanges (created_at);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) Record(ctx context.Context, userMsg, aiMsg string) error {
	if utf8.RuneCountInString(userMsg) <= s.minLen {
		return nil
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO chat_exchanges (id, user_msg, ai_msg, created_at) VALUES ($1, $2, $3, $4)`,
		uuid.NewString(),
		userMsg,
		aiMsg,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("record exchange: %w", err)
	}

	// Enforce the rolling cap the file backend gets by slicing.
	_, err = s.pool.Exec(ctx,
		`DELETE FROM chat_exchanges WHERE id NOT IN (
			SELECT id FROM chat_exchanges ORDER BY created_at DESC LIMIT $1
		)`,
		s.cap,
	)
	if err != nil {
		return fmt.Errorf("trim exchanges: %w", err)
	}
	return nil
}

func (s *PostgresStore) Recent(ctx context.Context, n int) ([]Record, error) {
	if n <= 0 {
		n = s.cap
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, user_msg, ai_msg, created_at
		 FROM chat_exchanges ORDER BY created_at DESC LIMIT $1`,
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent exchanges: %w", err)
	}
	defer rows.Close()

	items := make([]Record, 0, n)
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.User, &r.AI, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan exchange row: %w", err)
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exchange rows: %w", err)
	}

	// Reverse into chronological order for prompt coherence.
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}

	return items, nil
}

func (s *PostgresStore) Len() int {
	var count int
	if err := s.pool.QueryRow(context.Background(),
		`SELECT count(*) FROM chat_exchanges`).Scan(&count); err != nil {
		return 0
	}
	return count
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
