package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/envwatch/envwatch/internal/domain/check"
)

var _ check.Log = (*CheckLog)(nil)

// CheckLog appends probe outcomes to the checks table. It is bound to a
// single pooled connection held by one monitor runner for its whole
// lifetime; the runner releases the connection on shutdown.
type CheckLog struct {
	conn         *pgxpool.Conn
	queryTimeout time.Duration
}

func NewCheckLog(conn *pgxpool.Conn, queryTimeout time.Duration) *CheckLog {
	return &CheckLog{conn: conn, queryTimeout: queryTimeout}
}

const qCheckInsert = `
INSERT INTO checks (created_at, environment, duration, success, status)
VALUES ($1, $2, $3, $4, $5);
`

// Insert writes one result in its own transaction. A failure here leaves
// the fast index untouched; the caller reports it and moves on.
func (l *CheckLog) Insert(ctx context.Context, r check.Result, rawStatus string) error {
	if l.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.queryTimeout)
		defer cancel()
	}

	tx, err := l.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	createdAt := time.UnixMilli(r.Timestamp).UTC()
	if _, err := tx.Exec(ctx, qCheckInsert,
		createdAt, r.Environment, r.Duration, r.Success, rawStatus,
	); err != nil {
		return fmt.Errorf("insert check: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
