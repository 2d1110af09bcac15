package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// querier is the subset shared by *sql.Conn and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Session is a unit of work over one dedicated connection. It is not safe
// for concurrent use; one request owns one Session.
type Session struct {
	conn *sql.Conn
	q    querier
	tx   *sql.Tx
}

// Release returns the connection to the pool. Safe to call more than once.
// Sessions handed to an InTx callback do not own the connection and
// Release on them is a no-op.
func (s *Session) Release() error {
	if s.conn == nil || s.tx != nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// InTx runs fn inside a transaction on the session's connection. fn's
// writes commit together when it returns nil. Nested calls join the
// enclosing transaction.
func (s *Session) InTx(ctx context.Context, fn func(tx *Session) error) error {
	if s.tx != nil {
		return fn(s)
	}
	if s.conn == nil {
		return fmt.Errorf("session released")
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	inner := &Session{conn: s.conn, q: tx, tx: tx}
	if err := fn(inner); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// placeholders returns "?, ?, ?" for n parameters.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullID(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func idPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
