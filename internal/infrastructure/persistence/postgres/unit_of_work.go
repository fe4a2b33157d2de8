// Package postgres implements the PostgreSQL persistence layer for Hifz Progress Hub.
package postgres

import (
	"context"

	"github.com/hifz-hub/hifz-progress-hub/internal/application/command"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// UNIT OF WORK
// ══════════════════════════════════════════════════════════════════════════════

// UnitOfWork implements command.UnitOfWork over a pgx transaction.
// Every repository handed to the callback shares one transaction, so an
// attempt row, its mastery state and the child's counters commit together.
type UnitOfWork struct {
	conn *Connection
}

// NewUnitOfWork creates a new UnitOfWork.
func NewUnitOfWork(conn *Connection) *UnitOfWork {
	return &UnitOfWork{conn: conn}
}

// WithinTx runs fn inside a single read-write transaction.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, s command.Stores) error) error {
	return u.conn.WithTx(ctx, func(tx pgx.Tx) error {
		stores := command.Stores{
			Children:     NewChildRepositoryTx(tx),
			Attempts:     NewAttemptRepositoryTx(tx),
			Mastery:      NewMasteryRepositoryTx(tx),
			Achievements: NewAchievementRepositoryTx(tx),
		}
		return fn(ctx, stores)
	})
}
