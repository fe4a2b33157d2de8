// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"

	"github.com/hifz-hub/hifz-progress-hub/internal/domain/achievement"
	"github.com/hifz-hub/hifz-progress-hub/internal/domain/child"
	"github.com/hifz-hub/hifz-progress-hub/internal/domain/progress"
)

// ══════════════════════════════════════════════════════════════════════════════
// UNIT OF WORK
// All writes for a single attempt (attempt row, mastery, child XP/streak,
// achievements) must commit or roll back together.
// ══════════════════════════════════════════════════════════════════════════════

// Stores bundles transaction-scoped repositories.
type Stores struct {
	Children     child.Repository
	Attempts     progress.AttemptRepository
	Mastery      progress.MasteryRepository
	Achievements achievement.Repository
}

// UnitOfWork runs a function inside a single database transaction.
// The repositories passed to fn operate on that transaction: if fn
// returns an error the transaction rolls back, otherwise it commits.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}

// SummaryInvalidator drops cached progress summaries for a child.
// Invalidation failures are not fatal: the cache entry expires on its own.
type SummaryInvalidator interface {
	InvalidateSummary(ctx context.Context, childID string) error
}

// IDGenerator produces unique identifiers for new entities.
type IDGenerator interface {
	NewID() string
}
