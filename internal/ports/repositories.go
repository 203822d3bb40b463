package ports

import (
	"context"

	"github.com/saathi-ai/saathi-core/internal/domain"
)

type UserRepository interface {
	Save(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByPhone(ctx context.Context, phone string) (*domain.User, error)
}

// EarningsRepository stores per-platform earnings snapshots pushed by
// the platform-data ingestion jobs.
type EarningsRepository interface {
	Save(ctx context.Context, snap *domain.EarningsSnapshot) error
	FindLatest(ctx context.Context, userID, platform, period string) (*domain.EarningsSnapshot, error)
	FindPrevious(ctx context.Context, userID, platform, period string) (*domain.EarningsSnapshot, error)
}

// ConversationRepository persists processed messages for operator
// review. Writes are fire-and-forget from the pipeline's point of view.
type ConversationRepository interface {
	Save(ctx context.Context, entry *domain.ConversationEntry) error
	FindRecentByUser(ctx context.Context, userID string, limit int) ([]domain.ConversationEntry, error)
}
