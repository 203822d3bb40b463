package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saathi-ai/saathi-core/internal/domain"
	"github.com/saathi-ai/saathi-core/internal/ports"
)

type EarningsRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewEarningsRepository(db *gorm.DB, log *zap.Logger) ports.EarningsRepository {
	return &EarningsRepository{
		db:  db,
		log: log,
	}
}

func (r *EarningsRepository) Save(ctx context.Context, snap *domain.EarningsSnapshot) error {
	return r.db.WithContext(ctx).Save(snap).Error
}

// FindLatest returns the most recent snapshot for the user/period.
// Platform narrows the query when non-empty; an empty platform means
// whichever platform reported last.
func (r *EarningsRepository) FindLatest(ctx context.Context, userID, platform, period string) (*domain.EarningsSnapshot, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ? AND period = ?", userID, period).
		Order("created_at DESC")
	if platform != "" {
		query = query.Where("platform = ?", platform)
	}

	var snap domain.EarningsSnapshot
	err := query.First(&snap).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &snap, nil
}

// FindPrevious returns the snapshot immediately before the latest one,
// used for the "kal se zyada" comparison in summaries.
func (r *EarningsRepository) FindPrevious(ctx context.Context, userID, platform, period string) (*domain.EarningsSnapshot, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ? AND period = ?", userID, period).
		Order("created_at DESC").
		Offset(1)
	if platform != "" {
		query = query.Where("platform = ?", platform)
	}

	var snap domain.EarningsSnapshot
	err := query.First(&snap).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &snap, nil
}
