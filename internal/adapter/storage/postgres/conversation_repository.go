package postgres

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saathi-ai/saathi-core/internal/domain"
	"github.com/saathi-ai/saathi-core/internal/ports"
)

type ConversationRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewConversationRepository(db *gorm.DB, log *zap.Logger) ports.ConversationRepository {
	return &ConversationRepository{
		db:  db,
		log: log,
	}
}

func (r *ConversationRepository) Save(ctx context.Context, entry *domain.ConversationEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *ConversationRepository) FindRecentByUser(ctx context.Context, userID string, limit int) ([]domain.ConversationEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	var entries []domain.ConversationEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
