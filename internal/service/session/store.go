package session

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/saathi-ai/saathi-core/internal/domain"
	"github.com/saathi-ai/saathi-core/internal/ports"
)

const cacheTTL = 30 * time.Minute

// Store resolves the per-user context the pipeline needs, reading
// through Redis onto the user repository. An unknown user resolves to
// nil without error.
type Store struct {
	users ports.UserRepository
	cache ports.Cache
	log   *zap.Logger
}

func NewStore(users ports.UserRepository, cache ports.Cache, log *zap.Logger) ports.SessionStore {
	return &Store{
		users: users,
		cache: cache,
		log:   log,
	}
}

func (s *Store) Context(ctx context.Context, userID string) (*domain.SessionContext, error) {
	cacheKey := "session:" + userID
	if s.cache != nil {
		if val, err := s.cache.Get(ctx, cacheKey); err == nil && val != "" {
			var sess domain.SessionContext
			if err := json.Unmarshal([]byte(val), &sess); err == nil {
				return &sess, nil
			}
		}
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	sess := &domain.SessionContext{
		UserID:    user.ID,
		Name:      user.Name,
		Language:  user.PreferredLanguage,
		Platforms: user.Platforms,
	}

	if s.cache != nil {
		if data, err := json.Marshal(sess); err == nil {
			if err := s.cache.Set(ctx, cacheKey, string(data), cacheTTL); err != nil {
				s.log.Warn("failed to cache session context", zap.Error(err))
			}
		}
	}
	return sess, nil
}
