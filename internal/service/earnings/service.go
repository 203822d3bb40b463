package earnings

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/saathi-ai/saathi-core/internal/domain"
	"github.com/saathi-ai/saathi-core/internal/observability/telemetry"
	"github.com/saathi-ai/saathi-core/internal/ports"
)

const cacheTTL = 5 * time.Minute

// periodAliases maps the time expressions workers actually type to the
// canonical periods the ingestion jobs store snapshots under.
var periodAliases = map[string]string{
	"aaj":        "today",
	"today":      "today",
	"kal":        "yesterday",
	"yesterday":  "yesterday",
	"is hafte":   "week",
	"hafta":      "week",
	"week":       "week",
	"this week":  "week",
	"is mahine":  "month",
	"mahina":     "month",
	"month":      "month",
	"this month": "month",
}

type Service struct {
	repo  ports.EarningsRepository
	cache ports.Cache
	log   *zap.Logger
}

func NewService(repo ports.EarningsRepository, cache ports.Cache, log *zap.Logger) ports.EarningsService {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Report resolves the figures for one user/platform/period. A nil
// report with nil error means no snapshot exists yet; the caller is
// expected to fall back rather than invent numbers.
func (s *Service) Report(ctx context.Context, userID, platform, period string) (*domain.EarningsReport, error) {
	period = CanonicalPeriod(period)

	cacheKey := fmt.Sprintf("earnings:%s:%s:%s", userID, platform, period)
	if s.cache != nil {
		if val, err := s.cache.Get(ctx, cacheKey); err == nil && val != "" {
			var report domain.EarningsReport
			if err := json.Unmarshal([]byte(val), &report); err == nil {
				return &report, nil
			}
		}
	}

	start := time.Now()
	latest, err := s.repo.FindLatest(ctx, userID, platform, period)
	telemetry.DatabaseLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("find latest snapshot: %w", err)
	}
	if latest == nil {
		return nil, nil
	}

	report := &domain.EarningsReport{
		Platform:  latest.Platform,
		Period:    latest.Period,
		Total:     latest.Total,
		Trips:     latest.Trips,
		Incentive: latest.Incentive,
	}

	previous, err := s.repo.FindPrevious(ctx, userID, latest.Platform, period)
	if err != nil {
		s.log.Warn("previous snapshot lookup failed",
			zap.String("user_id", userID),
			zap.Error(err))
	} else if previous != nil {
		report.PreviousTotal = previous.Total
		report.HasPrevious = true
	}

	if s.cache != nil {
		if data, err := json.Marshal(report); err == nil {
			if err := s.cache.Set(ctx, cacheKey, string(data), cacheTTL); err != nil {
				s.log.Warn("failed to cache earnings report", zap.Error(err))
			}
		}
	}

	return report, nil
}

// CanonicalPeriod folds the free-text period onto the stored period
// names, defaulting to today.
func CanonicalPeriod(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return "today"
	}
	if canonical, ok := periodAliases[raw]; ok {
		return canonical
	}
	return raw
}
