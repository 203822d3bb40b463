package fallback

import (
	"go.uber.org/zap"

	"github.com/saathi-ai/saathi-core/internal/domain"
	"github.com/saathi-ai/saathi-core/internal/ports"
	"github.com/saathi-ai/saathi-core/internal/prompt"
)

// Resolver maps an intent to its canned response. Pure lookup into the
// template store's fallback table; total because the unknown entry is
// guaranteed at startup.
type Resolver struct {
	store *prompt.Store
	log   *zap.Logger
}

func NewResolver(store *prompt.Store, log *zap.Logger) ports.FallbackResolver {
	return &Resolver{
		store: store,
		log:   log,
	}
}

func (r *Resolver) Resolve(intent domain.Intent) string {
	text := r.store.Fallback(intent)
	r.log.Debug("Resolved fallback response",
		zap.String("intent", string(intent)),
	)
	return text
}
