package fallback

import (
	"testing"

	"go.uber.org/zap"

	"github.com/saathi-ai/saathi-core/internal/domain"
	"github.com/saathi-ai/saathi-core/internal/prompt"
)

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	store, err := prompt.NewStore(logger)
	if err != nil {
		t.Fatalf("failed to build store: %v", err)
	}
	return NewResolver(store, logger).(*Resolver)
}

func TestResolve_IsTotal(t *testing.T) {
	resolver := newResolver(t)

	for _, intent := range domain.Intents {
		if text := resolver.Resolve(intent); text == "" {
			t.Errorf("resolve(%s) returned empty text", intent)
		}
	}

	// Arbitrary out-of-set values still resolve.
	if text := resolver.Resolve(domain.Intent("not_a_real_intent")); text == "" {
		t.Error("resolve of out-of-set intent returned empty text")
	}
}

func TestResolve_UnknownDefault(t *testing.T) {
	resolver := newResolver(t)

	unknown := resolver.Resolve(domain.IntentUnknown)
	if got := resolver.Resolve(domain.IntentLoanQuery); got != unknown {
		t.Errorf("loan_query should resolve to the unknown entry, got %q", got)
	}
	if got := resolver.Resolve(domain.Intent("gibberish")); got != unknown {
		t.Errorf("out-of-set intent should resolve to the unknown entry, got %q", got)
	}
}
