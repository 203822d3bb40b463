package prompt

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/saathi-ai/saathi-core/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	store, err := NewStore(logger)
	if err != nil {
		t.Fatalf("failed to build template store: %v", err)
	}
	return store
}

func TestRender_IntentTemplate(t *testing.T) {
	store := newTestStore(t)
	tmpl, ok := store.Template(TemplateIntent)
	if !ok {
		t.Fatal("intent template missing from store")
	}

	out, err := NewRenderer().Render(tmpl, map[string]interface{}{
		"user_message":      "kitna kamaya aaj",
		"detected_language": "hi",
		"platforms":         []string{"Zomato", "Rapido"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(out, "kitna kamaya aaj") {
		t.Error("rendered prompt should contain the user message")
	}
	if !strings.Contains(out, "Zomato, Rapido") {
		t.Error("rendered prompt should contain the joined platform list")
	}
	if !strings.Contains(out, `{"intent":"string"`) {
		t.Error("rendered prompt should keep the JSON shape instruction verbatim")
	}
}

func TestRender_MissingRequiredVariable(t *testing.T) {
	store := newTestStore(t)
	tmpl, _ := store.Template(TemplateIntent)

	_, err := NewRenderer().Render(tmpl, map[string]interface{}{
		"detected_language": "hi",
	})
	if !errors.Is(err, domain.ErrMissingVariable) {
		t.Fatalf("expected ErrMissingVariable, got %v", err)
	}
}

func TestRender_DefaultApplied(t *testing.T) {
	store := newTestStore(t)
	tmpl, _ := store.Template(TemplateIntent)

	out, err := NewRenderer().Render(tmpl, map[string]interface{}{
		"user_message": "hello",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(out, "Language: hi") {
		t.Error("detected_language should default to hi")
	}
	if !strings.Contains(out, "Platforms: none") {
		t.Error("platforms should default to none")
	}
}

func TestRender_InvalidVariableType(t *testing.T) {
	store := newTestStore(t)
	tmpl, _ := store.Template(TemplateEarnings)

	_, err := NewRenderer().Render(tmpl, map[string]interface{}{
		"earnings_json": "{not json",
		"name":          "Ramesh",
	})
	if !errors.Is(err, domain.ErrInvalidVariableType) {
		t.Fatalf("expected ErrInvalidVariableType, got %v", err)
	}
}

func TestRender_EarningsJSONFromStruct(t *testing.T) {
	store := newTestStore(t)
	tmpl, _ := store.Template(TemplateEarnings)

	report := domain.EarningsReport{Platform: "Zomato", Period: "today", Total: 1200}
	out, err := NewRenderer().Render(tmpl, map[string]interface{}{
		"earnings_json": report,
		"name":          "Ramesh",
		"language":      "hi",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(out, `"platform":"Zomato"`) {
		t.Error("earnings_json should marshal the report inline")
	}
	if !strings.Contains(out, "Name: Ramesh") {
		t.Error("rendered prompt should contain the worker name")
	}
}

func TestRender_DisputeTemplateAllVars(t *testing.T) {
	store := newTestStore(t)
	tmpl, _ := store.Template(TemplateDispute)

	out, err := NewRenderer().Render(tmpl, map[string]interface{}{
		"name":             "Suresh Kumar",
		"platform":         "Swiggy",
		"issue_type":       "payment_missing",
		"user_description": "order delivered but payout not credited",
		"date":             "2026-08-29",
		"language":         "hi",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for _, want := range []string{"Suresh Kumar", "Swiggy", "payment_missing", "2026-08-29", "[PHONE]"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered dispute prompt should contain %q", want)
		}
	}
}

func TestRender_DisputeMissingDate(t *testing.T) {
	store := newTestStore(t)
	tmpl, _ := store.Template(TemplateDispute)

	_, err := NewRenderer().Render(tmpl, map[string]interface{}{
		"name":             "Suresh",
		"platform":         "Swiggy",
		"issue_type":       "payment_missing",
		"user_description": "payout missing",
	})
	if !errors.Is(err, domain.ErrMissingVariable) {
		t.Fatalf("expected ErrMissingVariable for date, got %v", err)
	}
}

func TestFallback_Table(t *testing.T) {
	store := newTestStore(t)

	cases := map[domain.Intent]string{
		domain.IntentGreeting:      "Namaste! Main Saathi hoon. Thodi technical problem hai — thodi der mein try karein. 🙏",
		domain.IntentEarningsQuery: "Income dekhne mein problem aa rahi hai. UPI screenshot bhejo.",
		domain.IntentDisputeHelp:   "Platform ka naam aur kya hua — detail mein batao.",
		domain.IntentUnknown:       "Thoda aur detail mein batao — income, account ya koi aur cheez?",
	}
	for intent, want := range cases {
		if got := store.Fallback(intent); got != want {
			t.Errorf("fallback for %s = %q, want %q", intent, got, want)
		}
	}

	// Intents without a dedicated entry resolve to the unknown entry.
	for _, intent := range []domain.Intent{domain.IntentInsuranceQuery, domain.IntentSchemeQuery, domain.IntentLoanQuery} {
		if got := store.Fallback(intent); got != cases[domain.IntentUnknown] {
			t.Errorf("fallback for %s should be the unknown entry, got %q", intent, got)
		}
	}
}
