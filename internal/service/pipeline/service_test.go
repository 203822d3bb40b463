package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/saathi-ai/saathi-core/internal/domain"
	"github.com/saathi-ai/saathi-core/internal/mocks"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

type fixture struct {
	classifier  *mocks.MockIntentClassifier
	synthesizer *mocks.MockResponseSynthesizer
	fallback    *mocks.MockFallbackResolver
	earnings    *mocks.MockEarningsService
	sessions    *mocks.MockSessionStore
	alerts      *mocks.MockAlertService
}

func newFixture() *fixture {
	return &fixture{
		classifier:  &mocks.MockIntentClassifier{},
		synthesizer: &mocks.MockResponseSynthesizer{},
		fallback:    &mocks.MockFallbackResolver{},
		earnings:    &mocks.MockEarningsService{},
		sessions:    &mocks.MockSessionStore{},
		alerts:      &mocks.MockAlertService{},
	}
}

func (f *fixture) pipeline() *Service {
	return NewService(
		f.classifier, f.synthesizer, f.fallback,
		f.earnings, f.sessions, nil, f.alerts,
		DefaultOptions, newTestLogger(),
	).(*Service)
}

func inbound(text string) *domain.InboundMessage {
	return &domain.InboundMessage{
		ID:       "msg-1",
		UserID:   "user-1",
		Phone:    "+919876543210",
		Text:     text,
		Language: "hi",
		SentAt:   time.Date(2026, 8, 30, 18, 0, 0, 0, time.UTC),
	}
}

func classification(intent domain.Intent, confidence float64, entities domain.Entities) func(context.Context, string, string, []string) (*domain.ClassificationResult, error) {
	return func(context.Context, string, string, []string) (*domain.ClassificationResult, error) {
		return &domain.ClassificationResult{Intent: intent, Confidence: confidence, Entities: entities}, nil
	}
}

func TestProcess_EarningsHappyPath(t *testing.T) {
	// Arrange
	f := newFixture()
	entities := domain.UnknownEntities()
	entities.Platform = "Zomato"
	entities.TimePeriod = "today"
	f.classifier.ClassifyFunc = classification(domain.IntentEarningsQuery, 0.9, entities)
	f.sessions.ContextFunc = func(context.Context, string) (*domain.SessionContext, error) {
		return &domain.SessionContext{UserID: "user-1", Name: "Ramesh", Language: "hi", Platforms: []string{"Zomato"}}, nil
	}
	f.earnings.ReportFunc = func(ctx context.Context, userID, platform, period string) (*domain.EarningsReport, error) {
		if platform != "Zomato" || period != "today" {
			t.Errorf("unexpected lookup: platform=%q period=%q", platform, period)
		}
		return &domain.EarningsReport{Platform: platform, Period: period, Total: 1250, Trips: 9}, nil
	}
	f.synthesizer.SynthesizeEarningsFunc = func(ctx context.Context, data domain.EarningsData) (string, error) {
		if data.Name != "Ramesh" {
			t.Errorf("expected session name, got %q", data.Name)
		}
		return "Ramesh bhai, aaj ₹1,250 kamaye!", nil
	}

	// Act
	reply := f.pipeline().Process(context.Background(), inbound("kitna kamaya aaj"))

	// Assert
	if reply.Outcome != domain.OutcomeSynthesized {
		t.Fatalf("expected synthesized outcome, got %s", reply.Outcome)
	}
	if reply.Intent != domain.IntentEarningsQuery {
		t.Errorf("expected earnings_query, got %s", reply.Intent)
	}
	if reply.Text != "Ramesh bhai, aaj ₹1,250 kamaye!" {
		t.Errorf("unexpected reply text %q", reply.Text)
	}
}

func TestProcess_GreetingGoesStraightToFallback(t *testing.T) {
	f := newFixture()
	f.classifier.ClassifyFunc = classification(domain.IntentGreeting, 0.99, domain.UnknownEntities())
	synthesisCalled := false
	f.synthesizer.SynthesizeEarningsFunc = func(context.Context, domain.EarningsData) (string, error) {
		synthesisCalled = true
		return "", nil
	}

	reply := f.pipeline().Process(context.Background(), inbound("namaste"))

	if reply.Outcome != domain.OutcomeFallback {
		t.Fatalf("expected fallback outcome, got %s", reply.Outcome)
	}
	if reply.Intent != domain.IntentGreeting {
		t.Errorf("expected greeting intent, got %s", reply.Intent)
	}
	if synthesisCalled {
		t.Error("synthesis must never run for greetings")
	}
}

func TestProcess_LowConfidenceFallsBack(t *testing.T) {
	f := newFixture()
	f.classifier.ClassifyFunc = classification(domain.IntentEarningsQuery, 0.3, domain.UnknownEntities())

	reply := f.pipeline().Process(context.Background(), inbound("hmm kya"))

	if reply.Outcome != domain.OutcomeFallback {
		t.Fatalf("expected fallback outcome, got %s", reply.Outcome)
	}
	if reply.Intent != domain.IntentEarningsQuery {
		t.Errorf("fallback keeps the classified intent, got %s", reply.Intent)
	}
	if reply.Confidence != 0.3 {
		t.Errorf("expected confidence 0.3, got %f", reply.Confidence)
	}
}

func TestProcess_MalformedClassificationFallsBackUnknown(t *testing.T) {
	f := newFixture()
	f.classifier.ClassifyFunc = func(context.Context, string, string, []string) (*domain.ClassificationResult, error) {
		return nil, domain.ErrMalformedOutput
	}

	reply := f.pipeline().Process(context.Background(), inbound("asdf"))

	if reply.Outcome != domain.OutcomeFallback {
		t.Fatalf("expected fallback outcome, got %s", reply.Outcome)
	}
	if reply.Intent != domain.IntentUnknown {
		t.Errorf("malformed classification must resolve as unknown, got %s", reply.Intent)
	}
}

func TestProcess_GeneratorDownNeverSurfacesError(t *testing.T) {
	f := newFixture()
	entities := domain.UnknownEntities()
	entities.Platform = "Swiggy"
	f.classifier.ClassifyFunc = classification(domain.IntentEarningsQuery, 0.9, entities)
	f.earnings.ReportFunc = func(context.Context, string, string, string) (*domain.EarningsReport, error) {
		return &domain.EarningsReport{Platform: "Swiggy", Period: "today", Total: 400}, nil
	}
	f.synthesizer.SynthesizeEarningsFunc = func(context.Context, domain.EarningsData) (string, error) {
		return "", domain.ErrGenerationUnavailable
	}
	f.fallback.ResolveFunc = func(intent domain.Intent) string {
		return "Income dekhne mein problem aa rahi hai. UPI screenshot bhejo."
	}

	reply := f.pipeline().Process(context.Background(), inbound("kitna kamaya"))

	if reply.Outcome != domain.OutcomeFallback {
		t.Fatalf("expected fallback outcome, got %s", reply.Outcome)
	}
	if reply.Text == "" {
		t.Fatal("reply text must never be empty")
	}
}

func TestProcess_MissingEarningsDataFallsBack(t *testing.T) {
	f := newFixture()
	f.classifier.ClassifyFunc = classification(domain.IntentEarningsQuery, 0.9, domain.UnknownEntities())
	// ReportFunc default returns nil, nil: no figures available

	reply := f.pipeline().Process(context.Background(), inbound("kitna kamaya"))

	if reply.Outcome != domain.OutcomeFallback {
		t.Fatalf("expected fallback outcome, got %s", reply.Outcome)
	}
}

func TestProcess_DisputeWithoutPlatformFallsBack(t *testing.T) {
	f := newFixture()
	entities := domain.UnknownEntities()
	entities.IssueType = "payment_missing"
	f.classifier.ClassifyFunc = classification(domain.IntentDisputeHelp, 0.85, entities)
	// no platform entity, no session platforms

	reply := f.pipeline().Process(context.Background(), inbound("paisa nahi aaya"))

	if reply.Outcome != domain.OutcomeFallback {
		t.Fatalf("expected fallback outcome, got %s", reply.Outcome)
	}
	if reply.Intent != domain.IntentDisputeHelp {
		t.Errorf("expected dispute_help intent, got %s", reply.Intent)
	}
}

func TestProcess_DisputeHappyPath(t *testing.T) {
	f := newFixture()
	entities := domain.UnknownEntities()
	entities.Platform = "Swiggy"
	entities.IssueType = "payment_missing"
	entities.Amount = 850
	f.classifier.ClassifyFunc = classification(domain.IntentDisputeHelp, 0.88, entities)
	f.sessions.ContextFunc = func(context.Context, string) (*domain.SessionContext, error) {
		return &domain.SessionContext{UserID: "user-1", Name: "Ramesh Kumar", Language: "hi"}, nil
	}
	f.synthesizer.SynthesizeDisputeFunc = func(ctx context.Context, data domain.DisputeData) (string, error) {
		if data.Platform != "Swiggy" || data.Amount != 850 {
			t.Errorf("unexpected dispute data: %+v", data)
		}
		if data.Date != "30 Aug 2026" {
			t.Errorf("expected incident date from message timestamp, got %q", data.Date)
		}
		return "complaint draft [PHONE]", nil
	}

	reply := f.pipeline().Process(context.Background(), inbound("swiggy ne 850 nahi diya"))

	if reply.Outcome != domain.OutcomeSynthesized {
		t.Fatalf("expected synthesized outcome, got %s", reply.Outcome)
	}
}

func TestProcess_IncompleteComplaintFallsBack(t *testing.T) {
	f := newFixture()
	entities := domain.UnknownEntities()
	entities.Platform = "Swiggy"
	entities.IssueType = "payment_missing"
	f.classifier.ClassifyFunc = classification(domain.IntentDisputeHelp, 0.9, entities)
	f.synthesizer.SynthesizeDisputeFunc = func(context.Context, domain.DisputeData) (string, error) {
		return "", domain.ErrIncompleteComplaint
	}

	reply := f.pipeline().Process(context.Background(), inbound("swiggy complaint"))

	if reply.Outcome != domain.OutcomeFallback {
		t.Fatalf("expected fallback outcome, got %s", reply.Outcome)
	}
}

func TestProcess_NoTemplateIntentsFallBack(t *testing.T) {
	for _, intent := range []domain.Intent{domain.IntentInsuranceQuery, domain.IntentSchemeQuery, domain.IntentLoanQuery} {
		t.Run(string(intent), func(t *testing.T) {
			f := newFixture()
			f.classifier.ClassifyFunc = classification(intent, 0.95, domain.UnknownEntities())

			reply := f.pipeline().Process(context.Background(), inbound("insurance chahiye"))

			if reply.Outcome != domain.OutcomeFallback {
				t.Fatalf("expected fallback outcome, got %s", reply.Outcome)
			}
			if reply.Intent != intent {
				t.Errorf("expected %s, got %s", intent, reply.Intent)
			}
		})
	}
}

func TestProcess_RenderingErrorAlertsOperators(t *testing.T) {
	f := newFixture()
	entities := domain.UnknownEntities()
	entities.Platform = "Zomato"
	f.classifier.ClassifyFunc = classification(domain.IntentEarningsQuery, 0.9, entities)
	f.earnings.ReportFunc = func(context.Context, string, string, string) (*domain.EarningsReport, error) {
		return &domain.EarningsReport{Platform: "Zomato", Period: "today"}, nil
	}
	f.synthesizer.SynthesizeEarningsFunc = func(context.Context, domain.EarningsData) (string, error) {
		return "", domain.ErrMissingVariable
	}
	alerted := make(chan string, 1)
	f.alerts.AlertFunc = func(ctx context.Context, subject, body string) error {
		alerted <- subject
		return nil
	}

	reply := f.pipeline().Process(context.Background(), inbound("kitna kamaya"))

	if reply.Outcome != domain.OutcomeFallback {
		t.Fatalf("expected fallback outcome, got %s", reply.Outcome)
	}
	select {
	case <-alerted:
	case <-time.After(2 * time.Second):
		t.Error("expected an operator alert for a rendering error")
	}
}

func TestProcess_RecordsConversation(t *testing.T) {
	f := newFixture()
	f.classifier.ClassifyFunc = classification(domain.IntentGreeting, 0.99, domain.UnknownEntities())
	saved := make(chan *domain.ConversationEntry, 1)
	conversations := &mocks.MockConversationRepository{
		SaveFunc: func(ctx context.Context, entry *domain.ConversationEntry) error {
			saved <- entry
			return nil
		},
	}
	pipe := NewService(
		f.classifier, f.synthesizer, f.fallback,
		f.earnings, f.sessions, conversations, f.alerts,
		DefaultOptions, newTestLogger(),
	)

	reply := pipe.Process(context.Background(), inbound("namaste"))

	select {
	case entry := <-saved:
		if entry.Intent != domain.IntentGreeting {
			t.Errorf("expected greeting intent in log, got %s", entry.Intent)
		}
		if entry.ReplyText != reply.Text {
			t.Errorf("logged reply %q differs from delivered %q", entry.ReplyText, reply.Text)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("conversation entry was never saved")
	}
}

func TestProcess_SessionLookupFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	f.sessions.ContextFunc = func(context.Context, string) (*domain.SessionContext, error) {
		return nil, errors.New("redis down")
	}
	f.classifier.ClassifyFunc = classification(domain.IntentGreeting, 0.99, domain.UnknownEntities())

	reply := f.pipeline().Process(context.Background(), inbound("namaste"))

	if reply == nil || reply.Text == "" {
		t.Fatal("pipeline must still reply when the session store is down")
	}
}
