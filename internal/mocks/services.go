package mocks

import (
	"context"

	"github.com/saathi-ai/saathi-core/internal/domain"
)

// MockIntentClassifier is a mock implementation of IntentClassifier interface
type MockIntentClassifier struct {
	ClassifyFunc func(ctx context.Context, message, language string, platforms []string) (*domain.ClassificationResult, error)
}

func (m *MockIntentClassifier) Classify(ctx context.Context, message, language string, platforms []string) (*domain.ClassificationResult, error) {
	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, message, language, platforms)
	}
	return &domain.ClassificationResult{
		Intent:   domain.IntentUnknown,
		Entities: domain.UnknownEntities(),
	}, nil
}

// MockResponseSynthesizer is a mock implementation of ResponseSynthesizer interface
type MockResponseSynthesizer struct {
	SynthesizeEarningsFunc func(ctx context.Context, data domain.EarningsData) (string, error)
	SynthesizeDisputeFunc  func(ctx context.Context, data domain.DisputeData) (string, error)
}

func (m *MockResponseSynthesizer) SynthesizeEarnings(ctx context.Context, data domain.EarningsData) (string, error) {
	if m.SynthesizeEarningsFunc != nil {
		return m.SynthesizeEarningsFunc(ctx, data)
	}
	return "mock earnings reply", nil
}

func (m *MockResponseSynthesizer) SynthesizeDispute(ctx context.Context, data domain.DisputeData) (string, error) {
	if m.SynthesizeDisputeFunc != nil {
		return m.SynthesizeDisputeFunc(ctx, data)
	}
	return "mock dispute reply [PHONE]", nil
}

// MockFallbackResolver is a mock implementation of FallbackResolver interface
type MockFallbackResolver struct {
	ResolveFunc func(intent domain.Intent) string
}

func (m *MockFallbackResolver) Resolve(intent domain.Intent) string {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(intent)
	}
	return "mock fallback for " + string(intent)
}

// MockEarningsService is a mock implementation of EarningsService interface
type MockEarningsService struct {
	ReportFunc func(ctx context.Context, userID, platform, period string) (*domain.EarningsReport, error)
}

func (m *MockEarningsService) Report(ctx context.Context, userID, platform, period string) (*domain.EarningsReport, error) {
	if m.ReportFunc != nil {
		return m.ReportFunc(ctx, userID, platform, period)
	}
	return nil, nil
}

// MockSessionStore is a mock implementation of SessionStore interface
type MockSessionStore struct {
	ContextFunc func(ctx context.Context, userID string) (*domain.SessionContext, error)
}

func (m *MockSessionStore) Context(ctx context.Context, userID string) (*domain.SessionContext, error) {
	if m.ContextFunc != nil {
		return m.ContextFunc(ctx, userID)
	}
	return nil, nil
}

// MockDeliveryService is a mock implementation of DeliveryService interface
type MockDeliveryService struct {
	SentMessages    []string
	SendMessageFunc func(ctx context.Context, to, body string) error
}

func (m *MockDeliveryService) SendMessage(ctx context.Context, to, body string) error {
	m.SentMessages = append(m.SentMessages, body)
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, to, body)
	}
	return nil
}

// MockAlertService is a mock implementation of AlertService interface
type MockAlertService struct {
	Alerts    []string
	AlertFunc func(ctx context.Context, subject, body string) error
}

func (m *MockAlertService) Alert(ctx context.Context, subject, body string) error {
	m.Alerts = append(m.Alerts, subject)
	if m.AlertFunc != nil {
		return m.AlertFunc(ctx, subject, body)
	}
	return nil
}
