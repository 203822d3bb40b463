package earnings

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/saathi-ai/saathi-core/internal/domain"
	"github.com/saathi-ai/saathi-core/internal/mocks"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func TestReport_BuildsFromSnapshots(t *testing.T) {
	// Arrange
	repo := &mocks.MockEarningsRepository{
		FindLatestFunc: func(ctx context.Context, userID, platform, period string) (*domain.EarningsSnapshot, error) {
			return &domain.EarningsSnapshot{
				UserID: userID, Platform: "Zomato", Period: period,
				Total: 1250, Trips: 9, Incentive: 150,
			}, nil
		},
		FindPreviousFunc: func(ctx context.Context, userID, platform, period string) (*domain.EarningsSnapshot, error) {
			return &domain.EarningsSnapshot{Total: 980}, nil
		},
	}
	service := NewService(repo, mocks.NewMockCache(), newTestLogger())

	// Act
	report, err := service.Report(context.Background(), "user-1", "Zomato", "aaj")

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if report.Total != 1250 || report.Trips != 9 {
		t.Errorf("unexpected figures: %+v", report)
	}
	if !report.HasPrevious || report.PreviousTotal != 980 {
		t.Errorf("expected previous total 980, got %+v", report)
	}
}

func TestReport_NoSnapshotMeansNilReport(t *testing.T) {
	repo := &mocks.MockEarningsRepository{} // defaults return nil, nil
	service := NewService(repo, mocks.NewMockCache(), newTestLogger())

	report, err := service.Report(context.Background(), "user-1", "", "today")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if report != nil {
		t.Errorf("expected nil report when no snapshot exists, got %+v", report)
	}
}

func TestReport_SecondLookupServedFromCache(t *testing.T) {
	calls := 0
	repo := &mocks.MockEarningsRepository{
		FindLatestFunc: func(ctx context.Context, userID, platform, period string) (*domain.EarningsSnapshot, error) {
			calls++
			return &domain.EarningsSnapshot{Platform: "Zomato", Period: period, Total: 500}, nil
		},
	}
	service := NewService(repo, mocks.NewMockCache(), newTestLogger())

	if _, err := service.Report(context.Background(), "user-1", "Zomato", "today"); err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	report, err := service.Report(context.Background(), "user-1", "Zomato", "today")
	if err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 repository hit, got %d", calls)
	}
	if report.Total != 500 {
		t.Errorf("cached report lost its figures: %+v", report)
	}
}

func TestReport_RepositoryErrorPropagates(t *testing.T) {
	repo := &mocks.MockEarningsRepository{
		FindLatestFunc: func(context.Context, string, string, string) (*domain.EarningsSnapshot, error) {
			return nil, errors.New("connection refused")
		},
	}
	service := NewService(repo, nil, newTestLogger())

	if _, err := service.Report(context.Background(), "user-1", "Zomato", "today"); err == nil {
		t.Fatal("expected repository error to propagate")
	}
}

func TestCanonicalPeriod(t *testing.T) {
	cases := map[string]string{
		"":           "today",
		"aaj":        "today",
		"Aaj":        "today",
		"kal":        "yesterday",
		"is hafte":   "week",
		"this month": "month",
		"diwali":     "diwali",
	}
	for in, want := range cases {
		if got := CanonicalPeriod(in); got != want {
			t.Errorf("CanonicalPeriod(%q) = %q, want %q", in, got, want)
		}
	}
}
