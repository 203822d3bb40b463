package session

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/saathi-ai/saathi-core/internal/domain"
	"github.com/saathi-ai/saathi-core/internal/mocks"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func TestContext_ResolvesFromRepository(t *testing.T) {
	users := &mocks.MockUserRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			return &domain.User{
				ID:                id,
				Name:              "Ramesh",
				PreferredLanguage: "hi",
				Platforms:         []string{"Zomato", "Rapido"},
			}, nil
		},
	}
	store := NewStore(users, mocks.NewMockCache(), newTestLogger())

	sess, err := store.Context(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sess.Name != "Ramesh" || len(sess.Platforms) != 2 {
		t.Errorf("unexpected session: %+v", sess)
	}
}

func TestContext_UnknownUserIsNilNotError(t *testing.T) {
	store := NewStore(&mocks.MockUserRepository{}, mocks.NewMockCache(), newTestLogger())

	sess, err := store.Context(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sess != nil {
		t.Errorf("expected nil session for unknown user, got %+v", sess)
	}
}

func TestContext_SecondLookupServedFromCache(t *testing.T) {
	calls := 0
	users := &mocks.MockUserRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			calls++
			return &domain.User{ID: id, Name: "Ramesh"}, nil
		},
	}
	store := NewStore(users, mocks.NewMockCache(), newTestLogger())

	if _, err := store.Context(context.Background(), "user-1"); err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	sess, err := store.Context(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 repository hit, got %d", calls)
	}
	if sess.Name != "Ramesh" {
		t.Errorf("cached session lost fields: %+v", sess)
	}
}
