package mocks

import (
	"context"

	"github.com/saathi-ai/saathi-core/internal/domain"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	SaveFunc        func(ctx context.Context, user *domain.User) error
	FindByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	FindByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	FindByPhoneFunc func(ctx context.Context, phone string) (*domain.User, error)
}

func (m *MockUserRepository) Save(ctx context.Context, user *domain.User) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *MockUserRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	if m.FindByPhoneFunc != nil {
		return m.FindByPhoneFunc(ctx, phone)
	}
	return nil, nil
}

// MockEarningsRepository is a mock implementation of EarningsRepository
type MockEarningsRepository struct {
	SaveFunc         func(ctx context.Context, snap *domain.EarningsSnapshot) error
	FindLatestFunc   func(ctx context.Context, userID, platform, period string) (*domain.EarningsSnapshot, error)
	FindPreviousFunc func(ctx context.Context, userID, platform, period string) (*domain.EarningsSnapshot, error)
}

func (m *MockEarningsRepository) Save(ctx context.Context, snap *domain.EarningsSnapshot) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, snap)
	}
	return nil
}

func (m *MockEarningsRepository) FindLatest(ctx context.Context, userID, platform, period string) (*domain.EarningsSnapshot, error) {
	if m.FindLatestFunc != nil {
		return m.FindLatestFunc(ctx, userID, platform, period)
	}
	return nil, nil
}

func (m *MockEarningsRepository) FindPrevious(ctx context.Context, userID, platform, period string) (*domain.EarningsSnapshot, error) {
	if m.FindPreviousFunc != nil {
		return m.FindPreviousFunc(ctx, userID, platform, period)
	}
	return nil, nil
}

// MockConversationRepository is a mock implementation of ConversationRepository
type MockConversationRepository struct {
	Saved                []domain.ConversationEntry
	SaveFunc             func(ctx context.Context, entry *domain.ConversationEntry) error
	FindRecentByUserFunc func(ctx context.Context, userID string, limit int) ([]domain.ConversationEntry, error)
}

func (m *MockConversationRepository) Save(ctx context.Context, entry *domain.ConversationEntry) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, entry)
	}
	m.Saved = append(m.Saved, *entry)
	return nil
}

func (m *MockConversationRepository) FindRecentByUser(ctx context.Context, userID string, limit int) ([]domain.ConversationEntry, error) {
	if m.FindRecentByUserFunc != nil {
		return m.FindRecentByUserFunc(ctx, userID, limit)
	}
	return nil, nil
}
