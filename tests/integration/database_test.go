package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/saathi-ai/saathi-core/internal/adapter/storage/postgres"
	"github.com/saathi-ai/saathi-core/internal/domain"
)

// TestDatabase_UserRoundTrip tests user persistence and lookups
func TestDatabase_UserRoundTrip(t *testing.T) {
	env := SetupTestEnvironment(t)
	if env == nil || env.DB == nil {
		t.Skip("Database not available")
	}

	CleanDatabase(t, env.DB)
	ctx := context.Background()
	repo := postgres.NewUserRepository(env.DB, env.Logger)

	user := &domain.User{
		ID:                uuid.New().String(),
		Name:              "Ramesh Kumar",
		Email:             "ramesh@example.com",
		Phone:             "+919876543210",
		Password:          "hashed-password",
		Role:              domain.UserRoleWorker,
		Status:            "Active",
		Platforms:         []string{"Zomato", "Rapido"},
		PreferredLanguage: "hi",
	}

	t.Run("Save", func(t *testing.T) {
		if err := repo.Save(ctx, user); err != nil {
			t.Fatalf("Failed to save user: %v", err)
		}
	})

	t.Run("FindByID", func(t *testing.T) {
		found, err := repo.FindByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("Failed to find user: %v", err)
		}
		if found == nil {
			t.Fatal("Expected user, got nil")
		}
		if found.Name != user.Name {
			t.Errorf("Expected name %q, got %q", user.Name, found.Name)
		}
		if len(found.Platforms) != 2 || found.Platforms[0] != "Zomato" {
			t.Errorf("Platforms not round-tripped: %v", found.Platforms)
		}
	})

	t.Run("FindByPhone", func(t *testing.T) {
		found, err := repo.FindByPhone(ctx, user.Phone)
		if err != nil {
			t.Fatalf("Failed to find user by phone: %v", err)
		}
		if found == nil || found.ID != user.ID {
			t.Fatalf("Expected user %s, got %+v", user.ID, found)
		}
	})

	t.Run("FindByEmail", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, user.Email)
		if err != nil {
			t.Fatalf("Failed to find user by email: %v", err)
		}
		if found == nil || found.ID != user.ID {
			t.Fatalf("Expected user %s, got %+v", user.ID, found)
		}
	})

	t.Run("FindMissingReturnsNil", func(t *testing.T) {
		found, err := repo.FindByPhone(ctx, "+910000000000")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if found != nil {
			t.Errorf("Expected nil for unknown phone, got %+v", found)
		}
	})
}

// TestDatabase_EarningsSnapshots tests snapshot persistence and the
// latest/previous lookups the earnings service depends on
func TestDatabase_EarningsSnapshots(t *testing.T) {
	env := SetupTestEnvironment(t)
	if env == nil || env.DB == nil {
		t.Skip("Database not available")
	}

	CleanDatabase(t, env.DB)
	ctx := context.Background()
	repo := postgres.NewEarningsRepository(env.DB, env.Logger)
	userID := uuid.New().String()

	older := &domain.EarningsSnapshot{
		ID:        uuid.New().String(),
		UserID:    userID,
		Platform:  "Zomato",
		Period:    "today",
		Total:     950,
		Trips:     8,
		CreatedAt: time.Now().Add(-24 * time.Hour),
	}
	newer := &domain.EarningsSnapshot{
		ID:        uuid.New().String(),
		UserID:    userID,
		Platform:  "Zomato",
		Period:    "today",
		Total:     1250,
		Trips:     9,
		Incentive: 150,
		CreatedAt: time.Now(),
	}

	for _, snap := range []*domain.EarningsSnapshot{older, newer} {
		if err := repo.Save(ctx, snap); err != nil {
			t.Fatalf("Failed to save snapshot: %v", err)
		}
	}

	t.Run("FindLatest", func(t *testing.T) {
		found, err := repo.FindLatest(ctx, userID, "Zomato", "today")
		if err != nil {
			t.Fatalf("Failed to find latest: %v", err)
		}
		if found == nil {
			t.Fatal("Expected snapshot, got nil")
		}
		if found.Total != 1250 {
			t.Errorf("Expected latest total 1250, got %v", found.Total)
		}
	})

	t.Run("FindPrevious", func(t *testing.T) {
		found, err := repo.FindPrevious(ctx, userID, "Zomato", "today")
		if err != nil {
			t.Fatalf("Failed to find previous: %v", err)
		}
		if found == nil {
			t.Fatal("Expected previous snapshot, got nil")
		}
		if found.Total != 950 {
			t.Errorf("Expected previous total 950, got %v", found.Total)
		}
	})

	t.Run("FindLatestAnyPlatform", func(t *testing.T) {
		found, err := repo.FindLatest(ctx, userID, "", "today")
		if err != nil {
			t.Fatalf("Failed to find latest: %v", err)
		}
		if found == nil || found.Total != 1250 {
			t.Errorf("Expected latest across platforms, got %+v", found)
		}
	})

	t.Run("FindLatestMissingReturnsNil", func(t *testing.T) {
		found, err := repo.FindLatest(ctx, userID, "Swiggy", "today")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if found != nil {
			t.Errorf("Expected nil for unknown platform, got %+v", found)
		}
	})
}

// TestDatabase_ConversationLog tests the conversation audit trail
func TestDatabase_ConversationLog(t *testing.T) {
	env := SetupTestEnvironment(t)
	if env == nil || env.DB == nil {
		t.Skip("Database not available")
	}

	CleanDatabase(t, env.DB)
	ctx := context.Background()
	repo := postgres.NewConversationRepository(env.DB, env.Logger)
	userID := uuid.New().String()

	entries := []domain.ConversationEntry{
		{
			ID:          uuid.New().String(),
			UserID:      userID,
			MessageText: "Aaj kitna kamaya?",
			Language:    "hi",
			Intent:      domain.IntentEarningsQuery,
			Confidence:  0.92,
			Outcome:     domain.OutcomeSynthesized,
			ReplyText:   "Aaj aapne ₹1,250 kamaye.",
			CreatedAt:   time.Now().Add(-time.Hour),
		},
		{
			ID:          uuid.New().String(),
			UserID:      userID,
			MessageText: "asdfgh",
			Language:    "hi",
			Intent:      domain.IntentUnknown,
			Confidence:  0.2,
			Outcome:     domain.OutcomeFallback,
			ReplyText:   "Maaf kijiye, main samajh nahi paya.",
			CreatedAt:   time.Now(),
		},
	}

	for i := range entries {
		if err := repo.Save(ctx, &entries[i]); err != nil {
			t.Fatalf("Failed to save entry: %v", err)
		}
	}

	t.Run("FindRecentByUser", func(t *testing.T) {
		found, err := repo.FindRecentByUser(ctx, userID, 10)
		if err != nil {
			t.Fatalf("Failed to find entries: %v", err)
		}
		if len(found) != 2 {
			t.Fatalf("Expected 2 entries, got %d", len(found))
		}
		// Most recent first
		if found[0].Intent != domain.IntentUnknown {
			t.Errorf("Expected newest entry first, got intent %q", found[0].Intent)
		}
	})

	t.Run("LimitApplies", func(t *testing.T) {
		found, err := repo.FindRecentByUser(ctx, userID, 1)
		if err != nil {
			t.Fatalf("Failed to find entries: %v", err)
		}
		if len(found) != 1 {
			t.Errorf("Expected 1 entry, got %d", len(found))
		}
	})

	t.Run("UnknownUserEmpty", func(t *testing.T) {
		found, err := repo.FindRecentByUser(ctx, uuid.New().String(), 10)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(found) != 0 {
			t.Errorf("Expected no entries, got %d", len(found))
		}
	})
}
