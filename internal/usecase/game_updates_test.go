package usecase

import (
	"errors"
	"testing"

	"github.com/riskibarqy/soccer-coach/internal/domain/game"
	"github.com/riskibarqy/soccer-coach/internal/domain/storage"
	storagemock "github.com/riskibarqy/soccer-coach/internal/mocks/domain/storage"
	"github.com/riskibarqy/soccer-coach/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func TestGameUpdates_ApplyAndAddEvent(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store, _ := newLocalStore(t)
	if !store.SaveGame(ctx, "g1", sampleGame("Lions")) {
		t.Fatalf("SaveGame failed: %s", store.LastError())
	}

	updates := NewGameUpdates(store, NewMigrationSafety(MigrationConfig{}, logging.NewNop()), &sequenceIDs{}, logging.NewNop())

	notes := "windy"
	state, err := updates.Apply(ctx, "g1", game.Patch{GameNotes: &notes})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if state.GameNotes != "windy" || state.TeamName != "Lions" {
		t.Fatalf("unexpected state: %+v", state)
	}

	event, state, err := updates.AddEvent(ctx, "g1", EventInput{Type: game.EventGoal, Time: 42, ScorerID: "p1"})
	if err != nil {
		t.Fatalf("AddEvent returned error: %v", err)
	}
	if event.ID != "event_1" || state.HomeScore != 1 || len(state.GameEvents) != 1 {
		t.Fatalf("unexpected event result: %+v %+v", event, state)
	}

	if _, _, err := updates.AddEvent(ctx, "g1", EventInput{Type: "corner"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := updates.Apply(ctx, "missing", game.Patch{GameNotes: &notes}); !errors.Is(err, game.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestGameUpdates_RejectedPatchKeepsModernPath(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store, _ := newLocalStore(t)
	if !store.SaveGame(ctx, "g1", sampleGame("Lions")) {
		t.Fatalf("SaveGame failed: %s", store.LastError())
	}

	safety := NewMigrationSafety(MigrationConfig{}, logging.NewNop())
	updates := NewGameUpdates(store, safety, &sequenceIDs{}, logging.NewNop())

	bogus := game.Status("bogus")
	negative := -1
	cases := []struct {
		name  string
		patch game.Patch
	}{
		{name: "unknown status", patch: game.Patch{GameStatus: &bogus}},
		{name: "negative timer", patch: game.Patch{TimeElapsedInSeconds: &negative}},
		{name: "invalid event", patch: game.Patch{GameEvents: []game.Event{{ID: "e1", Type: "corner"}}}},
	}
	for _, tc := range cases {
		if _, err := updates.Apply(ctx, "g1", tc.patch); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}

	state := safety.Component(ComponentGameUpdate).State()
	if state.HasFailed || state.UseLegacy || !state.IsMigrated {
		t.Fatalf("rejected patches must not trip the latch: %+v", state)
	}
}

func TestGameUpdates_LegacyPathRewritesGame(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store, _ := newLocalStore(t)
	if !store.SaveGame(ctx, "g1", sampleGame("Lions")) {
		t.Fatalf("SaveGame failed: %s", store.LastError())
	}

	safety := NewMigrationSafety(MigrationConfig{LegacyComponents: []string{ComponentGameUpdate}}, logging.NewNop())
	updates := NewGameUpdates(store, safety, &sequenceIDs{}, logging.NewNop())

	_, state, err := updates.AddEvent(ctx, "g1", EventInput{Type: game.EventOpponentGoal, Time: 5})
	if err != nil {
		t.Fatalf("AddEvent returned error: %v", err)
	}
	if state.AwayScore != 1 || len(state.GameEvents) != 1 {
		t.Fatalf("unexpected state: %+v", state)
	}
	if safety.Component(ComponentGameUpdate).State().HasFailed {
		t.Fatalf("legacy writes must not trip the latch")
	}
}

func TestGameUpdates_FallsBackWhenPatchFails(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	provider := patchingProvider{Provider: storagemock.NewProvider(t), Patcher: storagemock.NewPatcher(t)}
	provider.Provider.On("ProviderName").Return(storage.ProviderPostgres)
	provider.Provider.On("GetSavedGames", mock.Anything).Return(map[string]game.Record{"g1": storedGame(t, sampleGame("Lions"))}, nil)
	provider.Patcher.On("PatchSavedGame", mock.Anything, "g1", mock.Anything).Return(errors.New("column missing")).Once()
	provider.Provider.On("SaveSavedGame", mock.Anything, "g1", mock.MatchedBy(func(s game.AppState) bool {
		return s.GameStatus == game.StatusPeriodEnd
	})).Return(nil).Once()

	safety := NewMigrationSafety(MigrationConfig{}, logging.NewNop())
	store := NewPersistenceStore(provider, StoreConfig{RetryAttempts: 1}, logging.NewNop())
	updates := NewGameUpdates(store, safety, nil, logging.NewNop())

	status := game.StatusPeriodEnd
	state, err := updates.Apply(ctx, "g1", game.Patch{GameStatus: &status})
	if err != nil {
		t.Fatalf("Apply should succeed through the full save, got %v", err)
	}
	if state.GameStatus != game.StatusPeriodEnd {
		t.Fatalf("unexpected status: %s", state.GameStatus)
	}
	if !safety.Component(ComponentGameUpdate).State().UseLegacy {
		t.Fatalf("expected the component to latch onto legacy")
	}
}
