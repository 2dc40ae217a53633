package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/riskibarqy/soccer-coach/internal/domain/game"
	"github.com/riskibarqy/soccer-coach/internal/domain/player"
	"github.com/riskibarqy/soccer-coach/internal/domain/season"
	"github.com/riskibarqy/soccer-coach/internal/domain/settings"
	"github.com/riskibarqy/soccer-coach/internal/domain/storage"
	"github.com/riskibarqy/soccer-coach/internal/domain/tournament"
	"github.com/riskibarqy/soccer-coach/internal/infrastructure/storage/local"
	storagemock "github.com/riskibarqy/soccer-coach/internal/mocks/domain/storage"
	"github.com/riskibarqy/soccer-coach/internal/platform/kv"
	"github.com/riskibarqy/soccer-coach/internal/platform/logging"
	"github.com/riskibarqy/soccer-coach/internal/platform/resilience"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type sequenceIDs struct {
	mu sync.Mutex
	n  int
}

func (s *sequenceIDs) NewID(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s_%d", prefix, s.n)
}

func newLocalStore(t *testing.T) (*PersistenceStore, *kv.MemoryStore) {
	t.Helper()

	mem := kv.NewMemoryStore()
	provider := local.NewProvider(mem, logging.NewNop())
	store := NewPersistenceStore(provider, StoreConfig{RetryAttempts: 1}, logging.NewNop(), WithIDGenerator(&sequenceIDs{}))
	return store, mem
}

func sampleGame(team string) game.AppState {
	return game.AppState{
		TeamName:              team,
		OpponentName:          "Tigers",
		GameDate:              "2026-05-01",
		NumberOfPeriods:       2,
		PeriodDurationMinutes: 20,
		CurrentPeriod:         1,
	}
}

func TestPersistenceStore_SaveLoadAndDuplicateGame(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store, _ := newLocalStore(t)

	if !store.SaveGame(ctx, "g1", sampleGame("Lions")) {
		t.Fatalf("SaveGame failed: %s", store.LastError())
	}

	fresh := NewPersistenceStore(store.provider, StoreConfig{RetryAttempts: 1}, logging.NewNop())
	if !fresh.LoadAllGames(ctx) {
		t.Fatalf("LoadAllGames failed: %s", fresh.LastError())
	}
	loaded, ok := fresh.GetGame("g1")
	if !ok || loaded.TeamName != "Lions" || loaded.GameStatus != game.StatusNotStarted {
		t.Fatalf("unexpected loaded game: %+v ok=%v", loaded, ok)
	}

	newID, ok := store.DuplicateGame(ctx, "g1", "")
	if !ok || newID == "" {
		t.Fatalf("DuplicateGame failed: %s", store.LastError())
	}
	if _, ok := store.DuplicateGame(ctx, "missing", "g9"); ok {
		t.Fatalf("duplicating an unloaded game must fail")
	}
	if !errors.Is(store.LastErr(), ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", store.LastErr())
	}
	if got := len(store.GetSavedGames()); got != 2 {
		t.Fatalf("expected 2 games in mirror, got %d", got)
	}
}

func TestPersistenceStore_SaveGameRejectsInvalidState(t *testing.T) {
	t.Parallel()

	store, _ := newLocalStore(t)
	bad := sampleGame("Lions")
	bad.GameStatus = "halftime"

	if store.SaveGame(t.Context(), "g1", bad) {
		t.Fatalf("expected invalid state to be rejected")
	}
	if !errors.Is(store.LastErr(), ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", store.LastErr())
	}
	if _, ok := store.GetGame("g1"); ok {
		t.Fatalf("rejected game must not reach the mirror")
	}
}

func TestPersistenceStore_LoadGameRejectsCorruptRecord(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	core, logs := observer.New(zap.WarnLevel)
	provider := storagemock.NewProvider(t)
	provider.On("GetSavedGames", mock.Anything).
		Return(map[string]game.Record{"g1": {"teamName": "Lions", "homeScore": 1}}, nil).
		Once()

	store := NewPersistenceStore(provider, StoreConfig{RetryAttempts: 1}, logging.FromZap(zap.New(core)))
	state, ok := store.LoadGame(ctx, "g1")
	if ok {
		t.Fatalf("expected corrupt game to be rejected, got %+v", state)
	}
	if logs.FilterMessage("rejecting corrupt saved game").Len() != 1 {
		t.Fatalf("expected a warning about the corrupt game")
	}
	if _, ok := store.GetGame("g1"); ok {
		t.Fatalf("corrupt game must not reach the mirror")
	}
}

func TestPersistenceStore_SaveGameRestoresMirrorOnBackendFailure(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	provider := storagemock.NewProvider(t)
	provider.On("SaveSavedGame", mock.Anything, "g1", mock.Anything).Return(nil).Once()
	provider.On("SaveSavedGame", mock.Anything, "g1", mock.Anything).Return(errors.New("offline")).Twice()

	store := NewPersistenceStore(provider, StoreConfig{RetryAttempts: 2}, logging.NewNop())
	if !store.SaveGame(ctx, "g1", sampleGame("Lions")) {
		t.Fatalf("first save failed: %s", store.LastError())
	}

	if store.SaveGame(ctx, "g1", sampleGame("Bears")) {
		t.Fatalf("expected second save to fail")
	}
	current, _ := store.GetGame("g1")
	if current.TeamName != "Lions" {
		t.Fatalf("mirror not restored, team=%s", current.TeamName)
	}
	if store.LastError() == "" {
		t.Fatalf("expected last error to be recorded")
	}
}

func TestPersistenceStore_DeleteGame(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store, _ := newLocalStore(t)
	if !store.SaveGame(ctx, "g1", sampleGame("Lions")) {
		t.Fatalf("SaveGame failed: %s", store.LastError())
	}

	if !store.DeleteGame(ctx, "g1") {
		t.Fatalf("DeleteGame failed: %s", store.LastError())
	}
	if _, ok := store.GetGame("g1"); ok {
		t.Fatalf("deleted game still mirrored")
	}
	if store.DeleteGame(ctx, "g1") {
		t.Fatalf("deleting a missing game must fail")
	}
	if !errors.Is(store.LastErr(), game.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", store.LastErr())
	}
}

func TestPersistenceStore_UpdateGameAndEvents(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store, _ := newLocalStore(t)
	if !store.SaveGame(ctx, "g1", sampleGame("Lions")) {
		t.Fatalf("SaveGame failed: %s", store.LastError())
	}

	notes := "windy"
	if !store.UpdateGame(ctx, "g1", game.Patch{GameNotes: &notes}) {
		t.Fatalf("UpdateGame failed: %s", store.LastError())
	}

	goal := game.Event{ID: "e1", Type: game.EventGoal, Time: 65, ScorerID: "p1"}
	if !store.SaveGameEvent(ctx, "g1", goal, &game.ScoreUpdate{HomeScore: 1}) {
		t.Fatalf("SaveGameEvent failed: %s", store.LastError())
	}
	// a retried event with the same id is not duplicated
	if !store.SaveGameEvent(ctx, "g1", goal, &game.ScoreUpdate{HomeScore: 1}) {
		t.Fatalf("repeated SaveGameEvent failed: %s", store.LastError())
	}

	elapsed := 600
	if !store.SaveGameChanges(ctx, "g1", game.Patch{TimeElapsedInSeconds: &elapsed}) {
		t.Fatalf("SaveGameChanges failed: %s", store.LastError())
	}

	got, _ := store.GetGame("g1")
	if got.GameNotes != "windy" || got.HomeScore != 1 || len(got.GameEvents) != 1 || got.TimeElapsedInSeconds != 600 {
		t.Fatalf("unexpected game: %+v", got)
	}

	if store.SaveGameEvent(ctx, "missing", game.Event{ID: "e2", Type: game.EventGoal}, nil) {
		t.Fatalf("expected event on missing game to fail")
	}
	if store.LastError() != "Game not found" {
		t.Fatalf("unexpected error: %q", store.LastError())
	}
}

func TestPersistenceStore_RosterOperations(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store, _ := newLocalStore(t)

	added, ok := store.AddPlayerToRoster(ctx, player.Player{Name: "Ava", JerseyNumber: "9"})
	if !ok || added.ID == "" {
		t.Fatalf("AddPlayerToRoster failed: %s", store.LastError())
	}
	if _, ok := store.AddPlayerToRoster(ctx, player.Player{ID: added.ID, Name: "Copy"}); ok {
		t.Fatalf("duplicate player id must be rejected")
	}
	if !errors.Is(store.LastErr(), ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", store.LastErr())
	}

	goalie := true
	updated, ok := store.UpdatePlayerInRoster(ctx, added.ID, player.Update{IsGoalie: &goalie})
	if !ok || !updated.IsGoalie {
		t.Fatalf("UpdatePlayerInRoster failed: %+v %s", updated, store.LastError())
	}

	fresh := NewPersistenceStore(store.provider, StoreConfig{RetryAttempts: 1}, logging.NewNop())
	if !fresh.LoadMasterRoster(ctx) {
		t.Fatalf("LoadMasterRoster failed: %s", fresh.LastError())
	}
	roster := fresh.GetMasterRoster()
	if len(roster) != 1 || !roster[0].IsGoalie {
		t.Fatalf("roster not persisted as a whole: %+v", roster)
	}

	if !store.RemovePlayerFromRoster(ctx, added.ID) {
		t.Fatalf("RemovePlayerFromRoster failed: %s", store.LastError())
	}
	if store.RemovePlayerFromRoster(ctx, added.ID) {
		t.Fatalf("removing a missing player must fail")
	}
	if len(store.GetMasterRoster()) != 0 {
		t.Fatalf("expected empty roster")
	}
}

func TestPersistenceStore_SeasonsAndTournamentsKeepNamesUnique(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store, _ := newLocalStore(t)

	spring, ok := store.AddSeason(ctx, season.Season{Name: "Spring 2026"})
	if !ok {
		t.Fatalf("AddSeason failed: %s", store.LastError())
	}
	if _, ok := store.AddSeason(ctx, season.Season{Name: " spring 2026 "}); ok {
		t.Fatalf("duplicate season name must be rejected")
	}
	spring.Location = "North field"
	if !store.UpdateSeason(ctx, spring) {
		t.Fatalf("UpdateSeason failed: %s", store.LastError())
	}
	if got := store.GetSeasons(); len(got) != 1 || got[0].Location != "North field" {
		t.Fatalf("unexpected seasons: %+v", got)
	}
	if !store.DeleteSeason(ctx, spring.ID) {
		t.Fatalf("DeleteSeason failed: %s", store.LastError())
	}

	cup, ok := store.AddTournament(ctx, tournament.Tournament{Name: "Summer Cup", Level: "U12"})
	if !ok {
		t.Fatalf("AddTournament failed: %s", store.LastError())
	}
	other, _ := store.AddTournament(ctx, tournament.Tournament{Name: "Winter Cup"})
	other.Name = "summer cup"
	if store.UpdateTournament(ctx, other) {
		t.Fatalf("renaming onto an existing name must fail")
	}
	if !store.DeleteTournament(ctx, cup.ID) {
		t.Fatalf("DeleteTournament failed: %s", store.LastError())
	}
	if store.DeleteTournament(ctx, cup.ID) {
		t.Fatalf("deleting a missing tournament must fail")
	}
	if got := store.GetTournaments(); len(got) != 1 || got[0].Name != "Winter Cup" {
		t.Fatalf("unexpected tournaments: %+v", got)
	}
}

func TestPersistenceStore_ReplaceCollectionsRollsBackEarlierWrites(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	original := []player.Player{{ID: "p1", Name: "Ava"}}
	replacement := []player.Player{{ID: "p2", Name: "Bea"}}

	provider := storagemock.NewProvider(t)
	provider.On("GetPlayers", mock.Anything).Return(original, nil).Once()
	provider.On("GetSeasons", mock.Anything).Return([]season.Season{}, nil).Once()
	provider.On("SaveMasterRoster", mock.Anything, replacement).Return(true, nil).Once()
	provider.On("SaveSeasons", mock.Anything, mock.Anything).Return(errors.New("quota exceeded")).Once()
	provider.On("SaveMasterRoster", mock.Anything, original).Return(true, nil).Once()

	store := NewPersistenceStore(provider, StoreConfig{RetryAttempts: 1}, logging.NewNop())
	ok := store.ReplaceCollections(ctx, CollectionSet{
		Roster:  replacement,
		Seasons: []season.Season{{ID: "s1", Name: "Spring"}},
	})
	if ok {
		t.Fatalf("expected the transaction to fail")
	}
	if roster := store.GetMasterRoster(); len(roster) != 1 || roster[0].ID != "p1" {
		t.Fatalf("roster mirror not rolled back: %+v", roster)
	}
}

func TestPersistenceStore_SettingsRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store, mem := newLocalStore(t)

	if !store.LoadSettings(ctx) {
		t.Fatalf("LoadSettings failed: %s", store.LastError())
	}
	if store.GetSettings() != (settings.AppSettings{}) {
		t.Fatalf("expected default settings")
	}

	if !store.SaveSettings(ctx, settings.AppSettings{Language: "fi", CurrentGameID: "g1"}) {
		t.Fatalf("SaveSettings failed: %s", store.LastError())
	}
	raw, ok, _ := mem.GetItem(ctx, settings.StorageKey)
	if !ok || len(raw) == 0 {
		t.Fatalf("settings not written to the backend")
	}

	_ = mem.SetItem(ctx, settings.StorageKey, []byte("{broken"))
	if !store.LoadSettings(ctx) {
		t.Fatalf("LoadSettings failed: %s", store.LastError())
	}
	if store.GetSettings().Language != "" {
		t.Fatalf("unreadable settings must fall back to defaults")
	}
}

func TestPersistenceStore_ClearAllDataReportsPartialFailure(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store, mem := newLocalStore(t)
	if !store.SaveGame(ctx, "g1", sampleGame("Lions")) {
		t.Fatalf("SaveGame failed: %s", store.LastError())
	}

	broken := storagemock.NewProvider(t)
	broken.On("ProviderName").Return(storage.ProviderPostgres).Maybe()
	broken.On("GetSavedGames", mock.Anything).Return(nil, errors.New("offline")).Once()
	broken.On("SaveMasterRoster", mock.Anything, mock.Anything).Return(true, nil).Once()
	broken.On("SaveSeasons", mock.Anything, mock.Anything).Return(nil).Once()
	broken.On("SaveTournaments", mock.Anything, mock.Anything).Return(nil).Once()
	broken.On("DeleteGenericData", mock.Anything, settings.StorageKey).Return(nil).Once()

	store.extra = append(store.extra, broken)
	if store.ClearAllData(ctx) {
		t.Fatalf("expected partial failure to be reported")
	}
	if len(store.GetSavedGames()) != 0 {
		t.Fatalf("mirror must be reset")
	}

	games, err := store.provider.GetSavedGames(ctx)
	if err != nil || len(games) != 0 {
		t.Fatalf("healthy backend not cleared: %v err=%v", games, err)
	}
	if _, ok, _ := mem.GetItem(ctx, settings.StorageKey); ok {
		t.Fatalf("settings not removed")
	}
}

func TestPersistenceStore_SubscribersSeeEveryMutation(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store, _ := newLocalStore(t)

	var seen []int
	unsubscribe := store.Subscribe(func(snap StoreSnapshot) {
		seen = append(seen, len(snap.Games))
	})
	store.Subscribe(func(StoreSnapshot) { panic("subscriber bug") })

	store.SaveGame(ctx, "g1", sampleGame("Lions"))
	store.SaveGame(ctx, "g2", sampleGame("Bears"))
	unsubscribe()
	unsubscribe()
	store.DeleteGame(ctx, "g1")

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Fatalf("unexpected notifications: %v", seen)
	}
}

func TestPermanentIfFinal(t *testing.T) {
	t.Parallel()

	_, err := permanentIfFinal(0, context.Canceled)
	if err != context.Canceled {
		t.Fatalf("transient errors must pass through, got %v", err)
	}
	_, err = permanentIfFinal(0, game.ErrGameNotFound)
	if !errors.Is(err, game.ErrGameNotFound) || err == game.ErrGameNotFound {
		t.Fatalf("expected a permanent wrapper, got %v", err)
	}
	_, err = permanentIfFinal(0, resilience.ErrCircuitOpen)
	if !errors.Is(err, resilience.ErrCircuitOpen) || err == resilience.ErrCircuitOpen {
		t.Fatalf("open circuit should not be retried, got %v", err)
	}
}
