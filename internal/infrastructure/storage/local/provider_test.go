package local

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/riskibarqy/soccer-coach/internal/domain/game"
	"github.com/riskibarqy/soccer-coach/internal/domain/player"
	"github.com/riskibarqy/soccer-coach/internal/domain/season"
	"github.com/riskibarqy/soccer-coach/internal/domain/storage"
	"github.com/riskibarqy/soccer-coach/internal/domain/typeguard"
	"github.com/riskibarqy/soccer-coach/internal/platform/kv"
	"github.com/riskibarqy/soccer-coach/internal/platform/logging"
)

func newTestProvider() (*Provider, *kv.MemoryStore) {
	store := kv.NewMemoryStore()
	return NewProvider(store, logging.NewNop()), store
}

func TestProvider_IsNotPartialCapable(t *testing.T) {
	t.Parallel()

	p, _ := newTestProvider()
	if p.ProviderName() != storage.ProviderLocalStorage {
		t.Fatalf("unexpected name: %s", p.ProviderName())
	}
	if storage.SupportsPartialUpdates(p) {
		t.Fatalf("local provider must use full rewrites")
	}
}

func TestProvider_SavedGamesRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	p, _ := newTestProvider()

	state := game.AppState{TeamName: "Lions", OpponentName: "Tigers", GameDate: "2026-05-01", HomeScore: 2}
	if err := p.SaveSavedGame(ctx, "g1", state); err != nil {
		t.Fatalf("SaveSavedGame returned error: %v", err)
	}
	if err := p.SaveSavedGame(ctx, "g2", state); err != nil {
		t.Fatalf("SaveSavedGame returned error: %v", err)
	}

	games, err := p.GetSavedGames(ctx)
	if err != nil {
		t.Fatalf("GetSavedGames returned error: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(games))
	}
	decoded, err := typeguard.DecodeRecord(games["g1"])
	if err != nil {
		t.Fatalf("stored game did not validate: %v", err)
	}
	if decoded.HomeScore != 2 || decoded.GameStatus != game.StatusNotStarted {
		t.Fatalf("unexpected decoded state: %+v", decoded)
	}

	deleted, err := p.DeleteSavedGame(ctx, "g1")
	if err != nil || !deleted {
		t.Fatalf("DeleteSavedGame = %v, %v", deleted, err)
	}
	deleted, err = p.DeleteSavedGame(ctx, "g1")
	if err != nil || deleted {
		t.Fatalf("second delete = %v, %v", deleted, err)
	}
}

func TestProvider_CorruptBlobsFallBack(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	p, store := newTestProvider()

	_ = store.SetItem(ctx, storage.KeySavedGames, []byte("{not json"))
	_ = store.SetItem(ctx, storage.KeyMasterRoster, []byte(`[{"id":"p1"}]`))
	_ = store.SetItem(ctx, storage.KeySeasons, []byte(`{"id":"s1"}`))

	games, err := p.GetSavedGames(ctx)
	if err != nil || len(games) != 0 {
		t.Fatalf("expected empty games, got %v err=%v", games, err)
	}
	players, err := p.GetPlayers(ctx)
	if err != nil || len(players) != 0 {
		t.Fatalf("expected empty roster, got %v err=%v", players, err)
	}
	seasons, err := p.GetSeasons(ctx)
	if err != nil || len(seasons) != 0 {
		t.Fatalf("expected empty seasons, got %v err=%v", seasons, err)
	}
}

func TestProvider_RosterAndSeasons(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	p, _ := newTestProvider()

	ok, err := p.SaveMasterRoster(ctx, []player.Player{{ID: "p1", Name: "Ava", JerseyNumber: "9"}})
	if err != nil || !ok {
		t.Fatalf("SaveMasterRoster = %v, %v", ok, err)
	}
	players, err := p.GetPlayers(ctx)
	if err != nil || len(players) != 1 || players[0].JerseyNumber != "9" {
		t.Fatalf("unexpected roster: %+v err=%v", players, err)
	}

	if err := p.SaveSeasons(ctx, []season.Season{{ID: "s1", Name: "Spring"}}); err != nil {
		t.Fatalf("SaveSeasons returned error: %v", err)
	}
	seasons, err := p.GetSeasons(ctx)
	if err != nil || len(seasons) != 1 || seasons[0].Name != "Spring" {
		t.Fatalf("unexpected seasons: %+v err=%v", seasons, err)
	}
}

type failingStore struct {
	kv.Store
}

func (failingStore) SetItem(context.Context, string, []byte) error {
	return kv.ErrQuotaExceeded
}

func TestProvider_WriteErrorsPropagate(t *testing.T) {
	t.Parallel()

	p := NewProvider(failingStore{Store: kv.NewMemoryStore()}, logging.NewNop())
	err := p.SaveSavedGame(t.Context(), "g1", game.AppState{TeamName: "Lions"})
	if !errors.Is(err, kv.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
	if err := p.SetGenericData(t.Context(), "soccerAppSettings", []byte("{}")); !errors.Is(err, kv.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
}

// flakyStore fails the next failReads GetItem calls.
type flakyStore struct {
	kv.Store
	failReads atomic.Int32
}

var errDatabaseLocked = errors.New("database is locked")

func (s *flakyStore) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	if s.failReads.Add(-1) >= 0 {
		return nil, false, errDatabaseLocked
	}
	return s.Store.GetItem(ctx, key)
}

func TestProvider_ReadErrorsNeverOverwriteGames(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store := &flakyStore{Store: kv.NewMemoryStore()}
	p := NewProvider(store, logging.NewNop())

	state := game.AppState{TeamName: "Lions", OpponentName: "Tigers", GameDate: "2026-05-01"}
	for _, id := range []string{"g1", "g2", "g3"} {
		if err := p.SaveSavedGame(ctx, id, state); err != nil {
			t.Fatalf("SaveSavedGame(%s) returned error: %v", id, err)
		}
	}

	store.failReads.Store(1)
	if err := p.SaveSavedGame(ctx, "g4", state); !errors.Is(err, errDatabaseLocked) {
		t.Fatalf("expected read error from save, got %v", err)
	}

	store.failReads.Store(1)
	if _, err := p.DeleteSavedGame(ctx, "g1"); !errors.Is(err, errDatabaseLocked) {
		t.Fatalf("expected read error from delete, got %v", err)
	}

	store.failReads.Store(1)
	if _, err := p.GetSavedGames(ctx); !errors.Is(err, errDatabaseLocked) {
		t.Fatalf("expected read error from load, got %v", err)
	}

	if err := p.SaveSavedGame(ctx, "g4", state); err != nil {
		t.Fatalf("SaveSavedGame after recovery returned error: %v", err)
	}
	games, err := p.GetSavedGames(ctx)
	if err != nil {
		t.Fatalf("GetSavedGames returned error: %v", err)
	}
	if len(games) != 4 {
		t.Fatalf("expected 4 games after transient read failures, got %d", len(games))
	}
}

func TestProvider_CorruptGamesBlobIsNotRewritten(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	p, store := newTestProvider()
	_ = store.SetItem(ctx, storage.KeySavedGames, []byte("{not json"))

	err := p.SaveSavedGame(ctx, "g1", game.AppState{TeamName: "Lions"})
	if !errors.Is(err, ErrCorruptBlob) {
		t.Fatalf("expected corrupt blob error, got %v", err)
	}
	if _, err := p.DeleteSavedGame(ctx, "g1"); !errors.Is(err, ErrCorruptBlob) {
		t.Fatalf("expected corrupt blob error from delete, got %v", err)
	}

	raw, _, _ := store.GetItem(ctx, storage.KeySavedGames)
	if string(raw) != "{not json" {
		t.Fatalf("corrupt blob was overwritten: %q", raw)
	}
}
