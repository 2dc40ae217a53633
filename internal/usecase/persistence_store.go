package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/soccer-coach/internal/domain/game"
	"github.com/riskibarqy/soccer-coach/internal/domain/player"
	"github.com/riskibarqy/soccer-coach/internal/domain/season"
	"github.com/riskibarqy/soccer-coach/internal/domain/settings"
	"github.com/riskibarqy/soccer-coach/internal/domain/storage"
	"github.com/riskibarqy/soccer-coach/internal/domain/tournament"
	"github.com/riskibarqy/soccer-coach/internal/domain/typeguard"
	"github.com/riskibarqy/soccer-coach/internal/platform/atomicsave"
	"github.com/riskibarqy/soccer-coach/internal/platform/id"
	"github.com/riskibarqy/soccer-coach/internal/platform/logging"
	"github.com/riskibarqy/soccer-coach/internal/platform/resilience"
)

type StoreConfig struct {
	RetryAttempts int
	RetryDelay    time.Duration
}

type StoreOption func(*PersistenceStore)

// WithClearProviders adds backends that ClearAllData sweeps next to the
// active one.
func WithClearProviders(providers ...storage.Provider) StoreOption {
	return func(s *PersistenceStore) {
		for _, p := range providers {
			if p != nil {
				s.extra = append(s.extra, p)
			}
		}
	}
}

func WithIDGenerator(ids id.Generator) StoreOption {
	return func(s *PersistenceStore) {
		if ids != nil {
			s.ids = ids
		}
	}
}

// StoreSnapshot is a deep copy of the mirror handed to subscribers.
type StoreSnapshot struct {
	Games       map[string]game.AppState `json:"savedGames"`
	Roster      []player.Player          `json:"masterRoster"`
	Seasons     []season.Season          `json:"seasons"`
	Tournaments []tournament.Tournament  `json:"tournaments"`
	Settings    settings.AppSettings     `json:"settings"`
	IsLoading   bool                     `json:"isLoading"`
	LastError   string                   `json:"lastError,omitempty"`
}

type listSlot[T any] struct {
	items  []T
	loaded bool
}

// PersistenceStore keeps an in-memory mirror of everything persisted by the
// active backend. Mutations go through the transaction harness and report
// failure as a false/zero return plus LastError, never as an error value.
type PersistenceStore struct {
	provider  storage.Provider
	extra     []storage.Provider
	optimizer *GameSaveOptimizer
	ids       id.Generator
	cfg       StoreConfig
	logger    *logging.Logger

	mu          sync.RWMutex
	games       map[string]game.AppState
	roster      listSlot[player.Player]
	seasons     listSlot[season.Season]
	tournaments listSlot[tournament.Tournament]
	settings    settings.AppSettings
	loading     int
	lastErr     error

	subsMu  sync.Mutex
	subs    map[uint64]func(StoreSnapshot)
	nextSub uint64
}

func NewPersistenceStore(provider storage.Provider, cfg StoreConfig, logger *logging.Logger, opts ...StoreOption) *PersistenceStore {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = atomicsave.DefaultMaxRetries
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = atomicsave.DefaultRetryDelay
	}

	s := &PersistenceStore{
		provider:  provider,
		optimizer: NewGameSaveOptimizer(provider, logger),
		ids:       id.NewTimeRandomGenerator(),
		cfg:       cfg,
		logger:    logger.Named("persistence_store"),
		games:     make(map[string]game.AppState),
		subs:      make(map[uint64]func(StoreSnapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PersistenceStore) ProviderName() string {
	return s.provider.ProviderName()
}

// Subscribe registers fn for every published snapshot. The returned func
// removes the subscription and is safe to call more than once.
func (s *PersistenceStore) Subscribe(fn func(StoreSnapshot)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	s.subsMu.Lock()
	key := s.nextSub
	s.nextSub++
	s.subs[key] = fn
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, key)
			s.subsMu.Unlock()
		})
	}
}

func (s *PersistenceStore) Snapshot() StoreSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	games := make(map[string]game.AppState, len(s.games))
	for gameID, state := range s.games {
		games[gameID] = state.Clone()
	}
	snap := StoreSnapshot{
		Games:       games,
		Roster:      append([]player.Player{}, s.roster.items...),
		Seasons:     append([]season.Season{}, s.seasons.items...),
		Tournaments: append([]tournament.Tournament{}, s.tournaments.items...),
		Settings:    s.settings,
		IsLoading:   s.loading > 0,
	}
	if s.lastErr != nil {
		snap.LastError = s.lastErr.Error()
	}
	return snap
}

// LastError is the message of the most recent failed operation, or empty
// after a success.
func (s *PersistenceStore) LastError() string {
	if err := s.LastErr(); err != nil {
		return err.Error()
	}
	return ""
}

// LastErr is LastError as an error value for errors.Is matching.
func (s *PersistenceStore) LastErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// LoadAll refreshes every mirrored collection.
func (s *PersistenceStore) LoadAll(ctx context.Context) bool {
	ok := s.LoadAllGames(ctx)
	ok = s.LoadMasterRoster(ctx) && ok
	ok = s.LoadSeasons(ctx) && ok
	ok = s.LoadTournaments(ctx) && ok
	ok = s.LoadSettings(ctx) && ok
	return ok
}

// LoadAllGames replaces the games mirror with what the backend holds.
// Records that fail validation are skipped with a warning.
func (s *PersistenceStore) LoadAllGames(ctx context.Context) bool {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceStore.LoadAllGames")
	defer span.End()

	done := s.beginLoading()
	defer done()

	records, err := retry(ctx, s, s.provider.GetSavedGames)
	if err != nil {
		return s.fail(ctx, "LoadAllGames", err)
	}

	games := make(map[string]game.AppState, len(records))
	for gameID, rec := range records {
		state, err := typeguard.DecodeRecord(rec)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping corrupt saved game", "game_id", gameID, "error", err)
			continue
		}
		games[gameID] = state
	}

	s.mu.Lock()
	s.games = games
	s.mu.Unlock()

	return s.succeed()
}

// LoadGame reads gameID through to the backend. A record that fails
// validation is rejected: the call returns false and logs a warning.
func (s *PersistenceStore) LoadGame(ctx context.Context, gameID string) (game.AppState, bool) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceStore.LoadGame")
	defer span.End()

	state, err := s.loadGame(ctx, gameID)
	if errors.Is(err, typeguard.ErrInvalidRecord) {
		s.logger.WarnContext(ctx, "rejecting corrupt saved game", "game_id", gameID, "error", err)
		s.setLastErr(err)
		return game.AppState{}, false
	}
	if err != nil {
		return game.AppState{}, s.fail(ctx, "LoadGame", err)
	}

	s.putGame(gameID, state)
	s.succeed()
	return state.Clone(), true
}

func (s *PersistenceStore) SaveGame(ctx context.Context, gameID string, state game.AppState) bool {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceStore.SaveGame")
	defer span.End()

	if err := s.saveGame(ctx, gameID, state); err != nil {
		return s.fail(ctx, "SaveGame", err)
	}
	return s.succeed()
}

// UpdateGame merges patch into the stored game and rewrites it in full.
func (s *PersistenceStore) UpdateGame(ctx context.Context, gameID string, patch game.Patch) bool {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceStore.UpdateGame")
	defer span.End()

	current, ok := s.GetGame(gameID)
	if !ok {
		loaded, err := s.loadGame(ctx, gameID)
		if err != nil {
			return s.fail(ctx, "UpdateGame", err)
		}
		current = loaded
	}

	if err := s.saveGame(ctx, gameID, current.Apply(patch)); err != nil {
		return s.fail(ctx, "UpdateGame", err)
	}
	return s.succeed()
}

func (s *PersistenceStore) DeleteGame(ctx context.Context, gameID string) bool {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceStore.DeleteGame")
	defer span.End()

	if strings.TrimSpace(gameID) == "" {
		return s.fail(ctx, "DeleteGame", fmt.Errorf("%w: game id is required", ErrInvalidInput))
	}

	previous, hadMirror := s.GetGame(gameID)
	res := atomicsave.Execute(ctx, []atomicsave.Operation{
		atomicsave.NewOperation("unmirror game "+gameID,
			func(context.Context) (struct{}, error) {
				s.dropGame(gameID)
				return struct{}{}, nil
			},
			func(context.Context) error {
				if hadMirror {
					s.putGame(gameID, previous)
				}
				return nil
			},
		),
		atomicsave.NewOperation("delete game "+gameID,
			func(ctx context.Context) (struct{}, error) {
				deleted, err := retry(ctx, s, func(ctx context.Context) (bool, error) {
					return s.provider.DeleteSavedGame(ctx, gameID)
				})
				if err != nil {
					return struct{}{}, err
				}
				if !deleted {
					return struct{}{}, fmt.Errorf("%w: %w", ErrNotFound, game.ErrGameNotFound)
				}
				return struct{}{}, nil
			},
			nil,
		),
	}, s.logger)
	if !res.Success {
		return s.fail(ctx, "DeleteGame", res.Err())
	}
	return s.succeed()
}

// DuplicateGame copies a loaded game to newID, generating one when newID is
// blank. The source must already be in the mirror.
func (s *PersistenceStore) DuplicateGame(ctx context.Context, sourceID, newID string) (string, bool) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceStore.DuplicateGame")
	defer span.End()

	source, ok := s.GetGame(sourceID)
	if !ok {
		return "", s.fail(ctx, "DuplicateGame", fmt.Errorf("%w: source game %s is not loaded", ErrNotFound, sourceID))
	}

	newID = strings.TrimSpace(newID)
	if newID == "" {
		newID = s.ids.NewID("game")
	}
	if _, exists := s.GetGame(newID); exists {
		return "", s.fail(ctx, "DuplicateGame", fmt.Errorf("%w: game %s", ErrConflict, newID))
	}

	if err := s.saveGame(ctx, newID, source); err != nil {
		return "", s.fail(ctx, "DuplicateGame", err)
	}
	return newID, s.succeed()
}

// SaveGameEvent appends event through the optimized save path and refreshes
// the mirror with the merged game.
func (s *PersistenceStore) SaveGameEvent(ctx context.Context, gameID string, event game.Event, score *game.ScoreUpdate) bool {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceStore.SaveGameEvent")
	defer span.End()

	merged, err := retry(ctx, s, func(ctx context.Context) (game.AppState, error) {
		return permanentIfFinal(s.optimizer.SaveGameEventOnly(ctx, gameID, event, score))
	})
	if err != nil {
		return s.fail(ctx, "SaveGameEvent", err)
	}

	s.putGame(gameID, merged)
	return s.succeed()
}

func (s *PersistenceStore) SaveGameChanges(ctx context.Context, gameID string, patch game.Patch) bool {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceStore.SaveGameChanges")
	defer span.End()

	merged, err := retry(ctx, s, func(ctx context.Context) (game.AppState, error) {
		return permanentIfFinal(s.optimizer.BatchSaveGameChanges(ctx, gameID, patch))
	})
	if err != nil {
		return s.fail(ctx, "SaveGameChanges", err)
	}

	s.putGame(gameID, merged)
	return s.succeed()
}

func (s *PersistenceStore) GetGame(gameID string) (game.AppState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.games[gameID]
	if !ok {
		return game.AppState{}, false
	}
	return state.Clone(), true
}

func (s *PersistenceStore) GetSavedGames() map[string]game.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]game.AppState, len(s.games))
	for gameID, state := range s.games {
		out[gameID] = state.Clone()
	}
	return out
}

func (s *PersistenceStore) loadGame(ctx context.Context, gameID string) (game.AppState, error) {
	if strings.TrimSpace(gameID) == "" {
		return game.AppState{}, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}

	records, err := retry(ctx, s, s.provider.GetSavedGames)
	if err != nil {
		return game.AppState{}, err
	}
	rec, ok := records[gameID]
	if !ok {
		return game.AppState{}, fmt.Errorf("%w: %w", ErrNotFound, game.ErrGameNotFound)
	}
	return typeguard.DecodeRecord(rec)
}

// saveGame validates state and writes it. The mirror is updated first and
// restored if the backend write fails.
func (s *PersistenceStore) saveGame(ctx context.Context, gameID string, state game.AppState) error {
	if strings.TrimSpace(gameID) == "" {
		return fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}

	rec, err := typeguard.ToRecord(state.Normalize())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	checked := typeguard.ValidateAppState(rec)
	if !checked.IsValid {
		return fmt.Errorf("%w: %s", ErrInvalidInput, checked.Error)
	}
	next := checked.Data

	previous, hadMirror := s.GetGame(gameID)
	res := atomicsave.Execute(ctx, []atomicsave.Operation{
		atomicsave.NewOperation("mirror game "+gameID,
			func(context.Context) (struct{}, error) {
				s.putGame(gameID, next)
				return struct{}{}, nil
			},
			func(context.Context) error {
				if hadMirror {
					s.putGame(gameID, previous)
				} else {
					s.dropGame(gameID)
				}
				return nil
			},
		),
		atomicsave.NewOperation("save game "+gameID,
			func(ctx context.Context) (struct{}, error) {
				return struct{}{}, s.retryErr(ctx, func(ctx context.Context) error {
					return s.provider.SaveSavedGame(ctx, gameID, next)
				})
			},
			nil,
		),
	}, s.logger)
	return res.Err()
}

func (s *PersistenceStore) putGame(gameID string, state game.AppState) {
	s.mu.Lock()
	s.games[gameID] = state.Clone()
	s.mu.Unlock()
}

func (s *PersistenceStore) dropGame(gameID string) {
	s.mu.Lock()
	delete(s.games, gameID)
	s.mu.Unlock()
}

func (s *PersistenceStore) beginLoading() func() {
	s.mu.Lock()
	s.loading++
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		s.loading--
		s.mu.Unlock()
	}
}

func (s *PersistenceStore) fail(ctx context.Context, op string, err error) bool {
	s.logger.ErrorContext(ctx, "store operation failed", "operation", op, "error", err)
	s.setLastErr(err)
	return false
}

func (s *PersistenceStore) succeed() bool {
	s.mu.Lock()
	s.lastErr = nil
	s.mu.Unlock()
	s.publish()
	return true
}

func (s *PersistenceStore) setLastErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	s.publish()
}

func (s *PersistenceStore) publish() {
	s.subsMu.Lock()
	subs := make([]func(StoreSnapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range subs {
		s.notify(fn, s.Snapshot())
	}
}

func (s *PersistenceStore) notify(fn func(StoreSnapshot), snap StoreSnapshot) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("store subscriber panicked", "panic", fmt.Sprint(r))
		}
	}()
	fn(snap)
}

func retry[T any](ctx context.Context, s *PersistenceStore, fn func(context.Context) (T, error)) (T, error) {
	return atomicsave.WithRetry(ctx, fn, s.cfg.RetryAttempts, s.cfg.RetryDelay, s.logger)
}

func (s *PersistenceStore) retryErr(ctx context.Context, fn func(context.Context) error) error {
	_, err := retry(ctx, s, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// permanentIfFinal stops retries for errors another attempt cannot fix.
func permanentIfFinal[T any](out T, err error) (T, error) {
	if errors.Is(err, game.ErrGameNotFound) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, typeguard.ErrInvalidRecord) ||
		errors.Is(err, resilience.ErrCircuitOpen) {
		return out, atomicsave.Permanent(err)
	}
	return out, err
}
