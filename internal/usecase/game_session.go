package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/riskibarqy/soccer-coach/internal/domain/game"
	"github.com/riskibarqy/soccer-coach/internal/platform/id"
	"github.com/riskibarqy/soccer-coach/internal/platform/logging"
)

type EventInput struct {
	Type       game.EventType `json:"type" validate:"required"`
	Time       int            `json:"time" validate:"gte=0"`
	ScorerID   string         `json:"scorerId"`
	AssisterID string         `json:"assisterId"`
	EntityID   string         `json:"entityId"`
}

type SessionSnapshot struct {
	GameID string         `json:"gameId,omitempty"`
	Active bool           `json:"active"`
	State  *game.AppState `json:"state,omitempty"`
}

// GameSession is the single game being coached on this device. Events are
// only ever appended. Saves go through the GameSession migration component:
// the modern path writes the delta, the legacy path rewrites the game.
type GameSession struct {
	store     *PersistenceStore
	component *ComponentSafety
	ids       id.Generator
	logger    *logging.Logger

	mu     sync.Mutex
	gameID string
	state  game.AppState
	active bool
}

func NewGameSession(store *PersistenceStore, safety *MigrationSafety, ids id.Generator, logger *logging.Logger) *GameSession {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewTimeRandomGenerator()
	}
	return &GameSession{
		store:     store,
		component: safety.Component(ComponentGameSession),
		ids:       ids,
		logger:    logger.Named("game_session"),
	}
}

// Start makes gameID the active game and remembers it in the settings.
func (g *GameSession) Start(ctx context.Context, gameID string) (game.AppState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameSession.Start")
	defer span.End()

	state, ok := g.store.LoadGame(ctx, strings.TrimSpace(gameID))
	if !ok {
		return game.AppState{}, storeError(g.store, ErrNotFound)
	}

	g.mu.Lock()
	g.gameID = gameID
	g.state = state
	g.active = true
	g.mu.Unlock()

	g.rememberGame(ctx, gameID)
	g.logger.InfoContext(ctx, "game session started", "game_id", gameID)
	return state.Clone(), nil
}

// AddEvent records one event. Goals move the score on the coached team's
// side of the score line.
func (g *GameSession) AddEvent(ctx context.Context, in EventInput) (game.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameSession.AddEvent")
	defer span.End()

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.active {
		return game.Event{}, fmt.Errorf("%w: no active game", ErrInvalidInput)
	}
	if g.state.GameStatus == game.StatusGameEnd {
		return game.Event{}, fmt.Errorf("%w: game has ended", ErrInvalidInput)
	}

	event := game.Event{
		ID:         g.ids.NewID("event"),
		Type:       in.Type,
		Time:       in.Time,
		ScorerID:   in.ScorerID,
		AssisterID: in.AssisterID,
		EntityID:   in.EntityID,
	}
	if err := validateEvent(event); err != nil {
		return game.Event{}, err
	}

	var score *game.ScoreUpdate
	patch := game.Patch{GameEvents: append(append([]game.Event(nil), g.state.GameEvents...), event)}
	if event.IsScoring() {
		next := g.state.ScoreAfter(event)
		score = &next
		patch.HomeScore = &next.HomeScore
		patch.AwayScore = &next.AwayScore
	}
	next := g.state.Apply(patch)

	modern := func(ctx context.Context) error {
		if !g.store.SaveGameEvent(ctx, g.gameID, event, score) {
			return storeError(g.store, ErrDependencyUnavailable)
		}
		return nil
	}
	if err := g.persist(ctx, next, modern); err != nil {
		return game.Event{}, err
	}
	return event, nil
}

func (g *GameSession) SetTimer(ctx context.Context, elapsedSeconds int) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameSession.SetTimer")
	defer span.End()

	if elapsedSeconds < 0 {
		return fmt.Errorf("%w: elapsed time cannot be negative", ErrInvalidInput)
	}
	return g.applyPatch(ctx, game.Patch{TimeElapsedInSeconds: &elapsedSeconds})
}

// SetStatus moves the game to status. period is optional.
func (g *GameSession) SetStatus(ctx context.Context, status game.Status, period *int) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameSession.SetStatus")
	defer span.End()

	if _, ok := game.AllStatuses[status]; !ok {
		return fmt.Errorf("%w: unknown game status %q", ErrInvalidInput, status)
	}
	if period != nil && *period < 0 {
		return fmt.Errorf("%w: period cannot be negative", ErrInvalidInput)
	}
	return g.applyPatch(ctx, game.Patch{GameStatus: &status, CurrentPeriod: period})
}

func (g *GameSession) Snapshot() SessionSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.active {
		return SessionSnapshot{}
	}
	state := g.state.Clone()
	return SessionSnapshot{GameID: g.gameID, Active: true, State: &state}
}

// End marks the game finished and releases the session.
func (g *GameSession) End(ctx context.Context) (game.AppState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameSession.End")
	defer span.End()

	ended := game.StatusGameEnd
	if err := g.applyPatch(ctx, game.Patch{GameStatus: &ended}); err != nil {
		return game.AppState{}, err
	}

	g.mu.Lock()
	final := g.state.Clone()
	g.active = false
	g.gameID = ""
	g.state = game.AppState{}
	g.mu.Unlock()

	g.rememberGame(ctx, "")
	return final, nil
}

func (g *GameSession) applyPatch(ctx context.Context, patch game.Patch) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.active {
		return fmt.Errorf("%w: no active game", ErrInvalidInput)
	}

	next := g.state.Apply(patch)
	modern := func(ctx context.Context) error {
		if !g.store.SaveGameChanges(ctx, g.gameID, patch) {
			return storeError(g.store, ErrDependencyUnavailable)
		}
		return nil
	}
	return g.persist(ctx, next, modern)
}

// persist runs the modern save and falls back to a full rewrite of next when
// the component is latched or the modern save fails. Callers hold g.mu.
func (g *GameSession) persist(ctx context.Context, next game.AppState, modern func(context.Context) error) error {
	legacy := func(ctx context.Context) error {
		if !g.store.SaveGame(ctx, g.gameID, next) {
			return storeError(g.store, ErrDependencyUnavailable)
		}
		return nil
	}

	triedModern := !g.component.UseLegacy()
	err := g.component.Route(ctx, legacy, modern)
	if err != nil && triedModern && !isCallerError(err) {
		g.logger.WarnContext(ctx, "optimized save failed, retrying with full save", "game_id", g.gameID, "error", err)
		err = legacy(ctx)
	}
	if err != nil {
		return err
	}

	if saved, ok := g.store.GetGame(g.gameID); ok {
		g.state = saved
	} else {
		g.state = next
	}
	return nil
}

func (g *GameSession) rememberGame(ctx context.Context, gameID string) {
	current := g.store.GetSettings()
	if current.CurrentGameID == gameID {
		return
	}
	current.CurrentGameID = gameID
	if !g.store.SaveSettings(ctx, current) {
		g.logger.WarnContext(ctx, "could not remember current game", "game_id", gameID, "error", g.store.LastError())
	}
}

// storeError turns the store's last failure into an error value, using
// fallback when the store recorded nothing.
func storeError(store *PersistenceStore, fallback error) error {
	if err := store.LastErr(); err != nil {
		return err
	}
	return fallback
}
