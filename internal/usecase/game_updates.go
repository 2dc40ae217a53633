package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/soccer-coach/internal/domain/game"
	"github.com/riskibarqy/soccer-coach/internal/platform/id"
	"github.com/riskibarqy/soccer-coach/internal/platform/logging"
)

// GameUpdates edits saved games outside a live session. Writes go through the
// GameUpdate migration component.
type GameUpdates struct {
	store     *PersistenceStore
	component *ComponentSafety
	ids       id.Generator
	logger    *logging.Logger
}

func NewGameUpdates(store *PersistenceStore, safety *MigrationSafety, ids id.Generator, logger *logging.Logger) *GameUpdates {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewTimeRandomGenerator()
	}
	return &GameUpdates{
		store:     store,
		component: safety.Component(ComponentGameUpdate),
		ids:       ids,
		logger:    logger.Named("game_updates"),
	}
}

// Apply merges patch into gameID and returns the stored result.
func (u *GameUpdates) Apply(ctx context.Context, gameID string, patch game.Patch) (game.AppState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameUpdates.Apply")
	defer span.End()

	if strings.TrimSpace(gameID) == "" {
		return game.AppState{}, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}
	current, err := u.current(ctx, gameID)
	if err != nil || patch.IsEmpty() {
		return current, err
	}
	if err := validatePatch(patch); err != nil {
		return game.AppState{}, err
	}

	err = u.route(ctx, gameID,
		func(ctx context.Context) error {
			if !u.store.UpdateGame(ctx, gameID, patch) {
				return storeError(u.store, ErrDependencyUnavailable)
			}
			return nil
		},
		func(ctx context.Context) error {
			if !u.store.SaveGameChanges(ctx, gameID, patch) {
				return storeError(u.store, ErrDependencyUnavailable)
			}
			return nil
		},
	)
	if err != nil {
		return game.AppState{}, err
	}
	return u.current(ctx, gameID)
}

// AddEvent appends an event to gameID. A blank event id is generated and
// scoring events move the score line.
func (u *GameUpdates) AddEvent(ctx context.Context, gameID string, in EventInput) (game.Event, game.AppState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameUpdates.AddEvent")
	defer span.End()

	current, err := u.current(ctx, gameID)
	if err != nil {
		return game.Event{}, game.AppState{}, err
	}

	event := game.Event{
		ID:         u.ids.NewID("event"),
		Type:       in.Type,
		Time:       in.Time,
		ScorerID:   in.ScorerID,
		AssisterID: in.AssisterID,
		EntityID:   in.EntityID,
	}
	if err := validateEvent(event); err != nil {
		return game.Event{}, game.AppState{}, err
	}

	var score *game.ScoreUpdate
	if event.IsScoring() {
		next := current.ScoreAfter(event)
		score = &next
	}

	err = u.route(ctx, gameID,
		func(ctx context.Context) error {
			patch := game.Patch{GameEvents: append(current.GameEvents, event)}
			if score != nil {
				patch.HomeScore = &score.HomeScore
				patch.AwayScore = &score.AwayScore
			}
			if !u.store.UpdateGame(ctx, gameID, patch) {
				return storeError(u.store, ErrDependencyUnavailable)
			}
			return nil
		},
		func(ctx context.Context) error {
			if !u.store.SaveGameEvent(ctx, gameID, event, score) {
				return storeError(u.store, ErrDependencyUnavailable)
			}
			return nil
		},
	)
	if err != nil {
		return game.Event{}, game.AppState{}, err
	}

	state, err := u.current(ctx, gameID)
	if err != nil {
		return game.Event{}, game.AppState{}, err
	}
	return event, state, nil
}

func (u *GameUpdates) route(ctx context.Context, gameID string, legacy, modern func(context.Context) error) error {
	triedModern := !u.component.UseLegacy()
	err := u.component.Route(ctx, legacy, modern)
	if err != nil && triedModern && !isCallerError(err) {
		u.logger.WarnContext(ctx, "optimized save failed, retrying with full save", "game_id", gameID, "error", err)
		err = legacy(ctx)
	}
	return err
}

func (u *GameUpdates) current(ctx context.Context, gameID string) (game.AppState, error) {
	if state, ok := u.store.GetGame(gameID); ok {
		return state, nil
	}
	state, ok := u.store.LoadGame(ctx, gameID)
	if !ok {
		return game.AppState{}, storeError(u.store, fmt.Errorf("%w: %w", ErrNotFound, game.ErrGameNotFound))
	}
	return state, nil
}

// isCallerError reports failures a full rewrite would hit too.
func isCallerError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, game.ErrGameNotFound)
}
