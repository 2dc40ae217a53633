package usecase

import (
	"context"
	"fmt"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/soccer-coach/internal/domain/game"
	"github.com/riskibarqy/soccer-coach/internal/domain/storage"
	"github.com/riskibarqy/soccer-coach/internal/domain/typeguard"
	"github.com/riskibarqy/soccer-coach/internal/platform/logging"
)

// GameSaveOptimizer writes small in-game changes. Remote backends that can
// patch receive only the changed fields; everything else gets the merged
// document rewritten in full.
type GameSaveOptimizer struct {
	provider storage.Provider
	logger   *logging.Logger
}

func NewGameSaveOptimizer(provider storage.Provider, logger *logging.Logger) *GameSaveOptimizer {
	if logger == nil {
		logger = logging.Default()
	}
	return &GameSaveOptimizer{
		provider: provider,
		logger:   logger.Named("game_save_optimizer"),
	}
}

// SaveGameEventOnly appends event to the game's log and applies score when
// given. An event whose id is already in the log is not appended twice, so
// the call can be retried safely.
func (o *GameSaveOptimizer) SaveGameEventOnly(ctx context.Context, gameID string, event game.Event, score *game.ScoreUpdate) (game.AppState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameSaveOptimizer.SaveGameEventOnly")
	defer span.End()

	if err := validateEvent(event); err != nil {
		return game.AppState{}, err
	}

	current, err := o.current(ctx, gameID)
	if err != nil {
		return game.AppState{}, err
	}

	events := append([]game.Event(nil), current.GameEvents...)
	if !hasEvent(events, event.ID) {
		events = append(events, event)
	}

	patch := game.Patch{GameEvents: events}
	if score != nil {
		home, away := score.HomeScore, score.AwayScore
		patch.HomeScore = &home
		patch.AwayScore = &away
	}
	return o.write(ctx, gameID, current, patch)
}

// BatchSaveGameChanges applies several field changes in one write.
func (o *GameSaveOptimizer) BatchSaveGameChanges(ctx context.Context, gameID string, patch game.Patch) (game.AppState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameSaveOptimizer.BatchSaveGameChanges")
	defer span.End()

	if err := validatePatch(patch); err != nil {
		return game.AppState{}, err
	}

	current, err := o.current(ctx, gameID)
	if err != nil {
		return game.AppState{}, err
	}
	if patch.IsEmpty() {
		return current, nil
	}
	return o.write(ctx, gameID, current, patch)
}

func (o *GameSaveOptimizer) current(ctx context.Context, gameID string) (game.AppState, error) {
	if strings.TrimSpace(gameID) == "" {
		return game.AppState{}, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}

	records, err := o.provider.GetSavedGames(ctx)
	if err != nil {
		return game.AppState{}, crerr.Wrap(err, "get saved games")
	}
	rec, ok := records[gameID]
	if !ok {
		return game.AppState{}, game.ErrGameNotFound
	}

	state, err := typeguard.DecodeRecord(rec)
	if err != nil {
		return game.AppState{}, crerr.Wrapf(err, "decode game %s", gameID)
	}
	return state, nil
}

func (o *GameSaveOptimizer) write(ctx context.Context, gameID string, current game.AppState, patch game.Patch) (game.AppState, error) {
	merged := current.Apply(patch)

	if !storage.SupportsPartialUpdates(o.provider) {
		if err := o.provider.SaveSavedGame(ctx, gameID, merged); err != nil {
			return game.AppState{}, crerr.Wrapf(err, "save game %s", gameID)
		}
		return merged, nil
	}

	patcher, ok := o.provider.(storage.Patcher)
	if !ok {
		return game.AppState{}, storage.ErrPartialUpdateUnsupported
	}

	fields := patch.Fields()
	// the backend replaces top-level keys, so send the merged assessments map
	if patch.Assessments != nil {
		fields["assessments"] = merged.Assessments
	}
	if err := patcher.PatchSavedGame(ctx, gameID, fields); err != nil {
		return game.AppState{}, crerr.Wrapf(err, "patch game %s", gameID)
	}

	o.logger.DebugContext(ctx, "game patched", "game_id", gameID, "fields", len(fields))
	return merged, nil
}

// validatePatch rejects values no write path can store.
func validatePatch(patch game.Patch) error {
	if patch.GameStatus != nil {
		if _, ok := game.AllStatuses[*patch.GameStatus]; !ok {
			return fmt.Errorf("%w: unknown game status %q", ErrInvalidInput, *patch.GameStatus)
		}
	}
	if patch.TimeElapsedInSeconds != nil && *patch.TimeElapsedInSeconds < 0 {
		return fmt.Errorf("%w: elapsed time cannot be negative", ErrInvalidInput)
	}
	for _, e := range patch.GameEvents {
		if err := validateEvent(e); err != nil {
			return err
		}
	}
	return nil
}

func validateEvent(e game.Event) error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("%w: event id is required", ErrInvalidInput)
	}
	if _, ok := game.AllEventTypes[e.Type]; !ok {
		return fmt.Errorf("%w: unknown event type %q", ErrInvalidInput, e.Type)
	}
	if e.Time < 0 {
		return fmt.Errorf("%w: event time cannot be negative", ErrInvalidInput)
	}
	return nil
}

func hasEvent(events []game.Event, eventID string) bool {
	for _, e := range events {
		if e.ID == eventID {
			return true
		}
	}
	return false
}
