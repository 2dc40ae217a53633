package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/riskibarqy/soccer-coach/internal/domain/game"
	"github.com/riskibarqy/soccer-coach/internal/domain/typeguard"
	"github.com/riskibarqy/soccer-coach/internal/usecase"
)

type gameDTO struct {
	ID    string        `json:"id"`
	State game.AppState `json:"state"`
}

type updateGameRequest struct {
	GameEvents           []game.Event               `json:"gameEvents"`
	HomeScore            *int                       `json:"homeScore" validate:"omitempty,gte=0"`
	AwayScore            *int                       `json:"awayScore" validate:"omitempty,gte=0"`
	Assessments          map[string]game.Assessment `json:"assessments"`
	TimeElapsedInSeconds *int                       `json:"timeElapsedInSeconds" validate:"omitempty,gte=0"`
	CurrentPeriod        *int                       `json:"currentPeriod" validate:"omitempty,gte=1"`
	GameStatus           *game.Status               `json:"gameStatus" validate:"omitempty,oneof=notStarted inProgress periodEnd gameEnd"`
	GameNotes            *string                    `json:"gameNotes" validate:"omitempty,max=5000"`
}

func (r updateGameRequest) patch() game.Patch {
	return game.Patch{
		GameEvents:           r.GameEvents,
		HomeScore:            r.HomeScore,
		AwayScore:            r.AwayScore,
		Assessments:          r.Assessments,
		TimeElapsedInSeconds: r.TimeElapsedInSeconds,
		CurrentPeriod:        r.CurrentPeriod,
		GameStatus:           r.GameStatus,
		GameNotes:            r.GameNotes,
	}
}

type duplicateGameRequest struct {
	NewID string `json:"newId" validate:"omitempty,max=128"`
}

type gameEventDTO struct {
	Event game.Event    `json:"event"`
	State game.AppState `json:"state"`
}

func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGames")
	defer span.End()

	if !h.store.LoadAllGames(ctx) {
		err := h.storeError()
		h.logger.ErrorContext(ctx, "list games failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	games := h.store.GetSavedGames()
	items := make([]gameDTO, 0, len(games))
	for gameID, state := range games {
		items = append(items, gameDTO{ID: gameID, State: state})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].State.GameDate != items[j].State.GameDate {
			return items[i].State.GameDate > items[j].State.GameDate
		}
		return items[i].ID < items[j].ID
	})

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGame")
	defer span.End()

	gameID := r.PathValue("gameID")
	state, ok := h.store.LoadGame(ctx, gameID)
	if !ok {
		err := h.storeError()
		if errors.Is(err, typeguard.ErrInvalidRecord) {
			// corrupt games are hidden rather than served
			err = fmt.Errorf("%w: %w", usecase.ErrNotFound, game.ErrGameNotFound)
		}
		h.logger.WarnContext(ctx, "get game failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gameDTO{ID: gameID, State: state})
}

func (h *Handler) SaveGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SaveGame")
	defer span.End()

	gameID := r.PathValue("gameID")
	var state game.AppState
	if err := h.decodeRequest(ctx, r, &state, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	if !h.store.SaveGame(ctx, gameID, state) {
		err := h.storeError()
		h.logger.WarnContext(ctx, "save game failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	saved, _ := h.store.GetGame(gameID)
	writeSuccess(ctx, w, http.StatusOK, gameDTO{ID: gameID, State: saved})
}

func (h *Handler) UpdateGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateGame")
	defer span.End()

	gameID := r.PathValue("gameID")
	var req updateGameRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	state, err := h.updates.Apply(ctx, gameID, req.patch())
	if err != nil {
		h.logger.WarnContext(ctx, "update game failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gameDTO{ID: gameID, State: state})
}

func (h *Handler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteGame")
	defer span.End()

	gameID := r.PathValue("gameID")
	if !h.store.DeleteGame(ctx, gameID) {
		err := h.storeError()
		h.logger.WarnContext(ctx, "delete game failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"id": gameID})
}

func (h *Handler) DuplicateGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DuplicateGame")
	defer span.End()

	sourceID := r.PathValue("gameID")
	var req duplicateGameRequest
	if err := h.decodeRequest(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	if _, ok := h.store.GetGame(sourceID); !ok {
		if _, ok := h.store.LoadGame(ctx, sourceID); !ok {
			err := h.storeError()
			h.logger.WarnContext(ctx, "duplicate game failed", "game_id", sourceID, "error", err)
			writeError(ctx, w, err)
			return
		}
	}

	newID, ok := h.store.DuplicateGame(ctx, sourceID, req.NewID)
	if !ok {
		err := h.storeError()
		h.logger.WarnContext(ctx, "duplicate game failed", "game_id", sourceID, "error", err)
		writeError(ctx, w, err)
		return
	}

	state, _ := h.store.GetGame(newID)
	writeSuccess(ctx, w, http.StatusCreated, gameDTO{ID: newID, State: state})
}

func (h *Handler) AddGameEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddGameEvent")
	defer span.End()

	gameID := r.PathValue("gameID")
	var req usecase.EventInput
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	event, state, err := h.updates.AddEvent(ctx, gameID, req)
	if err != nil {
		h.logger.WarnContext(ctx, "add game event failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, gameEventDTO{Event: event, State: state})
}
