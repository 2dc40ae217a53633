package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/soccer-coach/internal/domain/game"
	"github.com/riskibarqy/soccer-coach/internal/usecase"
)

type startSessionRequest struct {
	GameID string `json:"gameId" validate:"required,max=128"`
}

type sessionClockRequest struct {
	TimeElapsedInSeconds *int         `json:"timeElapsedInSeconds" validate:"omitempty,gte=0"`
	GameStatus           *game.Status `json:"gameStatus" validate:"omitempty,oneof=notStarted inProgress periodEnd gameEnd"`
	CurrentPeriod        *int         `json:"currentPeriod" validate:"omitempty,gte=1"`
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSession")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.session.Snapshot())
}

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartSession")
	defer span.End()

	var req startSessionRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	if _, err := h.session.Start(ctx, req.GameID); err != nil {
		h.logger.WarnContext(ctx, "start session failed", "game_id", req.GameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, h.session.Snapshot())
}

func (h *Handler) AddSessionEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddSessionEvent")
	defer span.End()

	var req usecase.EventInput
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	event, err := h.session.AddEvent(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "add session event failed", "event_type", req.Type, "error", err)
		writeError(ctx, w, err)
		return
	}

	snap := h.session.Snapshot()
	writeSuccess(ctx, w, http.StatusCreated, sessionEventDTO{Event: event, Session: snap})
}

type sessionEventDTO struct {
	Event   game.Event              `json:"event"`
	Session usecase.SessionSnapshot `json:"session"`
}

// UpdateSessionClock moves the timer and, when given, the status or period.
func (h *Handler) UpdateSessionClock(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateSessionClock")
	defer span.End()

	var req sessionClockRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	if req.TimeElapsedInSeconds != nil {
		if err := h.session.SetTimer(ctx, *req.TimeElapsedInSeconds); err != nil {
			h.logger.WarnContext(ctx, "set session timer failed", "error", err)
			writeError(ctx, w, err)
			return
		}
	}

	if req.GameStatus != nil || req.CurrentPeriod != nil {
		snap := h.session.Snapshot()
		if !snap.Active || snap.State == nil {
			writeError(ctx, w, fmt.Errorf("%w: no active game", usecase.ErrInvalidInput))
			return
		}
		status := snap.State.GameStatus
		if req.GameStatus != nil {
			status = *req.GameStatus
		}
		if err := h.session.SetStatus(ctx, status, req.CurrentPeriod); err != nil {
			h.logger.WarnContext(ctx, "set session status failed", "status", status, "error", err)
			writeError(ctx, w, err)
			return
		}
	}

	writeSuccess(ctx, w, http.StatusOK, h.session.Snapshot())
}

func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EndSession")
	defer span.End()

	final, err := h.session.End(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "end session failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, final)
}
