package httpapi

import (
	"net/http"

	"github.com/riskibarqy/soccer-coach/internal/domain/player"
	"github.com/riskibarqy/soccer-coach/internal/domain/season"
	"github.com/riskibarqy/soccer-coach/internal/domain/settings"
	"github.com/riskibarqy/soccer-coach/internal/domain/tournament"
)

type addPlayerRequest struct {
	ID           string `json:"id" validate:"omitempty,max=128"`
	Name         string `json:"name" validate:"required,max=100"`
	Nickname     string `json:"nickname" validate:"omitempty,max=100"`
	JerseyNumber string `json:"jerseyNumber" validate:"omitempty,max=8"`
	IsGoalie     bool   `json:"isGoalie"`
	Notes        string `json:"notes" validate:"omitempty,max=2000"`
	Color        string `json:"color" validate:"omitempty,max=32"`
}

type updatePlayerRequest struct {
	Name                 *string `json:"name" validate:"omitempty,min=1,max=100"`
	Nickname             *string `json:"nickname" validate:"omitempty,max=100"`
	JerseyNumber         *string `json:"jerseyNumber" validate:"omitempty,max=8"`
	IsGoalie             *bool   `json:"isGoalie"`
	Notes                *string `json:"notes" validate:"omitempty,max=2000"`
	ReceivedFairPlayCard *bool   `json:"receivedFairPlayCard"`
	Color                *string `json:"color" validate:"omitempty,max=32"`
}

// competitionRequest is the shared payload of seasons and tournaments.
type competitionRequest struct {
	Name           string `json:"name" validate:"required,max=100"`
	Location       string `json:"location" validate:"omitempty,max=200"`
	Level          string `json:"level" validate:"omitempty,max=100"`
	PeriodCount    int    `json:"periodCount" validate:"gte=0,lte=10"`
	PeriodDuration int    `json:"periodDuration" validate:"gte=0,lte=180"`
	StartDate      string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate        string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Archived       bool   `json:"archived"`
	Notes          string `json:"notes" validate:"omitempty,max=2000"`
}

func (c competitionRequest) season(id string) season.Season {
	return season.Season{
		ID:             id,
		Name:           c.Name,
		Location:       c.Location,
		PeriodCount:    c.PeriodCount,
		PeriodDuration: c.PeriodDuration,
		StartDate:      c.StartDate,
		EndDate:        c.EndDate,
		Archived:       c.Archived,
		Notes:          c.Notes,
	}
}

func (c competitionRequest) tournament(id string) tournament.Tournament {
	return tournament.Tournament{
		ID:             id,
		Name:           c.Name,
		Location:       c.Location,
		Level:          c.Level,
		PeriodCount:    c.PeriodCount,
		PeriodDuration: c.PeriodDuration,
		StartDate:      c.StartDate,
		EndDate:        c.EndDate,
		Archived:       c.Archived,
		Notes:          c.Notes,
	}
}

type settingsRequest struct {
	CurrentGameID    string `json:"currentGameId" validate:"omitempty,max=128"`
	LastHomeTeamName string `json:"lastHomeTeamName" validate:"omitempty,max=100"`
	Language         string `json:"language" validate:"omitempty,max=16"`
}

func (h *Handler) ListRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRoster")
	defer span.End()

	if !h.store.LoadMasterRoster(ctx) {
		err := h.storeError()
		h.logger.ErrorContext(ctx, "list roster failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, h.store.GetMasterRoster())
}

func (h *Handler) AddRosterPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddRosterPlayer")
	defer span.End()

	var req addPlayerRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	added, ok := h.store.AddPlayerToRoster(ctx, player.Player{
		ID:           req.ID,
		Name:         req.Name,
		Nickname:     req.Nickname,
		JerseyNumber: req.JerseyNumber,
		IsGoalie:     req.IsGoalie,
		Notes:        req.Notes,
		Color:        req.Color,
	})
	if !ok {
		err := h.storeError()
		h.logger.WarnContext(ctx, "add roster player failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, added)
}

func (h *Handler) UpdateRosterPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateRosterPlayer")
	defer span.End()

	playerID := r.PathValue("playerID")
	var req updatePlayerRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, ok := h.store.UpdatePlayerInRoster(ctx, playerID, player.Update{
		Name:                 req.Name,
		Nickname:             req.Nickname,
		JerseyNumber:         req.JerseyNumber,
		IsGoalie:             req.IsGoalie,
		Notes:                req.Notes,
		ReceivedFairPlayCard: req.ReceivedFairPlayCard,
		Color:                req.Color,
	})
	if !ok {
		err := h.storeError()
		h.logger.WarnContext(ctx, "update roster player failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, updated)
}

func (h *Handler) RemoveRosterPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemoveRosterPlayer")
	defer span.End()

	playerID := r.PathValue("playerID")
	if !h.store.RemovePlayerFromRoster(ctx, playerID) {
		err := h.storeError()
		h.logger.WarnContext(ctx, "remove roster player failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"id": playerID})
}

func (h *Handler) ListSeasons(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSeasons")
	defer span.End()

	if !h.store.LoadSeasons(ctx) {
		err := h.storeError()
		h.logger.ErrorContext(ctx, "list seasons failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, h.store.GetSeasons())
}

func (h *Handler) AddSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddSeason")
	defer span.End()

	var req competitionRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	added, ok := h.store.AddSeason(ctx, req.season(""))
	if !ok {
		err := h.storeError()
		h.logger.WarnContext(ctx, "add season failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, added)
}

func (h *Handler) UpdateSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateSeason")
	defer span.End()

	seasonID := r.PathValue("seasonID")
	var req competitionRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	item := req.season(seasonID)
	if !h.store.UpdateSeason(ctx, item) {
		err := h.storeError()
		h.logger.WarnContext(ctx, "update season failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}

func (h *Handler) DeleteSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteSeason")
	defer span.End()

	seasonID := r.PathValue("seasonID")
	if !h.store.DeleteSeason(ctx, seasonID) {
		err := h.storeError()
		h.logger.WarnContext(ctx, "delete season failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"id": seasonID})
}

func (h *Handler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTournaments")
	defer span.End()

	if !h.store.LoadTournaments(ctx) {
		err := h.storeError()
		h.logger.ErrorContext(ctx, "list tournaments failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, h.store.GetTournaments())
}

func (h *Handler) AddTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddTournament")
	defer span.End()

	var req competitionRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	added, ok := h.store.AddTournament(ctx, req.tournament(""))
	if !ok {
		err := h.storeError()
		h.logger.WarnContext(ctx, "add tournament failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, added)
}

func (h *Handler) UpdateTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateTournament")
	defer span.End()

	tournamentID := r.PathValue("tournamentID")
	var req competitionRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	item := req.tournament(tournamentID)
	if !h.store.UpdateTournament(ctx, item) {
		err := h.storeError()
		h.logger.WarnContext(ctx, "update tournament failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}

func (h *Handler) DeleteTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteTournament")
	defer span.End()

	tournamentID := r.PathValue("tournamentID")
	if !h.store.DeleteTournament(ctx, tournamentID) {
		err := h.storeError()
		h.logger.WarnContext(ctx, "delete tournament failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"id": tournamentID})
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSettings")
	defer span.End()

	if !h.store.LoadSettings(ctx) {
		err := h.storeError()
		h.logger.ErrorContext(ctx, "load settings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, h.store.GetSettings())
}

func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SaveSettings")
	defer span.End()

	var req settingsRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	next := settings.AppSettings{
		CurrentGameID:    req.CurrentGameID,
		LastHomeTeamName: req.LastHomeTeamName,
		Language:         req.Language,
	}
	if !h.store.SaveSettings(ctx, next) {
		err := h.storeError()
		h.logger.WarnContext(ctx, "save settings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, next)
}
