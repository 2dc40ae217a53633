package httpapi

import (
	"fmt"
	"io"
	"net/http"

	"github.com/riskibarqy/soccer-coach/internal/usecase"
)

func (h *Handler) ListMigrationComponents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMigrationComponents")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.safety.States())
}

func (h *Handler) ResetMigrationComponent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResetMigrationComponent")
	defer span.End()

	name := r.PathValue("name")
	if !h.safety.Reset(name) {
		writeError(ctx, w, fmt.Errorf("%w: migration component %q", usecase.ErrNotFound, name))
		return
	}

	h.logger.InfoContext(ctx, "migration component reset", "component", name)
	writeSuccess(ctx, w, http.StatusOK, h.safety.Component(name).State())
}

func (h *Handler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ExportBackup")
	defer span.End()

	data, err := h.backup.Export(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "export backup failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="soccer-coach-backup.json"`)
	writeRawJSON(w, http.StatusOK, data)
}

func (h *Handler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportBackup")
	defer span.End()

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: read backup: %v", usecase.ErrInvalidInput, err))
		return
	}

	result, err := h.backup.Import(ctx, data)
	if err != nil {
		h.logger.WarnContext(ctx, "import backup failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) ClearAllData(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClearAllData")
	defer span.End()

	if !h.store.ClearAllData(ctx) {
		err := h.storeError()
		h.logger.ErrorContext(ctx, "clear all data failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"cleared": true})
}
