package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/soccer-coach/internal/platform/logging"
	"github.com/riskibarqy/soccer-coach/internal/usecase"
)

const maxBodyBytes = 8 << 20

type Handler struct {
	store     *usecase.PersistenceStore
	updates   *usecase.GameUpdates
	session   *usecase.GameSession
	safety    *usecase.MigrationSafety
	backup    *usecase.BackupService
	logger    *logging.Logger
	validator *validator.Validate
}

func NewHandler(
	store *usecase.PersistenceStore,
	updates *usecase.GameUpdates,
	session *usecase.GameSession,
	safety *usecase.MigrationSafety,
	backup *usecase.BackupService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		store:     store,
		updates:   updates,
		session:   session,
		safety:    safety,
		backup:    backup,
		logger:    logger.Named("httpapi"),
		validator: validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{
		"status":   "ok",
		"provider": h.store.ProviderName(),
	})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeRequest reads a JSON body into dst and validates it. An empty body
// is accepted when allowEmpty is set.
func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, dst any, allowEmpty bool) error {
	decoder := sonic.ConfigDefault.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return h.validateRequest(ctx, dst)
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return h.validateRequest(ctx, dst)
}

// storeError reports why the last store call returned false.
func (h *Handler) storeError() error {
	if err := h.store.LastErr(); err != nil {
		return err
	}
	return fmt.Errorf("%w: storage operation failed", usecase.ErrDependencyUnavailable)
}
