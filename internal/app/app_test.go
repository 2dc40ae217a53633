package app

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/soccer-coach/internal/config"
	"github.com/riskibarqy/soccer-coach/internal/domain/storage"
	"github.com/riskibarqy/soccer-coach/internal/platform/logging"
)

func localConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		AppEnv:             config.EnvDev,
		ServiceName:        "soccer-coach-test",
		HTTPAddr:           ":0",
		ReadTimeout:        time.Second,
		WriteTimeout:       time.Second,
		CORSAllowedOrigins: []string{"*"},
		StorageProvider:    config.StorageProviderLocal,
		LocalStorePath:     filepath.Join(t.TempDir(), "coach.db"),
		CacheEnabled:       true,
		CacheTTL:           time.Minute,
		SaveRetryAttempts:  1,
		ImportMaxWorkers:   2,
	}
}

func TestNew_LocalProviderServesHealth(t *testing.T) {
	a, err := New(t.Context(), localConfig(t), logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() {
		if err := a.Close(); err != nil {
			t.Errorf("close app: %v", err)
		}
	})

	if got := a.Store.ProviderName(); got != storage.ProviderLocalStorage {
		t.Fatalf("unexpected provider: %q", got)
	}

	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected healthz status: %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), storage.ProviderLocalStorage) {
		t.Fatalf("expected provider name in healthz body, got %s", rec.Body.String())
	}
}

func TestNew_RejectsEmptyAddr(t *testing.T) {
	cfg := localConfig(t)
	cfg.HTTPAddr = " "
	if _, err := New(t.Context(), cfg, nil); err == nil {
		t.Fatalf("expected error for empty http addr")
	}
}

func TestNew_RejectsUnknownProvider(t *testing.T) {
	cfg := localConfig(t)
	cfg.StorageProvider = "dynamo"
	if _, err := New(t.Context(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for unknown storage provider")
	}
}

func TestLocalStoreExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "coach.db")

	if localStoreExists(path) {
		t.Fatalf("expected missing file to report false")
	}
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if !localStoreExists(path) {
		t.Fatalf("expected existing file to report true")
	}
	if localStoreExists(dir) || localStoreExists(":memory:") {
		t.Fatalf("directories and in-memory paths must report false")
	}
}
