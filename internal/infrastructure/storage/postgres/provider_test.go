package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/soccer-coach/internal/domain/game"
	"github.com/riskibarqy/soccer-coach/internal/domain/storage"
	"github.com/riskibarqy/soccer-coach/internal/platform/logging"
	"github.com/riskibarqy/soccer-coach/internal/platform/resilience"
)

func unopenedDB() *sqlx.DB {
	return sqlx.NewDb(&sql.DB{}, "postgres")
}

func TestNewProvider_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewProvider(nil, Options{OwnerID: "o1"}, nil); err == nil {
		t.Fatalf("expected error for nil db")
	}
	if _, err := NewProvider(unopenedDB(), Options{}, nil); err == nil {
		t.Fatalf("expected error for missing owner id")
	}
	if _, err := NewProvider(unopenedDB(), Options{Name: storage.ProviderLocalStorage, OwnerID: "o1"}, nil); err == nil {
		t.Fatalf("expected error for non-remote name")
	}

	p, err := NewProvider(unopenedDB(), Options{OwnerID: "o1"}, logging.NewNop())
	if err != nil {
		t.Fatalf("NewProvider returned error: %v", err)
	}
	if p.ProviderName() != storage.ProviderPostgres {
		t.Fatalf("unexpected default name: %s", p.ProviderName())
	}
	if !storage.SupportsPartialUpdates(p) {
		t.Fatalf("postgres provider must support partial updates")
	}

	supa, err := NewProvider(unopenedDB(), Options{Name: storage.ProviderSupabase, OwnerID: "o1"}, nil)
	if err != nil || supa.ProviderName() != storage.ProviderSupabase {
		t.Fatalf("unexpected supabase provider: %v %v", supa, err)
	}
}

func TestProvider_GuardOpensBreakerOnBackendFailures(t *testing.T) {
	t.Parallel()

	p, err := NewProvider(unopenedDB(), Options{
		OwnerID: "o1",
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	}, logging.NewNop())
	if err != nil {
		t.Fatalf("NewProvider returned error: %v", err)
	}

	// Not-found outcomes never trip the breaker.
	for i := 0; i < 3; i++ {
		_ = p.guard(func() error { return game.ErrGameNotFound })
	}
	if p.CircuitState() != resilience.CircuitStateClosed {
		t.Fatalf("breaker opened on not-found errors")
	}

	down := errors.New("connection refused")
	_ = p.guard(func() error { return down })
	_ = p.guard(func() error { return down })

	called := false
	err = p.guard(func() error {
		called = true
		return nil
	})
	if !errors.Is(err, resilience.ErrCircuitOpen) || called {
		t.Fatalf("expected open breaker to reject call, err=%v called=%v", err, called)
	}
}

func TestIsCircuitFailure(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want bool
	}{
		{err: errors.New("timeout"), want: true},
		{err: context.Canceled, want: false},
		{err: sql.ErrNoRows, want: false},
		{err: game.ErrGameNotFound, want: false},
	}
	for _, tc := range cases {
		if got := isCircuitFailure(tc.err); got != tc.want {
			t.Fatalf("isCircuitFailure(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestPatchSavedGame_EmptyFieldsIsNoop(t *testing.T) {
	t.Parallel()

	p, err := NewProvider(unopenedDB(), Options{OwnerID: "o1"}, nil)
	if err != nil {
		t.Fatalf("NewProvider returned error: %v", err)
	}
	if err := p.PatchSavedGame(t.Context(), "g1", nil); err != nil {
		t.Fatalf("expected no-op for empty patch, got %v", err)
	}
}
