package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/riskibarqy/soccer-coach/internal/platform/logging"
)

func TestComponentSafety_LatchesAfterFailure(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	safety := NewMigrationSafety(MigrationConfig{}, logging.NewNop())
	component := safety.Component(ComponentGameSession)

	if state := component.State(); state.UseLegacy || !state.IsMigrated {
		t.Fatalf("expected modern start state, got %+v", state)
	}

	boom := errors.New("store exploded")
	if err := component.WithSafety(ctx, func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected the original error back, got %v", err)
	}

	state := component.State()
	if !state.HasFailed || !state.UseLegacy || state.IsMigrated || state.LastError != "store exploded" {
		t.Fatalf("unexpected state after failure: %+v", state)
	}

	// the latch holds even though the modern path would succeed now
	var legacyCalls, modernCalls int
	for i := 0; i < 3; i++ {
		err := component.Route(ctx,
			func(context.Context) error { legacyCalls++; return nil },
			func(context.Context) error { modernCalls++; return nil },
		)
		if err != nil {
			t.Fatalf("Route returned error: %v", err)
		}
	}
	if legacyCalls != 3 || modernCalls != 0 {
		t.Fatalf("expected legacy only, got legacy=%d modern=%d", legacyCalls, modernCalls)
	}
	if !safety.Component(ComponentGameSession).State().UseLegacy {
		t.Fatalf("latch must survive a fresh lookup of the same component")
	}
}

func TestComponentSafety_PanicTripsLatch(t *testing.T) {
	t.Parallel()

	component := NewMigrationSafety(MigrationConfig{}, logging.NewNop()).Component("Roster")
	_, err := RunWithSafety(t.Context(), component, func(context.Context) (int, error) {
		panic("nil roster")
	})
	if err == nil || !strings.Contains(err.Error(), "nil roster") {
		t.Fatalf("expected panic to surface as error, got %v", err)
	}
	if !component.State().HasFailed {
		t.Fatalf("panic must trip the latch")
	}
}

func TestMigrationSafety_ConfigOverridesAndReset(t *testing.T) {
	t.Parallel()

	safety := NewMigrationSafety(MigrationConfig{LegacyComponents: []string{" BackupImport ", ""}}, logging.NewNop())

	backup := safety.Component(ComponentBackupImport)
	if !backup.UseLegacy() {
		t.Fatalf("configured component must start on legacy")
	}
	_ = backup.WithSafety(t.Context(), func(context.Context) error { return errors.New("boom") })
	if !safety.Reset(ComponentBackupImport) {
		t.Fatalf("Reset of a configured component must succeed")
	}
	if state := backup.State(); !state.UseLegacy || state.HasFailed || state.LastError != "" {
		t.Fatalf("reset must return to the configured legacy path, got %+v", state)
	}

	session := safety.Component(ComponentGameSession)
	_ = session.WithSafety(t.Context(), func(context.Context) error { return errors.New("boom") })
	safety.Reset(ComponentGameSession)
	if state := session.State(); state.UseLegacy || !state.IsMigrated {
		t.Fatalf("reset must return to the modern path, got %+v", state)
	}

	if safety.Reset("Unknown") {
		t.Fatalf("reset of an unknown component must report false")
	}

	states := safety.States()
	if len(states) != len(DefaultMigrationComponents) {
		t.Fatalf("unexpected states: %+v", states)
	}
	for i := 1; i < len(states); i++ {
		if states[i-1].Name > states[i].Name {
			t.Fatalf("states not sorted: %+v", states)
		}
	}
}

func TestMigrationSafety_ForceLegacy(t *testing.T) {
	t.Parallel()

	safety := NewMigrationSafety(MigrationConfig{ForceLegacy: true}, logging.NewNop())
	for _, state := range safety.States() {
		if !state.UseLegacy {
			t.Fatalf("component %s not forced onto legacy", state.Name)
		}
	}
}
