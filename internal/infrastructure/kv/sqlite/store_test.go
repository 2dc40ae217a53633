package sqlite

import (
	"path/filepath"
	"testing"
)

func TestStore_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	path := filepath.Join(t.TempDir(), "coach.db")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := s.SetItem(ctx, "soccerSeasons", []byte(`[{"id":"s1","name":"Spring"}]`)); err != nil {
		t.Fatalf("SetItem returned error: %v", err)
	}
	if err := s.SetItem(ctx, "soccerSeasons", []byte(`[]`)); err != nil {
		t.Fatalf("SetItem overwrite returned error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })

	value, ok, err := reopened.GetItem(ctx, "soccerSeasons")
	if err != nil || !ok || string(value) != "[]" {
		t.Fatalf("unexpected value: %q ok=%v err=%v", value, ok, err)
	}
}

func TestStore_KeysRemoveClear(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	s, err := Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	for _, key := range []string{"b", "a", "c"} {
		if err := s.SetItem(ctx, key, []byte("1")); err != nil {
			t.Fatalf("SetItem(%s) returned error: %v", key, err)
		}
	}
	if err := s.RemoveItem(ctx, "c"); err != nil {
		t.Fatalf("RemoveItem returned error: %v", err)
	}

	keys, err := s.Keys(ctx)
	if err != nil || len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("unexpected keys: %v err=%v", keys, err)
	}

	if _, ok, err := s.GetItem(ctx, "c"); ok || err != nil {
		t.Fatalf("expected removed key to miss, ok=%v err=%v", ok, err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if keys, _ := s.Keys(ctx); len(keys) != 0 {
		t.Fatalf("expected no keys, got %v", keys)
	}
}

func TestOpen_RequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(t.Context(), "  "); err == nil {
		t.Fatalf("expected error for blank path")
	}
}
