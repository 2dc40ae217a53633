package id

import (
	"strings"
	"testing"
	"time"
)

func TestTimeRandomGenerator_NewID(t *testing.T) {
	g := NewTimeRandomGenerator()
	g.now = func() time.Time { return time.UnixMilli(1700000000123) }

	first := g.NewID("game")
	second := g.NewID("game")

	if !strings.HasPrefix(first, "game_1700000000123_") {
		t.Fatalf("unexpected id shape: %s", first)
	}
	if len(first) != len("game_1700000000123_")+8 {
		t.Fatalf("unexpected id length: %s", first)
	}
	if first == second {
		t.Fatalf("expected distinct ids, got %s twice", first)
	}
	if got := g.NewID("  "); !strings.HasPrefix(got, "id_") {
		t.Fatalf("expected default prefix, got %s", got)
	}
}
