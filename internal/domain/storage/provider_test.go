package storage

import (
	"context"
	"testing"

	"github.com/riskibarqy/soccer-coach/internal/domain/game"
	"github.com/riskibarqy/soccer-coach/internal/domain/player"
	"github.com/riskibarqy/soccer-coach/internal/domain/season"
	"github.com/riskibarqy/soccer-coach/internal/domain/tournament"
)

type fakeProvider struct{ name string }

func (f fakeProvider) ProviderName() string { return f.name }
func (fakeProvider) GetSavedGames(context.Context) (map[string]game.Record, error) {
	return nil, nil
}
func (fakeProvider) SaveSavedGame(context.Context, string, game.AppState) error { return nil }
func (fakeProvider) DeleteSavedGame(context.Context, string) (bool, error)      { return true, nil }
func (fakeProvider) GetPlayers(context.Context) ([]player.Player, error)        { return nil, nil }
func (fakeProvider) SaveMasterRoster(context.Context, []player.Player) (bool, error) {
	return true, nil
}
func (fakeProvider) GetSeasons(context.Context) ([]season.Season, error)   { return nil, nil }
func (fakeProvider) SaveSeasons(context.Context, []season.Season) error    { return nil }
func (fakeProvider) GetTournaments(context.Context) ([]tournament.Tournament, error) {
	return nil, nil
}
func (fakeProvider) SaveTournaments(context.Context, []tournament.Tournament) error { return nil }
func (fakeProvider) GetGenericData(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}
func (fakeProvider) SetGenericData(context.Context, string, []byte) error { return nil }
func (fakeProvider) DeleteGenericData(context.Context, string) error      { return nil }

type fakePatcher struct{ fakeProvider }

func (fakePatcher) PatchSavedGame(context.Context, string, map[string]any) error { return nil }

func TestSupportsPartialUpdates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		provider Provider
		want     bool
	}{
		{name: "nil provider", provider: nil, want: false},
		{name: "local without patcher", provider: fakeProvider{name: ProviderLocalStorage}, want: false},
		{name: "local with patcher", provider: fakePatcher{fakeProvider{name: ProviderLocalStorage}}, want: false},
		{name: "remote without patcher", provider: fakeProvider{name: ProviderPostgres}, want: false},
		{name: "postgres with patcher", provider: fakePatcher{fakeProvider{name: ProviderPostgres}}, want: true},
		{name: "supabase with patcher", provider: fakePatcher{fakeProvider{name: ProviderSupabase}}, want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := SupportsPartialUpdates(tc.provider); got != tc.want {
				t.Fatalf("SupportsPartialUpdates() = %v, want %v", got, tc.want)
			}
		})
	}
}
