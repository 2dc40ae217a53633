package storage

import (
	"context"
	"errors"

	"github.com/riskibarqy/soccer-coach/internal/domain/game"
	"github.com/riskibarqy/soccer-coach/internal/domain/player"
	"github.com/riskibarqy/soccer-coach/internal/domain/season"
	"github.com/riskibarqy/soccer-coach/internal/domain/tournament"
)

const (
	ProviderPostgres     = "postgres"
	ProviderSupabase     = "supabase"
	ProviderLocalStorage = "localStorage"
)

// Keys of the serialized collections. Local backends store one blob per key
// and backups use the same names.
const (
	KeySavedGames   = "savedSoccerGames"
	KeyMasterRoster = "soccerMasterRoster"
	KeySeasons      = "soccerSeasons"
	KeyTournaments  = "soccerTournaments"
)

var ErrPartialUpdateUnsupported = errors.New("provider does not support partial updates")

// Provider is one storage backend. Games come back as raw records because
// the backend is not trusted to hold well-formed state.
type Provider interface {
	ProviderName() string

	GetSavedGames(ctx context.Context) (map[string]game.Record, error)
	SaveSavedGame(ctx context.Context, gameID string, state game.AppState) error
	DeleteSavedGame(ctx context.Context, gameID string) (bool, error)

	GetPlayers(ctx context.Context) ([]player.Player, error)
	SaveMasterRoster(ctx context.Context, players []player.Player) (bool, error)

	GetSeasons(ctx context.Context) ([]season.Season, error)
	SaveSeasons(ctx context.Context, seasons []season.Season) error

	GetTournaments(ctx context.Context) ([]tournament.Tournament, error)
	SaveTournaments(ctx context.Context, tournaments []tournament.Tournament) error

	GetGenericData(ctx context.Context, key string) ([]byte, bool, error)
	SetGenericData(ctx context.Context, key string, value []byte) error
	DeleteGenericData(ctx context.Context, key string) error
}

// Patcher is implemented by backends that can merge a subset of a game's
// fields without rewriting the whole document.
type Patcher interface {
	PatchSavedGame(ctx context.Context, gameID string, fields map[string]any) error
}

// IsRemote reports whether name identifies a remote database backend.
func IsRemote(name string) bool {
	return name == ProviderPostgres || name == ProviderSupabase
}

// SupportsPartialUpdates is true when p is a remote backend that also
// implements Patcher. Local backends always take the full-rewrite path.
func SupportsPartialUpdates(p Provider) bool {
	if p == nil || !IsRemote(p.ProviderName()) {
		return false
	}
	_, ok := p.(Patcher)
	return ok
}
