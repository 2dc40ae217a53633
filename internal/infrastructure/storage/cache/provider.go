// Package cache puts a TTL read-through cache in front of a storage
// provider. Every write evicts the keys it may have made stale, whether or
// not the write succeeded.
package cache

import (
	"context"

	"github.com/riskibarqy/soccer-coach/internal/domain/game"
	"github.com/riskibarqy/soccer-coach/internal/domain/player"
	"github.com/riskibarqy/soccer-coach/internal/domain/season"
	"github.com/riskibarqy/soccer-coach/internal/domain/storage"
	"github.com/riskibarqy/soccer-coach/internal/domain/tournament"
	basecache "github.com/riskibarqy/soccer-coach/internal/platform/cache"
)

const (
	keyGamesPrefix = "games:"
	keyGamesAll    = keyGamesPrefix + "all"
	keyRoster      = "roster"
	keySeasons     = "seasons"
	keyTournaments = "tournaments"
	keyDataPrefix  = "data:"
)

type Provider struct {
	next  storage.Provider
	cache *basecache.Store
}

// PatchingProvider is returned when the wrapped provider can patch, so the
// decorator keeps advertising partial-update support.
type PatchingProvider struct {
	*Provider
	patcher storage.Patcher
}

// NewProvider wraps next. The concrete type depends on whether next
// implements storage.Patcher.
func NewProvider(next storage.Provider, cache *basecache.Store) storage.Provider {
	base := &Provider{next: next, cache: cache}
	if patcher, ok := next.(storage.Patcher); ok {
		return &PatchingProvider{Provider: base, patcher: patcher}
	}
	return base
}

func (p *Provider) ProviderName() string {
	return p.next.ProviderName()
}

func (p *Provider) GetSavedGames(ctx context.Context) (map[string]game.Record, error) {
	v, err := p.cache.GetOrLoad(ctx, keyGamesAll, func(ctx context.Context) (any, error) {
		games, err := p.next.GetSavedGames(ctx)
		if err != nil {
			return nil, err
		}
		return cloneGames(games), nil
	})
	if err != nil {
		return nil, err
	}

	games, _ := v.(map[string]game.Record)
	return cloneGames(games), nil
}

func (p *Provider) SaveSavedGame(ctx context.Context, gameID string, state game.AppState) error {
	defer p.cache.DeletePrefix(ctx, keyGamesPrefix)
	return p.next.SaveSavedGame(ctx, gameID, state)
}

func (p *Provider) DeleteSavedGame(ctx context.Context, gameID string) (bool, error) {
	defer p.cache.DeletePrefix(ctx, keyGamesPrefix)
	return p.next.DeleteSavedGame(ctx, gameID)
}

func (p *PatchingProvider) PatchSavedGame(ctx context.Context, gameID string, fields map[string]any) error {
	defer p.cache.DeletePrefix(ctx, keyGamesPrefix)
	return p.patcher.PatchSavedGame(ctx, gameID, fields)
}

func (p *Provider) GetPlayers(ctx context.Context) ([]player.Player, error) {
	return load(ctx, p.cache, keyRoster, p.next.GetPlayers)
}

func (p *Provider) SaveMasterRoster(ctx context.Context, players []player.Player) (bool, error) {
	defer p.cache.Delete(ctx, keyRoster)
	return p.next.SaveMasterRoster(ctx, players)
}

func (p *Provider) GetSeasons(ctx context.Context) ([]season.Season, error) {
	return load(ctx, p.cache, keySeasons, p.next.GetSeasons)
}

func (p *Provider) SaveSeasons(ctx context.Context, seasons []season.Season) error {
	defer p.cache.Delete(ctx, keySeasons)
	return p.next.SaveSeasons(ctx, seasons)
}

func (p *Provider) GetTournaments(ctx context.Context) ([]tournament.Tournament, error) {
	return load(ctx, p.cache, keyTournaments, p.next.GetTournaments)
}

func (p *Provider) SaveTournaments(ctx context.Context, tournaments []tournament.Tournament) error {
	defer p.cache.Delete(ctx, keyTournaments)
	return p.next.SaveTournaments(ctx, tournaments)
}

func (p *Provider) GetGenericData(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := p.cache.GetOrLoad(ctx, keyDataPrefix+key, func(ctx context.Context) (any, error) {
		value, exists, err := p.next.GetGenericData(ctx, key)
		if err != nil {
			return nil, err
		}
		return cachedData{value: append([]byte(nil), value...), exists: exists}, nil
	})
	if err != nil {
		return nil, false, err
	}

	cached, _ := v.(cachedData)
	if !cached.exists {
		return nil, false, nil
	}
	return append([]byte(nil), cached.value...), true, nil
}

func (p *Provider) SetGenericData(ctx context.Context, key string, value []byte) error {
	defer p.cache.Delete(ctx, keyDataPrefix+key)
	return p.next.SetGenericData(ctx, key, value)
}

func (p *Provider) DeleteGenericData(ctx context.Context, key string) error {
	defer p.cache.Delete(ctx, keyDataPrefix+key)
	return p.next.DeleteGenericData(ctx, key)
}

type cachedData struct {
	value  []byte
	exists bool
}

func load[T any](ctx context.Context, cache *basecache.Store, key string, next func(context.Context) ([]T, error)) ([]T, error) {
	v, err := cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := next(ctx)
		if err != nil {
			return nil, err
		}
		return append([]T(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]T)
	return append([]T{}, items...), nil
}

func cloneGames(in map[string]game.Record) map[string]game.Record {
	out := make(map[string]game.Record, len(in))
	for id, rec := range in {
		out[id], _ = cloneValue(rec).(map[string]any)
	}
	return out
}

// cloneValue deep-copies a decoded JSON value.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
