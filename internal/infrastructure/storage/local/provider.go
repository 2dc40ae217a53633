// Package local is the device-local storage backend. Each collection is one
// JSON blob in a key/value store and every write rewrites the whole blob.
package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/riskibarqy/soccer-coach/internal/domain/game"
	"github.com/riskibarqy/soccer-coach/internal/domain/player"
	"github.com/riskibarqy/soccer-coach/internal/domain/season"
	"github.com/riskibarqy/soccer-coach/internal/domain/storage"
	"github.com/riskibarqy/soccer-coach/internal/domain/tournament"
	"github.com/riskibarqy/soccer-coach/internal/domain/typeguard"
	"github.com/riskibarqy/soccer-coach/internal/platform/kv"
	"github.com/riskibarqy/soccer-coach/internal/platform/logging"
	"github.com/riskibarqy/soccer-coach/internal/platform/safejson"
	"github.com/valyala/bytebufferpool"
)

// ErrCorruptBlob is returned by writes that would have to replace a stored
// blob they cannot parse.
var ErrCorruptBlob = errors.New("stored blob is not valid JSON")

type Provider struct {
	store  kv.Store
	logger *logging.Logger

	// serializes read-modify-write of the games blob
	gamesMu sync.Mutex
}

var _ storage.Provider = (*Provider)(nil)

func NewProvider(store kv.Store, logger *logging.Logger) *Provider {
	if logger == nil {
		logger = logging.Default()
	}
	return &Provider{store: store, logger: logger.Named("local_storage")}
}

func (p *Provider) ProviderName() string {
	return storage.ProviderLocalStorage
}

func (p *Provider) GetSavedGames(ctx context.Context) (map[string]game.Record, error) {
	raw, err := p.readGames(ctx)
	if errors.Is(err, ErrCorruptBlob) {
		p.logger.WarnContext(ctx, "saved games blob is corrupt, reading as empty", "key", storage.KeySavedGames, "error", err)
		raw = map[string]any{}
	} else if err != nil {
		return nil, err
	}

	out := make(map[string]game.Record, len(raw))
	for gameID, value := range raw {
		rec, ok := value.(map[string]any)
		if !ok {
			p.logger.WarnContext(ctx, "skipping saved game that is not an object", "game_id", gameID)
			continue
		}
		out[gameID] = rec
	}
	return out, nil
}

func (p *Provider) SaveSavedGame(ctx context.Context, gameID string, state game.AppState) error {
	if gameID == "" {
		return fmt.Errorf("game id is required")
	}

	p.gamesMu.Lock()
	defer p.gamesMu.Unlock()

	games, err := p.readGames(ctx)
	if err != nil {
		return err
	}
	games[gameID] = state.Normalize()
	return p.write(ctx, storage.KeySavedGames, games)
}

func (p *Provider) DeleteSavedGame(ctx context.Context, gameID string) (bool, error) {
	p.gamesMu.Lock()
	defer p.gamesMu.Unlock()

	games, err := p.readGames(ctx)
	if err != nil {
		return false, err
	}
	if _, ok := games[gameID]; !ok {
		return false, nil
	}
	delete(games, gameID)
	if err := p.write(ctx, storage.KeySavedGames, games); err != nil {
		return false, err
	}
	return true, nil
}

// readGames returns the stored games blob. Only a missing or blank key reads
// as empty; access errors and unparseable blobs are returned so a rewrite
// never replaces games it could not see.
func (p *Provider) readGames(ctx context.Context) (map[string]any, error) {
	raw, ok, err := p.store.GetItem(ctx, storage.KeySavedGames)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", storage.KeySavedGames, err)
	}
	if !ok || len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}

	res := safejson.Parse[map[string]any](raw)
	if !res.Success {
		return nil, fmt.Errorf("%w: %s: %s", ErrCorruptBlob, storage.KeySavedGames, res.Error)
	}
	if res.Data == nil {
		return map[string]any{}, nil
	}
	return res.Data, nil
}

func (p *Provider) GetPlayers(ctx context.Context) ([]player.Player, error) {
	raw := safejson.StorageGet[any](ctx, p.store, storage.KeyMasterRoster, []any{}, p.logger)
	return typeguard.ValidateWithFallback(raw, typeguard.ValidatePlayers, []player.Player{}, storage.KeyMasterRoster, p.logger), nil
}

func (p *Provider) SaveMasterRoster(ctx context.Context, players []player.Player) (bool, error) {
	if players == nil {
		players = []player.Player{}
	}
	if err := p.write(ctx, storage.KeyMasterRoster, players); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Provider) GetSeasons(ctx context.Context) ([]season.Season, error) {
	raw := safejson.StorageGet[any](ctx, p.store, storage.KeySeasons, []any{}, p.logger)
	return typeguard.ValidateWithFallback(raw, typeguard.ValidateSeasons, []season.Season{}, storage.KeySeasons, p.logger), nil
}

func (p *Provider) SaveSeasons(ctx context.Context, seasons []season.Season) error {
	if seasons == nil {
		seasons = []season.Season{}
	}
	return p.write(ctx, storage.KeySeasons, seasons)
}

func (p *Provider) GetTournaments(ctx context.Context) ([]tournament.Tournament, error) {
	raw := safejson.StorageGet[any](ctx, p.store, storage.KeyTournaments, []any{}, p.logger)
	return typeguard.ValidateWithFallback(raw, typeguard.ValidateTournaments, []tournament.Tournament{}, storage.KeyTournaments, p.logger), nil
}

func (p *Provider) SaveTournaments(ctx context.Context, tournaments []tournament.Tournament) error {
	if tournaments == nil {
		tournaments = []tournament.Tournament{}
	}
	return p.write(ctx, storage.KeyTournaments, tournaments)
}

func (p *Provider) GetGenericData(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok, err := p.store.GetItem(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return value, ok, nil
}

func (p *Provider) SetGenericData(ctx context.Context, key string, value []byte) error {
	if err := p.store.SetItem(ctx, key, value); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (p *Provider) DeleteGenericData(ctx context.Context, key string) error {
	if err := p.store.RemoveItem(ctx, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (p *Provider) write(ctx context.Context, key string, value any) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := safejson.Encode(buf, value); err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := p.store.SetItem(ctx, key, buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
