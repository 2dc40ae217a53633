// Package postgres is the remote storage backend. Games are stored as one
// jsonb document per row so changed fields can be merged in place.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/soccer-coach/internal/domain/game"
	"github.com/riskibarqy/soccer-coach/internal/domain/player"
	"github.com/riskibarqy/soccer-coach/internal/domain/season"
	"github.com/riskibarqy/soccer-coach/internal/domain/storage"
	"github.com/riskibarqy/soccer-coach/internal/domain/tournament"
	"github.com/riskibarqy/soccer-coach/internal/domain/typeguard"
	"github.com/riskibarqy/soccer-coach/internal/platform/logging"
	qb "github.com/riskibarqy/soccer-coach/internal/platform/querybuilder"
	"github.com/riskibarqy/soccer-coach/internal/platform/resilience"
	"github.com/riskibarqy/soccer-coach/internal/platform/safejson"
)

type Options struct {
	// Name is reported by ProviderName: "postgres" or "supabase".
	Name           string
	OwnerID        string
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Provider struct {
	db      *sqlx.DB
	name    string
	ownerID string
	breaker *resilience.CircuitBreaker
	logger  *logging.Logger
}

var (
	_ storage.Provider = (*Provider)(nil)
	_ storage.Patcher  = (*Provider)(nil)
)

func NewProvider(db *sqlx.DB, opts Options, logger *logging.Logger) (*Provider, error) {
	if db == nil {
		return nil, fmt.Errorf("postgres provider requires a database handle")
	}
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = storage.ProviderPostgres
	}
	if !storage.IsRemote(name) {
		return nil, fmt.Errorf("invalid remote provider name %q", name)
	}
	ownerID := strings.TrimSpace(opts.OwnerID)
	if ownerID == "" {
		return nil, fmt.Errorf("postgres provider requires an owner id")
	}
	if logger == nil {
		logger = logging.Default()
	}

	p := &Provider{
		db:      db,
		name:    name,
		ownerID: ownerID,
		logger:  logger.Named("postgres_storage"),
	}
	if opts.CircuitBreaker.Enabled {
		cfg := resilience.NormalizeCircuitBreakerConfig(opts.CircuitBreaker)
		p.breaker = resilience.NewCircuitBreaker(cfg.FailureThreshold, cfg.OpenTimeout, cfg.HalfOpenMaxReq)
	}
	return p, nil
}

func (p *Provider) ProviderName() string {
	return p.name
}

func (p *Provider) GetSavedGames(ctx context.Context) (map[string]game.Record, error) {
	query, args, err := qb.Select("game_id", "state").From(tableSavedGames).
		Where(qb.Eq("owner_id", p.ownerID)).
		OrderBy("game_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select saved games query: %w", err)
	}

	var rows []savedGameRow
	err = p.guard(func() error {
		return p.db.SelectContext(ctx, &rows, query, args...)
	})
	if err != nil {
		return nil, crerr.Wrap(err, "select saved games")
	}

	out := make(map[string]game.Record, len(rows))
	for _, row := range rows {
		parsed := safejson.Parse[map[string]any](row.State)
		if !parsed.Success {
			p.logger.WarnContext(ctx, "skipping unreadable saved game", "game_id", row.GameID, "reason", parsed.Error)
			continue
		}
		out[row.GameID] = parsed.Data
	}
	return out, nil
}

func (p *Provider) SaveSavedGame(ctx context.Context, gameID string, state game.AppState) error {
	if strings.TrimSpace(gameID) == "" {
		return fmt.Errorf("game id is required")
	}
	raw, err := sonic.Marshal(state.Normalize())
	if err != nil {
		return crerr.Wrapf(err, "encode game %s", gameID)
	}

	query, args, err := qb.UpsertModel(tableSavedGames, savedGameTableModel{
		OwnerID: p.ownerID,
		GameID:  gameID,
		State:   string(raw),
	}, []string{"owner_id", "game_id"}, "updated_at = NOW()")
	if err != nil {
		return fmt.Errorf("build upsert saved game query: %w", err)
	}

	err = p.guard(func() error {
		_, execErr := p.db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		return crerr.Wrapf(err, "upsert game %s", gameID)
	}
	return nil
}

// PatchSavedGame merges fields into the stored document with jsonb ||, so
// only the top-level keys present in fields are replaced.
func (p *Provider) PatchSavedGame(ctx context.Context, gameID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	raw, err := sonic.Marshal(fields)
	if err != nil {
		return crerr.Wrapf(err, "encode patch for game %s", gameID)
	}

	query, args, err := qb.Update(tableSavedGames).
		SetExpr("state", "state || ?::jsonb", string(raw)).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("owner_id", p.ownerID), qb.Eq("game_id", gameID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build patch saved game query: %w", err)
	}

	err = p.guard(func() error {
		res, execErr := p.db.ExecContext(ctx, query, args...)
		if execErr != nil {
			return execErr
		}
		affected, execErr := res.RowsAffected()
		if execErr != nil {
			return execErr
		}
		if affected == 0 {
			return game.ErrGameNotFound
		}
		return nil
	})
	if err != nil {
		return crerr.Wrapf(err, "patch game %s", gameID)
	}
	return nil
}

func (p *Provider) DeleteSavedGame(ctx context.Context, gameID string) (bool, error) {
	query, args, err := qb.DeleteFrom(tableSavedGames).
		Where(qb.Eq("owner_id", p.ownerID), qb.Eq("game_id", gameID)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build delete saved game query: %w", err)
	}

	var affected int64
	err = p.guard(func() error {
		res, execErr := p.db.ExecContext(ctx, query, args...)
		if execErr != nil {
			return execErr
		}
		affected, execErr = res.RowsAffected()
		return execErr
	})
	if err != nil {
		return false, crerr.Wrapf(err, "delete game %s", gameID)
	}
	return affected > 0, nil
}

func (p *Provider) GetPlayers(ctx context.Context) ([]player.Player, error) {
	return loadCollection(ctx, p, tablePlayers, typeguard.ValidatePlayer)
}

func (p *Provider) SaveMasterRoster(ctx context.Context, players []player.Player) (bool, error) {
	err := replaceCollection(ctx, p, tablePlayers, players, func(pl player.Player) string { return pl.ID })
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Provider) GetSeasons(ctx context.Context) ([]season.Season, error) {
	return loadCollection(ctx, p, tableSeasons, typeguard.ValidateSeason)
}

func (p *Provider) SaveSeasons(ctx context.Context, seasons []season.Season) error {
	return replaceCollection(ctx, p, tableSeasons, seasons, func(s season.Season) string { return s.ID })
}

func (p *Provider) GetTournaments(ctx context.Context) ([]tournament.Tournament, error) {
	return loadCollection(ctx, p, tableTournaments, typeguard.ValidateTournament)
}

func (p *Provider) SaveTournaments(ctx context.Context, tournaments []tournament.Tournament) error {
	return replaceCollection(ctx, p, tableTournaments, tournaments, func(t tournament.Tournament) string { return t.ID })
}

func (p *Provider) GetGenericData(ctx context.Context, key string) ([]byte, bool, error) {
	query, args, err := qb.Select("value").From(tableAppData).
		Where(qb.Eq("owner_id", p.ownerID), qb.Eq("key", key)).
		ToSQL()
	if err != nil {
		return nil, false, fmt.Errorf("build get app data query: %w", err)
	}

	var value string
	err = p.guard(func() error {
		return p.db.GetContext(ctx, &value, query, args...)
	})
	if isNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, crerr.Wrapf(err, "get app data %s", key)
	}
	return []byte(value), true, nil
}

func (p *Provider) SetGenericData(ctx context.Context, key string, value []byte) error {
	query, args, err := qb.UpsertModel(tableAppData, appDataTableModel{
		OwnerID: p.ownerID,
		Key:     key,
		Value:   string(value),
	}, []string{"owner_id", "key"}, "updated_at = NOW()")
	if err != nil {
		return fmt.Errorf("build upsert app data query: %w", err)
	}

	err = p.guard(func() error {
		_, execErr := p.db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		return crerr.Wrapf(err, "set app data %s", key)
	}
	return nil
}

func (p *Provider) DeleteGenericData(ctx context.Context, key string) error {
	query, args, err := qb.DeleteFrom(tableAppData).
		Where(qb.Eq("owner_id", p.ownerID), qb.Eq("key", key)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete app data query: %w", err)
	}

	err = p.guard(func() error {
		_, execErr := p.db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		return crerr.Wrapf(err, "delete app data %s", key)
	}
	return nil
}

// CircuitState exposes the breaker state for health reporting.
func (p *Provider) CircuitState() resilience.CircuitState {
	if p.breaker == nil {
		return resilience.CircuitStateClosed
	}
	return p.breaker.State()
}

func (p *Provider) guard(fn func() error) error {
	if p.breaker == nil {
		return fn()
	}
	return p.breaker.Call(fn, isCircuitFailure)
}

func isCircuitFailure(err error) bool {
	return !errors.Is(err, context.Canceled) &&
		!errors.Is(err, game.ErrGameNotFound) &&
		!isNotFound(err)
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
