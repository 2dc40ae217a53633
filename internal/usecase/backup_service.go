package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/soccer-coach/internal/domain/game"
	"github.com/riskibarqy/soccer-coach/internal/domain/player"
	"github.com/riskibarqy/soccer-coach/internal/domain/season"
	"github.com/riskibarqy/soccer-coach/internal/domain/settings"
	"github.com/riskibarqy/soccer-coach/internal/domain/storage"
	"github.com/riskibarqy/soccer-coach/internal/domain/tournament"
	"github.com/riskibarqy/soccer-coach/internal/domain/typeguard"
	"github.com/riskibarqy/soccer-coach/internal/platform/logging"
	"github.com/riskibarqy/soccer-coach/internal/platform/safejson"
)

const (
	BackupSchemaVersion     = 1
	defaultImportMaxWorkers = 4
)

type backupMeta struct {
	Schema     int    `json:"schema"`
	ExportedAt string `json:"exportedAt"`
}

type backupEnvelope struct {
	Meta         backupMeta     `json:"meta"`
	LocalStorage map[string]any `json:"localStorage"`
}

type ImportResult struct {
	GamesImported       int      `json:"gamesImported"`
	GamesFailed         int      `json:"gamesFailed"`
	FailedGameIDs       []string `json:"failedGameIds,omitempty"`
	PlayersImported     int      `json:"playersImported"`
	SeasonsImported     int      `json:"seasonsImported"`
	TournamentsImported int      `json:"tournamentsImported"`
	SettingsImported    bool     `json:"settingsImported"`
}

// backupPayload is a validated backup. Nil sections were absent.
type backupPayload struct {
	games       map[string]game.AppState
	roster      []player.Player
	seasons     []season.Season
	tournaments []tournament.Tournament
	settings    *settings.AppSettings
}

type BackupService struct {
	store      *PersistenceStore
	component  *ComponentSafety
	maxWorkers int
	now        func() time.Time
	logger     *logging.Logger
}

func NewBackupService(store *PersistenceStore, safety *MigrationSafety, maxWorkers int, logger *logging.Logger) *BackupService {
	if logger == nil {
		logger = logging.Default()
	}
	if maxWorkers <= 0 {
		maxWorkers = defaultImportMaxWorkers
	}
	return &BackupService{
		store:      store,
		component:  safety.Component(ComponentBackupImport),
		maxWorkers: maxWorkers,
		now:        time.Now,
		logger:     logger.Named("backup"),
	}
}

// Export reloads every collection and serializes it under the same keys the
// local backend uses.
func (b *BackupService) Export(ctx context.Context) ([]byte, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BackupService.Export")
	defer span.End()

	if !b.store.LoadAll(ctx) {
		return nil, fmt.Errorf("%w: %s", ErrDependencyUnavailable, b.store.LastError())
	}
	snap := b.store.Snapshot()

	games := make(map[string]game.AppState, len(snap.Games))
	for gameID, state := range snap.Games {
		games[gameID] = state.Normalize()
	}

	out, err := safejson.Marshal(backupEnvelope{
		Meta: backupMeta{
			Schema:     BackupSchemaVersion,
			ExportedAt: b.now().UTC().Format(time.RFC3339),
		},
		LocalStorage: map[string]any{
			storage.KeySavedGames:   games,
			storage.KeyMasterRoster: snap.Roster,
			storage.KeySeasons:      snap.Seasons,
			storage.KeyTournaments:  snap.Tournaments,
			settings.StorageKey:     snap.Settings,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}

	b.logger.InfoContext(ctx, "backup exported", "games", len(games), "players", len(snap.Roster))
	return out, nil
}

// Import restores a backup. The envelope and every section are validated
// before anything is written. Collections are replaced in one transaction;
// games are saved one by one and a failed game does not stop the others.
func (b *BackupService) Import(ctx context.Context, data []byte) (ImportResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BackupService.Import")
	defer span.End()

	parsed := safejson.ParseWithValidator(data, decodeBackup)
	if !parsed.Success {
		return ImportResult{}, fmt.Errorf("%w: %s", ErrInvalidInput, parsed.Error)
	}
	payload := parsed.Data

	if !b.store.ReplaceCollections(ctx, CollectionSet{
		Roster:      payload.roster,
		Seasons:     payload.seasons,
		Tournaments: payload.tournaments,
		Settings:    payload.settings,
	}) {
		return ImportResult{}, storeError(b.store, ErrDependencyUnavailable)
	}

	result := ImportResult{
		PlayersImported:     len(payload.roster),
		SeasonsImported:     len(payload.seasons),
		TournamentsImported: len(payload.tournaments),
		SettingsImported:    payload.settings != nil,
	}

	gameIDs := make([]string, 0, len(payload.games))
	for gameID := range payload.games {
		gameIDs = append(gameIDs, gameID)
	}
	sort.Strings(gameIDs)

	var failed []string
	sequential := func(ctx context.Context) error {
		failed = b.importSequential(ctx, gameIDs, payload.games)
		return nil
	}
	parallel := func(ctx context.Context) error {
		var err error
		failed, err = b.importParallel(ctx, gameIDs, payload.games)
		return err
	}

	triedParallel := !b.component.UseLegacy()
	if err := b.component.Route(ctx, sequential, parallel); err != nil {
		if !triedParallel {
			return result, err
		}
		b.logger.WarnContext(ctx, "parallel import failed, importing sequentially", "error", err)
		failed = b.importSequential(ctx, gameIDs, payload.games)
	}

	sort.Strings(failed)
	result.FailedGameIDs = failed
	result.GamesFailed = len(failed)
	result.GamesImported = len(gameIDs) - len(failed)

	b.logger.InfoContext(ctx, "backup imported",
		"games", result.GamesImported,
		"games_failed", result.GamesFailed,
		"players", result.PlayersImported,
	)
	return result, nil
}

func (b *BackupService) importSequential(ctx context.Context, gameIDs []string, games map[string]game.AppState) []string {
	var failed []string
	for _, gameID := range gameIDs {
		if !b.store.SaveGame(ctx, gameID, games[gameID]) {
			failed = append(failed, gameID)
		}
	}
	return failed
}

func (b *BackupService) importParallel(ctx context.Context, gameIDs []string, games map[string]game.AppState) ([]string, error) {
	if len(gameIDs) == 0 {
		return nil, nil
	}

	pool, err := ants.NewPool(normalizeImportWorkerCount(b.maxWorkers, len(gameIDs)))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	failures := make(chan string, len(gameIDs))
	var attempted atomic.Int32

	var workers sync.WaitGroup
	for _, gameID := range gameIDs {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			attempted.Add(1)
			if !b.store.SaveGame(ctx, gameID, games[gameID]) {
				failures <- gameID
			}
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(failures)

	failed := make([]string, 0, len(failures))
	for gameID := range failures {
		failed = append(failed, gameID)
	}

	b.logger.Debug("parallel import finished", "attempted", attempted.Load(), "failed", len(failed))
	return failed, nil
}

func normalizeImportWorkerCount(value int, taskCount int) int {
	if taskCount <= 0 {
		return 1
	}
	if value <= 0 {
		value = 1
	}
	if value > taskCount {
		value = taskCount
	}
	return value
}

func decodeBackup(v any) (backupPayload, error) {
	root, ok := v.(map[string]any)
	if !ok {
		return backupPayload{}, errors.New("backup must be an object")
	}
	meta, ok := root["meta"].(map[string]any)
	if !ok {
		return backupPayload{}, errors.New("backup is missing meta")
	}
	if schema, ok := meta["schema"].(float64); !ok || int(schema) != BackupSchemaVersion {
		return backupPayload{}, fmt.Errorf("unsupported backup schema: %v", meta["schema"])
	}
	data, ok := root["localStorage"].(map[string]any)
	if !ok {
		return backupPayload{}, errors.New("backup is missing localStorage")
	}

	var out backupPayload
	if raw, present := data[storage.KeySavedGames]; present {
		res := typeguard.ValidateSavedGamesCollection(raw)
		if !res.IsValid {
			return backupPayload{}, errors.New(res.Error)
		}
		out.games = res.Data
	}
	if raw, present := data[storage.KeyMasterRoster]; present {
		res := typeguard.ValidatePlayers(raw)
		if !res.IsValid {
			return backupPayload{}, errors.New(res.Error)
		}
		out.roster = nonNil(res.Data)
	}
	if raw, present := data[storage.KeySeasons]; present {
		res := typeguard.ValidateSeasons(raw)
		if !res.IsValid {
			return backupPayload{}, errors.New(res.Error)
		}
		out.seasons = nonNil(res.Data)
	}
	if raw, present := data[storage.KeyTournaments]; present {
		res := typeguard.ValidateTournaments(raw)
		if !res.IsValid {
			return backupPayload{}, errors.New(res.Error)
		}
		out.tournaments = nonNil(res.Data)
	}
	if raw, present := data[settings.StorageKey]; present {
		if !typeguard.IsRecord(raw) {
			return backupPayload{}, errors.New("settings must be an object")
		}
		encoded, err := safejson.Marshal(raw)
		if err != nil {
			return backupPayload{}, fmt.Errorf("settings: %w", err)
		}
		res := safejson.Parse[settings.AppSettings](encoded)
		if !res.Success {
			return backupPayload{}, errors.New(res.Error)
		}
		out.settings = &res.Data
	}
	return out, nil
}
