package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/soccer-coach/internal/domain/game"
	"github.com/riskibarqy/soccer-coach/internal/domain/player"
	"github.com/riskibarqy/soccer-coach/internal/domain/season"
	"github.com/riskibarqy/soccer-coach/internal/domain/settings"
	"github.com/riskibarqy/soccer-coach/internal/domain/storage"
	"github.com/riskibarqy/soccer-coach/internal/domain/tournament"
	"github.com/sourcegraph/conc/pool"
)

// ClearAllData wipes every collection on every configured backend. Each
// backend is swept independently; the call reports false when any step
// failed, even if the rest went through. The mirror is reset either way.
func (s *PersistenceStore) ClearAllData(ctx context.Context) bool {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceStore.ClearAllData")
	defer span.End()

	sweep := pool.New().WithErrors()
	for _, provider := range append([]storage.Provider{s.provider}, s.extra...) {
		sweep.Go(func() error {
			if err := clearProvider(ctx, provider); err != nil {
				return fmt.Errorf("clear %s: %w", provider.ProviderName(), err)
			}
			return nil
		})
	}
	err := sweep.Wait()

	s.mu.Lock()
	s.games = make(map[string]game.AppState)
	s.roster = listSlot[player.Player]{items: []player.Player{}, loaded: err == nil}
	s.seasons = listSlot[season.Season]{items: []season.Season{}, loaded: err == nil}
	s.tournaments = listSlot[tournament.Tournament]{items: []tournament.Tournament{}, loaded: err == nil}
	s.settings = settings.AppSettings{}
	s.mu.Unlock()

	if err != nil {
		return s.fail(ctx, "ClearAllData", err)
	}
	s.logger.InfoContext(ctx, "all data cleared", "backends", 1+len(s.extra))
	return s.succeed()
}

func clearProvider(ctx context.Context, p storage.Provider) error {
	var errs []error

	games, err := p.GetSavedGames(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("list games: %w", err))
	}
	for gameID := range games {
		if _, err := p.DeleteSavedGame(ctx, gameID); err != nil {
			errs = append(errs, fmt.Errorf("delete game %s: %w", gameID, err))
		}
	}

	if ok, err := p.SaveMasterRoster(ctx, []player.Player{}); err != nil {
		errs = append(errs, fmt.Errorf("clear roster: %w", err))
	} else if !ok {
		errs = append(errs, fmt.Errorf("clear roster: %w", errRosterRejected))
	}
	if err := p.SaveSeasons(ctx, []season.Season{}); err != nil {
		errs = append(errs, fmt.Errorf("clear seasons: %w", err))
	}
	if err := p.SaveTournaments(ctx, []tournament.Tournament{}); err != nil {
		errs = append(errs, fmt.Errorf("clear tournaments: %w", err))
	}
	if err := p.DeleteGenericData(ctx, settings.StorageKey); err != nil {
		errs = append(errs, fmt.Errorf("clear settings: %w", err))
	}

	return errors.Join(errs...)
}
