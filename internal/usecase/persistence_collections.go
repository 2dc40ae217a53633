package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/soccer-coach/internal/domain/player"
	"github.com/riskibarqy/soccer-coach/internal/domain/season"
	"github.com/riskibarqy/soccer-coach/internal/domain/settings"
	"github.com/riskibarqy/soccer-coach/internal/domain/tournament"
	"github.com/riskibarqy/soccer-coach/internal/platform/atomicsave"
	"github.com/riskibarqy/soccer-coach/internal/platform/safejson"
)

var errRosterRejected = errors.New("backend rejected the roster")

// CollectionSet replaces whole collections in one transaction. Nil fields
// are left untouched; an empty slice clears the collection.
type CollectionSet struct {
	Roster      []player.Player
	Seasons     []season.Season
	Tournaments []tournament.Tournament
	Settings    *settings.AppSettings
}

func (s *PersistenceStore) LoadMasterRoster(ctx context.Context) bool {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceStore.LoadMasterRoster")
	defer span.End()

	if err := loadList(ctx, s, &s.roster, s.provider.GetPlayers); err != nil {
		return s.fail(ctx, "LoadMasterRoster", err)
	}
	return s.succeed()
}

func (s *PersistenceStore) SetMasterRoster(ctx context.Context, players []player.Player) bool {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceStore.SetMasterRoster")
	defer span.End()

	if err := s.replaceCollections(ctx, CollectionSet{Roster: nonNil(players)}); err != nil {
		return s.fail(ctx, "SetMasterRoster", err)
	}
	return s.succeed()
}

// AddPlayerToRoster appends p, assigning an id when p has none.
func (s *PersistenceStore) AddPlayerToRoster(ctx context.Context, p player.Player) (player.Player, bool) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceStore.AddPlayerToRoster")
	defer span.End()

	current, err := currentList(ctx, s, &s.roster, s.provider.GetPlayers)
	if err != nil {
		return player.Player{}, s.fail(ctx, "AddPlayerToRoster", err)
	}

	if strings.TrimSpace(p.ID) == "" {
		p.ID = s.ids.NewID("player")
	}
	if player.IndexOf(current, p.ID) >= 0 {
		return player.Player{}, s.fail(ctx, "AddPlayerToRoster", fmt.Errorf("%w: player %s", ErrConflict, p.ID))
	}

	if err := s.commitRoster(ctx, current, append(current, p)); err != nil {
		return player.Player{}, s.fail(ctx, "AddPlayerToRoster", err)
	}
	return p, s.succeed()
}

func (s *PersistenceStore) UpdatePlayerInRoster(ctx context.Context, playerID string, update player.Update) (player.Player, bool) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceStore.UpdatePlayerInRoster")
	defer span.End()

	current, err := currentList(ctx, s, &s.roster, s.provider.GetPlayers)
	if err != nil {
		return player.Player{}, s.fail(ctx, "UpdatePlayerInRoster", err)
	}

	idx := player.IndexOf(current, playerID)
	if idx < 0 {
		return player.Player{}, s.fail(ctx, "UpdatePlayerInRoster", fmt.Errorf("%w: player %s", ErrNotFound, playerID))
	}

	next := append([]player.Player(nil), current...)
	next[idx] = next[idx].Apply(update)
	if err := s.commitRoster(ctx, current, next); err != nil {
		return player.Player{}, s.fail(ctx, "UpdatePlayerInRoster", err)
	}
	return next[idx], s.succeed()
}

func (s *PersistenceStore) RemovePlayerFromRoster(ctx context.Context, playerID string) bool {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceStore.RemovePlayerFromRoster")
	defer span.End()

	current, err := currentList(ctx, s, &s.roster, s.provider.GetPlayers)
	if err != nil {
		return s.fail(ctx, "RemovePlayerFromRoster", err)
	}

	idx := player.IndexOf(current, playerID)
	if idx < 0 {
		return s.fail(ctx, "RemovePlayerFromRoster", fmt.Errorf("%w: player %s", ErrNotFound, playerID))
	}

	next := make([]player.Player, 0, len(current)-1)
	next = append(next, current[:idx]...)
	next = append(next, current[idx+1:]...)
	if err := s.commitRoster(ctx, current, next); err != nil {
		return s.fail(ctx, "RemovePlayerFromRoster", err)
	}
	return s.succeed()
}

func (s *PersistenceStore) GetMasterRoster() []player.Player {
	return mirrorList(s, &s.roster)
}

func (s *PersistenceStore) LoadSeasons(ctx context.Context) bool {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceStore.LoadSeasons")
	defer span.End()

	if err := loadList(ctx, s, &s.seasons, s.provider.GetSeasons); err != nil {
		return s.fail(ctx, "LoadSeasons", err)
	}
	return s.succeed()
}

func (s *PersistenceStore) AddSeason(ctx context.Context, item season.Season) (season.Season, bool) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceStore.AddSeason")
	defer span.End()

	if strings.TrimSpace(item.ID) == "" {
		item.ID = s.ids.NewID("season")
	}
	if err := s.editSeasons(ctx, func(items []season.Season) ([]season.Season, error) {
		return addNamed(items, item, seasonID, seasonName)
	}); err != nil {
		return season.Season{}, s.fail(ctx, "AddSeason", err)
	}
	return item, s.succeed()
}

func (s *PersistenceStore) UpdateSeason(ctx context.Context, item season.Season) bool {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceStore.UpdateSeason")
	defer span.End()

	if err := s.editSeasons(ctx, func(items []season.Season) ([]season.Season, error) {
		return updateNamed(items, item, seasonID, seasonName)
	}); err != nil {
		return s.fail(ctx, "UpdateSeason", err)
	}
	return s.succeed()
}

func (s *PersistenceStore) DeleteSeason(ctx context.Context, id string) bool {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceStore.DeleteSeason")
	defer span.End()

	if err := s.editSeasons(ctx, func(items []season.Season) ([]season.Season, error) {
		return deleteNamed(items, id, seasonID)
	}); err != nil {
		return s.fail(ctx, "DeleteSeason", err)
	}
	return s.succeed()
}

func (s *PersistenceStore) GetSeasons() []season.Season {
	return mirrorList(s, &s.seasons)
}

func (s *PersistenceStore) LoadTournaments(ctx context.Context) bool {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceStore.LoadTournaments")
	defer span.End()

	if err := loadList(ctx, s, &s.tournaments, s.provider.GetTournaments); err != nil {
		return s.fail(ctx, "LoadTournaments", err)
	}
	return s.succeed()
}

func (s *PersistenceStore) AddTournament(ctx context.Context, item tournament.Tournament) (tournament.Tournament, bool) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceStore.AddTournament")
	defer span.End()

	if strings.TrimSpace(item.ID) == "" {
		item.ID = s.ids.NewID("tournament")
	}
	if err := s.editTournaments(ctx, func(items []tournament.Tournament) ([]tournament.Tournament, error) {
		return addNamed(items, item, tournamentID, tournamentName)
	}); err != nil {
		return tournament.Tournament{}, s.fail(ctx, "AddTournament", err)
	}
	return item, s.succeed()
}

func (s *PersistenceStore) UpdateTournament(ctx context.Context, item tournament.Tournament) bool {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceStore.UpdateTournament")
	defer span.End()

	if err := s.editTournaments(ctx, func(items []tournament.Tournament) ([]tournament.Tournament, error) {
		return updateNamed(items, item, tournamentID, tournamentName)
	}); err != nil {
		return s.fail(ctx, "UpdateTournament", err)
	}
	return s.succeed()
}

func (s *PersistenceStore) DeleteTournament(ctx context.Context, id string) bool {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceStore.DeleteTournament")
	defer span.End()

	if err := s.editTournaments(ctx, func(items []tournament.Tournament) ([]tournament.Tournament, error) {
		return deleteNamed(items, id, tournamentID)
	}); err != nil {
		return s.fail(ctx, "DeleteTournament", err)
	}
	return s.succeed()
}

func (s *PersistenceStore) GetTournaments() []tournament.Tournament {
	return mirrorList(s, &s.tournaments)
}

// LoadSettings reads the settings blob. A missing or unreadable blob leaves
// the defaults in place.
func (s *PersistenceStore) LoadSettings(ctx context.Context) bool {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceStore.LoadSettings")
	defer span.End()

	raw, exists, err := s.readSettings(ctx)
	if err != nil {
		return s.fail(ctx, "LoadSettings", err)
	}

	loaded := settings.AppSettings{}
	if exists {
		res := safejson.Parse(raw, settings.AppSettings{})
		if !res.Success {
			s.logger.WarnContext(ctx, "stored settings are unreadable, using defaults", "reason", res.Error)
		}
		loaded = res.Data
	}

	s.mu.Lock()
	s.settings = loaded
	s.mu.Unlock()
	return s.succeed()
}

func (s *PersistenceStore) SaveSettings(ctx context.Context, next settings.AppSettings) bool {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceStore.SaveSettings")
	defer span.End()

	if err := s.replaceCollections(ctx, CollectionSet{Settings: &next}); err != nil {
		return s.fail(ctx, "SaveSettings", err)
	}
	return s.succeed()
}

func (s *PersistenceStore) GetSettings() settings.AppSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// ReplaceCollections writes every non-nil part of set in one transaction.
// If a later write fails, the earlier ones are restored.
func (s *PersistenceStore) ReplaceCollections(ctx context.Context, set CollectionSet) bool {
	ctx, span := startUsecaseSpan(ctx, "usecase.PersistenceStore.ReplaceCollections")
	defer span.End()

	if err := s.replaceCollections(ctx, set); err != nil {
		return s.fail(ctx, "ReplaceCollections", err)
	}
	return s.succeed()
}

func (s *PersistenceStore) replaceCollections(ctx context.Context, set CollectionSet) error {
	var ops []atomicsave.Operation

	if set.Roster != nil {
		if err := validatePlayers(set.Roster); err != nil {
			return err
		}
		previous, err := currentList(ctx, s, &s.roster, s.provider.GetPlayers)
		if err != nil {
			return err
		}
		ops = append(ops, listOperations(s, &s.roster, "roster", previous, set.Roster, s.saveRoster)...)
	}
	if set.Seasons != nil {
		if err := validateNamed(set.Seasons, seasonID, seasonName, season.Season.Validate); err != nil {
			return err
		}
		previous, err := currentList(ctx, s, &s.seasons, s.provider.GetSeasons)
		if err != nil {
			return err
		}
		ops = append(ops, listOperations(s, &s.seasons, "seasons", previous, set.Seasons, s.provider.SaveSeasons)...)
	}
	if set.Tournaments != nil {
		if err := validateNamed(set.Tournaments, tournamentID, tournamentName, tournament.Tournament.Validate); err != nil {
			return err
		}
		previous, err := currentList(ctx, s, &s.tournaments, s.provider.GetTournaments)
		if err != nil {
			return err
		}
		ops = append(ops, listOperations(s, &s.tournaments, "tournaments", previous, set.Tournaments, s.provider.SaveTournaments)...)
	}
	if set.Settings != nil {
		settingsOps, err := s.settingsOperations(ctx, *set.Settings)
		if err != nil {
			return err
		}
		ops = append(ops, settingsOps...)
	}

	return atomicsave.Execute(ctx, ops, s.logger).Err()
}

func (s *PersistenceStore) commitRoster(ctx context.Context, previous, next []player.Player) error {
	if err := validatePlayers(next); err != nil {
		return err
	}
	ops := listOperations(s, &s.roster, "roster", previous, next, s.saveRoster)
	return atomicsave.Execute(ctx, ops, s.logger).Err()
}

func (s *PersistenceStore) saveRoster(ctx context.Context, players []player.Player) error {
	ok, err := s.provider.SaveMasterRoster(ctx, players)
	if err != nil {
		return err
	}
	if !ok {
		return errRosterRejected
	}
	return nil
}

func (s *PersistenceStore) editSeasons(ctx context.Context, edit func([]season.Season) ([]season.Season, error)) error {
	current, err := currentList(ctx, s, &s.seasons, s.provider.GetSeasons)
	if err != nil {
		return err
	}
	next, err := edit(current)
	if err != nil {
		return err
	}
	if err := validateNamed(next, seasonID, seasonName, season.Season.Validate); err != nil {
		return err
	}
	ops := listOperations(s, &s.seasons, "seasons", current, next, s.provider.SaveSeasons)
	return atomicsave.Execute(ctx, ops, s.logger).Err()
}

func (s *PersistenceStore) editTournaments(ctx context.Context, edit func([]tournament.Tournament) ([]tournament.Tournament, error)) error {
	current, err := currentList(ctx, s, &s.tournaments, s.provider.GetTournaments)
	if err != nil {
		return err
	}
	next, err := edit(current)
	if err != nil {
		return err
	}
	if err := validateNamed(next, tournamentID, tournamentName, tournament.Tournament.Validate); err != nil {
		return err
	}
	ops := listOperations(s, &s.tournaments, "tournaments", current, next, s.provider.SaveTournaments)
	return atomicsave.Execute(ctx, ops, s.logger).Err()
}

func (s *PersistenceStore) readSettings(ctx context.Context) ([]byte, bool, error) {
	type blob struct {
		raw    []byte
		exists bool
	}
	out, err := retry(ctx, s, func(ctx context.Context) (blob, error) {
		raw, exists, err := s.provider.GetGenericData(ctx, settings.StorageKey)
		return blob{raw: raw, exists: exists}, err
	})
	return out.raw, out.exists, err
}

func (s *PersistenceStore) settingsOperations(ctx context.Context, next settings.AppSettings) ([]atomicsave.Operation, error) {
	encoded, err := safejson.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	previousRaw, hadPrevious, err := s.readSettings(ctx)
	if err != nil {
		return nil, err
	}

	var previous settings.AppSettings
	return []atomicsave.Operation{
		atomicsave.NewOperation("mirror settings",
			func(context.Context) (struct{}, error) {
				s.mu.Lock()
				previous = s.settings
				s.settings = next
				s.mu.Unlock()
				return struct{}{}, nil
			},
			func(context.Context) error {
				s.mu.Lock()
				s.settings = previous
				s.mu.Unlock()
				return nil
			},
		),
		atomicsave.NewOperation("save settings",
			func(ctx context.Context) (struct{}, error) {
				return struct{}{}, s.retryErr(ctx, func(ctx context.Context) error {
					return s.provider.SetGenericData(ctx, settings.StorageKey, encoded)
				})
			},
			func(ctx context.Context) error {
				if !hadPrevious {
					return s.provider.DeleteGenericData(ctx, settings.StorageKey)
				}
				return s.provider.SetGenericData(ctx, settings.StorageKey, previousRaw)
			},
		),
	}, nil
}

// listOperations swaps the mirror to next and writes it. Rollback puts
// previous back in both places.
func listOperations[T any](s *PersistenceStore, slot *listSlot[T], name string, previous, next []T, save func(context.Context, []T) error) []atomicsave.Operation {
	next = append([]T{}, next...)
	previous = append([]T{}, previous...)

	return []atomicsave.Operation{
		atomicsave.NewOperation("mirror "+name,
			func(context.Context) (struct{}, error) {
				setList(s, slot, next)
				return struct{}{}, nil
			},
			func(context.Context) error {
				setList(s, slot, previous)
				return nil
			},
		),
		atomicsave.NewOperation("save "+name,
			func(ctx context.Context) (struct{}, error) {
				return struct{}{}, s.retryErr(ctx, func(ctx context.Context) error {
					return save(ctx, next)
				})
			},
			func(ctx context.Context) error {
				return save(ctx, previous)
			},
		),
	}
}

func loadList[T any](ctx context.Context, s *PersistenceStore, slot *listSlot[T], load func(context.Context) ([]T, error)) error {
	done := s.beginLoading()
	defer done()

	items, err := retry(ctx, s, load)
	if err != nil {
		return err
	}
	setList(s, slot, items)
	return nil
}

// currentList returns the mirrored items, loading them first when the
// collection has not been read yet.
func currentList[T any](ctx context.Context, s *PersistenceStore, slot *listSlot[T], load func(context.Context) ([]T, error)) ([]T, error) {
	s.mu.RLock()
	loaded := slot.loaded
	s.mu.RUnlock()

	if !loaded {
		if err := loadList(ctx, s, slot, load); err != nil {
			return nil, err
		}
	}
	return mirrorList(s, slot), nil
}

func mirrorList[T any](s *PersistenceStore, slot *listSlot[T]) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]T{}, slot.items...)
}

func setList[T any](s *PersistenceStore, slot *listSlot[T], items []T) {
	s.mu.Lock()
	slot.items = append([]T{}, items...)
	slot.loaded = true
	s.mu.Unlock()
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func validatePlayers(players []player.Player) error {
	seen := make(map[string]struct{}, len(players))
	for _, p := range players {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate player id %s", ErrInvalidInput, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

func seasonID(s season.Season) string               { return s.ID }
func seasonName(s season.Season) string             { return s.Name }
func tournamentID(t tournament.Tournament) string   { return t.ID }
func tournamentName(t tournament.Tournament) string { return t.Name }

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func addNamed[T any](items []T, item T, idOf, nameOf func(T) string) ([]T, error) {
	for _, existing := range items {
		if idOf(existing) == idOf(item) {
			return nil, fmt.Errorf("%w: id %s", ErrConflict, idOf(item))
		}
		if sameName(nameOf(existing), nameOf(item)) {
			return nil, fmt.Errorf("%w: name %q is already used", ErrConflict, nameOf(item))
		}
	}
	return append(append([]T(nil), items...), item), nil
}

func updateNamed[T any](items []T, item T, idOf, nameOf func(T) string) ([]T, error) {
	idx := -1
	for i, existing := range items {
		if idOf(existing) == idOf(item) {
			idx = i
			continue
		}
		if sameName(nameOf(existing), nameOf(item)) {
			return nil, fmt.Errorf("%w: name %q is already used", ErrConflict, nameOf(item))
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: id %s", ErrNotFound, idOf(item))
	}

	out := append([]T(nil), items...)
	out[idx] = item
	return out, nil
}

func deleteNamed[T any](items []T, id string, idOf func(T) string) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, existing := range items {
		if idOf(existing) != id {
			out = append(out, existing)
		}
	}
	if len(out) == len(items) {
		return nil, fmt.Errorf("%w: id %s", ErrNotFound, id)
	}
	return out, nil
}

func validateNamed[T any](items []T, idOf, nameOf func(T) string, validate func(T) error) error {
	ids := make(map[string]struct{}, len(items))
	names := make(map[string]struct{}, len(items))
	for _, item := range items {
		if err := validate(item); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if _, dup := ids[idOf(item)]; dup {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidInput, idOf(item))
		}
		name := strings.ToLower(strings.TrimSpace(nameOf(item)))
		if _, dup := names[name]; dup {
			return fmt.Errorf("%w: duplicate name %q", ErrInvalidInput, nameOf(item))
		}
		ids[idOf(item)] = struct{}{}
		names[name] = struct{}{}
	}
	return nil
}
