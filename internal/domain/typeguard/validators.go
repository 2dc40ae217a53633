package typeguard

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/soccer-coach/internal/domain/game"
	"github.com/riskibarqy/soccer-coach/internal/domain/player"
	"github.com/riskibarqy/soccer-coach/internal/domain/season"
	"github.com/riskibarqy/soccer-coach/internal/domain/tournament"
	"github.com/riskibarqy/soccer-coach/internal/platform/logging"
)

var ErrInvalidRecord = errors.New("invalid record")

var (
	playerRequired = []field{
		{"id", kindString},
		{"name", kindString},
	}
	playerOptional = []field{
		{"nickname", kindString},
		{"jerseyNumber", kindString},
		{"isGoalie", kindBool},
		{"notes", kindString},
		{"receivedFairPlayCard", kindBool},
		{"color", kindString},
		{"relX", kindNumber},
		{"relY", kindNumber},
	}

	eventRequired = []field{
		{"id", kindString},
		{"type", kindString},
		{"time", kindNumber},
	}
	eventOptional = []field{
		{"scorerId", kindString},
		{"assisterId", kindString},
		{"entityId", kindString},
	}

	seasonRequired = []field{
		{"id", kindString},
		{"name", kindString},
	}
	seasonOptional = []field{
		{"location", kindString},
		{"periodCount", kindNumber},
		{"periodDuration", kindNumber},
		{"startDate", kindString},
		{"endDate", kindString},
		{"archived", kindBool},
		{"notes", kindString},
	}
	tournamentOptional = append(append([]field(nil), seasonOptional...), field{"level", kindString})

	appStateRequired = []field{
		{"teamName", kindString},
		{"opponentName", kindString},
		{"gameDate", kindString},
		{"homeScore", kindNumber},
		{"awayScore", kindNumber},
		{"gameNotes", kindString},
		{"homeOrAway", kindString},
		{"numberOfPeriods", kindNumber},
		{"periodDurationMinutes", kindNumber},
		{"currentPeriod", kindNumber},
		{"gameStatus", kindString},
		{"selectedPlayerIds", kindArray},
		{"playersOnField", kindArray},
		{"opponents", kindArray},
		{"drawings", kindArray},
		{"availablePlayers", kindArray},
		{"gameEvents", kindArray},
	}
	appStateOptional = []field{
		{"seasonId", kindString},
		{"tournamentId", kindString},
		{"gameLocation", kindString},
		{"gameTime", kindString},
		{"tacticalDiscs", kindArray},
		{"tacticalDrawings", kindArray},
		{"tacticalBallPosition", kindRecord},
		{"assessments", kindRecord},
		{"timeElapsedInSeconds", kindNumber},
		{"subIntervalMinutes", kindNumber},
		{"showPlayerNames", kindBool},
		{"isPlayed", kindBool},
	}

	// Checked first, in this order, for every entry of a saved games collection.
	collectionRequired = []string{"teamName", "homeScore", "awayScore", "opponentName", "gameDate"}
)

func playerMessage(v any) string {
	rec, ok := v.(map[string]any)
	if !ok {
		return "Player must be an object"
	}
	return checkFields(rec, playerRequired, playerOptional)
}

func eventMessage(v any) string {
	rec, ok := v.(map[string]any)
	if !ok {
		return "Game event must be an object"
	}
	if msg := checkFields(rec, eventRequired, eventOptional); msg != "" {
		return msg
	}
	if !oneOf(rec["type"], game.AllEventTypes) {
		return fmt.Sprintf("Invalid event type: %v", rec["type"])
	}
	return ""
}

func seasonMessage(v any) string {
	rec, ok := v.(map[string]any)
	if !ok {
		return "Season must be an object"
	}
	return checkFields(rec, seasonRequired, seasonOptional)
}

func tournamentMessage(v any) string {
	rec, ok := v.(map[string]any)
	if !ok {
		return "Tournament must be an object"
	}
	return checkFields(rec, seasonRequired, tournamentOptional)
}

func appStateMessage(v any) string {
	rec, ok := v.(map[string]any)
	if !ok {
		return "Game state must be an object"
	}
	if msg := checkFields(rec, appStateRequired, appStateOptional); msg != "" {
		return msg
	}
	if !oneOf(rec["homeOrAway"], homeOrAwayValues) {
		return fmt.Sprintf("Invalid value for field homeOrAway: %v", rec["homeOrAway"])
	}
	if !oneOf(rec["gameStatus"], game.AllStatuses) {
		return fmt.Sprintf("Invalid value for field gameStatus: %v", rec["gameStatus"])
	}

	nested := []struct {
		field string
		label string
		check func(any) string
	}{
		{"selectedPlayerIds", "selected player id", stringMessage},
		{"playersOnField", "player on field", playerMessage},
		{"availablePlayers", "available player", playerMessage},
		{"opponents", "opponent", objectMessage},
		{"drawings", "drawing", arrayMessage},
		{"gameEvents", "game event", eventMessage},
		{"tacticalDiscs", "tactical disc", objectMessage},
		{"tacticalDrawings", "tactical drawing", arrayMessage},
	}
	for _, n := range nested {
		if msg := checkEach(rec, n.field, n.label, n.check); msg != "" {
			return msg
		}
	}

	if assessments, ok := rec["assessments"].(map[string]any); ok {
		for _, playerID := range sortedKeys(assessments) {
			if !IsRecord(assessments[playerID]) {
				return fmt.Sprintf("Invalid assessment for player %s: must be an object", playerID)
			}
		}
	}
	return ""
}

func stringMessage(v any) string {
	if !isString(v) {
		return "must be a string"
	}
	return ""
}

func objectMessage(v any) string {
	if !IsRecord(v) {
		return "must be an object"
	}
	return ""
}

func arrayMessage(v any) string {
	if !isArray(v) {
		return "must be an array"
	}
	return ""
}

func validateWith[T any](v any, message func(any) string, label string) Result[T] {
	if msg := message(v); msg != "" {
		return invalid[T]("%s", msg)
	}
	out, err := decode[T](v)
	if err != nil {
		return invalid[T]("Invalid %s: %v", label, err)
	}
	return valid(out)
}

func validateList[T any](v any, message func(any) string, label, plural string) Result[[]T] {
	items, ok := v.([]any)
	if !ok {
		return invalid[[]T]("%s must be an array", plural)
	}
	for i, item := range items {
		if msg := message(item); msg != "" {
			return invalid[[]T]("Invalid %s at index %d: %s", label, i, msg)
		}
	}
	out, err := decode[[]T](v)
	if err != nil {
		return invalid[[]T]("Invalid %s: %v", plural, err)
	}
	if out == nil {
		out = []T{}
	}
	return valid(out)
}

func ValidatePlayer(v any) Result[player.Player] {
	return validateWith[player.Player](v, playerMessage, "player")
}

func ValidateGameEvent(v any) Result[game.Event] {
	return validateWith[game.Event](v, eventMessage, "game event")
}

func ValidateSeason(v any) Result[season.Season] {
	return validateWith[season.Season](v, seasonMessage, "season")
}

func ValidateTournament(v any) Result[tournament.Tournament] {
	return validateWith[tournament.Tournament](v, tournamentMessage, "tournament")
}

func ValidateAppState(v any) Result[game.AppState] {
	return validateWith[game.AppState](v, appStateMessage, "game state")
}

func ValidatePlayers(v any) Result[[]player.Player] {
	return validateList[player.Player](v, playerMessage, "player", "Players")
}

func ValidateSeasons(v any) Result[[]season.Season] {
	return validateList[season.Season](v, seasonMessage, "season", "Seasons")
}

func ValidateTournaments(v any) Result[[]tournament.Tournament] {
	return validateList[tournament.Tournament](v, tournamentMessage, "tournament", "Tournaments")
}

// ValidateSavedGamesCollection checks a games map keyed by game id. Entries
// are visited in id order so the reported failure is deterministic.
func ValidateSavedGamesCollection(v any) Result[map[string]game.AppState] {
	rec, ok := v.(map[string]any)
	if !ok {
		return invalid[map[string]game.AppState]("Saved games collection must be an object")
	}

	out := make(map[string]game.AppState, len(rec))
	for _, gameID := range sortedKeys(rec) {
		entry, ok := rec[gameID].(map[string]any)
		if !ok {
			return invalid[map[string]game.AppState]("Game %s is not an object", gameID)
		}
		for _, name := range collectionRequired {
			if value, present := entry[name]; !present || value == nil {
				return invalid[map[string]game.AppState]("Game %s missing required field: %s", gameID, name)
			}
		}
		res := ValidateAppState(entry)
		if !res.IsValid {
			return invalid[map[string]game.AppState]("Game %s: %s", gameID, res.Error)
		}
		out[gameID] = res.Data
	}
	return valid(out)
}

func IsPlayer(v any) bool     { return ValidatePlayer(v).IsValid }
func IsGameEvent(v any) bool  { return ValidateGameEvent(v).IsValid }
func IsSeason(v any) bool     { return ValidateSeason(v).IsValid }
func IsTournament(v any) bool { return ValidateTournament(v).IsValid }
func IsAppState(v any) bool   { return ValidateAppState(v).IsValid }

func IsSavedGamesCollection(v any) bool {
	return ValidateSavedGamesCollection(v).IsValid
}

// SafeCastWithFallback returns v as T when guard accepts it and it already
// has type T. Otherwise fallback is returned untouched and a warning naming
// context is logged.
func SafeCastWithFallback[T any](v any, guard func(any) bool, fallback T, context string, logger *logging.Logger) T {
	if guard != nil && guard(v) {
		if out, ok := v.(T); ok {
			return out
		}
	}
	if logger == nil {
		logger = logging.Default()
	}
	logger.Warn("type guard rejected value, using fallback", "context", context)
	return fallback
}

// ValidateWithFallback is SafeCastWithFallback for validators that decode:
// the decoded Data is returned on success.
func ValidateWithFallback[T any](v any, validate func(any) Result[T], fallback T, context string, logger *logging.Logger) T {
	res := validate(v)
	if res.IsValid {
		return res.Data
	}
	if logger == nil {
		logger = logging.Default()
	}
	logger.Warn("validation failed, using fallback", "context", context, "reason", res.Error)
	return fallback
}

// DecodeRecord turns an untrusted game record into state, rejecting it when
// it does not pass ValidateAppState.
func DecodeRecord(rec game.Record) (game.AppState, error) {
	res := ValidateAppState(rec)
	if !res.IsValid {
		return game.AppState{}, fmt.Errorf("%w: %s", ErrInvalidRecord, res.Error)
	}
	return res.Data, nil
}

// ToRecord is the inverse of DecodeRecord. Nil collections are written as
// empty arrays.
func ToRecord(state game.AppState) (game.Record, error) {
	raw, err := sonic.Marshal(state.Normalize())
	if err != nil {
		return nil, fmt.Errorf("encode game state: %w", err)
	}
	var out map[string]any
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode game record: %w", err)
	}
	return out, nil
}

func decode[T any](v any) (T, error) {
	var out T
	raw, err := sonic.Marshal(v)
	if err != nil {
		return out, err
	}
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}
