package game

import (
	"errors"
	"maps"

	"github.com/riskibarqy/soccer-coach/internal/domain/player"
)

// ErrGameNotFound carries the user-facing message shown when a save targets
// an unknown game.
var ErrGameNotFound = errors.New("Game not found")

// Record is a game as decoded from a storage backend, before validation.
// Nothing outside typeguard should read fields from it.
type Record = map[string]any

type HomeOrAway string

const (
	Home HomeOrAway = "home"
	Away HomeOrAway = "away"
)

type Status string

const (
	StatusNotStarted Status = "notStarted"
	StatusInProgress Status = "inProgress"
	StatusPeriodEnd  Status = "periodEnd"
	StatusGameEnd    Status = "gameEnd"
)

var AllStatuses = map[Status]struct{}{
	StatusNotStarted: {},
	StatusInProgress: {},
	StatusPeriodEnd:  {},
	StatusGameEnd:    {},
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Opponent struct {
	ID   string  `json:"id"`
	RelX float64 `json:"relX"`
	RelY float64 `json:"relY"`
}

type TacticalDisc struct {
	ID   string  `json:"id"`
	RelX float64 `json:"relX"`
	RelY float64 `json:"relY"`
	Type string  `json:"type"`
}

// Assessment is the coach's post-game rating of one player.
type Assessment struct {
	OverallRating int                `json:"overall"`
	Sliders       map[string]float64 `json:"sliders,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	MinutesPlayed int                `json:"minutesPlayed,omitempty"`
	CreatedAt     int64              `json:"createdAt,omitempty"`
	CreatedBy     string             `json:"createdBy,omitempty"`
}

// AppState is the full serializable snapshot of one coached game.
type AppState struct {
	TeamName              string     `json:"teamName"`
	OpponentName          string     `json:"opponentName"`
	GameDate              string     `json:"gameDate"`
	HomeScore             int        `json:"homeScore"`
	AwayScore             int        `json:"awayScore"`
	GameNotes             string     `json:"gameNotes"`
	HomeOrAway            HomeOrAway `json:"homeOrAway"`
	NumberOfPeriods       int        `json:"numberOfPeriods"`
	PeriodDurationMinutes int        `json:"periodDurationMinutes"`
	CurrentPeriod         int        `json:"currentPeriod"`
	GameStatus            Status     `json:"gameStatus"`
	SeasonID              string     `json:"seasonId"`
	TournamentID          string     `json:"tournamentId"`
	GameLocation          string     `json:"gameLocation,omitempty"`
	GameTime              string     `json:"gameTime,omitempty"`

	SelectedPlayerIDs []string        `json:"selectedPlayerIds"`
	PlayersOnField    []player.Player `json:"playersOnField"`
	Opponents         []Opponent      `json:"opponents"`
	Drawings          [][]Point       `json:"drawings"`
	AvailablePlayers  []player.Player `json:"availablePlayers"`
	GameEvents        []Event         `json:"gameEvents"`

	TacticalDiscs        []TacticalDisc        `json:"tacticalDiscs,omitempty"`
	TacticalDrawings     [][]Point             `json:"tacticalDrawings,omitempty"`
	TacticalBallPosition *Point                `json:"tacticalBallPosition,omitempty"`
	Assessments          map[string]Assessment `json:"assessments,omitempty"`
	TimeElapsedInSeconds int                   `json:"timeElapsedInSeconds,omitempty"`
	SubIntervalMinutes   int                   `json:"subIntervalMinutes,omitempty"`
	ShowPlayerNames      bool                  `json:"showPlayerNames"`
	IsPlayed             bool                  `json:"isPlayed"`
}

// Normalize replaces nil collections with empty ones so the serialized form
// always carries arrays where the schema requires them.
func (s AppState) Normalize() AppState {
	if s.SelectedPlayerIDs == nil {
		s.SelectedPlayerIDs = []string{}
	}
	if s.PlayersOnField == nil {
		s.PlayersOnField = []player.Player{}
	}
	if s.Opponents == nil {
		s.Opponents = []Opponent{}
	}
	if s.Drawings == nil {
		s.Drawings = [][]Point{}
	}
	if s.AvailablePlayers == nil {
		s.AvailablePlayers = []player.Player{}
	}
	if s.GameEvents == nil {
		s.GameEvents = []Event{}
	}
	if s.HomeOrAway == "" {
		s.HomeOrAway = Home
	}
	if s.GameStatus == "" {
		s.GameStatus = StatusNotStarted
	}
	return s
}

// Clone deep-copies every collection so callers can mutate the result freely.
func (s AppState) Clone() AppState {
	out := s
	out.SelectedPlayerIDs = cloneSlice(s.SelectedPlayerIDs)
	out.PlayersOnField = cloneSlice(s.PlayersOnField)
	out.Opponents = cloneSlice(s.Opponents)
	out.Drawings = clonePaths(s.Drawings)
	out.AvailablePlayers = cloneSlice(s.AvailablePlayers)
	out.GameEvents = cloneSlice(s.GameEvents)
	out.TacticalDiscs = cloneSlice(s.TacticalDiscs)
	out.TacticalDrawings = clonePaths(s.TacticalDrawings)
	if s.TacticalBallPosition != nil {
		p := *s.TacticalBallPosition
		out.TacticalBallPosition = &p
	}
	out.Assessments = cloneAssessments(s.Assessments)
	return out
}

// ScoreUpdate carries the score that goes with a newly recorded event.
type ScoreUpdate struct {
	HomeScore int `json:"homeScore"`
	AwayScore int `json:"awayScore"`
}

// Patch lists the fields changed since the last save. Nil means unchanged.
type Patch struct {
	GameEvents           []Event
	HomeScore            *int
	AwayScore            *int
	Assessments          map[string]Assessment
	TimeElapsedInSeconds *int
	CurrentPeriod        *int
	GameStatus           *Status
	GameNotes            *string
}

func (p Patch) IsEmpty() bool {
	return p.GameEvents == nil &&
		p.HomeScore == nil &&
		p.AwayScore == nil &&
		p.Assessments == nil &&
		p.TimeElapsedInSeconds == nil &&
		p.CurrentPeriod == nil &&
		p.GameStatus == nil &&
		p.GameNotes == nil
}

// Fields returns only the changed keys, using the persisted JSON names.
func (p Patch) Fields() map[string]any {
	out := make(map[string]any, 8)
	if p.GameEvents != nil {
		out["gameEvents"] = cloneSlice(p.GameEvents)
	}
	if p.HomeScore != nil {
		out["homeScore"] = *p.HomeScore
	}
	if p.AwayScore != nil {
		out["awayScore"] = *p.AwayScore
	}
	if p.Assessments != nil {
		out["assessments"] = cloneAssessments(p.Assessments)
	}
	if p.TimeElapsedInSeconds != nil {
		out["timeElapsedInSeconds"] = *p.TimeElapsedInSeconds
	}
	if p.CurrentPeriod != nil {
		out["currentPeriod"] = *p.CurrentPeriod
	}
	if p.GameStatus != nil {
		out["gameStatus"] = string(*p.GameStatus)
	}
	if p.GameNotes != nil {
		out["gameNotes"] = *p.GameNotes
	}
	return out
}

// Apply merges p into s. Assessments are merged per player.
func (s AppState) Apply(p Patch) AppState {
	out := s.Clone()
	if p.GameEvents != nil {
		out.GameEvents = cloneSlice(p.GameEvents)
	}
	if p.HomeScore != nil {
		out.HomeScore = *p.HomeScore
	}
	if p.AwayScore != nil {
		out.AwayScore = *p.AwayScore
	}
	if p.Assessments != nil {
		if out.Assessments == nil {
			out.Assessments = make(map[string]Assessment, len(p.Assessments))
		}
		for playerID, a := range p.Assessments {
			out.Assessments[playerID] = a
		}
	}
	if p.TimeElapsedInSeconds != nil {
		out.TimeElapsedInSeconds = *p.TimeElapsedInSeconds
	}
	if p.CurrentPeriod != nil {
		out.CurrentPeriod = *p.CurrentPeriod
	}
	if p.GameStatus != nil {
		out.GameStatus = *p.GameStatus
	}
	if p.GameNotes != nil {
		out.GameNotes = *p.GameNotes
	}
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return append([]T(nil), in...)
}

func clonePaths(in [][]Point) [][]Point {
	if in == nil {
		return nil
	}
	out := make([][]Point, len(in))
	for i := range in {
		out[i] = cloneSlice(in[i])
	}
	return out
}

func cloneAssessments(in map[string]Assessment) map[string]Assessment {
	if in == nil {
		return nil
	}
	out := make(map[string]Assessment, len(in))
	for k, v := range in {
		if v.Sliders != nil {
			v.Sliders = maps.Clone(v.Sliders)
		}
		out[k] = v
	}
	return out
}
