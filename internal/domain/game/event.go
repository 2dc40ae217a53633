package game

type EventType string

const (
	EventGoal         EventType = "goal"
	EventOpponentGoal EventType = "opponentGoal"
	EventSubstitution EventType = "substitution"
	EventPeriodEnd    EventType = "periodEnd"
	EventGameEnd      EventType = "gameEnd"
	EventFairPlayCard EventType = "fairPlayCard"
)

var AllEventTypes = map[EventType]struct{}{
	EventGoal:         {},
	EventOpponentGoal: {},
	EventSubstitution: {},
	EventPeriodEnd:    {},
	EventGameEnd:      {},
	EventFairPlayCard: {},
}

// Event is one entry in a game's append-only event log. Time is seconds
// since kickoff.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Time       int       `json:"time"`
	ScorerID   string    `json:"scorerId,omitempty"`
	AssisterID string    `json:"assisterId,omitempty"`
	EntityID   string    `json:"entityId,omitempty"`
}

// IsScoring reports whether the event changes the score line.
func (e Event) IsScoring() bool {
	return e.Type == EventGoal || e.Type == EventOpponentGoal
}

// ScoreAfter returns the score after e is applied to s. A goal credits the
// coached team, which sits on the home or away side depending on the game.
func (s AppState) ScoreAfter(e Event) ScoreUpdate {
	score := ScoreUpdate{HomeScore: s.HomeScore, AwayScore: s.AwayScore}
	ours := &score.HomeScore
	theirs := &score.AwayScore
	if s.HomeOrAway == Away {
		ours, theirs = theirs, ours
	}

	switch e.Type {
	case EventGoal:
		*ours++
	case EventOpponentGoal:
		*theirs++
	}
	return score
}
