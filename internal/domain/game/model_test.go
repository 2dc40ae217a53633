package game

import "testing"

func TestAppState_ApplyMergesOnlyChangedFields(t *testing.T) {
	t.Parallel()

	base := AppState{
		TeamName:   "Lions",
		HomeScore:  1,
		AwayScore:  0,
		GameNotes:  "windy",
		GameEvents: []Event{{ID: "e1", Type: EventGoal, Time: 30}},
		Assessments: map[string]Assessment{
			"p1": {OverallRating: 7},
		},
	}

	away := 2
	notes := ""
	patched := base.Apply(Patch{
		AwayScore:   &away,
		GameNotes:   &notes,
		Assessments: map[string]Assessment{"p2": {OverallRating: 9}},
	})

	if patched.HomeScore != 1 || patched.AwayScore != 2 {
		t.Fatalf("unexpected score: %d-%d", patched.HomeScore, patched.AwayScore)
	}
	if patched.GameNotes != "" {
		t.Fatalf("expected notes cleared, got %q", patched.GameNotes)
	}
	if len(patched.GameEvents) != 1 {
		t.Fatalf("expected events untouched, got %d", len(patched.GameEvents))
	}
	if len(patched.Assessments) != 2 {
		t.Fatalf("expected merged assessments, got %+v", patched.Assessments)
	}
	if len(base.Assessments) != 1 {
		t.Fatalf("base state mutated: %+v", base.Assessments)
	}
}

func TestPatch_FieldsUsesPersistedNames(t *testing.T) {
	t.Parallel()

	home := 3
	status := StatusGameEnd
	fields := Patch{HomeScore: &home, GameStatus: &status}.Fields()

	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %+v", fields)
	}
	if fields["homeScore"] != 3 {
		t.Fatalf("unexpected homeScore: %v", fields["homeScore"])
	}
	if fields["gameStatus"] != "gameEnd" {
		t.Fatalf("unexpected gameStatus: %v", fields["gameStatus"])
	}
	if !(Patch{}).IsEmpty() {
		t.Fatalf("zero patch must be empty")
	}
}

func TestAppState_ScoreAfterRespectsSide(t *testing.T) {
	t.Parallel()

	home := AppState{HomeOrAway: Home, HomeScore: 1, AwayScore: 1}
	if got := home.ScoreAfter(Event{Type: EventGoal}); got.HomeScore != 2 || got.AwayScore != 1 {
		t.Fatalf("home goal: %+v", got)
	}

	away := AppState{HomeOrAway: Away, HomeScore: 1, AwayScore: 1}
	if got := away.ScoreAfter(Event{Type: EventGoal}); got.HomeScore != 1 || got.AwayScore != 2 {
		t.Fatalf("away goal: %+v", got)
	}
	if got := away.ScoreAfter(Event{Type: EventOpponentGoal}); got.HomeScore != 2 || got.AwayScore != 1 {
		t.Fatalf("away opponent goal: %+v", got)
	}
	if got := away.ScoreAfter(Event{Type: EventSubstitution}); got.HomeScore != 1 || got.AwayScore != 1 {
		t.Fatalf("substitution changed score: %+v", got)
	}
}

func TestAppState_NormalizeFillsCollections(t *testing.T) {
	t.Parallel()

	s := AppState{}.Normalize()
	if s.GameEvents == nil || s.SelectedPlayerIDs == nil || s.Drawings == nil {
		t.Fatalf("expected empty collections, got %+v", s)
	}
	if s.HomeOrAway != Home || s.GameStatus != StatusNotStarted {
		t.Fatalf("unexpected defaults: %s %s", s.HomeOrAway, s.GameStatus)
	}
}
