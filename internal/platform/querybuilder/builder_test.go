package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("game_id", "state").
		From("saved_games").
		Where(Eq("owner_id", "o1")).
		OrderBy("game_id").
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT game_id, state FROM saved_games WHERE owner_id = $1 ORDER BY game_id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "o1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_MultiRow(t *testing.T) {
	query, args, err := InsertInto("players").
		Columns("owner_id", "player_id").
		Values("o1", "p1").
		Values("o1", "p2").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO players (owner_id, player_id) VALUES ($1, $2), ($3, $4)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[3] != "p2" {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := InsertInto("players").Columns("a", "b").Values("only-one").ToSQL(); err == nil {
		t.Fatalf("expected error for short row")
	}
}

func TestUpdateBuilder_JSONMerge(t *testing.T) {
	query, args, err := Update("saved_games").
		SetExpr("state", "state || ?::jsonb", `{"homeScore":2}`).
		SetExpr("updated_at", "NOW()").
		Where(Eq("owner_id", "o1"), Eq("game_id", "g1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE saved_games SET state = state || $1::jsonb, updated_at = NOW() WHERE owner_id = $2 AND game_id = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != `{"homeScore":2}` || args[2] != "g1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateAndDeleteRequireWhere(t *testing.T) {
	if _, _, err := Update("saved_games").Set("state", "{}").ToSQL(); err == nil {
		t.Fatalf("expected error for unscoped update")
	}
	if _, _, err := DeleteFrom("saved_games").ToSQL(); err == nil {
		t.Fatalf("expected error for unscoped delete")
	}

	query, args, err := DeleteFrom("saved_games").Where(Eq("owner_id", "o1"), Expr("game_id = ?", "g1")).ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}
	if query != "DELETE FROM saved_games WHERE owner_id = $1 AND game_id = $2" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpsertModel(t *testing.T) {
	type row struct {
		OwnerID string `db:"owner_id"`
		Key     string `db:"key"`
		Value   string `db:"value"`
		skipped string
	}

	query, args, err := UpsertModel("app_data", row{OwnerID: "o1", Key: "k", Value: "{}"}, []string{"owner_id", "key"}, "updated_at = NOW()")
	if err != nil {
		t.Fatalf("build upsert query: %v", err)
	}

	wantQuery := "INSERT INTO app_data (owner_id, key, value) VALUES ($1, $2, $3) " +
		"ON CONFLICT (owner_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := UpsertModel("app_data", row{}, nil); err == nil {
		t.Fatalf("expected error without key columns")
	}
}
