package postgres

const (
	tableSavedGames  = "saved_games"
	tablePlayers     = "players"
	tableSeasons     = "seasons"
	tableTournaments = "tournaments"
	tableAppData     = "app_data"
)

type savedGameTableModel struct {
	OwnerID string `db:"owner_id"`
	GameID  string `db:"game_id"`
	State   string `db:"state"`
}

type savedGameRow struct {
	GameID string `db:"game_id"`
	State  []byte `db:"state"`
}

// collectionRow is one element of a list persisted in order: roster
// players, seasons and tournaments all share this layout.
type collectionRow struct {
	ItemID   string `db:"item_id"`
	Position int    `db:"position"`
	Data     []byte `db:"data"`
}

type appDataTableModel struct {
	OwnerID string `db:"owner_id"`
	Key     string `db:"key"`
	Value   string `db:"value"`
}
