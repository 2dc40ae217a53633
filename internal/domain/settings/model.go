package settings

// StorageKey is the generic-data key the settings blob lives under.
const StorageKey = "soccerAppSettings"

// AppSettings are device-level preferences persisted next to the game data.
type AppSettings struct {
	CurrentGameID    string `json:"currentGameId,omitempty"`
	LastHomeTeamName string `json:"lastHomeTeamName,omitempty"`
	Language         string `json:"language,omitempty"`
}
