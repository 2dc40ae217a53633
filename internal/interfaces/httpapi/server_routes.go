package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerGameRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/games", handler.ListGames)
	mux.HandleFunc("GET /v1/games/{gameID}", handler.GetGame)
	mux.HandleFunc("PUT /v1/games/{gameID}", handler.SaveGame)
	mux.HandleFunc("PATCH /v1/games/{gameID}", handler.UpdateGame)
	mux.HandleFunc("DELETE /v1/games/{gameID}", handler.DeleteGame)
	mux.HandleFunc("POST /v1/games/{gameID}/duplicate", handler.DuplicateGame)
	mux.HandleFunc("POST /v1/games/{gameID}/events", handler.AddGameEvent)
}

func registerCollectionRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/roster", handler.ListRoster)
	mux.HandleFunc("POST /v1/roster", handler.AddRosterPlayer)
	mux.HandleFunc("PUT /v1/roster/{playerID}", handler.UpdateRosterPlayer)
	mux.HandleFunc("DELETE /v1/roster/{playerID}", handler.RemoveRosterPlayer)

	mux.HandleFunc("GET /v1/seasons", handler.ListSeasons)
	mux.HandleFunc("POST /v1/seasons", handler.AddSeason)
	mux.HandleFunc("PUT /v1/seasons/{seasonID}", handler.UpdateSeason)
	mux.HandleFunc("DELETE /v1/seasons/{seasonID}", handler.DeleteSeason)

	mux.HandleFunc("GET /v1/tournaments", handler.ListTournaments)
	mux.HandleFunc("POST /v1/tournaments", handler.AddTournament)
	mux.HandleFunc("PUT /v1/tournaments/{tournamentID}", handler.UpdateTournament)
	mux.HandleFunc("DELETE /v1/tournaments/{tournamentID}", handler.DeleteTournament)

	mux.HandleFunc("GET /v1/settings", handler.GetSettings)
	mux.HandleFunc("PUT /v1/settings", handler.SaveSettings)
}

func registerSessionRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/session", handler.GetSession)
	mux.HandleFunc("PATCH /v1/session", handler.UpdateSessionClock)
	mux.HandleFunc("POST /v1/session/start", handler.StartSession)
	mux.HandleFunc("POST /v1/session/events", handler.AddSessionEvent)
	mux.HandleFunc("POST /v1/session/end", handler.EndSession)
}

func registerMaintenanceRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/migration/components", handler.ListMigrationComponents)
	mux.HandleFunc("POST /v1/migration/components/{name}/reset", handler.ResetMigrationComponent)
	// Backups are raw JSON documents, not enveloped, so they can be re-imported as-is.
	mux.HandleFunc("GET /v1/backup", handler.ExportBackup)
	mux.HandleFunc("POST /v1/backup", handler.ImportBackup)
	mux.HandleFunc("DELETE /v1/data", handler.ClearAllData)
}
