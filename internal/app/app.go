package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/soccer-coach/internal/config"
	"github.com/riskibarqy/soccer-coach/internal/domain/storage"
	"github.com/riskibarqy/soccer-coach/internal/infrastructure/kv/sqlite"
	storagecache "github.com/riskibarqy/soccer-coach/internal/infrastructure/storage/cache"
	"github.com/riskibarqy/soccer-coach/internal/infrastructure/storage/local"
	"github.com/riskibarqy/soccer-coach/internal/infrastructure/storage/postgres"
	"github.com/riskibarqy/soccer-coach/internal/interfaces/httpapi"
	"github.com/riskibarqy/soccer-coach/internal/platform/cache"
	idgen "github.com/riskibarqy/soccer-coach/internal/platform/id"
	"github.com/riskibarqy/soccer-coach/internal/platform/logging"
	"github.com/riskibarqy/soccer-coach/internal/platform/resilience"
	"github.com/riskibarqy/soccer-coach/internal/usecase"
)

// App holds the HTTP server and the resources it must release on shutdown.
type App struct {
	Server *http.Server
	Store  *usecase.PersistenceStore

	closers []func() error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{}
	provider, extra, err := a.buildProviders(ctx, cfg, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if cfg.CacheEnabled {
		provider = storagecache.NewProvider(provider, cache.NewStore(cfg.CacheTTL))
	}

	ids := idgen.NewTimeRandomGenerator()
	store := usecase.NewPersistenceStore(provider, usecase.StoreConfig{
		RetryAttempts: cfg.SaveRetryAttempts,
		RetryDelay:    cfg.SaveRetryDelay,
	}, logger, usecase.WithClearProviders(extra...), usecase.WithIDGenerator(ids))

	safety := usecase.NewMigrationSafety(usecase.MigrationConfig{
		ForceLegacy:      cfg.MigrationForceLegacy,
		LegacyComponents: cfg.MigrationLegacyComponents,
	}, logger)
	updates := usecase.NewGameUpdates(store, safety, ids, logger)
	session := usecase.NewGameSession(store, safety, ids, logger)
	backup := usecase.NewBackupService(store, safety, cfg.ImportMaxWorkers, logger)

	handler := httpapi.NewHandler(store, updates, session, safety, backup, logger)
	router := httpapi.NewRouter(handler, logger, httpapi.RouterConfig{
		ServiceName:        cfg.ServiceName,
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	a.Store = store
	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("storage provider ready",
		"provider", store.ProviderName(),
		"cache_enabled", cfg.CacheEnabled,
		"clear_extra_providers", len(extra),
	)
	return a, nil
}

// buildProviders returns the active provider and any extra backends that
// ClearAllData should sweep. With postgres active the local database is
// still swept when it exists on disk.
func (a *App) buildProviders(ctx context.Context, cfg config.Config, logger *logging.Logger) (storage.Provider, []storage.Provider, error) {
	switch cfg.StorageProvider {
	case config.StorageProviderPostgres:
		db, err := openPostgres(cfg)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, db.Close)

		if err := db.PingContext(ctx); err != nil {
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}

		remote, err := postgres.NewProvider(db, postgres.Options{
			Name:    storage.ProviderPostgres,
			OwnerID: cfg.StorageOwnerID,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.StorageCircuitEnabled,
				FailureThreshold: cfg.StorageCircuitFailureCount,
				OpenTimeout:      cfg.StorageCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.StorageCircuitHalfOpenMaxRq,
			},
		}, logger)
		if err != nil {
			return nil, nil, err
		}

		var extra []storage.Provider
		if cfg.LocalStorePath != "" && localStoreExists(cfg.LocalStorePath) {
			kvStore, err := sqlite.Open(ctx, cfg.LocalStorePath)
			if err != nil {
				logger.Warn("local store unavailable for clear sweep", "path", cfg.LocalStorePath, "error", err)
			} else {
				a.closers = append(a.closers, kvStore.Close)
				extra = append(extra, local.NewProvider(kvStore, logger))
			}
		}
		return remote, extra, nil

	case config.StorageProviderLocal:
		kvStore, err := sqlite.Open(ctx, cfg.LocalStorePath)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, kvStore.Close)
		return local.NewProvider(kvStore, logger), nil, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage provider %q", cfg.StorageProvider)
	}
}

func openPostgres(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	opts := []otelsql.Option{
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	}
	if name := dbNameFromURL(dsn); name != "" {
		opts = append(opts, otelsql.WithDBName(name))
	}

	db, err := otelsqlx.Open("postgres", dsn, opts...)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// Close releases database handles in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
