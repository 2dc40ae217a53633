package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/soccer-coach/internal/platform/logging"
)

const (
	StorageProviderPostgres = "postgres"
	StorageProviderLocal    = "local"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                      string
	ServiceName                 string
	ServiceVersion              string
	HTTPAddr                    string
	ReadTimeout                 time.Duration
	WriteTimeout                time.Duration
	CORSAllowedOrigins          []string
	SwaggerEnabled              bool
	PprofEnabled                bool
	PprofAddr                   string
	StorageProvider             string
	StorageOwnerID              string
	DBURL                       string
	DBDisablePreparedBinary     bool
	LocalStorePath              string
	CacheEnabled                bool
	CacheTTL                    time.Duration
	SaveRetryAttempts           int
	SaveRetryDelay              time.Duration
	StorageCircuitEnabled       bool
	StorageCircuitFailureCount  int
	StorageCircuitOpenTimeout   time.Duration
	StorageCircuitHalfOpenMaxRq int
	MigrationForceLegacy        bool
	MigrationLegacyComponents   []string
	ImportMaxWorkers            int
	UptraceEnabled              bool
	UptraceDSN                  string
	LogLevel                    logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}
	swaggerEnabled, err := strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cfg := Config{
		AppEnv:                    appEnv,
		ServiceName:               strings.TrimSpace(getEnv("APP_SERVICE_NAME", "soccer-coach-api")),
		ServiceVersion:            strings.TrimSpace(getEnv("APP_SERVICE_VERSION", "dev")),
		HTTPAddr:                  strings.TrimSpace(getEnv("APP_HTTP_ADDR", ":8080")),
		ReadTimeout:               readTimeout,
		WriteTimeout:              writeTimeout,
		CORSAllowedOrigins:        splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		SwaggerEnabled:            swaggerEnabled,
		PprofEnabled:              pprofEnabled,
		PprofAddr:                 strings.TrimSpace(getEnv("PPROF_ADDR", ":6060")),
		StorageOwnerID:            strings.TrimSpace(getEnv("STORAGE_OWNER_ID", "")),
		DBURL:                     strings.TrimSpace(getEnv("DB_URL", "")),
		LocalStorePath:            strings.TrimSpace(getEnv("LOCAL_STORE_PATH", "soccer-coach.db")),
		MigrationLegacyComponents: splitCSV(getEnv("MIGRATION_LEGACY_COMPONENTS", "")),
		UptraceEnabled:            uptraceEnabled,
		UptraceDSN:                uptraceDSN,
		LogLevel:                  parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	cfg.StorageProvider, err = parseStorageProvider(getEnv("STORAGE_PROVIDER", StorageProviderLocal))
	if err != nil {
		return Config{}, err
	}
	if cfg.StorageProvider == StorageProviderPostgres {
		if cfg.DBURL == "" {
			return Config{}, fmt.Errorf("DB_URL is required when STORAGE_PROVIDER=postgres")
		}
		if cfg.StorageOwnerID == "" {
			return Config{}, fmt.Errorf("STORAGE_OWNER_ID is required when STORAGE_PROVIDER=postgres")
		}
	}
	if cfg.StorageProvider == StorageProviderLocal && cfg.LocalStorePath == "" {
		return Config{}, fmt.Errorf("LOCAL_STORE_PATH cannot be empty when STORAGE_PROVIDER=local")
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}
	cfg.DBDisablePreparedBinary = dbDisablePreparedBinary

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}
	cfg.CacheEnabled = cacheEnabled
	cfg.CacheTTL = cacheTTL

	saveRetryAttempts, err := getEnvAsInt("SAVE_RETRY_ATTEMPTS", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse SAVE_RETRY_ATTEMPTS: %w", err)
	}
	if saveRetryAttempts < 1 {
		return Config{}, fmt.Errorf("SAVE_RETRY_ATTEMPTS must be >= 1")
	}
	saveRetryDelay, err := time.ParseDuration(getEnv("SAVE_RETRY_DELAY", "1s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SAVE_RETRY_DELAY: %w", err)
	}
	if saveRetryDelay < 0 {
		return Config{}, fmt.Errorf("SAVE_RETRY_DELAY cannot be negative")
	}
	cfg.SaveRetryAttempts = saveRetryAttempts
	cfg.SaveRetryDelay = saveRetryDelay

	storageCircuitEnabled, err := strconv.ParseBool(getEnv("STORAGE_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STORAGE_CIRCUIT_ENABLED: %w", err)
	}
	storageCircuitFailureCount, err := getEnvAsInt("STORAGE_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse STORAGE_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if storageCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("STORAGE_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	storageCircuitOpenTimeout, err := time.ParseDuration(getEnv("STORAGE_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STORAGE_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if storageCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("STORAGE_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	storageCircuitHalfOpenMaxReq, err := getEnvAsInt("STORAGE_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse STORAGE_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if storageCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("STORAGE_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	cfg.StorageCircuitEnabled = storageCircuitEnabled
	cfg.StorageCircuitFailureCount = storageCircuitFailureCount
	cfg.StorageCircuitOpenTimeout = storageCircuitOpenTimeout
	cfg.StorageCircuitHalfOpenMaxRq = storageCircuitHalfOpenMaxReq

	migrationForceLegacy, err := strconv.ParseBool(getEnv("MIGRATION_FORCE_LEGACY", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse MIGRATION_FORCE_LEGACY: %w", err)
	}
	cfg.MigrationForceLegacy = migrationForceLegacy

	importMaxWorkers, err := getEnvAsInt("IMPORT_MAX_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse IMPORT_MAX_WORKERS: %w", err)
	}
	if importMaxWorkers < 1 {
		return Config{}, fmt.Errorf("IMPORT_MAX_WORKERS must be >= 1")
	}
	cfg.ImportMaxWorkers = importMaxWorkers

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseStorageProvider(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case StorageProviderPostgres, StorageProviderLocal:
		return value, nil
	default:
		return "", fmt.Errorf("invalid STORAGE_PROVIDER %q: valid values are %s, %s", v, StorageProviderPostgres, StorageProviderLocal)
	}
}
