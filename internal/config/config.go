package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AddressingMode selects how the two worksheets are resolved from the
// spreadsheet: by tab position or by tab name.
type AddressingMode string

const (
	AddressingPositional AddressingMode = "positional"
	AddressingNamed      AddressingMode = "named"
)

// FinishPolicy selects whether finishing a ticket takes effect immediately or
// requires an explicit confirm step.
type FinishPolicy string

const (
	FinishDirect  FinishPolicy = "direct"
	FinishConfirm FinishPolicy = "confirm"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Sheets   SheetsConfig
	Cache    CacheConfig
	Session  SessionConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Logger   LoggerConfig
	Qualitor QualitorConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	FinishPolicy          FinishPolicy
}

// SheetsConfig locates the spreadsheet and drives the bootstrap.
type SheetsConfig struct {
	SpreadsheetID     string
	CredentialsJSON   string
	CredentialsFile   string
	Addressing        AddressingMode
	TicketsSheet      string
	AgentsSheet       string
	BootstrapAttempts int
	BootstrapBaseSec  int
	BootstrapStepSec  int
}

// CacheConfig controls the display snapshot of the ticket table.
type CacheConfig struct {
	TTLSeconds int
}

// SessionConfig controls login sessions.
type SessionConfig struct {
	TokenSecret string
	TTLMinutes  int
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// PostgresConfig holds audit-trail DB values. Empty DSN disables the trail.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// QualitorConfig configures outbound ticket links.
type QualitorConfig struct {
	LinkBase string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	addressing := AddressingMode(getEnv("SHEETS_ADDRESSING", string(AddressingPositional)))
	if addressing != AddressingPositional && addressing != AddressingNamed {
		return nil, fmt.Errorf("invalid SHEETS_ADDRESSING: %q", addressing)
	}

	finishPolicy := FinishPolicy(getEnv("APP_FINISH_POLICY", string(FinishConfirm)))
	if finishPolicy != FinishDirect && finishPolicy != FinishConfirm {
		return nil, fmt.Errorf("invalid APP_FINISH_POLICY: %q", finishPolicy)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "esteira"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			FinishPolicy:          finishPolicy,
		},
		Sheets: SheetsConfig{
			SpreadsheetID:     getEnv("SHEETS_SPREADSHEET_ID", ""),
			CredentialsJSON:   os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
			CredentialsFile:   getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
			Addressing:        addressing,
			TicketsSheet:      getEnv("SHEETS_TICKETS_TAB", "Chamados"),
			AgentsSheet:       getEnv("SHEETS_AGENTS_TAB", "Users"),
			BootstrapAttempts: getEnvAsInt("SHEETS_BOOTSTRAP_ATTEMPTS", 10),
			BootstrapBaseSec:  getEnvAsInt("SHEETS_BOOTSTRAP_BASE_SECONDS", 2),
			BootstrapStepSec:  getEnvAsInt("SHEETS_BOOTSTRAP_STEP_SECONDS", 1),
		},
		Cache: CacheConfig{
			TTLSeconds: getEnvAsInt("SNAPSHOT_TTL_SECONDS", 10),
		},
		Session: SessionConfig{
			TokenSecret: getEnv("SESSION_TOKEN_SECRET", "dev-secret"),
			TTLMinutes:  getEnvAsInt("SESSION_TTL_MINUTES", 720),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Qualitor: QualitorConfig{
			LinkBase: getEnv("QUALITOR_LINK_BASE", "https://frigelar.qualitorsoftware.com/html/hd/hdchamado/cadastro_chamado.php"),
		},
	}

	if cfg.Sheets.SpreadsheetID == "" {
		return nil, fmt.Errorf("SHEETS_SPREADSHEET_ID is required")
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// TTL returns the snapshot validity window.
func (c CacheConfig) TTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TTLSeconds) * time.Second
}

// TTL returns the session lifetime.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLMinutes <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(s.TTLMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
