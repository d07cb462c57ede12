package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the tracker.
type Config struct {
	App       AppConfig
	Storage   StorageConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Redis     RedisConfig
	Postgres  PostgresConfig
	Backup    BackupConfig
	Scheduler SchedulerConfig
}

// AppConfig controls HTTP server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// StorageConfig locates the four store files.
type StorageConfig struct {
	DataDir              string
	TicketsFile          string
	ArchiveTicketsFile   string
	RemindersFile        string
	ArchiveRemindersFile string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string
	Output string
}

// AuthConfig protects the HTTP API. An empty PasswordHash disables auth.
type AuthConfig struct {
	JWTSecret             string
	PasswordHash          string
	AccessTokenTTLMinutes int
}

// RedisConfig holds Redis connection values. An empty Addr disables the publisher.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// PostgresConfig holds archive mirror connection values. An empty DSN disables it.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// BackupConfig selects the S3 destination for `tracker backup`.
type BackupConfig struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	PathStyle bool
}

// SchedulerConfig controls one-shot reminder notifications.
type SchedulerConfig struct {
	FireHour int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	fireHour := getEnvAsInt("REMINDER_FIRE_HOUR", 10)
	if fireHour < 0 || fireHour > 23 {
		return nil, fmt.Errorf("invalid REMINDER_FIRE_HOUR: %d", fireHour)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "ticket-tracker"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "127.0.0.1"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Storage: StorageConfig{
			DataDir:              getEnv("TRACKER_DATA_DIR", "."),
			TicketsFile:          getEnv("TRACKER_TICKETS_FILE", "tickets.csv"),
			ArchiveTicketsFile:   getEnv("TRACKER_ARCHIVE_TICKETS_FILE", "archive_tickets.csv"),
			RemindersFile:        getEnv("TRACKER_REMINDERS_FILE", "reminders.csv"),
			ArchiveRemindersFile: getEnv("TRACKER_ARCHIVE_REMINDERS_FILE", "archive_reminders.csv"),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Output: getEnv("LOG_OUTPUT", "stderr"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			PasswordHash:          os.Getenv("AUTH_PASSWORD_HASH"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
			Channel:  getEnv("REDIS_CHANNEL", "tracker:events"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 4)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Backup: BackupConfig{
			Bucket:    os.Getenv("BACKUP_S3_BUCKET"),
			Prefix:    getEnv("BACKUP_S3_PREFIX", "tracker/"),
			Region:    getEnv("BACKUP_S3_REGION", "us-east-1"),
			Endpoint:  os.Getenv("BACKUP_S3_ENDPOINT"),
			PathStyle: getEnvAsBool("BACKUP_S3_PATH_STYLE", false),
		},
		Scheduler: SchedulerConfig{
			FireHour: fireHour,
		},
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

// Path joins a store file name onto the data directory. Absolute names are kept.
func (s StorageConfig) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.DataDir, name)
}

// Files returns every store file path in a stable order.
func (s StorageConfig) Files() []string {
	return []string{
		s.Path(s.TicketsFile),
		s.Path(s.ArchiveTicketsFile),
		s.Path(s.RemindersFile),
		s.Path(s.ArchiveRemindersFile),
	}
}

// TokenTTL returns the access token lifetime.
func (a AuthConfig) TokenTTL() time.Duration {
	if a.AccessTokenTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
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
