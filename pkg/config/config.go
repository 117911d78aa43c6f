package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Migrations MigrationsConfig
	Conflicts  ConflictsConfig
	Scheduler  SchedulerConfig
	Feeds      FeedsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds the shared secret used to verify bearer tokens issued by the identity provider.
type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MigrationsConfig toggles embedded schema migrations on boot.
type MigrationsConfig struct {
	Enabled bool
}

// ConflictsConfig governs caching of conflict audit reports.
type ConflictsConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// FeedsConfig signs calendar subscription links. An empty secret falls back to the JWT secret.
type FeedsConfig struct {
	Secret string
	TTL    time.Duration
}

// SchedulerConfig tunes the exam scheduling windows and job runner.
type SchedulerConfig struct {
	MidtermStartWeek int
	FinalStartWeek   int
	MidtermWeeks     int
	FinalWeeks       int
	DefaultMaxLoad   int
	SnugMargin       int
	JobRetention     time.Duration
	JobBuffer        int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{Secret: v.GetString("JWT_SECRET")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Migrations = MigrationsConfig{Enabled: v.GetBool("RUN_MIGRATIONS")}

	cfg.Conflicts = ConflictsConfig{
		CacheEnabled: v.GetBool("ENABLE_CONFLICT_CACHE"),
		CacheTTL:     parseDuration(v.GetString("CONFLICT_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Scheduler = SchedulerConfig{
		MidtermStartWeek: v.GetInt("SCHEDULER_MIDTERM_START_WEEK"),
		FinalStartWeek:   v.GetInt("SCHEDULER_FINAL_START_WEEK"),
		MidtermWeeks:     v.GetInt("SCHEDULER_MIDTERM_WEEKS"),
		FinalWeeks:       v.GetInt("SCHEDULER_FINAL_WEEKS"),
		DefaultMaxLoad:   v.GetInt("SCHEDULER_DEFAULT_MAX_LOAD"),
		SnugMargin:       v.GetInt("SCHEDULER_SNUG_MARGIN"),
		JobRetention:     parseDuration(v.GetString("SCHEDULER_JOB_RETENTION"), time.Hour),
		JobBuffer:        v.GetInt("SCHEDULER_JOB_BUFFER"),
	}

	cfg.Feeds = FeedsConfig{
		Secret: v.GetString("CALENDAR_FEED_SECRET"),
		TTL:    parseDuration(v.GetString("CALENDAR_FEED_TTL"), 30*24*time.Hour),
	}
	if cfg.Feeds.Secret == "" {
		cfg.Feeds.Secret = cfg.JWT.Secret
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "exam_scheduler")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("RUN_MIGRATIONS", true)

	v.SetDefault("ENABLE_CONFLICT_CACHE", false)
	v.SetDefault("CONFLICT_CACHE_TTL", "5m")

	v.SetDefault("SCHEDULER_MIDTERM_START_WEEK", 7)
	v.SetDefault("SCHEDULER_FINAL_START_WEEK", 16)
	v.SetDefault("SCHEDULER_MIDTERM_WEEKS", 4)
	v.SetDefault("SCHEDULER_FINAL_WEEKS", 6)
	v.SetDefault("SCHEDULER_DEFAULT_MAX_LOAD", 8)
	v.SetDefault("SCHEDULER_SNUG_MARGIN", 10)
	v.SetDefault("SCHEDULER_JOB_RETENTION", "1h")
	v.SetDefault("SCHEDULER_JOB_BUFFER", 8)

	v.SetDefault("CALENDAR_FEED_SECRET", "")
	v.SetDefault("CALENDAR_FEED_TTL", "720h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
