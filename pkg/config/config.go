package config

import (
	"errors"
	"fmt"
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

// Supported database/sql driver names.
const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Dashboard DashboardConfig
	Engine    EngineConfig
	Export    ExportConfig
}

type DatabaseConfig struct {
	Driver       string
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
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns the host:port pair of the Redis server.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

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

// DashboardConfig governs dashboard exposure and cache tuning.
type DashboardConfig struct {
	Enabled        bool
	CacheTTL       time.Duration
	RefreshWorkers int
}

// EngineConfig carries the policy knobs of the period/roster/statistics engine.
// Thresholds are handed to the engine explicitly by each consumer.
type EngineConfig struct {
	Timezone                 string
	ApprovalThreshold        float64
	SatisfactoryThreshold    float64
	JustifiedCountsAsAbsence bool
	RegularMinPercentage     float64
	AtRiskMinPercentage      float64
	TopReasons               int
}

// ExportConfig shapes CSV downloads for spreadsheet tools.
type ExportConfig struct {
	CSVDelimiter rune
	CSVBOM       bool
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
		Driver:       normaliseDriver(v.GetString("DB_DRIVER")),
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
		Enabled:  v.GetBool("REDIS_ENABLED"),
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

	cfg.Dashboard = DashboardConfig{
		Enabled:        v.GetBool("ENABLE_DASHBOARD"),
		CacheTTL:       parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
		RefreshWorkers: v.GetInt("DASHBOARD_REFRESH_WORKERS"),
	}

	cfg.Engine = EngineConfig{
		Timezone:                 v.GetString("ENGINE_TIMEZONE"),
		ApprovalThreshold:        v.GetFloat64("ENGINE_APPROVAL_THRESHOLD"),
		SatisfactoryThreshold:    v.GetFloat64("ENGINE_SATISFACTORY_THRESHOLD"),
		JustifiedCountsAsAbsence: v.GetBool("ENGINE_JUSTIFIED_COUNTS_AS_ABSENCE"),
		RegularMinPercentage:     v.GetFloat64("ENGINE_REGULAR_MIN_PERCENTAGE"),
		AtRiskMinPercentage:      v.GetFloat64("ENGINE_AT_RISK_MIN_PERCENTAGE"),
		TopReasons:               v.GetInt("ENGINE_TOP_REASONS"),
	}

	cfg.Export = ExportConfig{
		CSVDelimiter: parseDelimiter(v.GetString("EXPORT_CSV_DELIMITER")),
		CSVBOM:       v.GetBool("EXPORT_CSV_BOM"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "school_portal")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_DASHBOARD", true)
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")
	v.SetDefault("DASHBOARD_REFRESH_WORKERS", 2)

	v.SetDefault("ENGINE_TIMEZONE", "America/Argentina/Buenos_Aires")
	v.SetDefault("ENGINE_APPROVAL_THRESHOLD", 4)
	v.SetDefault("ENGINE_SATISFACTORY_THRESHOLD", 7)
	v.SetDefault("ENGINE_JUSTIFIED_COUNTS_AS_ABSENCE", true)
	v.SetDefault("ENGINE_REGULAR_MIN_PERCENTAGE", 85)
	v.SetDefault("ENGINE_AT_RISK_MIN_PERCENTAGE", 75)
	v.SetDefault("ENGINE_TOP_REASONS", 5)

	v.SetDefault("EXPORT_CSV_DELIMITER", ",")
	v.SetDefault("EXPORT_CSV_BOM", false)
}

func normaliseDriver(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case DriverPgx:
		return DriverPgx
	default:
		return DriverPostgres
	}
}

func parseDelimiter(raw string) rune {
	switch strings.TrimSpace(raw) {
	case ";":
		return ';'
	case "|":
		return '|'
	case "tab", `\t`:
		return '\t'
	default:
		return ','
	}
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
