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

// Session backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

type Config struct {
	Env  string
	Port int

	API     APIConfig
	Session SessionConfig
	Redis   RedisConfig
	CORS    CORSConfig
	Log     LogConfig
	Metrics MetricsConfig
	Exports ExportsConfig
}

// APIConfig points the console at the remote student/course API.
type APIConfig struct {
	BaseURL            string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// SessionConfig controls per-browser view state retention.
type SessionConfig struct {
	Backend         string
	TTL             time.Duration
	JanitorInterval time.Duration
	CookieName      string
	CookieSecure    bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig toggles the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

// ExportsConfig toggles CSV/PDF downloads of the displayed list.
type ExportsConfig struct {
	Enabled bool
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

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.API = APIConfig{
		BaseURL:            strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
		Timeout:            parseDuration(v.GetString("API_TIMEOUT"), 0),
		InsecureSkipVerify: v.GetBool("API_INSECURE_SKIP_VERIFY"),
	}

	backend := strings.ToLower(strings.TrimSpace(v.GetString("SESSION_BACKEND")))
	if backend != SessionBackendRedis {
		backend = SessionBackendMemory
	}
	cfg.Session = SessionConfig{
		Backend:         backend,
		TTL:             parseDuration(v.GetString("SESSION_TTL"), 30*time.Minute),
		JanitorInterval: parseDuration(v.GetString("SESSION_JANITOR_INTERVAL"), time.Minute),
		CookieName:      v.GetString("SESSION_COOKIE_NAME"),
		CookieSecure:    v.GetBool("SESSION_COOKIE_SECURE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}
	cfg.Exports = ExportsConfig{Enabled: v.GetBool("ENABLE_EXPORTS")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)

	v.SetDefault("API_BASE_URL", "https://localhost:7007")
	v.SetDefault("API_TIMEOUT", "0")
	v.SetDefault("API_INSECURE_SKIP_VERIFY", false)

	v.SetDefault("SESSION_BACKEND", SessionBackendMemory)
	v.SetDefault("SESSION_TTL", "30m")
	v.SetDefault("SESSION_JANITOR_INTERVAL", "1m")
	v.SetDefault("SESSION_COOKIE_NAME", "console_session")
	v.SetDefault("SESSION_COOKIE_SECURE", false)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_METRICS", true)
	v.SetDefault("ENABLE_EXPORTS", true)
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
