// README: Config loader — .env plus environment variables via viper.
package config

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	HTTPAddr string `mapstructure:"TRIPPY_HTTP_ADDR"`

	GeminiKey  string `mapstructure:"GEMINI_API_KEY"`
	SerpKey    string `mapstructure:"SERP_API_KEY"`
	WeatherKey string `mapstructure:"WEATHER_KEY"`

	GoogleSearchKey      string `mapstructure:"GOOGLE_SEARCH_API"`
	GoogleSearchEngineID string `mapstructure:"GOOGLE_SEARCH_ENGINE_ID"`
	GoogleSearchEndpoint string `mapstructure:"GOOGLE_API_ENDPOINT"`

	RedisAddr  string        `mapstructure:"TRIPPY_REDIS_ADDR"`
	SessionTTL time.Duration `mapstructure:"TRIPPY_SESSION_TTL"`

	// Optional; the itinerary archive is disabled when empty.
	PostgresDSN string `mapstructure:"TRIPPY_DB_DSN"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
}

// Load reads .env (when present) and the environment.
func Load() (Config, error) {
	// Same dotenv behavior as local development expects; absence is fine.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("TRIPPY_HTTP_ADDR", ":8080")
	v.SetDefault("TRIPPY_REDIS_ADDR", "localhost:6379")
	v.SetDefault("TRIPPY_SESSION_TTL", "24h")
	v.SetDefault("LOG_LEVEL", "info")

	// AutomaticEnv alone does not surface env vars through Unmarshal; bind
	// every key explicitly.
	for _, key := range []string{
		"TRIPPY_HTTP_ADDR", "GEMINI_API_KEY", "SERP_API_KEY", "WEATHER_KEY",
		"GOOGLE_SEARCH_API", "GOOGLE_SEARCH_ENGINE_ID", "GOOGLE_API_ENDPOINT",
		"TRIPPY_REDIS_ADDR", "TRIPPY_SESSION_TTL", "TRIPPY_DB_DSN", "LOG_LEVEL",
	} {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.GeminiKey == "" {
		return Config{}, errors.New("GEMINI_API_KEY is required")
	}
	if cfg.SerpKey == "" {
		return Config{}, errors.New("SERP_API_KEY is required")
	}
	return cfg, nil
}
