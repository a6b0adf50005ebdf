package shared

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
)

// ConfigPathEnvVar points at an optional YAML file layered between the
// defaults and the environment.
const ConfigPathEnvVar = "CONFIG_PATH"

type Config struct {
	AppEnv          string        `koanf:"app_env"`
	LogLevel        string        `koanf:"log_level"`
	HTTPAddr        string        `koanf:"http_addr"`
	MetricsAddr     string        `koanf:"metrics_addr"`
	MySQLDSN        string        `koanf:"mysql_dsn"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// importer
	AccommodationsFeed string        `koanf:"accommodations_feed"`
	ReviewsFeed        string        `koanf:"reviews_feed"`
	FeedRPS            int           `koanf:"feed_rps"`
	FeedTimeout        time.Duration `koanf:"feed_timeout"`
}

func defaults() Config {
	return Config{
		AppEnv:             "prod",
		LogLevel:           "info",
		HTTPAddr:           ":8080",
		MetricsAddr:        "",
		MySQLDSN:           "root:root@tcp(localhost:3306)/zoover?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		ShutdownTimeout:    10 * time.Second,
		AccommodationsFeed: "data/accommodations.json",
		ReviewsFeed:        "data/reviews.json",
		FeedRPS:            5,
		FeedTimeout:        60 * time.Second,
	}
}

// envKeys maps the supported environment variables to config keys.
var envKeys = map[string]string{
	"APP_ENV":             "app_env",
	"LOG_LEVEL":           "log_level",
	"HTTP_ADDR":           "http_addr",
	"METRICS_ADDR":        "metrics_addr",
	"MYSQL_DSN":           "mysql_dsn",
	"SHUTDOWN_TIMEOUT":    "shutdown_timeout",
	"ACCOMMODATIONS_FEED": "accommodations_feed",
	"REVIEWS_FEED":        "reviews_feed",
	"FEED_RPS":            "feed_rps",
	"FEED_TIMEOUT":        "feed_timeout",
}

// Load layers defaults < YAML file (CONFIG_PATH) < environment.
func Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if err := k.Load(file.Provider(p), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", p, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.MySQLDSN == "" {
		return Config{}, fmt.Errorf("mysql_dsn is required")
	}
	if !strings.Contains(c.MySQLDSN, "parseTime=true") {
		log.Warn().Msg("MYSQL_DSN lacks parseTime=true; timestamp columns will not scan")
	}
	return c, nil
}

// envValue drops unknown and empty variables so they never mask a default.
func envValue(key, value string) (string, any) {
	k, ok := envKeys[key]
	if !ok || value == "" {
		return "", nil
	}
	return k, value
}
