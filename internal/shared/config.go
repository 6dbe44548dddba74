package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string

	// Store: MySQLDSN wins over SeedFile; both empty means not configured.
	MySQLDSN string
	SeedFile string

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	SiteBaseURL string

	PlacesBase   string
	PlacesKey    string
	PlacesLang   string
	PlaceIDsFile string
	Workers      int
	IngestRPS    int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	return Config{
		AppEnv:       env("APP_ENV", "prod"),
		LogLevel:     env("LOG_LEVEL", "info"),
		HTTPAddr:     env("HTTP_ADDR", ":8080"),
		MetricsAddr:  os.Getenv("METRICS_ADDR"),
		MySQLDSN:     os.Getenv("MYSQL_DSN"),
		SeedFile:     os.Getenv("CATALOG_SEED_FILE"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		RedisPass:    env("REDIS_PASSWORD", ""),
		RedisDB:      atoi("REDIS_DB", 0),
		CacheTTL:     time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		SiteBaseURL:  strings.TrimRight(env("SITE_BASE_URL", "https://bowlo.nl"), "/"),
		PlacesBase:   env("PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place"),
		PlacesKey:    os.Getenv("PLACES_API_KEY"),
		PlacesLang:   env("PLACES_LANGUAGE", "nl"),
		PlaceIDsFile: env("PLACE_IDS_FILE", "place_ids.txt"),
		Workers:      atoi("INGEST_WORKERS", 8),
		IngestRPS:    atoi("INGEST_RPS", 5),
	}
}

// StoreConfigured reports whether any catalog store is set.
func (c Config) StoreConfigured() bool { return c.MySQLDSN != "" || c.SeedFile != "" }

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
