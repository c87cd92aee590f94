package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port            string
	Environment     string
	DatabaseURL     string
	LoggingConfig   LoggingConfig
	RedisConfig     RedisConfig
	WorldBankConfig WorldBankConfig
	GeoNamesConfig  GeoNamesConfig
	AirportConfig   AirportConfig
	BatchConfig     BatchConfig
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// RedisConfig holds the indicator cache connection. An empty Addr disables caching.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// WorldBankConfig holds the World Bank open data API settings
type WorldBankConfig struct {
	BaseURL  string
	Year     int
	Timeout  time.Duration
	RetryMax int
}

// GeoNamesConfig holds the GeoNames city population API settings
type GeoNamesConfig struct {
	BaseURL  string
	Username string
}

// AirportConfig selects the airport master data source: "files" reads the
// paths below, "postgres" reads the hubs, destinations and airport_positions tables.
type AirportConfig struct {
	Source           string
	AirportDBPath    string
	DestinationsPath string
}

// BatchConfig holds route batch estimation settings
type BatchConfig struct {
	Hub         string
	Concurrency int
	MaxRoutes   int
	Schedule    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	redisDB, err := strconv.Atoi(Get("REDIS_DB", "0"))
	if err != nil {
		redisDB = 0
	}
	redisTTL, err := time.ParseDuration(Get("REDIS_INDICATOR_TTL", "24h"))
	if err != nil {
		redisTTL = 24 * time.Hour
	}

	wbYear, err := strconv.Atoi(Get("WORLDBANK_YEAR", "2022"))
	if err != nil || wbYear < 1960 {
		wbYear = 2022
	}
	wbTimeout, err := time.ParseDuration(Get("WORLDBANK_TIMEOUT", "10s"))
	if err != nil {
		wbTimeout = 10 * time.Second
	}
	wbRetryMax, err := strconv.Atoi(Get("WORLDBANK_RETRY_MAX", "3"))
	if err != nil || wbRetryMax < 0 {
		wbRetryMax = 3
	}

	concurrency, err := strconv.Atoi(Get("BATCH_CONCURRENCY", "4"))
	if err != nil || concurrency < 1 {
		concurrency = 4
	}

	maxRoutes, err := strconv.Atoi(Get("BATCH_MAX_ROUTES", "200"))
	if err != nil || maxRoutes < 1 {
		maxRoutes = 200
	}

	source := strings.ToLower(Get("AIRPORT_SOURCE", "files"))
	if source != "files" && source != "postgres" {
		source = "files"
	}

	return &Config{
		Port:        Get("PORT", "8080"),
		Environment: Get("ENVIRONMENT", "development"),
		DatabaseURL: Get("DATABASE_URL", ""),
		LoggingConfig: LoggingConfig{
			Level:  Get("LOG_LEVEL", "info"),
			Format: Get("LOG_FORMAT", "json"),
			Output: Get("LOG_OUTPUT", "stderr"),
		},
		RedisConfig: RedisConfig{
			Addr:     Get("REDIS_ADDR", ""),
			Password: Get("REDIS_PASSWORD", ""),
			DB:       redisDB,
			Prefix:   Get("REDIS_PREFIX", "indicators"),
			TTL:      redisTTL,
		},
		WorldBankConfig: WorldBankConfig{
			BaseURL:  Get("WORLDBANK_BASE_URL", "https://api.worldbank.org/v2/"),
			Year:     wbYear,
			Timeout:  wbTimeout,
			RetryMax: wbRetryMax,
		},
		GeoNamesConfig: GeoNamesConfig{
			BaseURL:  Get("GEONAMES_BASE_URL", "http://api.geonames.org/"),
			Username: Get("GEONAMES_USERNAME", ""),
		},
		AirportConfig: AirportConfig{
			Source:           source,
			AirportDBPath:    Get("AIRPORT_DB_PATH", "data/GlobalAirportDatabase.txt"),
			DestinationsPath: Get("DESTINATIONS_PATH", "data/destinations.csv"),
		},
		BatchConfig: BatchConfig{
			Hub:         strings.ToUpper(Get("HUB_ICAO", "LSGG")),
			Concurrency: concurrency,
			MaxRoutes:   maxRoutes,
			Schedule:    Get("REFRESH_SCHEDULE", ""),
		},
	}, nil
}

// Get returns the trimmed environment variable for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
