package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	DefaultServerPort      = "8080"
	DefaultMarketAPIURL    = "https://www.cse.lk/api/"
	DefaultCacheTimeout    = 30 * time.Second
	DefaultRefreshInterval = 60 * time.Second
	DefaultHTTPTimeout     = 15 * time.Second
	DefaultSiteManifest    = "site.yaml"
	DefaultStaticDir       = "web/static"
)

type Config struct {
	ServerPort       string
	MarketAPIBaseURL string
	CacheTimeout     time.Duration
	RefreshInterval  time.Duration
	HTTPTimeout      time.Duration
	SiteManifest     string
	StaticDir        string
	LogLevel         string
	LogFormat        string
}

// LoadConfig reads .env (if present) and the process environment.
// Malformed numeric values fall back to their defaults with a warning.
func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		logrus.Warn("Error loading .env file, using system environment variables")
	}

	return &Config{
		ServerPort:       getEnv("SERVER_PORT", DefaultServerPort),
		MarketAPIBaseURL: getEnv("MARKET_API_BASE_URL", DefaultMarketAPIURL),
		CacheTimeout:     getEnvMillis("MARKET_CACHE_TIMEOUT_MS", DefaultCacheTimeout),
		RefreshInterval:  getEnvMillis("MARKET_REFRESH_INTERVAL_MS", DefaultRefreshInterval),
		HTTPTimeout:      getEnvSeconds("HTTP_TIMEOUT_SECONDS", DefaultHTTPTimeout),
		SiteManifest:     getEnv("SITE_MANIFEST", DefaultSiteManifest),
		StaticDir:        getEnv("STATIC_DIR", DefaultStaticDir),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
	}
}

// ConfigureLogging applies LOG_LEVEL and LOG_FORMAT to the standard logrus logger
func (c *Config) ConfigureLogging() {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logrus.Warnf("Invalid LOG_LEVEL value: %s, using info", c.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if strings.EqualFold(c.LogFormat, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvMillis(key string, fallback time.Duration) time.Duration {
	return getEnvDuration(key, time.Millisecond, fallback)
}

func getEnvSeconds(key string, fallback time.Duration) time.Duration {
	return getEnvDuration(key, time.Second, fallback)
}

func getEnvDuration(key string, unit, fallback time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(raw) == "" {
		return fallback
	}

	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		logrus.Warnf("Invalid %s value: %s, using default %v", key, raw, fallback)
		return fallback
	}
	return time.Duration(n) * unit
}
