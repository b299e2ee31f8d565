package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// External feeds
	TWSE  TWSEConfig
	TPEx  TPExConfig
	Yahoo YahooConfig

	// Outbound HTTP
	HTTP HTTPConfig

	// Snapshot refresh
	Snapshot SnapshotConfig

	// Strategy YAML (screening thresholds, leaderboard size); empty uses built-in defaults
	StrategyFile string

	// Logging
	LogLevel  string
	LogFormat string
}

// TWSEConfig holds Taiwan Stock Exchange endpoints (listed market + ISIN directory)
type TWSEConfig struct {
	BaseURL     string // T86 institutional flow
	ISINBaseURL string // 證券編碼公告 (listed + OTC directory pages)
}

// TPExConfig holds Taipei Exchange (OTC market) endpoints
type TPExConfig struct {
	BaseURL string
}

// YahooConfig holds the price-history provider endpoint
type YahooConfig struct {
	BaseURL string
	Range   string // lookback window, e.g. "1y"
}

// HTTPConfig holds outbound HTTP behaviour shared by every feed client
type HTTPConfig struct {
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables throttling
	Burst     int
	UserAgent string
}

// SnapshotConfig holds cache windows and the refresh schedule
type SnapshotConfig struct {
	DirectoryTTL    time.Duration
	FlowTTL         time.Duration
	RefreshSchedule string // cron expression with seconds
	Timezone        string // exchange local time zone
	ScanTopN        int
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		TWSE: TWSEConfig{
			BaseURL:     getEnv("TWSE_BASE_URL", "https://www.twse.com.tw"),
			ISINBaseURL: getEnv("TWSE_ISIN_BASE_URL", "https://isin.twse.com.tw"),
		},

		TPEx: TPExConfig{
			BaseURL: getEnv("TPEX_BASE_URL", "https://www.tpex.org.tw"),
		},

		Yahoo: YahooConfig{
			BaseURL: getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			Range:   getEnv("YAHOO_RANGE", "1y"),
		},

		HTTP: HTTPConfig{
			Timeout:   getEnvAsDuration("HTTP_TIMEOUT", "10s"),
			RateLimit: getEnvAsFloat("HTTP_RATE_LIMIT", 5),
			Burst:     getEnvAsInt("HTTP_RATE_BURST", 5),
			UserAgent: getEnv("HTTP_USER_AGENT", DefaultUserAgent),
		},

		Snapshot: SnapshotConfig{
			DirectoryTTL:    getEnvAsDuration("DIRECTORY_TTL", "1h"),
			FlowTTL:         getEnvAsDuration("FLOW_TTL", "30m"),
			RefreshSchedule: getEnv("REFRESH_SCHEDULE", "0 */30 * * * *"),
			Timezone:        getEnv("MARKET_TIMEZONE", "Asia/Taipei"),
			ScanTopN:        getEnvAsInt("SCAN_TOP_N", 30),
		},

		StrategyFile: getEnv("STRATEGY_CONFIG", ""),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadFile loads an explicit env file before reading configuration.
// Variables already set in the environment take precedence.
func LoadFile(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", path, err)
		}
	}
	return Load()
}

// DefaultUserAgent is a browser-like identity; the exchange sites block bare clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Location returns the exchange time zone, falling back to a fixed UTC+8 zone
// when tzdata is not available on the host.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Snapshot.Timezone)
	if err != nil {
		return time.FixedZone("CST", 8*60*60)
	}
	return loc
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Snapshot.ScanTopN <= 0 {
		return fmt.Errorf("SCAN_TOP_N must be positive")
	}

	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
