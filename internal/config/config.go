// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LLM providers understood by the advisor
const (
	ProviderDeepSeek = "deepseek"
	ProviderGemini   = "gemini"
)

// Config holds application configuration
type Config struct {
	DataDir     string // Base directory for the SQLite file (always absolute)
	LogLevel    string
	Port        int
	DevMode     bool
	Locale      string // Presentation locale for labels: "zh" or "en"
	Currency    string // ISO code used when formatting amounts
	CORSOrigins []string
	HTTPTimeout time.Duration // Applied to every outbound provider call

	LLM          LLMConfig
	Market       MarketConfig
	Fundamentals FundamentalsConfig
	Backup       BackupConfig

	PriceRefreshSchedule string // Cron expression (with seconds); empty disables the job
	MaintenanceSchedule  string // Integrity and disk checks; empty disables the job
}

// LLMConfig selects and configures the commentary endpoint
type LLMConfig struct {
	Provider       string
	DeepSeekAPIKey string
	DeepSeekAPIURL string
	DeepSeekModel  string
	GeminiAPIKey   string
	GeminiModel    string
}

// MarketConfig configures the quote provider
type MarketConfig struct {
	SinaAPIURL  string
	SinaReferer string
}

// FundamentalsConfig configures the financial statements provider
type FundamentalsConfig struct {
	TushareToken  string
	TushareAPIURL string
}

// BackupConfig configures optional S3-compatible database backups
type BackupConfig struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string // Custom endpoint for S3-compatible stores (R2, MinIO)
	Schedule string // Cron expression; empty disables scheduled backups

	AccessKeyID     string // Static credentials; empty uses the default AWS chain
	SecretAccessKey string
	RetentionDays   int // 0 keeps every backup
}

// Enabled reports whether a backup bucket has been configured
func (b BackupConfig) Enabled() bool {
	return b.Bucket != ""
}

// DatabasePath returns the location of the finsight SQLite file
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "finsight.db")
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("FINSIGHT_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:     absDataDir,
		Port:        getEnvAsInt("PORT", 8001),
		DevMode:     getEnvAsBool("DEV_MODE", false),
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Locale:      strings.ToLower(getEnv("LOCALE", "zh")),
		Currency:    strings.ToUpper(getEnv("CURRENCY", "CNY")),
		CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"*"}),
		HTTPTimeout: time.Duration(getEnvAsInt("HTTP_TIMEOUT", 30)) * time.Second,
		LLM: LLMConfig{
			Provider:       strings.ToLower(getEnv("LLM_PROVIDER", ProviderDeepSeek)),
			DeepSeekAPIKey: getEnv("DEEPSEEK_API_KEY", ""),
			DeepSeekAPIURL: getEnv("DEEPSEEK_API_URL", "https://api.deepseek.com/v1/chat/completions"),
			DeepSeekModel:  getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
			GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
			GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		},
		Market: MarketConfig{
			SinaAPIURL:  getEnv("SINA_API_URL", "http://hq.sinajs.cn/list="),
			SinaReferer: getEnv("SINA_REFERER", "https://finance.sina.com.cn"),
		},
		Fundamentals: FundamentalsConfig{
			TushareToken:  getEnv("TUSHARE_TOKEN", ""),
			TushareAPIURL: getEnv("TUSHARE_API_URL", "http://api.tushare.pro"),
		},
		Backup: BackupConfig{
			Bucket:   getEnv("BACKUP_S3_BUCKET", ""),
			Prefix:   getEnv("BACKUP_S3_PREFIX", "finsight/"),
			Region:   getEnv("BACKUP_S3_REGION", "auto"),
			Endpoint: getEnv("BACKUP_S3_ENDPOINT", ""),
			Schedule: getEnv("BACKUP_SCHEDULE", ""),

			AccessKeyID:     getEnv("BACKUP_S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("BACKUP_S3_SECRET_ACCESS_KEY", ""),
			RetentionDays:   getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
		},
		MaintenanceSchedule:  getEnv("MAINTENANCE_SCHEDULE", ""),
		PriceRefreshSchedule: getEnv("PRICE_REFRESH_SCHEDULE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}

	switch c.LLM.Provider {
	case ProviderDeepSeek, ProviderGemini:
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q (expected %q or %q)", c.LLM.Provider, ProviderDeepSeek, ProviderGemini)
	}

	switch c.Locale {
	case "zh", "en":
	default:
		return fmt.Errorf("unsupported LOCALE %q (expected zh or en)", c.Locale)
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}

	// Provider credentials are optional: the matching features degrade to
	// fallback text when a key is missing.
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
