package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Valuation  ValuationConfig
	Gemini     GeminiConfig
	OpenAI     OpenAIConfig
	Chat       ChatConfig
	Logging    LoggingConfig
	Theme      ThemeConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration.
// The valuation history is only recorded when Enabled is true.
type PostgreSQLConfig struct {
	DSN                string // full connection string, takes precedence
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
	Enabled            bool
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// ValuationConfig selects the valuation backend
type ValuationConfig struct {
	Provider string // auto, gemini, openai, heuristic
	Currency string
}

// GeminiConfig holds Google Generative AI configuration
type GeminiConfig struct {
	APIKey        string
	Model         string
	FallbackModel string
	BaseURL       string // override for proxies, empty means Google's endpoint
	Timeout       int
	Enabled       bool
}

// OpenAIConfig holds OpenAI-compatible API configuration
type OpenAIConfig struct {
	APIKey          string
	APIBase         string
	ChatModel       string
	ChatTemperature float64
	ChatTopP        float64
	ChatMaxTokens   int
	ChatExtraBody   string // JSON string for extra_body (e.g., {"chat_template_kwargs":{"thinking":true}})
	Timeout         int
	Enabled         bool
}

// ChatConfig holds conversational interface settings
type ChatConfig struct {
	SessionTTL    time.Duration
	ThinkingDelay time.Duration
	AIExtraction  bool // ask the model for fields the keyword extractor missed
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
	Dir    string
}

// ThemeConfig holds the dark mode default and where the CLI keeps it
type ThemeConfig struct {
	DarkMode  bool
	PrefsPath string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	geminiKey := getEnv("GOOGLE_API_KEY", getEnv("GEMINI_API_KEY", ""))

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", ""))),
			Host:               getEnv("PG_HOST", ""),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "car_valuation"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 2),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		Valuation: ValuationConfig{
			Provider: strings.ToLower(getEnv("VALUATION_PROVIDER", "auto")),
			Currency: getEnv("VALUATION_CURRENCY", "Indian Rupees (₹)"),
		},
		Gemini: GeminiConfig{
			APIKey:        geminiKey,
			Model:         getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			FallbackModel: getEnv("GEMINI_FALLBACK_MODEL", "gemini-1.0-pro"),
			BaseURL:       getEnv("GEMINI_BASE_URL", ""),
			Timeout:       getEnvAsInt("GEMINI_TIMEOUT", 30),
			Enabled:       geminiKey != "",
		},
		OpenAI: OpenAIConfig{
			APIKey:          getEnv("OPENAI_API_KEY", ""),
			APIBase:         getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"),
			ChatModel:       getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			ChatTemperature: getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0.4),
			ChatTopP:        getEnvAsFloat("OPENAI_CHAT_TOP_P", 0.9),
			ChatMaxTokens:   getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", 1024),
			ChatExtraBody:   getEnv("OPENAI_CHAT_EXTRA_BODY", ""),
			Timeout:         getEnvAsInt("OPENAI_TIMEOUT", 30),
			Enabled:         getEnv("OPENAI_API_KEY", "") != "",
		},
		Chat: ChatConfig{
			SessionTTL:    time.Duration(getEnvAsInt("CHAT_SESSION_TTL_MINUTES", 60)) * time.Minute,
			ThinkingDelay: time.Duration(getEnvAsInt("CHAT_THINKING_DELAY_MS", 0)) * time.Millisecond,
			AIExtraction:  getEnvAsBool("CHAT_AI_EXTRACTION", false),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Dir:    getEnv("LOG_DIR", "./logs"),
		},
		Theme: ThemeConfig{
			DarkMode:  getEnvAsBool("THEME_DARK_MODE", true),
			PrefsPath: getEnv("CARVALUE_PREFS_PATH", defaultPrefsPath()),
		},
	}

	cfg.PostgreSQL.Enabled = cfg.PostgreSQL.DSN != "" || cfg.PostgreSQL.Host != ""

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted silently
func (c *Config) Validate() error {
	switch c.Valuation.Provider {
	case "auto", "gemini", "openai", "heuristic":
	default:
		return fmt.Errorf("invalid VALUATION_PROVIDER %q, must be one of: auto, gemini, openai, heuristic", c.Valuation.Provider)
	}
	if c.Valuation.Provider == "gemini" && !c.Gemini.Enabled {
		return fmt.Errorf("VALUATION_PROVIDER=gemini requires GOOGLE_API_KEY")
	}
	if c.Valuation.Provider == "openai" && !c.OpenAI.Enabled {
		return fmt.Errorf("VALUATION_PROVIDER=openai requires OPENAI_API_KEY")
	}
	if c.Chat.SessionTTL <= 0 {
		return fmt.Errorf("CHAT_SESSION_TTL_MINUTES must be positive")
	}
	return nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func defaultPrefsPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".carvalue/prefs.bolt"
	}
	return home + "/.carvalue/prefs.bolt"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
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
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}
