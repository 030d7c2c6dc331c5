package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Search   SearchConfig
	Scrape   ScrapeConfig
	Auth     AuthConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

type DatabaseConfig struct {
	Connection string // empty disables the turn and audit log tables
}

type APIKeys struct {
	Tavily       string
	GoogleGemini string
	Anthropic    string
	HuggingFace  string
}

type AIConfig struct {
	LLMProvider   string // "gemini", "claude", "ollama", "huggingface"
	LLMModel      string
	OllamaBaseURL string
}

type SearchConfig struct {
	StateStore       string // "memory" or "redis"
	StateTTL         time.Duration
	MaxRetainedTurns int // 0 keeps every turn
	SummaryMaxWords  int
	TurnTopic        string
}

type ScrapeConfig struct {
	Timeout       time.Duration
	MaxChars      int
	RatePerSecond float64
	Mode          string
}

type AuthConfig struct {
	JWTSecret string // empty leaves the API open
}

// Load reads .env (if any) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}
	return FromEnv()
}

// FromEnv builds the config from the current environment only.
func FromEnv() *Config {
	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			Tavily:       getEnv("TAVILY_API_KEY", ""),
			GoogleGemini: firstEnv("GOOGLE_GEMINI_API_KEY", "GEMINI_API_KEY"),
			Anthropic:    getEnv("ANTHROPIC_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:      getEnv("LLM_MODEL", ""),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Search: SearchConfig{
			StateStore:       getEnv("STATE_STORE", "memory"),
			StateTTL:         getEnvAsDuration("STATE_TTL", 0),
			MaxRetainedTurns: getEnvAsInt("SEARCH_MAX_RETAINED_TURNS", 0),
			SummaryMaxWords:  getEnvAsInt("SUMMARY_MAX_WORDS", 250),
			TurnTopic:        getEnv("SEARCH_TURN_TOPIC", "search_turns"),
		},
		Scrape: ScrapeConfig{
			Timeout:       getEnvAsDuration("SCRAPE_TIMEOUT", 15*time.Second),
			MaxChars:      getEnvAsInt("SCRAPE_MAX_CHARS", 10000),
			RatePerSecond: getEnvAsFloat("SCRAPE_RATE_PER_SECOND", 0),
			Mode:          getEnv("SCRAPE_MODE", "text"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}
