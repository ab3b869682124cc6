package config

import (
	"os"
	"strconv"
	"time"
)

// Structured output modes supported by the generation client
const (
	StructuredModeJSONObject = "json_object" // schema goes into the system prompt
	StructuredModeJSONSchema = "json_schema" // strict response_format schema
)

// LLM providers
const (
	ProviderOpenAI    = "openai"    // any OpenAI-compatible endpoint
	ProviderAnthropic = "anthropic" // Claude via the Anthropic API
)

// DashScopeBaseURL is the OpenAI-compatible endpoint used by default
const DashScopeBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"

type Config struct {
	Port            string
	Environment     string
	SupabaseURL     string
	SupabaseDBURL   string
	SupabaseJWKSURL string // Constructed from SupabaseURL + /auth/v1/.well-known/jwks.json
	CORSOrigins     string
	TablePrefix     string
	LogDir          string
	// LLM Configuration
	LLMProvider       string
	LLMAPIKey         string
	LLMBaseURL        string
	LLMModel          string
	StructuredMode    string
	StructuredTimeout time.Duration // ceiling for report, plan and role calls
	ChatTimeout       time.Duration // ceiling for chat streams and title summaries
	MaxToolSteps      int
	// SSEKeepAlive spaces ": keepalive" comments on chat streams, below
	// the idle timeout of common proxies
	SSEKeepAlive time.Duration
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)
	supabaseURL := getEnv("SUPABASE_URL", "")

	var jwksURL string
	if supabaseURL != "" {
		jwksURL = supabaseURL + "/auth/v1/.well-known/jwks.json"
	}

	provider := getEnv("LLM_PROVIDER", ProviderOpenAI)
	apiKey := getEnv("LLM_API_KEY", os.Getenv("DASHSCOPE_API_KEY"))
	baseURL := getEnv("LLM_BASE_URL", DashScopeBaseURL)
	model := getEnv("LLM_MODEL", "qwen-plus")
	if provider == ProviderAnthropic {
		apiKey = getEnv("LLM_API_KEY", os.Getenv("ANTHROPIC_API_KEY"))
		baseURL = getEnv("LLM_BASE_URL", "")
		model = getEnv("LLM_MODEL", "")
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     env,
		SupabaseURL:     supabaseURL,
		SupabaseDBURL:   getEnv("SUPABASE_DB_URL", ""),
		SupabaseJWKSURL: jwksURL,
		CORSOrigins:     getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:     tablePrefix,
		LogDir:          getEnv("LOG_DIR", ""),
		// LLM Configuration
		LLMProvider:       provider,
		LLMAPIKey:         apiKey,
		LLMBaseURL:        baseURL,
		LLMModel:          model,
		StructuredMode:    getEnv("LLM_STRUCTURED_MODE", StructuredModeJSONObject),
		StructuredTimeout: getDuration("LLM_STRUCTURED_TIMEOUT", 60*time.Second),
		ChatTimeout:       getDuration("LLM_CHAT_TIMEOUT", 30*time.Second),
		SSEKeepAlive:      getDuration("SSE_KEEPALIVE_INTERVAL", 10*time.Second),
		MaxToolSteps:      getInt("LLM_MAX_TOOL_STEPS", 5),
	}
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix, ok := os.LookupEnv("TABLE_PREFIX"); ok {
		return prefix
	}

	switch env {
	case "prod":
		return ""
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
