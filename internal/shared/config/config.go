package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	LLMProvider     string
	GeminiAPIKey    string
	OpenAIAPIKey    string
	OpenAIModel     string
	LLMTimeout      time.Duration
	AnalysisModel   string
	TailoringModel  string
	PaymentDelay    time.Duration
	PDFRenderer     string
	LLMRatePerMin   int
	SessionMaxIdle  time.Duration
	DatabaseURL     string
	AutoMigrate     bool
	Env             string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	geminiKey := getEnv("GEMINI_API_KEY", os.Getenv("API_KEY"))

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),
		LLMProvider:     normalizeProvider(getEnv("LLM_PROVIDER", "gemini")),
		GeminiAPIKey:    geminiKey,
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		LLMTimeout:      time.Duration(getEnvInt("LLM_TIMEOUT_SEC", 120)) * time.Second,
		AnalysisModel:   getEnv("ANALYSIS_MODEL", "gemini-3-flash-preview"),
		TailoringModel:  getEnv("TAILORING_MODEL", "gemini-3-pro-preview"),
		PaymentDelay:    time.Duration(getEnvInt("PAYMENT_DELAY_MS", 2000)) * time.Millisecond,
		PDFRenderer:     normalizeRenderer(getEnv("PDF_RENDERER", "fpdf")),
		LLMRatePerMin:   getEnvInt("RATE_LIMIT_LLM_PER_MIN", 10),
		SessionMaxIdle:  time.Duration(getEnvInt("SESSION_MAX_IDLE_MIN", 120)) * time.Minute,
		DatabaseURL:     dbURL,
		AutoMigrate:     getEnvBool("AUTO_MIGRATE", true),
		Env:             env,
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		log.Printf("config %s invalid int %q, using %d", key, raw, def)
		return def
	}
	return val
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("config %s invalid bool %q, using %t", key, raw, def)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "none":
		return "none"
	default:
		return "local"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	case "none", "placeholder":
		return "none"
	default:
		return "gemini"
	}
}

func normalizeRenderer(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "chromedp", "chrome":
		return "chromedp"
	default:
		return "fpdf"
	}
}
