package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/adgm-corporate-agent/internal/infrastructure/resilience"
)

type Config struct {
	APIPort   string
	LogLevel  string
	LogFormat string

	APIRateLimitRPS       float64
	APIRateLimitBurst     int
	APIMaxInFlight        int
	APIBackpressureWaitMS int
	APIMaxUploadFiles     int

	ChecklistPath string
	SourcesPath   string
	IndexDir      string

	IndexReloadInterval time.Duration

	MaxFileSizeMB int
	ChunkSize     int
	ChunkOverlap  int
	RetrievalTopK int

	EmbeddingProvider  string
	EmbeddingDimension int
	EmbedBatchSize     int
	OllamaURL          string
	OllamaEmbedModel   string
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAIEmbedModel   string

	FetchTimeout   time.Duration
	FetchInterval  time.Duration
	FetchUserAgent string
	MinSourceChars int

	NATSURL     string
	NATSSubject string

	WorkerMetricsPort string
	MCPEnabled        bool

	Resilience resilience.Config
}

func Load() Config {
	return Config{
		APIPort:   mustEnv("API_PORT", "8080"),
		LogLevel:  mustEnv("LOG_LEVEL", "info"),
		LogFormat: mustEnv("LOG_FORMAT", "json"),

		APIRateLimitRPS:       mustEnvFloat("API_RATE_LIMIT_RPS", 0),
		APIRateLimitBurst:     mustEnvInt("API_RATE_LIMIT_BURST", 10),
		APIMaxInFlight:        mustEnvInt("API_MAX_IN_FLIGHT", 8),
		APIBackpressureWaitMS: mustEnvInt("API_BACKPRESSURE_WAIT_MS", 250),
		APIMaxUploadFiles:     mustEnvInt("API_MAX_UPLOAD_FILES", 20),

		ChecklistPath: mustEnv("CHECKLIST_PATH", ""),
		SourcesPath:   mustEnv("SOURCES_PATH", ""),
		IndexDir:      mustEnv("INDEX_DIR", "./data/vector_store"),

		IndexReloadInterval: time.Duration(mustEnvInt("INDEX_RELOAD_INTERVAL_SECONDS", 60)) * time.Second,

		MaxFileSizeMB: mustEnvInt("MAX_FILE_SIZE_MB", 10),
		ChunkSize:     mustEnvInt("CHUNK_SIZE", 500),
		ChunkOverlap:  mustEnvInt("CHUNK_OVERLAP", 0),
		RetrievalTopK: mustEnvInt("RETRIEVAL_TOP_K", 5),

		EmbeddingProvider:  strings.ToLower(mustEnv("EMBEDDING_PROVIDER", "ollama")),
		EmbeddingDimension: mustEnvInt("EMBEDDING_DIMENSION", 0),
		EmbedBatchSize:     mustEnvInt("EMBED_BATCH_SIZE", 32),
		OllamaURL:          mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaEmbedModel:   mustEnv("OLLAMA_EMBED_MODEL", "all-minilm"),
		OpenAIAPIKey:       mustEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:      mustEnv("OPENAI_BASE_URL", ""),
		OpenAIEmbedModel:   mustEnv("OPENAI_EMBED_MODEL", "text-embedding-3-small"),

		FetchTimeout:   time.Duration(mustEnvInt("FETCH_TIMEOUT_SECONDS", 30)) * time.Second,
		FetchInterval:  time.Duration(mustEnvInt("FETCH_INTERVAL_MS", 1000)) * time.Millisecond,
		FetchUserAgent: mustEnv("FETCH_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"),
		MinSourceChars: mustEnvInt("MIN_SOURCE_CHARS", 100),

		NATSURL:     mustEnv("NATS_URL", ""),
		NATSSubject: mustEnv("NATS_SUBJECT", "adgm.index.rebuild"),

		WorkerMetricsPort: mustEnv("WORKER_METRICS_PORT", "9090"),
		MCPEnabled:        mustEnvBool("MCP_ENABLED", true),

		Resilience: loadResilience(),
	}
}

func loadResilience() resilience.Config {
	def := resilience.DefaultConfig()
	return resilience.Config{
		RetryMaxAttempts:    mustEnvInt("RESILIENCE_RETRY_MAX_ATTEMPTS", def.RetryMaxAttempts),
		RetryInitialBackoff: mustEnvDuration("RESILIENCE_RETRY_INITIAL_BACKOFF", def.RetryInitialBackoff),
		RetryMaxBackoff:     mustEnvDuration("RESILIENCE_RETRY_MAX_BACKOFF", def.RetryMaxBackoff),
		RetryMultiplier:     mustEnvFloat("RESILIENCE_RETRY_MULTIPLIER", def.RetryMultiplier),
		RetryJitter:         mustEnvFloat("RESILIENCE_RETRY_JITTER", def.RetryJitter),

		BreakerEnabled:          mustEnvBool("RESILIENCE_BREAKER_ENABLED", def.BreakerEnabled),
		BreakerMinRequests:      uint32(mustEnvInt("RESILIENCE_BREAKER_MIN_REQUESTS", int(def.BreakerMinRequests))),
		BreakerFailureRatio:     mustEnvFloat("RESILIENCE_BREAKER_FAILURE_RATIO", def.BreakerFailureRatio),
		BreakerOpenTimeout:      mustEnvDuration("RESILIENCE_BREAKER_OPEN_TIMEOUT", def.BreakerOpenTimeout),
		BreakerHalfOpenMaxCalls: uint32(mustEnvInt("RESILIENCE_BREAKER_HALF_OPEN_MAX_CALLS", int(def.BreakerHalfOpenMaxCalls))),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// mustEnvDuration accepts Go duration strings such as "250ms" or "2s".
func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
