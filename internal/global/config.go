package global

import (
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/vnagri/claimfusion/pkgs/utils"
)

type ZeroLogConfig struct {
	GlobalLevel      int8   `json:"global_level"`
	Console          bool   `json:"console"`
	LogFile          string `json:"log_file"`
	IncludeTimestamp bool   `json:"include_timestamp"`
	UseUnixTimestamp bool   `json:"use_unix_timestamp"`
}

type OtelConfig struct {
	ServiceName       string `json:"service_name"`
	CollectorEndpoint string `json:"collector_endpoint"`
	Insecure          bool   `json:"insecure"`
	MetricsAddr       string `json:"metrics_addr"`
}

// ValkeyConfig is consumed by the optional Redis-compatible judge cache
// backend.
type ValkeyConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type OpenAIConfig struct {
	APIKey  string        `json:"api_key"`
	BaseURL string        `json:"base_url"`
	Model   string        `json:"model"`
	Embed   string        `json:"embed_model"`
	Timeout time.Duration `json:"timeout"`
}

type OllamaConfig struct {
	BaseURL string        `json:"base_url"`
	Model   string        `json:"model"`
	Embed   string        `json:"embed_model"`
	Timeout time.Duration `json:"timeout"`
}

type GeminiConfig struct {
	APIKey  string        `json:"api_key"`
	BaseURL string        `json:"base_url"`
	Model   string        `json:"model"`
	Embed   string        `json:"embed_model"`
	Timeout time.Duration `json:"timeout"`
}

type LLMConfig struct {
	Provider string       `json:"provider"`
	OpenAI   OpenAIConfig `json:"openai"`
	Ollama   OllamaConfig `json:"ollama"`
	Gemini   GeminiConfig `json:"gemini"`
}

// RateLimiterConfig configures the sliding-window admission controller
// shared by every outbound LLM call in the process.
type RateLimiterConfig struct {
	Max    int           `json:"max"`
	Window time.Duration `json:"window"`
}

func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{Max: 8, Window: time.Second}
}

// BreakerConfig configures the CLOSED/OPEN/HALF_OPEN gate shared by
// every outbound LLM call in the process.
type BreakerConfig struct {
	FailureThreshold int           `json:"failure_threshold"`
	Timeout          time.Duration `json:"timeout"`
	HalfOpenMax      int           `json:"half_open_max"`
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{FailureThreshold: 3, Timeout: 120 * time.Second, HalfOpenMax: 3}
}

// JudgeCacheConfig selects and configures the pairwise-judgment cache
// backend. Dir is used by the filesystem backend; Valkey is used by
// the optional Redis-compatible fleet-wide backend.
type JudgeCacheConfig struct {
	Backend string       `json:"backend"` // "fs" (default) or "redis"
	Dir     string       `json:"dir"`
	Valkey  ValkeyConfig `json:"valkey"`
}

func DefaultJudgeCacheConfig() JudgeCacheConfig {
	return JudgeCacheConfig{Backend: "fs", Dir: ".cache/judgments"}
}

// SearchConfig configures the web search capability adapter used by the
// workflow's search stage.
type SearchConfig struct {
	TavilyAPIKey string        `json:"tavily_api_key"`
	Timeout      time.Duration `json:"timeout"`
}

// AuditConfig enables the optional write-only Postgres audit trail.
// Disabled by default so the core runs with zero infrastructure.
type AuditConfig struct {
	Enabled    bool           `json:"enabled"`
	Postgres   PostgresConfig `json:"postgres"`
	Migrations string         `json:"migrations"`
}

// WorkflowConfig configures the search -> extract -> resolve -> writer
// pipeline.
type WorkflowConfig struct {
	MaxURLs        int           `json:"max_urls"`
	MinTrust       float64       `json:"min_trust"`
	ExtractWorkers int           `json:"extract_workers"`
	RequestTimeout time.Duration `json:"request_timeout"`
	HostBlocklist  []string      `json:"host_blocklist"`
}

func DefaultWorkflowConfig() WorkflowConfig {
	return WorkflowConfig{
		MaxURLs:        15,
		MinTrust:       0.3,
		ExtractWorkers: 4,
		RequestTimeout: 30 * time.Second,
	}
}

// Config is the fully assembled runtime configuration for the claimfusion
// service: one struct per capability, each independently loadable.
// LoadConfig does not validate the sections; PostgresConfig has its own
// Validate method.
type Config struct {
	Logger     ZeroLogConfig     `json:"logger"`
	Otel       OtelConfig        `json:"otel"`
	LLM        LLMConfig         `json:"llm"`
	RateLimit  RateLimiterConfig `json:"rate_limit"`
	Breaker    BreakerConfig     `json:"breaker"`
	JudgeCache JudgeCacheConfig  `json:"judge_cache"`
	Search     SearchConfig      `json:"search"`
	Workflow   WorkflowConfig    `json:"workflow"`
	Audit      AuditConfig       `json:"audit"`
}

// LoadConfig reads every section of Config from Viper (populated by
// LoadConfigs' .env read plus the process environment via
// viper.AutomaticEnv), applying the same defaults the cfggen CLI
// documents for operators.
func LoadConfig() *Config {
	return &Config{
		Logger:     LoadZeroLogConfig(),
		Otel:       LoadOtelConfig(),
		LLM:        LoadLLMConfig(),
		RateLimit:  LoadRateLimiterConfig(),
		Breaker:    LoadBreakerConfig(),
		JudgeCache: LoadJudgeCacheConfig(),
		Search:     LoadSearchConfig(),
		Workflow:   LoadWorkflowConfig(),
		Audit:      LoadAuditConfig(),
	}
}

func LoadZeroLogConfig() ZeroLogConfig {
	viper.SetDefault("LOG_CONSOLE", true)
	viper.SetDefault("LOG_INCLUDE_TIMESTAMP", true)
	return ZeroLogConfig{
		GlobalLevel:      int8(viper.GetInt("LOG_GLOBAL_LEVEL")),
		Console:          viper.GetBool("LOG_CONSOLE"),
		LogFile:          viper.GetString("LOG_FILE"),
		IncludeTimestamp: viper.GetBool("LOG_INCLUDE_TIMESTAMP"),
		UseUnixTimestamp: viper.GetBool("LOG_USE_UNIX_TIMESTAMP"),
	}
}

func LoadOtelConfig() OtelConfig {
	viper.SetDefault("OTEL_SERVICE_NAME", "claimfusion")
	viper.SetDefault("OTEL_METRICS_ADDR", ":9090")
	return OtelConfig{
		ServiceName:       viper.GetString("OTEL_SERVICE_NAME"),
		CollectorEndpoint: viper.GetString("OTEL_COLLECTOR_ENDPOINT"),
		Insecure:          viper.GetBool("OTEL_INSECURE"),
		MetricsAddr:       viper.GetString("OTEL_METRICS_ADDR"),
	}
}

func LoadValkeyConfig() ValkeyConfig {
	viper.SetDefault("VALKEY_HOST", "localhost")
	viper.SetDefault("VALKEY_PORT", 6379)
	return ValkeyConfig{
		Host:     viper.GetString("VALKEY_HOST"),
		Port:     viper.GetInt("VALKEY_PORT"),
		Password: viper.GetString("VALKEY_PASSWORD"),
		DB:       viper.GetInt("VALKEY_DB"),
	}
}

func LoadLLMConfig() LLMConfig {
	viper.SetDefault("LLM_PROVIDER", "gemini")
	viper.SetDefault("LLM_GEMINI_MODEL", "gemini-2.5-flash")
	viper.SetDefault("LLM_GEMINI_EMBED_MODEL", "gemini-embedding-001")
	viper.SetDefault("LLM_OPENAI_MODEL", "gpt-4o-mini")
	viper.SetDefault("LLM_OLLAMA_BASE_URL", "http://localhost:11434")
	viper.SetDefault("LLM_TIMEOUT", 30*time.Second)

	return LLMConfig{
		Provider: viper.GetString("LLM_PROVIDER"),
		Gemini: GeminiConfig{
			APIKey:  viper.GetString("GOOGLE_API_KEY"),
			BaseURL: viper.GetString("LLM_GEMINI_BASE_URL"),
			Model:   viper.GetString("LLM_GEMINI_MODEL"),
			Embed:   viper.GetString("LLM_GEMINI_EMBED_MODEL"),
			Timeout: viper.GetDuration("LLM_TIMEOUT"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  viper.GetString("OPENAI_API_KEY"),
			BaseURL: viper.GetString("LLM_OPENAI_BASE_URL"),
			Model:   viper.GetString("LLM_OPENAI_MODEL"),
			Embed:   viper.GetString("LLM_OPENAI_EMBED_MODEL"),
			Timeout: viper.GetDuration("LLM_TIMEOUT"),
		},
		Ollama: OllamaConfig{
			BaseURL: viper.GetString("LLM_OLLAMA_BASE_URL"),
			Model:   viper.GetString("LLM_OLLAMA_MODEL"),
			Embed:   viper.GetString("LLM_OLLAMA_EMBED_MODEL"),
			Timeout: viper.GetDuration("LLM_TIMEOUT"),
		},
	}
}

func LoadRateLimiterConfig() RateLimiterConfig {
	d := DefaultRateLimiterConfig()
	return RateLimiterConfig{
		Max:    utils.DefaultIfZero(viper.GetInt("RATE_LIMIT_MAX"), d.Max),
		Window: utils.DefaultIfZero(viper.GetDuration("RATE_LIMIT_WINDOW"), d.Window),
	}
}

func LoadBreakerConfig() BreakerConfig {
	d := DefaultBreakerConfig()
	return BreakerConfig{
		FailureThreshold: utils.DefaultIfZero(viper.GetInt("BREAKER_FAILURE_THRESHOLD"), d.FailureThreshold),
		Timeout:          utils.DefaultIfZero(viper.GetDuration("BREAKER_TIMEOUT"), d.Timeout),
		HalfOpenMax:      utils.DefaultIfZero(viper.GetInt("BREAKER_HALF_OPEN_MAX"), d.HalfOpenMax),
	}
}

func LoadJudgeCacheConfig() JudgeCacheConfig {
	d := DefaultJudgeCacheConfig()
	return JudgeCacheConfig{
		Backend: utils.DefaultIfZero(viper.GetString("JUDGE_CACHE_BACKEND"), d.Backend),
		Dir:     utils.DefaultIfZero(viper.GetString("JUDGE_CACHE_DIR"), d.Dir),
		Valkey:  LoadValkeyConfig(),
	}
}

func LoadSearchConfig() SearchConfig {
	viper.SetDefault("SEARCH_TIMEOUT", 30*time.Second)
	return SearchConfig{
		TavilyAPIKey: viper.GetString("TAVILY_API_KEY"),
		Timeout:      viper.GetDuration("SEARCH_TIMEOUT"),
	}
}

func LoadWorkflowConfig() WorkflowConfig {
	d := DefaultWorkflowConfig()
	blocklist := viper.GetString("WORKFLOW_HOST_BLOCKLIST")
	var hosts []string
	if blocklist != "" {
		hosts = strings.Split(blocklist, ",")
	}
	return WorkflowConfig{
		MaxURLs:        utils.DefaultIfZero(viper.GetInt("WORKFLOW_MAX_URLS"), d.MaxURLs),
		MinTrust:       utils.DefaultIfZero(viper.GetFloat64("WORKFLOW_MIN_TRUST"), d.MinTrust),
		ExtractWorkers: utils.DefaultIfZero(viper.GetInt("WORKFLOW_EXTRACT_WORKERS"), d.ExtractWorkers),
		RequestTimeout: utils.DefaultIfZero(viper.GetDuration("WORKFLOW_REQUEST_TIMEOUT"), d.RequestTimeout),
		HostBlocklist:  hosts,
	}
}

func LoadAuditConfig() AuditConfig {
	cfg := AuditConfig{
		Enabled:    viper.GetBool("AUDIT_ENABLED"),
		Migrations: utils.DefaultIfZero(viper.GetString("AUDIT_MIGRATIONS"), "migrations"),
	}
	if pg := LoadPostgresConfig(); pg != nil {
		cfg.Postgres = *pg
	}
	return cfg
}
