package cfggen

import (
	"fmt"
	"io"

	"github.com/spf13/viper"
)

type CfgGen struct {
	dst *viper.Viper // Destination viper instance for building the output config
	src *viper.Viper // Source viper instance for reading environment variables (e.g., .env)
}

// NewCfgGen creates a new CfgGen instance, taking a source viper instance
// that has already loaded the environment variables (e.g., from .env).
func NewCfgGen(src *viper.Viper) *CfgGen {
	return &CfgGen{
		dst: viper.New(), // Create a new viper instance for the generated config
		src: src,
	}
}

func (c *CfgGen) WriteTo(w io.Writer, t string) error {
	c.dst.SetConfigType(t)
	if err := c.dst.WriteConfigTo(w); err != nil {
		return fmt.Errorf("error writing config: %w", err)
	}
	return nil
}

func (c *CfgGen) AddZerologLoggerConfig() {
	c.dst.SetDefault("logger.console", true)
	c.dst.SetDefault("logger.include_timestamp", true)

	c.dst.Set("logger.global_level", c.src.GetInt("LOG_GLOBAL_LEVEL"))
	c.dst.Set("logger.console", c.src.GetBool("LOG_CONSOLE"))
	c.dst.Set("logger.log_file", c.src.GetString("LOG_FILE"))
	c.dst.Set("logger.include_timestamp", c.src.GetBool("LOG_INCLUDE_TIMESTAMP"))
	c.dst.Set("logger.use_unix_timestamp", c.src.GetBool("LOG_USE_UNIX_TIMESTAMP"))
}

func (c *CfgGen) AddOtelConfig() {
	c.dst.SetDefault("otel.service_name", "claimfusion")
	c.dst.SetDefault("otel.metrics_addr", ":9090")

	c.dst.Set("otel.service_name", c.src.GetString("OTEL_SERVICE_NAME"))
	c.dst.Set("otel.collector_endpoint", c.src.GetString("OTEL_COLLECTOR_ENDPOINT"))
	c.dst.Set("otel.insecure", c.src.GetBool("OTEL_INSECURE"))
	c.dst.Set("otel.metrics_addr", c.src.GetString("OTEL_METRICS_ADDR"))
}

func (c *CfgGen) AddPostgresConfig() {
	c.dst.SetDefault("postgres.username", "postgres")
	c.dst.SetDefault("postgres.host", "localhost")
	c.dst.SetDefault("postgres.port", 5432)
	c.dst.SetDefault("postgres.sslmode", false)

	c.dst.Set("postgres.username", c.src.GetString("POSTGRES_USER"))
	c.dst.Set("postgres.password_file", c.src.GetString("POSTGRES_PASSWORD_FILE"))
	c.dst.Set("postgres.host", c.src.GetString("POSTGRES_HOST"))
	c.dst.Set("postgres.port", c.src.GetInt("POSTGRES_PORT"))
	c.dst.Set("postgres.sslmode", c.src.GetBool("POSTGRES_SSL_MODE"))
	c.dst.Set("postgres.dbname", c.src.GetString("POSTGRES_APP_DB"))
}

func (c *CfgGen) AddAuditConfig() {
	c.dst.SetDefault("audit.migrations", "migrations")

	c.dst.Set("audit.enabled", c.src.GetBool("AUDIT_ENABLED"))
	c.dst.Set("audit.migrations", c.src.GetString("AUDIT_MIGRATIONS"))
}

func (c *CfgGen) AddValkeyConfig() {
	c.dst.SetDefault("valkey.host", "localhost")
	c.dst.SetDefault("valkey.port", 6379)

	c.dst.Set("valkey.host", c.src.GetString("VALKEY_HOST"))
	c.dst.Set("valkey.port", c.src.GetInt("VALKEY_PORT"))
	c.dst.Set("valkey.password", c.src.GetString("VALKEY_PASSWORD"))
	c.dst.Set("valkey.db", c.src.GetInt("VALKEY_DB"))
}

func (c *CfgGen) AddLLMConfig() {
	c.dst.SetDefault("llm.provider", "gemini")
	c.dst.SetDefault("llm.gemini.model", "gemini-2.5-flash")
	c.dst.SetDefault("llm.gemini.embed_model", "gemini-embedding-001")
	c.dst.SetDefault("llm.openai.model", "gpt-4o-mini")
	c.dst.SetDefault("llm.ollama.base_url", "http://localhost:11434")

	c.dst.Set("llm.provider", c.src.GetString("LLM_PROVIDER"))

	c.dst.Set("llm.gemini.api_key", c.src.GetString("GOOGLE_API_KEY"))
	c.dst.Set("llm.gemini.base_url", c.src.GetString("LLM_GEMINI_BASE_URL"))
	c.dst.Set("llm.gemini.model", c.src.GetString("LLM_GEMINI_MODEL"))
	c.dst.Set("llm.gemini.embed_model", c.src.GetString("LLM_GEMINI_EMBED_MODEL"))

	c.dst.Set("llm.openai.api_key", c.src.GetString("OPENAI_API_KEY"))
	c.dst.Set("llm.openai.base_url", c.src.GetString("LLM_OPENAI_BASE_URL"))
	c.dst.Set("llm.openai.model", c.src.GetString("LLM_OPENAI_MODEL"))
	c.dst.Set("llm.openai.embed_model", c.src.GetString("LLM_OPENAI_EMBED_MODEL"))

	c.dst.Set("llm.ollama.base_url", c.src.GetString("LLM_OLLAMA_BASE_URL"))
	c.dst.Set("llm.ollama.model", c.src.GetString("LLM_OLLAMA_MODEL"))
	c.dst.Set("llm.ollama.embed_model", c.src.GetString("LLM_OLLAMA_EMBED_MODEL"))

	c.dst.Set("llm.timeout", c.src.GetString("LLM_TIMEOUT"))
}

func (c *CfgGen) AddRateLimiterConfig() {
	c.dst.SetDefault("rate_limit.max", 8)
	c.dst.SetDefault("rate_limit.window", "1s")

	c.dst.Set("rate_limit.max", c.src.GetInt("RATE_LIMIT_MAX"))
	c.dst.Set("rate_limit.window", c.src.GetString("RATE_LIMIT_WINDOW"))
}

func (c *CfgGen) AddBreakerConfig() {
	c.dst.SetDefault("breaker.failure_threshold", 3)
	c.dst.SetDefault("breaker.timeout", "120s")
	c.dst.SetDefault("breaker.half_open_max", 3)

	c.dst.Set("breaker.failure_threshold", c.src.GetInt("BREAKER_FAILURE_THRESHOLD"))
	c.dst.Set("breaker.timeout", c.src.GetString("BREAKER_TIMEOUT"))
	c.dst.Set("breaker.half_open_max", c.src.GetInt("BREAKER_HALF_OPEN_MAX"))
}

func (c *CfgGen) AddJudgeCacheConfig() {
	c.dst.SetDefault("judge_cache.backend", "fs")
	c.dst.SetDefault("judge_cache.dir", ".cache/judgments")

	c.dst.Set("judge_cache.backend", c.src.GetString("JUDGE_CACHE_BACKEND"))
	c.dst.Set("judge_cache.dir", c.src.GetString("JUDGE_CACHE_DIR"))
}

func (c *CfgGen) AddSearchConfig() {
	c.dst.SetDefault("search.timeout", "30s")

	c.dst.Set("search.tavily_api_key", c.src.GetString("TAVILY_API_KEY"))
	c.dst.Set("search.timeout", c.src.GetString("SEARCH_TIMEOUT"))
}

func (c *CfgGen) AddWorkflowConfig() {
	c.dst.SetDefault("workflow.max_urls", 15)
	c.dst.SetDefault("workflow.min_trust", 0.3)
	c.dst.SetDefault("workflow.extract_workers", 4)
	c.dst.SetDefault("workflow.request_timeout", "30s")

	c.dst.Set("workflow.max_urls", c.src.GetInt("WORKFLOW_MAX_URLS"))
	c.dst.Set("workflow.min_trust", c.src.GetFloat64("WORKFLOW_MIN_TRUST"))
	c.dst.Set("workflow.extract_workers", c.src.GetInt("WORKFLOW_EXTRACT_WORKERS"))
	c.dst.Set("workflow.request_timeout", c.src.GetString("WORKFLOW_REQUEST_TIMEOUT"))
	c.dst.Set("workflow.host_blocklist", c.src.GetString("WORKFLOW_HOST_BLOCKLIST"))
}
