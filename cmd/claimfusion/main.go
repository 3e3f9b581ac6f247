// Command claimfusion runs the agricultural claim-fusion pipeline: it
// loads the process config (global.LoadConfigs + per-section loaders),
// wires the shared rate limiter/breaker/judge cache/providers once,
// then dispatches to one of three subcommands.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	flag "github.com/spf13/pflag"

	"github.com/vnagri/claimfusion/internal/auditstore"
	"github.com/vnagri/claimfusion/internal/breaker"
	"github.com/vnagri/claimfusion/internal/capability"
	"github.com/vnagri/claimfusion/internal/extractor"
	"github.com/vnagri/claimfusion/internal/global"
	"github.com/vnagri/claimfusion/internal/judge"
	"github.com/vnagri/claimfusion/internal/judgecache/fscache"
	"github.com/vnagri/claimfusion/internal/judgecache/rediscache"
	"github.com/vnagri/claimfusion/internal/llm"
	"github.com/vnagri/claimfusion/internal/llm/gemini"
	"github.com/vnagri/claimfusion/internal/llm/ollama"
	"github.com/vnagri/claimfusion/internal/llm/openai"
	"github.com/vnagri/claimfusion/internal/llmprovider"
	"github.com/vnagri/claimfusion/internal/ratelimit"
	"github.com/vnagri/claimfusion/internal/resolver"
	"github.com/vnagri/claimfusion/internal/scrapeprovider/colly"
	"github.com/vnagri/claimfusion/internal/searchprovider/google"
	"github.com/vnagri/claimfusion/internal/searchprovider/tavily"
	"github.com/vnagri/claimfusion/internal/telemetry"
	"github.com/vnagri/claimfusion/internal/validator"
	"github.com/vnagri/claimfusion/internal/workflow"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	if err := global.LoadConfigs(".env", "env", []string{"."}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	cfg := global.LoadConfig()

	if cfg.Otel.MetricsAddr != "" {
		go startMetricsServer(cfg.Otel.MetricsAddr)
	}

	switch os.Args[1] {
	case "search":
		runSearch(cfg, os.Args[2:])
	case "validate":
		runValidate(cfg, os.Args[2:])
	case "cache-stats":
		runCacheStats(cfg, os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: claimfusion <search|validate|cache-stats> [flags]")
}

// startMetricsServer serves the default Prometheus handler on addr in
// its own goroutine, independent of whichever subcommand is running.
func startMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		global.Logger.Warn().Err(err).Str("addr", addr).Msg("metrics server exited")
	}
}

// components holds the shared, process-wide pieces every subcommand
// assembles its own pipeline from.
type components struct {
	completer capability.Completer
	embedder  capability.Embedder
	limiter   *ratelimit.Limiter
	breaker   *breaker.Breaker
	cache     capability.JudgeCache
}

func buildComponents(ctx context.Context, cfg *global.Config) (*components, error) {
	llmClient, completer, embedder, err := buildLLM(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("build LLM client: %w", err)
	}
	_ = llmClient

	cache, err := buildJudgeCache(cfg.JudgeCache)
	if err != nil {
		return nil, fmt.Errorf("build judge cache: %w", err)
	}

	return &components{
		completer: completer,
		embedder:  embedder,
		limiter:   ratelimit.New(cfg.RateLimit.Max, cfg.RateLimit.Window),
		breaker:   breaker.New(cfg.Breaker.FailureThreshold, cfg.Breaker.Timeout, cfg.Breaker.HalfOpenMax),
		cache:     cache,
	}, nil
}

// buildLLM dials the configured provider and wraps it in the matching
// capability adapter (internal/llmprovider), grounded on each
// provider's error-shape tests.
func buildLLM(ctx context.Context, cfg global.LLMConfig) (llm.LLM, capability.Completer, capability.Embedder, error) {
	switch cfg.Provider {
	case "openai":
		cli, err := openai.OpenAI(ctx, openai.WithAPIKey(cfg.OpenAI.APIKey), openai.WithTimeout(cfg.OpenAI.Timeout))
		if err != nil {
			return nil, nil, nil, err
		}
		return cli, llmprovider.NewOpenAICompleter(cli, cfg.OpenAI.Model), llmprovider.NewOpenAIEmbedder(cli, cfg.OpenAI.Embed), nil
	case "ollama":
		cli, err := ollama.Ollama(ctx, ollama.WithHost(cfg.Ollama.BaseURL))
		if err != nil {
			return nil, nil, nil, err
		}
		return cli, llmprovider.NewOllamaCompleter(cli, cfg.Ollama.Model), llmprovider.NewOllamaEmbedder(cli, cfg.Ollama.Embed), nil
	default: // "gemini"
		cli, err := gemini.Gemini(ctx,
			gemini.WithAPIKey(cfg.Gemini.APIKey),
			gemini.WithTimeout(cfg.Gemini.Timeout),
			gemini.WithDefaultGenerate(cfg.Gemini.Model),
			gemini.WithDefaultEmbed(cfg.Gemini.Embed),
		)
		if err != nil {
			return nil, nil, nil, err
		}
		return cli, llmprovider.NewGeminiCompleter(cli, cfg.Gemini.Model), llmprovider.NewGeminiEmbedder(cli, cfg.Gemini.Embed), nil
	}
}

func buildJudgeCache(cfg global.JudgeCacheConfig) (capability.JudgeCache, error) {
	if cfg.Backend == "redis" {
		return rediscache.New(cfg.Valkey, "claimfusion:judge", 0), nil
	}
	return fscache.New(cfg.Dir)
}

func buildWorkflow(c *components, cfg *global.Config) *workflow.Workflow {
	searcher := tavily.New(cfg.Search.TavilyAPIKey, cfg.Search.Timeout)
	secondary := google.New("", "")
	scraper := colly.New(cfg.Workflow.RequestTimeout)
	ex := extractor.New(c.completer, c.limiter, c.breaker, extractor.DefaultPolicy)
	j := judge.New(c.completer, c.embedder, c.cache, c.limiter, c.breaker)
	res := resolver.New(j, resolver.WithEmbedder(c.embedder))
	return workflow.New(searcher, scraper, ex, res, cfg.Workflow, workflow.WithSecondarySearcher(secondary))
}

func runSearch(cfg *global.Config, args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	crop := fs.StringP("crop", "c", "", "crop name (e.g. lúa, cà phê)")
	query := fs.StringP("query", "q", "", "search query; a default is derived from --crop if empty")
	fs.Parse(args)

	if *crop == "" {
		fmt.Fprintln(os.Stderr, "search: --crop is required")
		os.Exit(1)
	}

	ctx := context.Background()
	c, err := buildComponents(ctx, cfg)
	if err != nil {
		global.Logger.Fatal().Err(err).Msg("failed to build pipeline components")
	}
	wf := buildWorkflow(c, cfg)

	st, err := wf.Run(ctx, *crop, *query)
	if err != nil {
		global.Logger.Fatal().Err(err).Msg("workflow run failed")
	}

	fmt.Println(st.Summary)
	for _, e := range st.DebugInfo.Errors {
		global.Logger.Warn().Msg(e)
	}

	if cfg.Audit.Enabled {
		persistWorkflowRun(ctx, cfg, st)
	}
}

func runValidate(cfg *global.Config, args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	path := fs.StringP("file", "f", "", "path to the article text/markdown file to validate")
	useWeb := fs.Bool("web", false, "cross-check important claims against a live web search")
	fs.Parse(args)

	if *path == "" {
		fmt.Fprintln(os.Stderr, "validate: --file is required")
		os.Exit(1)
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		global.Logger.Fatal().Err(err).Str("file", *path).Msg("failed to read article")
	}

	ctx := context.Background()
	c, err := buildComponents(ctx, cfg)
	if err != nil {
		global.Logger.Fatal().Err(err).Msg("failed to build pipeline components")
	}
	wf := buildWorkflow(c, cfg)
	ex := extractor.New(c.completer, c.limiter, c.breaker, extractor.DefaultPolicy)
	j := judge.New(c.completer, c.embedder, c.cache, c.limiter, c.breaker)
	res := resolver.New(j, resolver.WithEmbedder(c.embedder))
	v := validator.New(ex, wf, j, res)

	report := v.Validate(ctx, string(data), *useWeb)

	fmt.Printf("title: %s\n", report.ArticleTitle)
	fmt.Printf("success: %t\n", report.Success)
	fmt.Printf("validation_score: %.3f\n", report.ValidationScore)
	for _, w := range report.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	for _, e := range report.Errors {
		fmt.Printf("error: %s\n", e)
	}

	if cfg.Audit.Enabled {
		persistValidateRun(ctx, cfg, report)
	}
}

func runCacheStats(cfg *global.Config, args []string) {
	fs := flag.NewFlagSet("cache-stats", flag.ExitOnError)
	fs.Parse(args)

	fmt.Printf("backend: %s\n", cfg.JudgeCache.Backend)
	if cfg.JudgeCache.Backend == "redis" {
		fmt.Printf("host: %s:%d\n", cfg.JudgeCache.Valkey.Host, cfg.JudgeCache.Valkey.Port)
		return
	}

	entries, err := os.ReadDir(cfg.JudgeCache.Dir)
	if err != nil {
		global.Logger.Fatal().Err(err).Str("dir", cfg.JudgeCache.Dir).Msg("failed to read judge cache dir")
	}
	var total int64
	count := 0
	for _, e := range entries {
		info, err := e.Info()
		if err != nil || e.IsDir() {
			continue
		}
		count++
		total += info.Size()
	}
	fmt.Printf("dir: %s\n", filepath.Clean(cfg.JudgeCache.Dir))
	fmt.Printf("entries: %d\n", count)
	fmt.Printf("bytes: %d\n", total)
}

func persistWorkflowRun(ctx context.Context, cfg *global.Config, st *workflow.State) {
	pool, err := global.PostgresPool(ctx, &cfg.Audit.Postgres)
	if err != nil {
		global.Logger.Warn().Err(err).Msg("audit: skipping, could not reach Postgres")
		return
	}
	store := auditstore.New(pool)
	rec := auditstore.RunRecord{
		RunID:          uuid.New(),
		Kind:           "workflow",
		Crop:           st.Crop,
		Query:          st.Query,
		Summary:        st.Summary,
		ClaimCount:     len(st.Claims),
		Contradictions: countContradictions(st.ResolvedClaims),
		CreatedAt:      time.Now(),
	}
	if err := store.InsertRun(ctx, rec); err != nil {
		global.Logger.Warn().Err(err).Msg("audit: failed to insert run record")
		return
	}
	if err := store.InsertResolvedClaims(ctx, rec.RunID, st.ResolvedClaims, nil); err != nil {
		global.Logger.Warn().Err(err).Msg("audit: failed to insert resolved claims")
	}
}

func persistValidateRun(ctx context.Context, cfg *global.Config, report validator.Report) {
	pool, err := global.PostgresPool(ctx, &cfg.Audit.Postgres)
	if err != nil {
		global.Logger.Warn().Err(err).Msg("audit: skipping, could not reach Postgres")
		return
	}
	store := auditstore.New(pool)
	score := report.ValidationScore
	rec := auditstore.RunRecord{
		RunID:           uuid.New(),
		Kind:            "validate",
		Summary:         report.ArticleTitle,
		ClaimCount:      len(report.ArticleClaims),
		Contradictions:  countContradictions(report.ResolvedClaims),
		ValidationScore: &score,
		CreatedAt:       time.Now(),
	}
	if err := store.InsertRun(ctx, rec); err != nil {
		global.Logger.Warn().Err(err).Msg("audit: failed to insert run record")
		return
	}
	if err := store.InsertResolvedClaims(ctx, rec.RunID, report.ResolvedClaims, nil); err != nil {
		global.Logger.Warn().Err(err).Msg("audit: failed to insert resolved claims")
	}
}

func countContradictions(resolved []resolver.ResolvedClaim) int {
	n := 0
	for _, rc := range resolved {
		if rc.HasContradictions {
			n++
		}
	}
	return n
}
