// Package global provides centralized initialization of ambient services
// (logging, configuration, validation, and the optional audit database)
// shared across the claimfusion CLI and its subcommands.
//
// The fusion core's concurrency-sensitive singletons (rate limiter,
// circuit breaker, judge cache) are NOT package-level globals here: they
// are constructed once in cmd/claimfusion and passed by reference into
// the Workflow/Judge/Extractor/Validator constructors. That keeps the
// core testable without resetting global state between cases, while
// still giving the process a single shared limiter and breaker per
// upstream.
package global

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Singleton is a generic type that holds a single instance of a type T,
// built lazily and exactly once.
type Singleton[T any] struct {
	instance *T
	once     sync.Once
	errs     []error
}

// NewSingleton creates a new instance of Singleton.
func NewSingleton[T any]() *Singleton[T] {
	return &Singleton[T]{
		instance: new(T),
		once:     sync.Once{},
		errs:     nil,
	}
}

// Errors returns a slice of errors encountered during initialization.
func (s *Singleton[T]) Errors() []error {
	return s.errs
}

func (s *Singleton[T]) Panic(msg string) {
	sb := strings.Builder{}
	for _, err := range s.errs {
		sb.WriteString(fmt.Sprintf(" - %s\n", err))
	}
	panic(fmt.Errorf("%s:\n%s", msg, sb.String()))
}

func (s *Singleton[T]) CleanUp() {
	s.instance = nil
	s.errs = nil
}

func (s *Singleton[T]) Reset() {
	s.once = sync.Once{}
	s.CleanUp()
}

// Logger is the process-wide zerolog logger instance.
var Logger zerolog.Logger

// mode indicates the current running mode (e.g., "dev", "prod").
var mode string

// SetMode sets the current running mode (e.g., "dev", "prod").
func SetMode(m string) {
	mode = m
}

// Mode returns the current running mode (e.g., "dev", "prod").
func Mode() string {
	if mode == "" {
		return "dev"
	}
	return mode
}

// pool is a singleton for the optional audit-store Postgres connection
// pool. Callers that never enable the audit store never pay for it.
var pool = NewSingleton[pgxpool.Pool]()

// PostgresPool returns the singleton instance of the audit store's
// Postgres connection pool, lazily dialing it from cfg on first use.
func PostgresPool(ctx context.Context, cfg *PostgresConfig) (*pgxpool.Pool, error) {
	pool.once.Do(func() {
		dialCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		p, err := cfg.Pool(dialCtx)
		if err != nil {
			pool.errs = append(pool.errs, fmt.Errorf("failed to create Postgres connection pool: %w", err))
			Logger.Error().Err(pool.errs[len(pool.errs)-1]).Msg("failed to create Postgres connection pool")
			return
		}

		for retry := 0; p.Ping(dialCtx) != nil && retry < 5; retry++ {
			wt := 5 * (1 << retry) * time.Second
			Logger.Warn().Dur("wait_time", wt).Msg("waiting for Postgres connection...")
			time.Sleep(wt)
		}

		if err := p.Ping(dialCtx); err != nil {
			pool.errs = append(pool.errs, fmt.Errorf("failed to ping Postgres: %w", err))
			return
		}
		Logger.Info().
			Str("host", cfg.Host).
			Int("port", cfg.Port).
			Str("database", cfg.Database).
			Msg("connected to audit-store Postgres")
		pool.instance = p
	})

	if len(pool.errs) > 0 {
		return nil, pool.errs[len(pool.errs)-1]
	}
	return pool.instance, nil
}

// validate is the singleton struct-tag validator used for Claim and
// configuration validation.
var validate = NewSingleton[validator.Validate]()

// Validator returns the singleton instance of the validator.
func Validator() *validator.Validate {
	validate.once.Do(func() {
		validate.instance = validator.New()
		Logger.Debug().Msg("validator initialized")
	})
	return validate.instance
}

// ReadDotEnvFile reads a dotfile configuration using Viper.
func ReadDotEnvFile(fname, ftype string, fpath []string) error {
	viper.SetConfigName(fname)
	viper.SetConfigType(ftype)
	for _, p := range fpath {
		viper.AddConfigPath(p)
	}
	return viper.ReadInConfig()
}

// LoadConfigs reads environment configuration via Viper and initializes
// the process-wide logger and mode. It is safe to call with a missing
// config file (operators may rely on real environment variables alone).
func LoadConfigs(fname, ftype string, fpath []string) error {
	viper.AutomaticEnv()
	if err := ReadDotEnvFile(fname, ftype, fpath); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read configuration file: %w", err)
		}
	}
	m := viper.GetString("MODE")
	if m == "" {
		m = "dev"
	}
	SetMode(m)
	Logger = InitBaseLogger()
	return nil
}

// InitBaseLogger initializes the base logger for the application.
func InitBaseLogger() zerolog.Logger {
	logger := log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	level := zerolog.InfoLevel
	if mode == "dev" {
		level = zerolog.DebugLevel
	}
	logger = logger.Level(level)

	logger.Info().
		Str("mode", mode).
		Str("log_level", logger.GetLevel().String()).
		Msg("logger initialized")
	return logger
}

// CleanUp releases any process-wide resources opened via this package.
func CleanUp() {
	defer pool.CleanUp()
	if pool.instance != nil {
		pool.instance.Close()
		Logger.Info().Msg("audit-store Postgres pool closed")
	}
	defer validate.CleanUp()
}

// Reset clears all singletons. Intended for tests only.
func Reset() {
	pool.Reset()
	validate.Reset()
}
