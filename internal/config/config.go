// Package config loads service configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/jambcoach/internal/llm"
	"github.com/abhisek/jambcoach/internal/questiongen"
	"github.com/abhisek/jambcoach/internal/subject"
)

// Config is the full runtime configuration.
type Config struct {
	// DBPath overrides the default database location when set.
	DBPath string

	HTTP HTTPConfig
	Auth AuthConfig
	Log  LogConfig

	// StoreTimeout bounds each store call of the coaching service.
	StoreTimeout time.Duration
	// SubscriptionTimeout bounds one billing lookup.
	SubscriptionTimeout time.Duration

	Generation GenerationConfig
	LLM        llm.Config
}

type HTTPConfig struct {
	Addr            string
	AllowOrigins    []string
	ShutdownTimeout time.Duration
}

// AuthConfig configures bearer-token verification.
type AuthConfig struct {
	// JWTSecret is the HS256 signing key shared with the identity provider.
	JWTSecret string
	// Issuer, when set, must match the token's iss claim.
	Issuer   string
	TokenTTL time.Duration
}

type LogConfig struct {
	Mode  string // "dev" or "prod"
	Level string
}

// GenerationConfig configures the question generation job.
type GenerationConfig struct {
	Schedule            string
	Subjects            []string
	QuestionsPerSubject int
	Concurrency         int
	RunTimeout          time.Duration
}

// DefaultConfig returns the defaults used when nothing is set.
func DefaultConfig() Config {
	gen := questiongen.DefaultConfig()
	return Config{
		HTTP: HTTPConfig{
			Addr:            ":8080",
			AllowOrigins:    []string{"*"},
			ShutdownTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{TokenTTL: 24 * time.Hour},
		Log:  LogConfig{Mode: "dev", Level: "info"},

		StoreTimeout:        5 * time.Second,
		SubscriptionTimeout: 2 * time.Second,

		Generation: GenerationConfig{
			Schedule:            questiongen.DefaultSchedule,
			Subjects:            gen.Subjects,
			QuestionsPerSubject: gen.QuestionsPerSubject,
			Concurrency:         gen.Concurrency,
			RunTimeout:          30 * time.Minute,
		},
		LLM: llm.DefaultConfig(),
	}
}

// Load reads the given .env files, or ./.env when none are named, then the
// process environment. A missing default .env is not an error; a missing
// named file is. Variables already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	} else if err := godotenv.Load(files...); err != nil {
		return Config{}, fmt.Errorf("load %s: %w", strings.Join(files, ", "), err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv overlays JAMBCOACH_* variables on DefaultConfig. When no LLM
// provider is chosen explicitly, the vendors' standard key variables are
// probed.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := DefaultConfig()
	var errs []error

	str := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	dur := func(dst *time.Duration, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	num := func(dst *int, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	list := func(dst *[]string, key string, canon func(string) string) {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return
		}
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = canon(strings.TrimSpace(part)); part != "" {
				out = append(out, part)
			}
		}
		*dst = out
	}
	same := func(s string) string { return s }

	str(&cfg.DBPath, "JAMBCOACH_DB")
	str(&cfg.HTTP.Addr, "JAMBCOACH_HTTP_ADDR")
	list(&cfg.HTTP.AllowOrigins, "JAMBCOACH_CORS_ORIGINS", same)
	dur(&cfg.HTTP.ShutdownTimeout, "JAMBCOACH_SHUTDOWN_TIMEOUT")
	str(&cfg.Auth.JWTSecret, "JAMBCOACH_JWT_SECRET")
	str(&cfg.Auth.Issuer, "JAMBCOACH_JWT_ISSUER")
	dur(&cfg.Auth.TokenTTL, "JAMBCOACH_TOKEN_TTL")
	str(&cfg.Log.Mode, "JAMBCOACH_LOG_MODE")
	str(&cfg.Log.Level, "JAMBCOACH_LOG_LEVEL")
	dur(&cfg.StoreTimeout, "JAMBCOACH_STORE_TIMEOUT")
	dur(&cfg.SubscriptionTimeout, "JAMBCOACH_SUBSCRIPTION_TIMEOUT")
	str(&cfg.Generation.Schedule, "JAMBCOACH_GENERATION_SCHEDULE")
	list(&cfg.Generation.Subjects, "JAMBCOACH_GENERATION_SUBJECTS", subject.Canonical)
	num(&cfg.Generation.QuestionsPerSubject, "JAMBCOACH_QUESTIONS_PER_SUBJECT")
	num(&cfg.Generation.Concurrency, "JAMBCOACH_GENERATION_CONCURRENCY")
	dur(&cfg.Generation.RunTimeout, "JAMBCOACH_GENERATION_TIMEOUT")

	cfg.LLM = llm.ConfigFromEnv(getenv)
	if getenv("JAMBCOACH_LLM_PROVIDER") == "" {
		if pc, _ := cfg.LLM.Selected(); pc.APIKey == "" {
			if discovered, ok := llm.DiscoverConfig(getenv); ok {
				cfg.LLM = discovered
			}
		}
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

// Validate checks values every command depends on.
func (c Config) Validate() error {
	var errs []error
	if c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("store timeout must be positive"))
	}
	if c.SubscriptionTimeout <= 0 {
		errs = append(errs, errors.New("subscription timeout must be positive"))
	}
	if c.Generation.QuestionsPerSubject < 1 {
		errs = append(errs, errors.New("questions per subject must be at least 1"))
	}
	if c.Generation.Concurrency < 1 {
		errs = append(errs, errors.New("generation concurrency must be at least 1"))
	}
	if len(c.Generation.Subjects) == 0 {
		errs = append(errs, errors.New("at least one generation subject is required"))
	}
	switch strings.ToLower(c.Log.Mode) {
	case "dev", "development", "prod", "production":
	default:
		errs = append(errs, fmt.Errorf("unknown log mode %q", c.Log.Mode))
	}
	return errors.Join(errs...)
}

// MinSecretLength is the shortest accepted JWT secret.
const MinSecretLength = 32

// ValidateAuth checks the token settings needed to serve or mint tokens.
func (c Config) ValidateAuth() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JAMBCOACH_JWT_SECRET is required")
	}
	if len(c.Auth.JWTSecret) < MinSecretLength {
		return fmt.Errorf("JAMBCOACH_JWT_SECRET must be at least %d bytes", MinSecretLength)
	}
	return nil
}

// QuestionGen derives the generator configuration.
func (c Config) QuestionGen() questiongen.Config {
	gc := questiongen.DefaultConfig()
	gc.Subjects = append([]string(nil), c.Generation.Subjects...)
	gc.QuestionsPerSubject = c.Generation.QuestionsPerSubject
	gc.Concurrency = c.Generation.Concurrency
	gc.Source = c.LLM.Provider + "-automated"
	return gc
}
