package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/jambcoach/internal/coach"
	"github.com/abhisek/jambcoach/internal/config"
	"github.com/abhisek/jambcoach/internal/logger"
	"github.com/abhisek/jambcoach/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "jambcoach",
	Short:         "JAMB exam practice backend",
	Long:          "jambcoach serves JAMB practice question sets, gates them by subscription and tracks learner progress.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides JAMBCOACH_DB env var)")
	rootCmd.PersistentFlags().StringSlice("env-file", nil, "Load variables from these .env files (default ./.env if present)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(setsCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(subscriptionCmd)
	rootCmd.AddCommand(grantCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads and validates configuration for a command.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	files, _ := cmd.Flags().GetStringSlice("env-file")
	cfg, err := config.Load(files...)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*logger.Logger, error) {
	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then JAMBCOACH_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	p, _ := cmd.Flags().GetString("db")
	if p == "" {
		p = cfg.DBPath
	}
	if p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func openStore(cmd *cobra.Command, cfg config.Config) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

func newService(st *store.Store, cfg config.Config, log *logger.Logger) *coach.Service {
	return coach.New(st, coach.Options{
		StoreTimeout:        cfg.StoreTimeout,
		SubscriptionTimeout: cfg.SubscriptionTimeout,
		Logger:              log,
	})
}

// env bundles what most subcommands need.
type env struct {
	cfg config.Config
	log *logger.Logger
	st  *store.Store
	svc *coach.Service
}

func setup(cmd *cobra.Command) (*env, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	st, err := openStore(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}
	e := &env{cfg: cfg, log: log, st: st, svc: newService(st, cfg, log)}
	return e, func() {
		st.Close()
		log.Sync()
	}, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func requiredString(cmd *cobra.Command, name string) (string, error) {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		return "", fmt.Errorf("--%s is required", name)
	}
	return v, nil
}
