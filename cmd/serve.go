package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abhisek/jambcoach/internal/httpapi"
	"github.com/abhisek/jambcoach/internal/llm"
	"github.com/abhisek/jambcoach/internal/questiongen"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the question generation schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, done, err := setup(cmd)
		if err != nil {
			return err
		}
		defer done()
		if err := e.cfg.ValidateAuth(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if noSched, _ := cmd.Flags().GetBool("no-scheduler"); !noSched {
			job, err := newJob(cmd, e.cfg.QuestionGen(), e)
			if err != nil {
				e.log.Warn("question generation disabled", "error", err)
			} else {
				sched, err := questiongen.NewScheduler(job, e.cfg.Generation.Schedule,
					e.cfg.QuestionGen().Location, e.cfg.Generation.RunTimeout, e.log)
				if err != nil {
					return err
				}
				sched.Start()
				defer sched.Stop()
			}
		}

		if e.cfg.Log.Mode == "prod" || e.cfg.Log.Mode == "production" {
			gin.SetMode(gin.ReleaseMode)
		}
		router := httpapi.NewRouter(httpapi.RouterConfig{
			Service:      e.svc,
			Tokens:       httpapi.NewTokens(e.cfg.Auth.JWTSecret, e.cfg.Auth.Issuer, e.cfg.Auth.TokenTTL),
			Log:          e.log.With("component", "http"),
			AllowOrigins: e.cfg.HTTP.AllowOrigins,
		})
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = e.cfg.HTTP.Addr
		}
		return httpapi.NewServer(addr, router, e.cfg.HTTP.ShutdownTimeout, e.log).Run(ctx)
	},
}

// newJob builds a generation job on the configured LLM provider.
func newJob(cmd *cobra.Command, gc questiongen.Config, e *env) (*questiongen.Job, error) {
	if err := e.cfg.LLM.Validate(); err != nil {
		return nil, fmt.Errorf("LLM provider not configured: %w", err)
	}
	provider, err := llm.New(commandContext(cmd), e.cfg.LLM, e.st, e.log.With("component", "llm"))
	if err != nil {
		return nil, err
	}
	gen := questiongen.NewGenerator(provider, gc, e.log)
	return questiongen.NewJob(gen, e.st, gc, e.log), nil
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides JAMBCOACH_HTTP_ADDR)")
	serveCmd.Flags().Bool("no-scheduler", false, "Serve the API without the generation schedule")
}
