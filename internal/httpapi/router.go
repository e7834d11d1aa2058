// Package httpapi serves the coaching operations over HTTP with bearer
// token identity.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/jambcoach/internal/logger"
)

// RouterConfig wires the router.
type RouterConfig struct {
	Service      Coach
	Tokens       *Tokens
	Log          *logger.Logger
	AllowOrigins []string
}

// NewRouter builds the gin engine. Everything under /v1 requires a token.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(cfg.Log), RequestLogger(cfg.Log), CORS(cfg.AllowOrigins))

	h := &handlers{svc: cfg.Service}
	r.GET("/healthz", h.health)

	v1 := r.Group("/v1")
	v1.Use(RequireAuth(cfg.Tokens))
	{
		v1.GET("/subjects", h.listSubjects)
		v1.GET("/subjects/:subject/sets", h.listSets)
		v1.GET("/sets/:id/questions", h.setQuestions)
		v1.DELETE("/sets/:id", h.deleteSet)
		v1.POST("/answers", h.submitAnswer)
		v1.GET("/progress/:subject", h.getProgress)
		v1.GET("/performance", h.performance)
		v1.GET("/subscription", h.subscription)
	}

	r.NoRoute(func(c *gin.Context) {
		abort(c, http.StatusNotFound, "not_found", "route not found", false)
	})
	return r
}

// Server is an http.Server around the router.
type Server struct {
	srv             *http.Server
	shutdownTimeout time.Duration
	log             *logger.Logger
}

func NewServer(addr string, handler http.Handler, shutdownTimeout time.Duration, log *logger.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: shutdownTimeout,
		log:             logger.OrNop(log),
	}
}

// Run serves until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", s.srv.Addr)
		errc <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	s.log.Info("http server shutting down")
	if err := s.srv.Shutdown(sctx); err != nil {
		return err
	}
	return nil
}
