// Package httpapi serves the drill engine over JSON.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/abhisek/drillz/internal/engine"
)

var errMissingToken = errors.New("missing or invalid token")

// Options configures a Server.
type Options struct {
	Addr        string
	Engine      *engine.Service
	Tokens      *Tokens
	Logger      *zap.Logger
	CORSOrigins []string
	ServiceName string // otelgin span prefix; empty disables request tracing
}

// Server is the HTTP front of the engine.
type Server struct {
	log    *zap.Logger
	eng    *engine.Service
	tokens *Tokens
	router *gin.Engine
	srv    *http.Server
}

// New builds the server and its routes.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		log:    log.Named("http"),
		eng:    opts.Engine,
		tokens: opts.Tokens,
	}
	s.router = s.routes(opts)
	s.srv = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if opts.ServiceName != "" {
		r.Use(otelgin.Middleware(opts.ServiceName))
	}
	r.Use(requestID())
	r.Use(requestLogger(s.log))
	if len(opts.CORSOrigins) > 0 {
		r.Use(corsMiddleware(opts.CORSOrigins))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/courses", s.listCourses)

	protected := api.Group("")
	protected.Use(s.requireAuth())
	{
		protected.GET("/me", s.me)

		protected.POST("/courses/:id/select", s.selectCourse)
		protected.GET("/courses/:id", s.overview)
		protected.GET("/courses/:id/drills", s.drillList)
		protected.POST("/courses/:id/refill", s.refill)
		protected.POST("/courses/:id/reset", s.reset)
		protected.GET("/courses/:id/leaderboard", s.leaderboard)
		protected.GET("/courses/:id/stats", s.stats)

		protected.POST("/drills/:id/attempts", s.startDrill)

		protected.POST("/attempts/:id/answers", s.submitAnswer)
		protected.POST("/attempts/:id/advance", s.advance)
		protected.POST("/attempts/:id/expire", s.expire)
		protected.DELETE("/attempts/:id", s.abandon)
	}
	return r
}

// ListenAndServe blocks until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
