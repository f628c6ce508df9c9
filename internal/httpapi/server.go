// Package httpapi exposes the learning workflows over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/abhisek/pathwise/internal/auth"
	"github.com/abhisek/pathwise/internal/learning"
	"github.com/abhisek/pathwise/internal/logger"
)

// Options configures the HTTP surface.
type Options struct {
	CORSOrigins []string
	AdminEmails []string
}

// Server routes HTTP requests to the learning service.
type Server struct {
	svc      *learning.Service
	issuer   *auth.Issuer
	profiles auth.ProfileFunc
	opts     Options
	log      *logger.Logger
	engine   *gin.Engine
}

// New builds the router.
func New(svc *learning.Service, issuer *auth.Issuer, profiles auth.ProfileFunc, opts Options, log *logger.Logger) *Server {
	s := &Server{
		svc:      svc,
		issuer:   issuer,
		profiles: profiles,
		opts:     opts,
		log:      log.With("component", "httpapi"),
	}
	s.engine = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())
	if len(s.opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     s.opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/auth/register", s.register)

	protected := api.Group("")
	protected.Use(s.requireAuth())
	protected.GET("/me", s.me)
	protected.POST("/onboarding/questions", s.questions)
	protected.POST("/roadmaps", s.createRoadmap)
	protected.GET("/roadmaps", s.listRoadmaps)
	protected.GET("/roadmaps/:id", s.getRoadmap)
	protected.DELETE("/roadmaps/:id", s.deleteRoadmap)
	protected.GET("/roadmaps/:id/progress", s.progress)
	protected.GET("/lessons/:id/content", s.lessonContent)
	protected.POST("/lessons/:id/completions", s.completeLesson)
	protected.GET("/admin/overview", s.adminOverview)

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
// within shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.serve(ctx, ln, shutdownTimeout)
}

func (s *Server) serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	s.log.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if len(header) <= 7 || !strings.EqualFold(header[:7], "Bearer ") {
			abort(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		claims, err := s.issuer.Verify(strings.TrimSpace(header[7:]))
		if err != nil {
			abort(c, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			return
		}

		u, err := s.profiles(c.Request.Context(), claims.Subject)
		if err != nil {
			abort(c, http.StatusUnauthorized, "unauthorized", "unknown user")
			return
		}

		c.Request = c.Request.WithContext(auth.WithUser(c.Request.Context(), u))
		c.Next()
	}
}

func currentUser(c *gin.Context) *auth.User {
	return auth.UserFrom(c.Request.Context())
}
