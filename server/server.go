package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kbukum/recoverykit/logger"
	"github.com/kbukum/recoverykit/observability"
	"github.com/kbukum/recoverykit/recovery"
	"github.com/kbukum/recoverykit/server/endpoint"
	"github.com/kbukum/recoverykit/server/middleware"
)

// Server is the HTTP front of the service, backed by Gin.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     Config
	log        *logger.Logger
	listener   net.Listener
}

// Dependencies are the components the routes are served from.
type Dependencies struct {
	ServiceName string
	Version     string
	Manager     *recovery.Manager
	Workouts    WorkoutStore
	Checkers    []observability.HealthChecker
}

// New creates a Server. No middleware or routes are registered yet.
func New(cfg Config, log *logger.Logger) *Server {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		engine:     engine,
		config:     cfg,
		log:        log.WithComponent("server"),
	}
}

// GinEngine returns the underlying Gin engine for route registration.
func (s *Server) GinEngine() *gin.Engine {
	return s.engine
}

// ApplyMiddleware installs panic recovery, request ids and request logging.
func (s *Server) ApplyMiddleware() {
	s.engine.Use(middleware.Recovery(s.log))
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.RequestLogger(s.log))
}

// RegisterRoutes mounts the health probes and the /api group. The /api
// group is authenticated and rate limited when the config enables it.
func (s *Server) RegisterRoutes(d Dependencies) {
	s.engine.GET("/health", endpoint.Health(d.ServiceName, d.Version, d.Checkers...))
	s.engine.GET("/alive", endpoint.Liveness(d.ServiceName))

	api := s.engine.Group("/api")
	if s.config.JWTSecret != "" {
		api.Use(middleware.Auth(middleware.AuthConfig{Secret: []byte(s.config.JWTSecret)}))
	}
	if s.config.RateLimit > 0 {
		api.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: s.config.RateLimit,
			Burst:             s.config.RateBurst,
		}))
	}

	if d.Manager != nil {
		api.GET("/recovery/stats", endpoint.RecoveryStats(d.Manager))
		if d.Workouts != nil {
			h := NewWorkoutHandler(d.Workouts, d.Manager, s.log)
			api.POST("/workouts", h.Create)
			api.GET("/workouts/:id", h.Get)
		}
	}

	for _, r := range s.engine.Routes() {
		s.log.Debug("Route registered", map[string]any{"method": r.Method, "path": r.Path})
	}
}

// SetAddr overrides the configured listen address. It has no effect once
// the server is started.
func (s *Server) SetAddr(addr string) {
	s.httpServer.Addr = addr
}

// Start binds the port and begins serving. It returns once the listener is
// bound; serving continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.listener = listener

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Server error", map[string]any{logger.FieldError: err.Error()})
		}
	}()

	s.log.Info("HTTP server started", map[string]any{"addr": listener.Addr().String()})
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

// Addr returns the bound address once started, or the configured one.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}
