package bootstrap

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/recoverykit/config"
	"github.com/kbukum/recoverykit/database"
	"github.com/kbukum/recoverykit/logger"
	"github.com/kbukum/recoverykit/observability"
	"github.com/kbukum/recoverykit/recovery"
	"github.com/kbukum/recoverykit/redis"
	"github.com/kbukum/recoverykit/server"
	"github.com/kbukum/recoverykit/workout"
)

// workoutCachePrefix namespaces cached workout logs under the Redis key prefix.
const workoutCachePrefix = "workout"

// App owns the workout service's components and their lifecycle.
//
//	cfg, _ := config.Load("workoutd")
//	app, _ := bootstrap.New(cfg)
//	app.OnReady(func(ctx context.Context) error { ... })
//	err := app.Run(ctx)
//
// Components are nil when their config section is disabled.
type App struct {
	Name    string
	Version string
	Cfg     *config.Config
	Logger  *logger.Logger
	Summary *Summary

	DB       *database.DB
	Redis    *redis.Client
	Manager  *recovery.Manager
	Workouts *workout.Service
	Server   *server.Server

	gracefulTimeout time.Duration
	listenAddr      string
	output          io.Writer
	recoveryOpts    []recovery.Option

	// closers run in reverse order on shutdown.
	closers []closer

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

type closer struct {
	name string
	fn   func(ctx context.Context) error
}

// New validates cfg and prepares the logger. Nothing is connected until
// Start.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	o := resolveOptions(opts)
	app := &App{
		Name:            cfg.Name,
		Version:         cfg.Version,
		Cfg:             cfg,
		Summary:         NewSummary(cfg.Name, cfg.Version),
		gracefulTimeout: 15 * time.Second,
		listenAddr:      o.listenAddr,
		output:          os.Stdout,
		recoveryOpts:    o.recoveryOpts,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.output != nil {
		app.output = o.output
	}
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(cfg.Logging)
		app.Logger = logger.GetGlobalLogger()
	}
	return app, nil
}

// Start connects every enabled component, starts the HTTP server and runs
// the OnStart and OnReady hooks. Components opened before a failure are
// closed again.
func (a *App) Start(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("Starting application", map[string]any{
		"name":        a.Name,
		"version":     a.Version,
		"environment": a.Cfg.Environment,
	})

	if err := a.initialize(ctx); err != nil {
		a.closeAll(ctx)
		return fmt.Errorf("initialization failed: %w", err)
	}
	if err := runHooks(ctx, a.onStart); err != nil {
		a.closeAll(ctx)
		return fmt.Errorf("onStart hook failed: %w", err)
	}
	if a.Server != nil {
		if err := a.Server.Start(ctx); err != nil {
			a.closeAll(ctx)
			return err
		}
		a.closers = append(a.closers, closer{"server", a.Server.Stop})
		a.Summary.TrackInfrastructure("server", "http", a.Server.Addr(), true)
	}

	health := a.Ready(ctx)
	if health.Status != observability.HealthStatusUp {
		a.Logger.Warn("Ready check reported issues", map[string]any{"status": string(health.Status)})
	}
	if err := runHooks(ctx, a.onReady); err != nil {
		_ = a.Shutdown(ctx)
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.Summary.Write(a.output, health)
	return nil
}

// initialize builds the components in dependency order: telemetry,
// storage, the recovery manager, the workout service and the HTTP routes.
func (a *App) initialize(ctx context.Context) error {
	metrics, err := a.initTelemetry(ctx)
	if err != nil {
		return err
	}

	if a.Cfg.Database.Enabled {
		db, err := database.OpenSQLite(ctx, a.Cfg.Database, a.Logger)
		if err != nil {
			return err
		}
		a.DB = db
		a.closers = append(a.closers, closer{"database", func(context.Context) error { return db.Close() }})
		a.Summary.TrackInfrastructure("database", "sqlite", a.Cfg.Database.DSN, true)
	}

	if a.Cfg.Redis.Enabled {
		client, err := redis.New(a.Cfg.Redis, a.Logger)
		if err != nil {
			return err
		}
		a.Redis = client
		a.closers = append(a.closers, closer{"redis", func(context.Context) error { return client.Close() }})

		// The cache is optional: an unreachable Redis degrades reads but
		// does not stop the service.
		healthy := true
		if err := client.Ping(ctx); err != nil {
			healthy = false
			a.Logger.Warn("Redis unreachable at startup", logger.ErrorFields("ping", err))
		}
		a.Summary.TrackInfrastructure("redis", "cache", a.Cfg.Redis.Addr, healthy)
	}

	opts := append(a.Cfg.RecoveryOptions(),
		recovery.WithLogger(a.Logger),
		recovery.WithMetrics(metrics),
		recovery.WithTracer(observability.Tracer("recovery")),
	)
	a.Manager = recovery.New(append(opts, a.recoveryOpts...)...)
	a.Summary.TrackComponent("recovery", fmt.Sprintf("max %d concurrent", a.Manager.MaxConcurrent()))

	if a.DB != nil {
		svcOpts := []workout.Option{workout.WithLogger(a.Logger)}
		if a.Redis != nil {
			cache := redis.NewTypedStore[database.WorkoutLog](a.Redis, a.Cfg.Redis.KeyPrefix+":"+workoutCachePrefix)
			svcOpts = append(svcOpts, workout.WithCache(cache, 0))
		}
		a.Workouts = workout.NewService(database.NewWorkoutRepository(a.DB), a.Manager, svcOpts...)
		a.Summary.TrackComponent("workouts", "cached="+fmt.Sprint(a.Redis != nil))
	}

	if a.Cfg.Server.Enabled {
		a.Server = server.New(a.Cfg.Server, a.Logger)
		if a.listenAddr != "" {
			a.Server.SetAddr(a.listenAddr)
		}
		a.Server.ApplyMiddleware()
		deps := server.Dependencies{
			ServiceName: a.Name,
			Version:     a.Version,
			Manager:     a.Manager,
			Checkers:    a.checkers(),
		}
		if a.Workouts != nil {
			deps.Workouts = a.Workouts
		}
		a.Server.RegisterRoutes(deps)
		for _, r := range a.Server.GinEngine().Routes() {
			a.Summary.TrackRoute(r.Method, r.Path)
		}
	}
	return nil
}

// initTelemetry installs the OTLP providers when telemetry is enabled. The
// recovery metrics are created either way; without providers they record
// to the no-op global meter.
func (a *App) initTelemetry(ctx context.Context) (*observability.RecoveryMetrics, error) {
	if a.Cfg.Telemetry.Enabled {
		tp, err := observability.InitTracer(ctx, a.Cfg.TracerConfig())
		if err != nil {
			return nil, fmt.Errorf("tracer: %w", err)
		}
		a.closers = append(a.closers, closer{"tracer", tp.Shutdown})

		mp, err := observability.InitMeter(ctx, a.Cfg.MeterConfig())
		if err != nil {
			return nil, fmt.Errorf("meter: %w", err)
		}
		a.closers = append(a.closers, closer{"meter", mp.Shutdown})
		a.Summary.TrackInfrastructure("telemetry", "otlp", a.Cfg.Telemetry.Endpoint, true)
	}

	metrics, err := observability.NewRecoveryMetrics(observability.Meter("recovery"))
	if err != nil {
		return nil, fmt.Errorf("recovery metrics: %w", err)
	}
	return metrics, nil
}

func (a *App) checkers() []observability.HealthChecker {
	var out []observability.HealthChecker
	if a.DB != nil {
		out = append(out, a.DB)
	}
	if a.Redis != nil {
		out = append(out, a.Redis)
	}
	if a.Manager != nil {
		out = append(out, a.Manager)
	}
	return out
}

// Ready checks every started component.
func (a *App) Ready(ctx context.Context) *observability.ServiceHealth {
	return observability.CheckAll(ctx, a.Name, a.Version, 2*time.Second, a.checkers()...)
}

// Run starts the application, blocks until a shutdown signal or ctx is
// done, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}

	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()
	return a.Shutdown(shutdownCtx)
}

// WaitForSignal blocks until SIGINT, SIGTERM or ctx cancellation.
func (a *App) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", map[string]any{"signal": sig.String()})
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown runs the OnStop hooks, then closes components in reverse start
// order. Every component is closed even when an earlier one fails.
func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.Info("Shutting down application", map[string]any{"timeout": a.gracefulTimeout.String()})

	var errs []error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", map[string]any{logger.FieldError: err.Error()})
		errs = append(errs, err)
	}
	errs = append(errs, a.closeAll(ctx)...)

	a.Logger.Info("Application shutdown complete")
	return stderrors.Join(errs...)
}

func (a *App) closeAll(ctx context.Context) []error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(ctx); err != nil {
			a.Logger.Error("Component close failed", map[string]any{
				logger.FieldComponent: c.name,
				logger.FieldError:     err.Error(),
			})
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	a.closers = nil
	return errs
}
