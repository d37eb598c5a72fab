package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/recoverykit/config"
	"github.com/kbukum/recoverykit/database"
	"github.com/kbukum/recoverykit/logger"
	"github.com/kbukum/recoverykit/observability"
	"github.com/kbukum/recoverykit/recovery"
	"github.com/kbukum/recoverykit/redis"
	"github.com/kbukum/recoverykit/server"
)

func testConfig(t *testing.T) (*config.Config, *miniredis.Miniredis) {
	t.Helper()
	mini := miniredis.RunT(t)
	return &config.Config{
		Name:        "workoutd",
		Version:     "test",
		Environment: "production",
		Logging:     logger.Config{Level: "disabled"},
		Database: database.Config{
			Enabled:      true,
			DSN:          ":memory:",
			MaxOpenConns: 1,
			MaxIdleConns: 1,
			AutoMigrate:  true,
			LogLevel:     "silent",
		},
		Redis:  redis.Config{Enabled: true, Addr: mini.Addr()},
		Server: server.Config{Enabled: true, Host: "127.0.0.1"},
	}, mini
}

func newTestApp(t *testing.T, cfg *config.Config, opts ...Option) (*App, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	base := []Option{
		WithLogger(logger.Nop()),
		WithListenAddr("127.0.0.1:0"),
		WithSummaryOutput(&out),
		WithGracefulTimeout(time.Second),
	}
	app, err := New(cfg, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return app, &out
}

func postJSON(t *testing.T, url string, body any) (int, map[string]any) {
	t.Helper()
	buf, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func getJSON(t *testing.T, url string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestNew_ValidatesConfig(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.Name = ""
	if _, err := New(cfg, WithLogger(logger.Nop())); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestNew_Defaults(t *testing.T) {
	cfg, _ := testConfig(t)
	app, _ := newTestApp(t, cfg)
	if app.Name != "workoutd" || app.Version != "test" {
		t.Errorf("name/version = %q/%q", app.Name, app.Version)
	}
	if app.gracefulTimeout != time.Second {
		t.Errorf("graceful timeout = %v", app.gracefulTimeout)
	}
	if app.DB != nil || app.Server != nil {
		t.Error("components must not be connected before Start")
	}
}

func TestApp_ServesWorkoutsWithRecovery(t *testing.T) {
	cfg, _ := testConfig(t)
	app, out := newTestApp(t, cfg)
	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })

	base := "http://" + app.Server.Addr()
	body := map[string]any{"userId": "u1", "programId": "p1", "weekIndex": 0, "dayIndex": 0, "name": "Push"}

	status, first := postJSON(t, base+"/api/workouts", body)
	if status != http.StatusCreated {
		t.Fatalf("first create = %d %v", status, first)
	}
	id := first["data"].(map[string]any)["id"].(string)

	body["name"] = "Push v2"
	status, second := postJSON(t, base+"/api/workouts", body)
	if status != http.StatusCreated {
		t.Fatalf("duplicate create = %d %v", status, second)
	}
	if meta, _ := second["meta"].(map[string]any); meta["recovered"] != true {
		t.Errorf("duplicate should be recovered, got %v", second)
	}
	if got := second["data"].(map[string]any)["id"]; got != id {
		t.Errorf("recovered id = %v, want %s", got, id)
	}

	status, got := getJSON(t, base+"/api/workouts/"+id)
	if status != http.StatusOK || got["data"].(map[string]any)["name"] != "Push v2" {
		t.Errorf("get = %d %v", status, got)
	}

	status, health := getJSON(t, base+"/health")
	if status != http.StatusOK || health["status"] != string(observability.HealthStatusUp) {
		t.Errorf("health = %d %v", status, health)
	}
	if comps, _ := health["components"].([]any); len(comps) != 3 {
		t.Errorf("health components = %v, want database, redis and recovery", health["components"])
	}

	if s := app.Manager.Statistics(); s.Successful != 1 {
		t.Errorf("successful recoveries = %d", s.Successful)
	}
	for _, want := range []string{"workoutd vtest", "database [sqlite]", "redis [cache]", "/api/workouts", "Health: up"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("summary missing %q:\n%s", want, out.String())
		}
	}
}

func TestApp_RedisDownDoesNotStopStartup(t *testing.T) {
	cfg, mini := testConfig(t)
	cfg.Redis.DialTimeout = "100ms"
	mini.Close()

	app, out := newTestApp(t, cfg)
	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })

	if h := app.Ready(context.Background()); h.Status != observability.HealthStatusDown {
		t.Errorf("ready status = %s, want down", h.Status)
	}
	if app.Workouts == nil {
		t.Error("workout service should still run on the database")
	}
	if !strings.Contains(out.String(), "❌ redis") {
		t.Errorf("summary should flag redis:\n%s", out.String())
	}
}

func TestApp_DisabledSections(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.Database.Enabled = false
	cfg.Redis.Enabled = false

	app, _ := newTestApp(t, cfg)
	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })

	if app.DB != nil || app.Redis != nil || app.Workouts != nil {
		t.Error("disabled sections must leave components nil")
	}
	for _, r := range app.Summary.Routes() {
		if r.Path == "/api/workouts" {
			t.Error("workout routes need a database")
		}
	}
	if status, _ := getJSON(t, "http://"+app.Server.Addr()+"/api/recovery/stats"); status != http.StatusOK {
		t.Errorf("stats status = %d", status)
	}
}

func TestApp_HooksRunInOrder(t *testing.T) {
	cfg, _ := testConfig(t)
	app, _ := newTestApp(t, cfg)

	var order []string
	app.OnStart(func(context.Context) error {
		if app.Manager == nil || app.DB == nil {
			return fmt.Errorf("components not ready in OnStart")
		}
		order = append(order, "start")
		return nil
	})
	app.OnReady(func(context.Context) error { order = append(order, "ready"); return nil })
	app.OnStop(func(context.Context) error { order = append(order, "stop"); return nil })

	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := app.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if got := strings.Join(order, ","); got != "start,ready,stop" {
		t.Errorf("hook order = %s", got)
	}
	if err := app.DB.PingContext(context.Background()); err == nil {
		t.Error("database should be closed after shutdown")
	}
}

func TestApp_StartHookFailureClosesComponents(t *testing.T) {
	cfg, _ := testConfig(t)
	app, _ := newTestApp(t, cfg)
	app.OnStart(func(context.Context) error { return fmt.Errorf("boom") })

	err := app.Start(context.Background())
	if err == nil || !strings.Contains(err.Error(), "onStart hook failed") {
		t.Fatalf("Start = %v", err)
	}
	if err := app.DB.PingContext(context.Background()); err == nil {
		t.Error("database should be closed after a failed start")
	}
	if len(app.closers) != 0 {
		t.Errorf("closers left: %d", len(app.closers))
	}
}

func TestApp_ShutdownCollectsErrors(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.Server.Enabled = false
	app, _ := newTestApp(t, cfg)
	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	var closed bool
	app.closers = append([]closer{{"marker", func(context.Context) error { closed = true; return nil }}}, app.closers...)
	app.OnStop(func(context.Context) error { return fmt.Errorf("hook down") })

	err := app.Shutdown(context.Background())
	if err == nil || !strings.Contains(err.Error(), "hook down") {
		t.Fatalf("Shutdown = %v", err)
	}
	if !closed {
		t.Error("components must close even when a stop hook fails")
	}
}

func TestApp_RunStopsOnContextCancel(t *testing.T) {
	cfg, _ := testConfig(t)
	app, _ := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	app.OnReady(func(context.Context) error { cancel(); return nil })

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestApp_RecoveryOptionsFromConfig(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.Server.Enabled = false
	cfg.Recovery.MaxConcurrent = 4
	app, _ := newTestApp(t, cfg, WithRecoveryOptions(recovery.WithMaxConcurrent(2)))
	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })

	if got := app.Manager.MaxConcurrent(); got != 2 {
		t.Errorf("max concurrent = %d, want explicit option to win", got)
	}
}

func TestSummary_Write(t *testing.T) {
	s := NewSummary("svc", "1.0.0")
	s.SetStartupDuration(1500 * time.Millisecond)
	s.TrackInfrastructure("database", "sqlite", "file.db", true)
	s.TrackInfrastructure("redis", "cache", "localhost:6379", false)
	s.TrackComponent("recovery", "max 10 concurrent")
	s.TrackRoute(http.MethodGet, "/health")

	health := observability.NewServiceHealth("svc", "1.0.0")
	health.AddComponent(observability.Up("database"))
	health.AddComponent(observability.Health{Name: "recovery", Status: observability.HealthStatusDegraded, Message: "busy"})

	var buf bytes.Buffer
	s.Write(&buf, health)
	out := buf.String()
	for _, want := range []string{
		"svc v1.0.0 started in 1.50s",
		"├── ✅ database [sqlite]: file.db",
		"└── ❌ redis [cache]: localhost:6379",
		"└── recovery (max 10 concurrent)",
		"Routes (1)",
		"Health: degraded",
		"⚠️ recovery: busy",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	NewSummary("svc", "1").Write(&buf, nil)
	if strings.Contains(buf.String(), "Health") {
		t.Error("nil health should not print a health section")
	}
}
