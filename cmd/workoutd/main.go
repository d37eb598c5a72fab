// Command workoutd serves the workout API with error classification and
// recovery in front of SQLite and Redis.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/kbukum/recoverykit/bootstrap"
	"github.com/kbukum/recoverykit/config"
	"github.com/kbukum/recoverykit/logger"
	"github.com/kbukum/recoverykit/version"
)

const serviceName = "workoutd"

func main() {
	configPath := flag.String("config", "", "path to config.yml (searched in the default locations when empty)")
	envPath := flag.String("env", "", "path to a .env file")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(serviceName, version.Short())
		return
	}

	opts := []config.LoaderOption{config.WithEnvPrefix("WORKOUTD")}
	if *configPath != "" {
		opts = append(opts, config.WithConfigFile(*configPath))
	}
	if *envPath != "" {
		opts = append(opts, config.WithEnvFile(*envPath))
	}

	cfg, err := config.Load(serviceName, opts...)
	if err != nil {
		logger.Error("Failed to load config", map[string]any{logger.FieldError: err.Error()})
		os.Exit(1)
	}

	app, err := bootstrap.New(cfg)
	if err != nil {
		logger.Error("Failed to create application", map[string]any{logger.FieldError: err.Error()})
		os.Exit(1)
	}
	if err := app.Run(context.Background()); err != nil {
		app.Logger.Error("Application stopped with error", map[string]any{logger.FieldError: err.Error()})
		os.Exit(1)
	}
}
