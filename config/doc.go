// Package config loads the workout service configuration with Viper.
//
// Sources, in increasing priority: a YAML file (./cmd/<service>/config.yml,
// ./config/config.yml or ./config.yml), a .env file loaded with godotenv,
// and the process environment. Environment variables map onto nested keys
// by their underscores, so RECOVERY_MAX_CONCURRENT sets
// recovery.max_concurrent:
//
//	cfg, err := config.Load("workoutd", config.WithEnvPrefix("WORKOUTD"))
//	mgr := recovery.New(cfg.RecoveryOptions()...)
package config
