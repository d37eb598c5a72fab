// Package bootstrap assembles and runs the workout service.
//
// An App connects the components enabled in config.Config in dependency
// order (telemetry, SQLite through GORM, Redis, the recovery manager, the
// workout service, the Gin server), runs lifecycle hooks, prints a startup
// summary and shuts everything down in reverse order on SIGINT or SIGTERM.
//
//	cfg, err := config.Load("workoutd")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	app, err := bootstrap.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
package bootstrap
