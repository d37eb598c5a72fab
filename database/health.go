package database

import (
	"context"
	"strconv"

	"github.com/kbukum/recoverykit/observability"
)

// CheckHealth pings the database and reports pool statistics.
func (d *DB) CheckHealth(ctx context.Context) observability.Health {
	sqlDB, err := d.GormDB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		return observability.Down("database", err)
	}

	h := observability.Up("database")

	stats := sqlDB.Stats()
	h.Details = map[string]string{
		"open_connections": strconv.Itoa(stats.OpenConnections),
		"in_use":           strconv.Itoa(stats.InUse),
		"idle":             strconv.Itoa(stats.Idle),
	}
	return h
}
