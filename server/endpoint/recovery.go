package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/recoverykit/recovery"
)

// RecoveryStats reports the manager's counters and in-flight recoveries.
func RecoveryStats(m *recovery.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := m.Statistics()
		c.JSON(http.StatusOK, gin.H{
			"statistics":    stats,
			"successRate":   stats.SuccessRate(),
			"maxConcurrent": m.MaxConcurrent(),
			"active":        m.ActiveRecoveries(),
		})
	}
}
