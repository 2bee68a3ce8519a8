// File: api/handlers/health.go

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HandleHealth reports liveness together with the backends in use
func HandleHealth(sessionBackend, snapshotBackend string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"time":     time.Now().Format(time.RFC3339),
			"session":  sessionBackend,
			"snapshot": snapshotBackend,
		})
	}
}
