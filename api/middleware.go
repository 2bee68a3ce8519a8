// File: api/middleware.go

package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/XZXY-AI/reddit-crawler/internal/observability"
)

const requestIDHeader = "X-Request-ID"

// requestID tags every request with an id, reusing one supplied by a proxy
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(observability.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}
