package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the per-request id in both directions
const RequestIDHeader = "X-Request-ID"

const ctxRequestID = "requestID"

// RequestLogger assigns a request id and writes one access log line per request
func RequestLogger(lgr zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}
		c.Set(ctxRequestID, requestID)
		c.Header(RequestIDHeader, requestID)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := lgr.Info()
		switch {
		case status >= 500:
			event = lgr.Error()
		case status >= 400:
			event = lgr.Warn()
		}

		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}

		event.
			Str("requestID", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("clientIP", c.ClientIP()).
			Msg("HTTP request")
	}
}
