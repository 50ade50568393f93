package middleware

import (
	"log/slog"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/feria-api/pkg/logger"
)

// RequestLogger logs incoming HTTP requests using slog
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		// Health probes are too frequent to be useful
		if path == "/api/v1/health" {
			return
		}

		status := c.Writer.Status()
		if raw != "" {
			path = path + "?" + redactQuery(raw)
		}

		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("route", c.FullPath()),
			slog.Int("status", status),
			slog.String("ip", c.ClientIP()),
			slog.Duration("latency", time.Since(start)),
		}

		if errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String(); errorMessage != "" {
			attrs = append(attrs, slog.String("error", errorMessage))
		}
		if actorID := GetUserID(c); actorID != 0 {
			attrs = append(attrs, slog.Uint64("actor_id", uint64(actorID)), slog.String("role", GetUserRole(c)))
		}

		msg := "Incoming request"
		switch {
		case status >= 500:
			logger.Log.Error(msg, attrs...)
		case status >= 400:
			logger.Log.Warn(msg, attrs...)
		default:
			logger.Log.Info(msg, attrs...)
		}
	}
}

// redactQuery hides the ?token= credential accepted by Auth
func redactQuery(raw string) string {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return "[unparseable]"
	}
	if values.Has("token") {
		values.Set("token", "REDACTED")
	}
	return values.Encode()
}
