package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mssola/user_agent"
	"go.uber.org/zap"
)

// AccessLog records one structured log line per request, with the client's
// browser and OS parsed out of the User-Agent header.
func AccessLog(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		ua := user_agent.New(c.Request.UserAgent())
		browser, version := ua.Browser()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.String("browser", browser+" "+version),
			zap.String("os", ua.OS()),
		)
	}
}
