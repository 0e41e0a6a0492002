package middleware

import (
	"time"

	"github.com/ariebrainware/physiofriend-api/util"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// EndpointCallLogger writes one structured line per request. Failures answer 200
// too, so the envelope outcome is not visible here; the line carries the status
// and the principal for correlation with the security log.
func EndpointCallLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = util.Logger().Error()
		case status == 429:
			event = util.Logger().Warn()
		default:
			event = util.Logger().Info()
		}

		event = event.
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Str("raw_path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("ip", c.ClientIP()).
			Str("request_id", c.GetString(RequestIDContextKey))
		if p, ok := GetPrincipal(c); ok {
			event = event.Str("principal", p.Key())
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.Msg("request")
	}
}
