package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ariebrainware/physiofriend-api/util"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	dbContextKey        = "db"
	RequestIDContextKey = "request_id"
	RequestIDHeader     = "X-Request-ID"
)

// CORSMiddleware configures CORS for the three consoles. Each console sends its
// token in its own header, so those must be allowed next to Authorization.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-Requested-With", "Authorization", "token", "dtoken", "atoken", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        24 * time.Hour,
	}
	if len(origins) == 0 || util.Contains("*", origins) {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// DatabaseMiddleware stores the gorm handle in the request context.
func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(dbContextKey, db)
		c.Next()
	}
}

// GetDB returns the handle set by DatabaseMiddleware, or nil.
func GetDB(c *gin.Context) *gorm.DB {
	v, ok := c.Get(dbContextKey)
	if !ok {
		return nil
	}
	db, _ := v.(*gorm.DB)
	return db
}

// RequestID propagates an incoming X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(RequestIDContextKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// Recovery turns a panic into the envelope with a 500, the only status besides
// 429 that differs from 200.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		util.Logger().Error().
			Str("path", c.Request.URL.Path).
			Str("request_id", c.GetString(RequestIDContextKey)).
			Interface("panic", recovered).
			Msg("recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, util.APIResponse{
			Success: false,
			Message: "Internal server error",
			Error:   fmt.Sprint(recovered),
		})
	})
}
