package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"ecoquiz-service/internal/app"
	"ecoquiz-service/internal/domain"
	"ecoquiz-service/internal/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const userKey = "ecoquiz.user"

func CORS() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Authorization", "Content-Type"}
	return cors.New(cfg)
}

func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if u, ok := currentUser(c); ok {
			fields = append(fields, "user_id", u.ID)
		}
		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

// RequireAuth resolves the bearer token to a user and stores it on the context.
func RequireAuth(auth *app.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			respondError(c, http.StatusUnauthorized, "unauthorized", domain.ErrInvalidToken)
			return
		}
		user, err := auth.Authenticate(c.Request.Context(), token)
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			respondError(c, http.StatusUnauthorized, "unauthorized", domain.ErrInvalidToken)
			return
		case err != nil:
			respondError(c, http.StatusInternalServerError, "internal", errors.New("internal server error"))
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func currentUser(c *gin.Context) (domain.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return domain.User{}, false
	}
	u, ok := v.(domain.User)
	return u, ok
}
