package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"yamdb/internal/microservices/http-api/apperror"
	"yamdb/internal/microservices/http-api/policy"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"
	"yamdb/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const actorKey = "actor"

// Authenticate resolves an optional bearer token into the request's actor.
// Requests without an Authorization header continue as anonymous; a header
// that is present but unusable is rejected with 401. The user is reloaded on
// every request so role changes apply immediately.
func Authenticate(authService service.AuthService, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set(actorKey, policy.Anonymous())
			c.Next()
			return
		}

		// Extract token (format: "Bearer <token>")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abort(c, apperror.NotAuthenticated("invalid authorization header format"))
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			msg := "token is invalid"
			if errors.Is(err, service.ErrExpiredToken) {
				msg = "token has expired"
			}
			abort(c, apperror.NotAuthenticated(msg))
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.UserID())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				abort(c, apperror.NotAuthenticated("user not found"))
				return
			}
			_ = c.Error(err)
			abort(c, err)
			return
		}

		c.Set(actorKey, user.Actor())
		c.Next()
	}
}

// ActorFrom returns the actor set by Authenticate, or anonymous.
func ActorFrom(c *gin.Context) policy.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(policy.Actor); ok {
			return actor
		}
	}
	return policy.Anonymous()
}

// RateLimit throttles by client IP. Limiter failures let the request through.
func RateLimit(limiter ratelimit.Limiter, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Warn("rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if !ok {
			abort(c, apperror.ErrThrottled)
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperror.Status(err), apperror.BodyOf(err))
}
