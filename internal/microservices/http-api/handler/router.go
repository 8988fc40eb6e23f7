package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"yamdb/internal/microservices/http-api/apperror"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"
	"yamdb/internal/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Auth       service.AuthService
	Users      service.UserService
	Categories service.CategoryService
	Genres     service.GenreService
	Titles     service.TitleService
	Reviews    service.ReviewService
	Comments   service.CommentService
	Resolver   *service.Resolver

	// UserRepo reloads the authenticated user on every request.
	UserRepo repository.UserRepository
}

type RouterConfig struct {
	Logger      *slog.Logger
	AuthLimiter ratelimit.Limiter
	CORSOrigins []string
	// Health reports whether dependencies are reachable; nil means always healthy.
	Health func(ctx context.Context) error
}

var registerValidations sync.Once

// NewRouter builds the engine with every route under /api/v1.
func NewRouter(s Services, cfg RouterConfig) *gin.Engine {
	registerValidations.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			if err := dto.RegisterValidations(v); err != nil {
				panic(err)
			}
		}
	})

	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorLogger(cfg.Logger))
	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.NoRoute(func(c *gin.Context) {
		respondError(c, apperror.NotFound("resource"))
	})
	router.NoMethod(func(c *gin.Context) {
		respondError(c, apperror.MethodNotAllowed(c.Request.Method))
	})

	router.GET("/healthz", func(c *gin.Context) {
		if cfg.Health != nil {
			if err := cfg.Health(c.Request.Context()); err != nil {
				cfg.Logger.Warn("health check failed", "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")

	auth := api.Group("/auth")
	if cfg.AuthLimiter != nil {
		auth.Use(middleware.RateLimit(cfg.AuthLimiter, cfg.Logger))
	}
	NewAuthHandler(s.Auth).RegisterRoutes(auth)

	// everything else accepts an optional bearer token
	protected := api.Group("")
	protected.Use(middleware.Authenticate(s.Auth, s.UserRepo))
	{
		NewCategoryHandler(s.Categories).RegisterRoutes(protected.Group("/categories"))
		NewGenreHandler(s.Genres).RegisterRoutes(protected.Group("/genres"))

		titles := protected.Group("/titles")
		NewTitleHandler(s.Titles).RegisterRoutes(titles)
		NewReviewHandler(s.Reviews, s.Resolver).RegisterRoutes(titles)

		comments := NewCommentHandler(s.Comments, s.Resolver)
		comments.RegisterRoutes(titles.Group("/:title_id/reviews/:review_id"))
		comments.RegisterRoutes(protected.Group("/reviews/:review_id"))

		NewUserHandler(s.Users, s.Resolver).RegisterRoutes(protected.Group("/users"))
	}

	return router
}
