package mockapi

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/campusportal/internal/middleware"
)

// NewRouter wires the backend routes onto a fresh engine
func NewRouter(h *Handler, authMiddleware *middleware.AuthMiddleware, limiter *middleware.RateLimiter, logger zerolog.Logger) *gin.Engine {
	middleware.UseJSONFieldNames()

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger))

	router.GET("/health", h.Health)

	api := router.Group("/api")
	{
		api.POST("/auth/login", limiter.Middleware(), h.Login)

		users := api.Group("/users")
		users.Use(authMiddleware.BearerAuth())
		{
			users.GET("", h.ListUsers)
		}
	}

	media := router.Group("/media")
	{
		media.POST("/upload", h.UploadMedia)
		media.GET("/:id", h.GetMedia)
	}

	return router
}
