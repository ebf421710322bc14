package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reviewhub/internal/config"
	"reviewhub/internal/httpapi/middleware"
	"reviewhub/internal/httpapi/service"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth     *AuthHandler
	User     *UserHandler
	Category *CategoryHandler
	Genre    *GenreHandler
	Title    *TitleHandler
	Review   *ReviewHandler
	Comment  *CommentHandler
}

// NewRouter assembles the gin engine. Reads on catalog, review and
// comment resources are open; everything else runs through the bearer
// middleware and the per-handler policy checks.
func NewRouter(cfg *config.Config, logger *zap.Logger, authService service.AuthService, h Handlers) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(logger))
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	h.Auth.RegisterRoutes(v1, middleware.RateLimit(cfg.SignupRatePerMinute, cfg.SignupBurst))
	h.User.RegisterRoutes(v1, middleware.RequireAuth(authService))

	public := v1.Group("")
	public.Use(middleware.OptionalAuth(authService))
	h.Category.RegisterRoutes(public)
	h.Genre.RegisterRoutes(public)
	h.Title.RegisterRoutes(public)
	h.Review.RegisterRoutes(public)
	h.Comment.RegisterRoutes(public)

	return r
}
