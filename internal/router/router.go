package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodgram-project/backend/internal/api"
	"github.com/foodgram-project/backend/internal/database"
	"github.com/foodgram-project/backend/internal/middleware"
	"github.com/foodgram-project/backend/internal/service"
)

// Options wires the handlers' collaborators. RateLimiter may be nil when
// redis is not configured.
type Options struct {
	DB          *gorm.DB
	Auth        *service.AuthService
	RateLimiter *middleware.RateLimiter
}

// Setup configures the application routes.
func Setup(opts Options) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	corsConfig.MaxAge = 24 * time.Hour
	router.Use(cors.New(corsConfig))

	if opts.RateLimiter != nil {
		router.Use(opts.RateLimiter.Middleware())
	}

	router.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(c.Request.Context(), opts.DB); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	recipeHandler := api.NewRecipeHandler(
		service.NewRecipeService(opts.DB),
		service.NewRelationService(opts.DB),
		service.NewShoppingListService(opts.DB),
		opts.Auth,
	)
	ingredientHandler := api.NewIngredientHandler(service.NewIngredientService(opts.DB))
	tagHandler := api.NewTagHandler(service.NewTagService(opts.DB))
	userHandler := api.NewUserHandler(
		service.NewRelationService(opts.DB),
		service.NewSubscriptionService(opts.DB),
	)

	apiGroup := router.Group("/api")
	recipeHandler.RegisterRoutes(apiGroup, opts.Auth)
	ingredientHandler.RegisterRoutes(apiGroup)
	tagHandler.RegisterRoutes(apiGroup)
	userHandler.RegisterRoutes(apiGroup, opts.Auth)

	return router
}
