package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"inventory_back_end/internal/config"
	eventsHandler "inventory_back_end/internal/handlers/events"
	iconsHandler "inventory_back_end/internal/handlers/icons"
	productHandler "inventory_back_end/internal/handlers/product"
	"inventory_back_end/internal/middleware"
	"inventory_back_end/internal/services"
)

// Deps regroupe ce dont les routes ont besoin. Redis et Icons peuvent être nil.
type Deps struct {
	Config   *config.Config
	Products *services.ProductService
	Events   services.EventSubscriber
	Icons    iconsHandler.Assets
	Redis    *redis.Client
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	corsConfig := cors.Config{
		AllowOrigins:     deps.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	// Sans origine configurée, tout le monde est accepté mais sans cookies.
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "store": deps.Config.StoreDriver})
	})

	api := r.Group("/api")

	// Le websocket échappe au rate limit : une seule requête par session.
	if deps.Events != nil {
		eventsHandler.NewHandler(deps.Events).RegisterRoutes(api)
	}

	limited := api.Group("")
	limited.Use(middleware.APIRateLimit(deps.Redis, deps.Config.RateLimitPerMinute))
	{
		productHandler.NewHandler(deps.Products, deps.Config.LabelSize).
			WithSearchMiddleware(middleware.SearchRateLimit(deps.Redis)).
			RegisterRoutes(limited)
		iconsHandler.NewHandler(deps.Icons).RegisterRoutes(limited)
	}
}
