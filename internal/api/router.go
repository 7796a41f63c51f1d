package api

import (
	"net/http"
	"time"

	"visit-route-service/internal/api/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	// Requests per minute per client IP on POST /routes/optimize.
	OptimizeRatePerMin int
}

// NewRouter mounts the slot and route endpoints on a gin engine. Handlers
// only see the service interfaces, never the adapters behind them.
func NewRouter(slots handlers.SlotService, planner handlers.RoutePlanner, cfg RouterConfig) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", requestIDHeader},
		ExposeHeaders:   []string{"Content-Length", requestIDHeader},
		MaxAge:          12 * time.Hour,
	}))

	slotHandler := &handlers.SlotHandler{Service: slots}
	routeHandler := &handlers.RouteHandler{Planner: planner}

	r.GET("/health", handlers.Health)

	providers := r.Group("/providers/:id")
	{
		providers.GET("/slots", slotHandler.OnDate)
		providers.GET("/slots/next", slotHandler.Next)
		providers.PUT("/schedule", slotHandler.UpdateSchedule)
		providers.GET("/route", routeHandler.ProviderRoute)
	}

	r.POST("/routes/optimize", rateLimit(cfg.OptimizeRatePerMin), routeHandler.Optimize)

	return r
}
