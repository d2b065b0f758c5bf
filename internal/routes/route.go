package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventhub/internal/container"
	"github.com/joshua-takyi/eventhub/internal/handlers"
	"github.com/joshua-takyi/eventhub/internal/helpers"
	"github.com/joshua-takyi/eventhub/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	if container.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     container.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	r.GET("/metrics", gin.WrapH(container.Metrics.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", handlers.Health(container.Store))

		v1.GET("/events", handlers.ListEvents(container.EventService))
		v1.GET("/events/calendar", handlers.CalendarEvents(container.EventService))
		v1.GET("/events.ics", handlers.ExportICS(container.EventService, "Eventhub"))

		v1.GET("/organizations", handlers.ListOrganizations(container.OrganizationService))
		v1.GET("/interests", handlers.ListInterests(container.InterestService))

		if container.LiveEventsService != nil {
			v1.GET("/organizations/:id/live-events", handlers.LiveEvents(container.LiveEventsService))
		} else {
			v1.GET("/organizations/:id/live-events", unavailable("live events require EVENTBRITE_TOKEN"))
		}
	}

	admin := v1.Group("/admin")
	if container.Tokens != nil {
		admin.Use(middleware.AdminAuth(container.Tokens, container.Logger))
		admin.POST("/organizations", handlers.AddOrganization(container.OrganizationService))
		admin.DELETE("/organizations/:id", handlers.RemoveOrganization(container.OrganizationService))
		admin.GET("/runs", handlers.ListRuns(container.RunsService))
	} else {
		admin.Any("/*path", unavailable("admin authentication is not configured"))
	}

	return r
}

func unavailable(msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusServiceUnavailable, helpers.ErrorResponse(msg))
	}
}
