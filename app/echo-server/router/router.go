package router

import (
	"examLens/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupAnalyticsRoutes(api *echo.Group, handler *rest.AnalyticsHandler) {
	analytics := api.Group("/analytics")

	analytics.POST("/report", handler.Report)
	analytics.POST("/normalize", handler.Normalize)
	analytics.POST("/suggest-mapping", handler.SuggestMapping)
}

func SetupConceptRoutes(api *echo.Group, handler *rest.ConceptHandler) {
	concepts := api.Group("/concepts")

	concepts.GET("", handler.GetAll)
	concepts.PUT("", handler.BulkSet)
	concepts.GET("/:item", handler.Get)
	concepts.PUT("/:item", handler.Set)
}
