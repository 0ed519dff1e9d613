package routes

import (
	"github.com/agrocloud/ingestion/pkg/controllers"
	"github.com/agrocloud/ingestion/pkg/routes/middlewares/identity"
	"github.com/agrocloud/ingestion/pkg/services"
	"github.com/gin-gonic/gin"
)

func NewTelemetryHTTPLayer(parentRouterGroup *gin.RouterGroup, svc services.TelemetryService, verifier *identity.DeviceTokenVerifier) {
	routes := controllers.NewTelemetryHttpRoutes(svc)

	router := parentRouterGroup
	rv1 := router.Group("/v1")

	rv1Ingest := rv1.Group("/", verifier.Use())
	rv1Ingest.POST("/telemetry", routes.PostTelemetry)
}
