package assemblers

import (
	"context"
	"fmt"

	"github.com/agrocloud/ingestion/pkg/config"
	"github.com/agrocloud/ingestion/pkg/eventbus/builder"
	"github.com/agrocloud/ingestion/pkg/helpers"
	"github.com/agrocloud/ingestion/pkg/models"
	"github.com/agrocloud/ingestion/pkg/routes"
	"github.com/agrocloud/ingestion/pkg/routes/middlewares/identity"
	"github.com/agrocloud/ingestion/pkg/secrets"
	"github.com/agrocloud/ingestion/pkg/services"
)

func AssembleIngestionServiceWithHTTPServer(conf config.IngestionConfig, serviceInfo models.APIServiceInfo) (*services.TelemetryService, int, error) {
	service, verifier, err := AssembleIngestionService(conf)
	if err != nil {
		return nil, -1, fmt.Errorf("could not assemble Ingestion Service. Exiting: %s", err)
	}

	lHttp := helpers.SetupLogger(conf.Server.LogLevel, "Ingestion", "HTTP Server")

	httpEngine := routes.NewGinEngine(lHttp)
	httpGrp := httpEngine.Group("/api")
	routes.NewTelemetryHTTPLayer(httpGrp, *service, verifier)
	port, err := routes.RunHttpRouter(lHttp, httpEngine, conf.Server, serviceInfo)
	if err != nil {
		return nil, -1, fmt.Errorf("could not run Ingestion http server: %s", err)
	}

	return service, port, nil
}

func AssembleIngestionService(conf config.IngestionConfig) (*services.TelemetryService, *identity.DeviceTokenVerifier, error) {
	serviceID := "ingestion"

	lSvc := helpers.SetupLogger(conf.Logs.Level, "Ingestion", "Service")
	lAuth := helpers.SetupLogger(conf.Logs.Level, "Ingestion", "Device Auth")
	lMessaging := helpers.SetupLogger(conf.PublisherEventBus.LogLevel, "Ingestion", "Event Bus")

	signingKey, err := secrets.ResolveSigningKey(context.Background(), conf.DeviceAuth.SigningKey, lAuth)
	if err != nil {
		return nil, nil, fmt.Errorf("could not resolve device token signing key: %s", err)
	}

	pub, err := builder.NewEventBusPublisher(conf.PublisherEventBus, serviceID, lMessaging)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create Event Bus publisher: %s", err)
	}

	svc := services.NewTelemetryService(services.TelemetryServiceBuilder{
		Logger:    lSvc,
		Publisher: pub,
		Policy:    &conf.Telemetry,
	})

	verifier := identity.NewDeviceTokenVerifier(lAuth, signingKey, conf.DeviceAuth)

	return &svc, verifier, nil
}
