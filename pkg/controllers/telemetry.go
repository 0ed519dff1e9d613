package controllers

import (
	"errors"

	"github.com/agrocloud/ingestion/pkg/errs"
	"github.com/agrocloud/ingestion/pkg/models"
	"github.com/agrocloud/ingestion/pkg/resources"
	"github.com/agrocloud/ingestion/pkg/routes/middlewares/identity"
	"github.com/agrocloud/ingestion/pkg/services"
	"github.com/gin-gonic/gin"
)

type TelemetryHttpRoutes interface {
	PostTelemetry(ctx *gin.Context)
}

type telemetryHttpRoutes struct {
	svc services.TelemetryService
}

func NewTelemetryHttpRoutes(svc services.TelemetryService) *telemetryHttpRoutes {
	return &telemetryHttpRoutes{
		svc: svc,
	}
}

// PostTelemetry accepts a reading from an authenticated device. The handler
// stays thin: bounds checking and publishing live in the service so they can
// be tested without an HTTP harness.
func (r *telemetryHttpRoutes) PostTelemetry(ctx *gin.Context) {
	var requestBody resources.TelemetryBody
	if err := ctx.BindJSON(&requestBody); err != nil {
		ctx.JSON(400, gin.H{"err": err.Error()})
		return
	}

	device, err := identity.DeviceContextFromRequest(ctx)
	if err != nil {
		ctx.JSON(400, gin.H{"err": err.Error()})
		return
	}

	err = r.svc.ProcessTelemetry(ctx.Request.Context(), services.ProcessTelemetryInput{
		DeviceID:     device.DeviceID,
		FarmerName:   device.FarmerName,
		FieldName:    device.FieldName,
		PropertyName: device.PropertyName,
		Reading: models.TelemetryReading{
			FieldID:    requestBody.FieldID,
			SensorType: requestBody.SensorType,
			Value:      requestBody.Value,
			Timestamp:  requestBody.Timestamp,
		},
	})

	if err != nil {
		switch {
		case errors.Is(err, errs.ErrTelemetryOutOfBounds):
			ctx.JSON(400, gin.H{"err": errs.ErrTelemetryOutOfBounds.Error()})
		case errors.Is(err, errs.ErrValidateBadRequest):
			ctx.JSON(400, gin.H{"err": errs.ErrValidateBadRequest.Error()})
		default:
			// publish failures included: the response never carries the
			// transport error text.
			ctx.JSON(500, gin.H{"err": errs.ErrTelemetryPublish.Error()})
		}

		return
	}

	ctx.Status(202)
}
