package services

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/agrocloud/ingestion/pkg/config"
	"github.com/agrocloud/ingestion/pkg/errs"
	"github.com/agrocloud/ingestion/pkg/helpers"
	"github.com/agrocloud/ingestion/pkg/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jakehl/goid"
	"github.com/sirupsen/logrus"
)

var telemetryValidate *validator.Validate

type TelemetryService interface {
	ProcessTelemetry(ctx context.Context, input ProcessTelemetryInput) error
}

type ProcessTelemetryInput struct {
	DeviceID     uuid.UUID `validate:"required"`
	FarmerName   string
	FieldName    string
	PropertyName string
	Reading      models.TelemetryReading `validate:"required"`
}

type TelemetryServiceBackend struct {
	publisher message.Publisher
	policy    *config.Telemetry
	logger    *logrus.Entry
}

type TelemetryServiceBuilder struct {
	Logger    *logrus.Entry
	Publisher message.Publisher
	Policy    *config.Telemetry
}

func NewTelemetryService(builder TelemetryServiceBuilder) TelemetryService {
	telemetryValidate = validator.New()
	return &TelemetryServiceBackend{
		publisher: builder.Publisher,
		policy:    builder.Policy,
		logger:    builder.Logger,
	}
}

// ProcessTelemetry validates the reading against the operational bounds,
// builds the outbound envelope and publishes it. There is exactly one publish
// attempt per call: retries are the caller's concern, and each attempt carries
// a fresh ProcessingId.
func (svc *TelemetryServiceBackend) ProcessTelemetry(ctx context.Context, input ProcessTelemetryInput) error {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := telemetryValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("ProcessTelemetry struct validation error: %s", err)
		return errs.ErrValidateBadRequest
	}

	if input.Reading.Value < svc.policy.MinValue || input.Reading.Value > svc.policy.MaxValue {
		lFunc.Warnf("rejecting reading from device %s: value %f outside [%f, %f]", input.DeviceID, input.Reading.Value, svc.policy.MinValue, svc.policy.MaxValue)
		return errs.ErrTelemetryOutOfBounds
	}

	envelope := models.TelemetryEnvelope{
		FieldID:        input.Reading.FieldID,
		FieldName:      input.FieldName,
		PropertyName:   input.PropertyName,
		FarmerName:     input.FarmerName,
		SensorType:     input.Reading.SensorType,
		Value:          input.Reading.Value,
		Timestamp:      input.Reading.Timestamp,
		ProcessingID:   goid.NewV4UUID().String(),
		SensorDeviceID: input.DeviceID.String(),
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		lFunc.Errorf("could not serialize telemetry envelope: %s", err)
		return errs.Wrap(err, errs.ErrTelemetryPublish)
	}

	msg := message.NewMessage(envelope.ProcessingID, payload)
	msg.Metadata.Set(models.SensorTypeAttribute, input.Reading.SensorType)

	// Topic is read per call so per-environment routing changes do not
	// require rebuilding the service.
	topic := svc.policy.Topic
	if err := svc.publisher.Publish(topic, msg); err != nil {
		lFunc.Errorf("could not publish telemetry for device %s to topic '%s': %s", input.DeviceID, topic, err)
		return errs.Wrap(err, errs.ErrTelemetryPublish)
	}

	lFunc.Debugf("published telemetry for device %s to topic '%s' with processing id %s", input.DeviceID, topic, envelope.ProcessingID)
	return nil
}
