package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/agrocloud/ingestion/pkg/config"
	"github.com/agrocloud/ingestion/pkg/errs"
	"github.com/agrocloud/ingestion/pkg/helpers"
	"github.com/agrocloud/ingestion/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMessage struct {
	topic string
	msg   *message.Message
}

type capturePublisher struct {
	published []capturedMessage
	failWith  error
}

func (p *capturePublisher) Publish(topic string, messages ...*message.Message) error {
	if p.failWith != nil {
		return p.failWith
	}

	for _, msg := range messages {
		p.published = append(p.published, capturedMessage{topic: topic, msg: msg})
	}
	return nil
}

func (p *capturePublisher) Close() error {
	return nil
}

func buildTelemetryService(pub message.Publisher, policy *config.Telemetry) TelemetryService {
	log := helpers.SetupLogger(config.Info, "Test Case", "Service")
	return NewTelemetryService(TelemetryServiceBuilder{
		Logger:    log,
		Publisher: pub,
		Policy:    policy,
	})
}

func defaultPolicy() *config.Telemetry {
	return &config.Telemetry{
		Topic:    "telemetry-ingest",
		MinValue: -100,
		MaxValue: 10000,
	}
}

func sampleInput(value float64) ProcessTelemetryInput {
	return ProcessTelemetryInput{
		DeviceID:     uuid.New(),
		FarmerName:   "Golde",
		FieldName:    "north-field",
		PropertyName: "Anatevka",
		Reading: models.TelemetryReading{
			FieldID:    "F1",
			SensorType: "soil-moisture",
			Value:      value,
			Timestamp:  time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		},
	}
}

func TestProcessTelemetryBounds(t *testing.T) {
	var testcases = []struct {
		name        string
		value       float64
		resultCheck func(pub *capturePublisher, err error) error
	}{
		{
			name:  "OK/InRange",
			value: 25.5,
			resultCheck: func(pub *capturePublisher, err error) error {
				if err != nil {
					return fmt.Errorf("should've processed reading without error, but got error: %s", err)
				}
				if len(pub.published) != 1 {
					return fmt.Errorf("should've published one message, but got %d", len(pub.published))
				}
				return nil
			},
		},
		{
			name:  "OK/LowerBoundInclusive",
			value: -100,
			resultCheck: func(pub *capturePublisher, err error) error {
				if err != nil {
					return fmt.Errorf("should've accepted the lower bound, but got error: %s", err)
				}
				return nil
			},
		},
		{
			name:  "OK/UpperBoundInclusive",
			value: 10000,
			resultCheck: func(pub *capturePublisher, err error) error {
				if err != nil {
					return fmt.Errorf("should've accepted the upper bound, but got error: %s", err)
				}
				return nil
			},
		},
		{
			name:  "Err/JustBelowLowerBound",
			value: -100.1,
			resultCheck: func(pub *capturePublisher, err error) error {
				if !errors.Is(err, errs.ErrTelemetryOutOfBounds) {
					return fmt.Errorf("should've got out of bounds error, but got: %s", err)
				}
				if len(pub.published) != 0 {
					return fmt.Errorf("should not have published, but got %d messages", len(pub.published))
				}
				return nil
			},
		},
		{
			name:  "Err/JustAboveUpperBound",
			value: 10000.1,
			resultCheck: func(pub *capturePublisher, err error) error {
				if !errors.Is(err, errs.ErrTelemetryOutOfBounds) {
					return fmt.Errorf("should've got out of bounds error, but got: %s", err)
				}
				if len(pub.published) != 0 {
					return fmt.Errorf("should not have published, but got %d messages", len(pub.published))
				}
				return nil
			},
		},
		{
			name:  "Err/FarBelowLowerBound",
			value: -500,
			resultCheck: func(pub *capturePublisher, err error) error {
				if !errors.Is(err, errs.ErrTelemetryOutOfBounds) {
					return fmt.Errorf("should've got out of bounds error, but got: %s", err)
				}
				return nil
			},
		},
	}

	for _, tc := range testcases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			pub := &capturePublisher{}
			svc := buildTelemetryService(pub, defaultPolicy())

			err := svc.ProcessTelemetry(context.Background(), sampleInput(tc.value))

			if err := tc.resultCheck(pub, err); err != nil {
				t.Fatalf("unexpected result in test case: %s", err)
			}
		})
	}
}

func TestProcessTelemetryEnvelope(t *testing.T) {
	pub := &capturePublisher{}
	svc := buildTelemetryService(pub, defaultPolicy())

	input := sampleInput(25.5)
	err := svc.ProcessTelemetry(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, pub.published, 1)

	captured := pub.published[0]
	assert.Equal(t, "telemetry-ingest", captured.topic)

	var envelope map[string]interface{}
	err = json.Unmarshal(captured.msg.Payload, &envelope)
	require.NoError(t, err)

	assert.Equal(t, input.Reading.FieldID, envelope["FieldId"])
	assert.Equal(t, input.FieldName, envelope["fieldName"])
	assert.Equal(t, input.PropertyName, envelope["propertyName"])
	assert.Equal(t, input.FarmerName, envelope["farmerName"])
	assert.Equal(t, input.Reading.SensorType, envelope["SensorType"])
	assert.Equal(t, input.Reading.Value, envelope["Value"])
	assert.Equal(t, input.DeviceID.String(), envelope["SensorDeviceId"])

	ts, err := time.Parse(time.RFC3339, envelope["Timestamp"].(string))
	require.NoError(t, err)
	assert.True(t, ts.Equal(input.Reading.Timestamp))

	processingID, ok := envelope["ProcessingId"].(string)
	require.True(t, ok)
	_, err = uuid.Parse(processingID)
	assert.NoError(t, err, "ProcessingId should be a valid UUID")
	assert.Equal(t, processingID, captured.msg.UUID)
}

func TestProcessTelemetryFreshProcessingID(t *testing.T) {
	pub := &capturePublisher{}
	svc := buildTelemetryService(pub, defaultPolicy())

	input := sampleInput(25.5)

	err := svc.ProcessTelemetry(context.Background(), input)
	require.NoError(t, err)
	err = svc.ProcessTelemetry(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, pub.published, 2)
	assert.NotEqual(t, pub.published[0].msg.UUID, pub.published[1].msg.UUID, "each attempt should mint its own ProcessingId")
}

func TestProcessTelemetrySensorTypeMetadata(t *testing.T) {
	var testcases = []string{"soil-moisture", "temperature", "", "señor/sensor type#1"}

	for _, sensorType := range testcases {
		sensorType := sensorType

		t.Run(fmt.Sprintf("SensorType(%s)", sensorType), func(t *testing.T) {
			pub := &capturePublisher{}
			svc := buildTelemetryService(pub, defaultPolicy())

			input := sampleInput(25.5)
			input.Reading.SensorType = sensorType

			err := svc.ProcessTelemetry(context.Background(), input)
			require.NoError(t, err)
			require.Len(t, pub.published, 1)

			msg := pub.published[0].msg
			assert.Equal(t, sensorType, msg.Metadata.Get(models.SensorTypeAttribute))

			var envelope map[string]interface{}
			err = json.Unmarshal(msg.Payload, &envelope)
			require.NoError(t, err)
			assert.Equal(t, sensorType, envelope["SensorType"], "metadata attribute must mirror the body")
		})
	}
}

func TestProcessTelemetryTopicFromPolicy(t *testing.T) {
	pub := &capturePublisher{}
	policy := defaultPolicy()
	svc := buildTelemetryService(pub, policy)

	err := svc.ProcessTelemetry(context.Background(), sampleInput(25.5))
	require.NoError(t, err)

	policy.Topic = "telemetry-ingest-v2"
	err = svc.ProcessTelemetry(context.Background(), sampleInput(25.5))
	require.NoError(t, err)

	require.Len(t, pub.published, 2)
	assert.Equal(t, "telemetry-ingest", pub.published[0].topic)
	assert.Equal(t, "telemetry-ingest-v2", pub.published[1].topic)
}

func TestProcessTelemetryPublishFailure(t *testing.T) {
	transportErr := errors.New("connection refused: broker at 10.0.0.12:5672")
	pub := &capturePublisher{failWith: transportErr}
	svc := buildTelemetryService(pub, defaultPolicy())

	err := svc.ProcessTelemetry(context.Background(), sampleInput(25.5))
	require.Error(t, err)

	assert.True(t, errors.Is(err, errs.ErrTelemetryPublish), "caller should be able to match the publish sentinel")
	assert.True(t, errors.Is(err, transportErr), "cause should stay retrievable for diagnostics")
}

func TestProcessTelemetryMissingDevice(t *testing.T) {
	pub := &capturePublisher{}
	svc := buildTelemetryService(pub, defaultPolicy())

	input := sampleInput(25.5)
	input.DeviceID = uuid.UUID{}

	err := svc.ProcessTelemetry(context.Background(), input)
	assert.True(t, errors.Is(err, errs.ErrValidateBadRequest))
	assert.Len(t, pub.published, 0)
}
