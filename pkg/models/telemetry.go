package models

import (
	"time"

	"github.com/google/uuid"
)

// SensorTypeAttribute is the metadata key attached to every published
// telemetry message so subscribers can filter by sensor type without
// deserializing the body.
const SensorTypeAttribute = "SensorType"

// TelemetryReading is a single measurement as reported by a field device.
// It only lives for the duration of one request.
type TelemetryReading struct {
	FieldID    string    `json:"fieldId"`
	SensorType string    `json:"sensorType"`
	Value      float64   `json:"value"`
	Timestamp  time.Time `json:"timestamp"`
}

// DeviceContext is the identity of the authenticated caller plus the
// contextual claims carried by its token. It is built once per request from
// verified claims and never persisted.
type DeviceContext struct {
	DeviceID     uuid.UUID
	FarmerName   string
	FieldName    string
	PropertyName string
}

// TelemetryEnvelope is the outbound message body. Field names are part of the
// contract with downstream consumers and every field is always present.
// ProcessingID identifies the publish attempt, not the reading: retrying the
// same reading mints a new one.
type TelemetryEnvelope struct {
	FieldID        string    `json:"FieldId"`
	FieldName      string    `json:"fieldName"`
	PropertyName   string    `json:"propertyName"`
	FarmerName     string    `json:"farmerName"`
	SensorType     string    `json:"SensorType"`
	Value          float64   `json:"Value"`
	Timestamp      time.Time `json:"Timestamp"`
	ProcessingID   string    `json:"ProcessingId"`
	SensorDeviceID string    `json:"SensorDeviceId"`
}
