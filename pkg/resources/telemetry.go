package resources

import "time"

type TelemetryBody struct {
	FieldID    string    `json:"fieldId" binding:"required"`
	SensorType string    `json:"sensorType"`
	Value      float64   `json:"value"`
	Timestamp  time.Time `json:"timestamp"`
}
