package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/agrocloud/ingestion/pkg/config"
	"github.com/agrocloud/ingestion/pkg/helpers"
	"github.com/agrocloud/ingestion/pkg/routes/middlewares/identity"
	"github.com/agrocloud/ingestion/pkg/services"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSigningKey = []byte("unit-test-signing-key")

type recordingPublisher struct {
	topics   []string
	messages []*message.Message
	failWith error
}

func (p *recordingPublisher) Publish(topic string, messages ...*message.Message) error {
	if p.failWith != nil {
		return p.failWith
	}

	for _, msg := range messages {
		p.topics = append(p.topics, topic)
		p.messages = append(p.messages, msg)
	}
	return nil
}

func (p *recordingPublisher) Close() error {
	return nil
}

func setupTelemetryRouter(pub message.Publisher) *gin.Engine {
	gin.SetMode(gin.TestMode)

	log := helpers.SetupLogger(config.Info, "Test Case", "HTTP Server")

	svc := services.NewTelemetryService(services.TelemetryServiceBuilder{
		Logger:    log,
		Publisher: pub,
		Policy: &config.Telemetry{
			Topic:    "telemetry-ingest",
			MinValue: -100,
			MaxValue: 10000,
		},
	})

	verifier := identity.NewDeviceTokenVerifier(log, testSigningKey, config.DeviceAuth{})

	router := gin.New()
	NewTelemetryHTTPLayer(router.Group("/api"), svc, verifier)
	return router
}

type tokenOpts struct {
	subject    string
	roles      interface{}
	expiry     time.Time
	signingKey []byte
}

func deviceToken(t *testing.T, opts tokenOpts) string {
	t.Helper()

	if opts.expiry.IsZero() {
		opts.expiry = time.Now().Add(time.Hour)
	}
	if opts.signingKey == nil {
		opts.signingKey = testSigningKey
	}

	claims := jwt.MapClaims{
		"sub":          opts.subject,
		"exp":          opts.expiry.Unix(),
		"farmerName":   "Tevye",
		"fieldName":    "south-field",
		"propertyName": "Anatevka",
	}
	if opts.roles != nil {
		claims["roles"] = opts.roles
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(opts.signingKey)
	require.NoError(t, err)
	return signed
}

func postTelemetry(router *gin.Engine, token string, body map[string]interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/telemetry", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sampleBody(value float64) map[string]interface{} {
	return map[string]interface{}{
		"fieldId":    "F1",
		"sensorType": "soil-moisture",
		"value":      value,
		"timestamp":  "2026-03-14T09:26:53Z",
	}
}

func TestPostTelemetryAccepted(t *testing.T) {
	pub := &recordingPublisher{}
	router := setupTelemetryRouter(pub)

	deviceID := uuid.New()
	token := deviceToken(t, tokenOpts{subject: deviceID.String(), roles: []string{"device"}})

	w := postTelemetry(router, token, sampleBody(25.5))
	assert.Equal(t, http.StatusAccepted, w.Code)

	require.Len(t, pub.messages, 1)
	assert.Equal(t, "telemetry-ingest", pub.topics[0])

	var envelope map[string]interface{}
	err := json.Unmarshal(pub.messages[0].Payload, &envelope)
	require.NoError(t, err)

	assert.Equal(t, deviceID.String(), envelope["SensorDeviceId"])
	assert.Equal(t, "Tevye", envelope["farmerName"])
	assert.Equal(t, "south-field", envelope["fieldName"])
	assert.Equal(t, "Anatevka", envelope["propertyName"])
	assert.Equal(t, "F1", envelope["FieldId"])
	assert.Equal(t, "soil-moisture", envelope["SensorType"])
	assert.Equal(t, 25.5, envelope["Value"])

	processingID, ok := envelope["ProcessingId"].(string)
	require.True(t, ok)
	_, err = uuid.Parse(processingID)
	assert.NoError(t, err)
}

func TestPostTelemetryAuth(t *testing.T) {
	var testcases = []struct {
		name         string
		token        func(t *testing.T) string
		expectedCode int
	}{
		{
			name:         "Err/NoToken",
			token:        func(t *testing.T) string { return "" },
			expectedCode: http.StatusUnauthorized,
		},
		{
			name: "Err/WrongSigningKey",
			token: func(t *testing.T) string {
				return deviceToken(t, tokenOpts{subject: uuid.NewString(), roles: []string{"device"}, signingKey: []byte("not-the-key")})
			},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name: "Err/ExpiredToken",
			token: func(t *testing.T) string {
				return deviceToken(t, tokenOpts{subject: uuid.NewString(), roles: []string{"device"}, expiry: time.Now().Add(-time.Hour)})
			},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name: "Err/NoRoles",
			token: func(t *testing.T) string {
				return deviceToken(t, tokenOpts{subject: uuid.NewString()})
			},
			expectedCode: http.StatusForbidden,
		},
		{
			name: "Err/WrongRole",
			token: func(t *testing.T) string {
				return deviceToken(t, tokenOpts{subject: uuid.NewString(), roles: []string{"operator", "admin"}})
			},
			expectedCode: http.StatusForbidden,
		},
		{
			name: "OK/RoleAsString",
			token: func(t *testing.T) string {
				return deviceToken(t, tokenOpts{subject: uuid.NewString(), roles: "device"})
			},
			expectedCode: http.StatusAccepted,
		},
		{
			name: "Err/MalformedSubject",
			token: func(t *testing.T) string {
				return deviceToken(t, tokenOpts{subject: "not-a-uuid", roles: []string{"device"}})
			},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testcases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			pub := &recordingPublisher{}
			router := setupTelemetryRouter(pub)

			w := postTelemetry(router, tc.token(t), sampleBody(25.5))
			assert.Equal(t, tc.expectedCode, w.Code)

			if tc.expectedCode != http.StatusAccepted {
				assert.Len(t, pub.messages, 0, "rejected requests must not publish")
			}
		})
	}
}

func TestPostTelemetryOutOfBounds(t *testing.T) {
	pub := &recordingPublisher{}
	router := setupTelemetryRouter(pub)

	token := deviceToken(t, tokenOpts{subject: uuid.NewString(), roles: []string{"device"}})

	w := postTelemetry(router, token, sampleBody(10500))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, pub.messages, 0)
}

func TestPostTelemetryMissingFieldID(t *testing.T) {
	pub := &recordingPublisher{}
	router := setupTelemetryRouter(pub)

	token := deviceToken(t, tokenOpts{subject: uuid.NewString(), roles: []string{"device"}})

	body := sampleBody(25.5)
	delete(body, "fieldId")

	w := postTelemetry(router, token, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, pub.messages, 0)
}

func TestPostTelemetryPublishOutage(t *testing.T) {
	pub := &recordingPublisher{failWith: fmt.Errorf("connection refused: broker at 10.0.0.12:5672")}
	router := setupTelemetryRouter(pub)

	token := deviceToken(t, tokenOpts{subject: uuid.NewString(), roles: []string{"device"}})

	w := postTelemetry(router, token, sampleBody(25.5))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.12", "transport details must not cross the trust boundary")
}
