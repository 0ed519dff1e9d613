package identity

import (
	"context"
	"slices"
	"strings"

	"github.com/agrocloud/ingestion/pkg/config"
	"github.com/agrocloud/ingestion/pkg/errs"
	"github.com/agrocloud/ingestion/pkg/helpers"
	"github.com/agrocloud/ingestion/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const ContextKeyDeviceClaims = "DEVICE_JWT_CLAIMS"

// DeviceTokenVerifier is the authentication gate for device endpoints. It
// checks the bearer token signature and expiry against the key resolved at
// startup and enforces the device role claim. Identity extraction from the
// verified claims happens later, in the handler.
type DeviceTokenVerifier struct {
	logger     *logrus.Entry
	signingKey []byte
	rolesClaim string
	deviceRole string
}

func NewDeviceTokenVerifier(logger *logrus.Entry, signingKey []byte, conf config.DeviceAuth) *DeviceTokenVerifier {
	rolesClaim := conf.RolesClaim
	if rolesClaim == "" {
		rolesClaim = "roles"
	}

	deviceRole := conf.DeviceRole
	if deviceRole == "" {
		deviceRole = "device"
	}

	return &DeviceTokenVerifier{
		logger:     logger,
		signingKey: signingKey,
		rolesClaim: rolesClaim,
		deviceRole: deviceRole,
	}
}

func (v *DeviceTokenVerifier) Use() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Request.Header.Get("authorization")

		// The Authorization header typically looks like "Bearer <token>"
		authToken := strings.Split(header, " ")
		if len(authToken) != 2 || authToken[0] != "Bearer" {
			c.AbortWithStatusJSON(401, gin.H{"error": "no bearer token found"})
			return
		}

		token, err := jwt.Parse(authToken[1], func(t *jwt.Token) (interface{}, error) {
			return v.signingKey, nil
		}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
		if err != nil || !token.Valid {
			v.logger.Debugf("rejected bearer token: %s", err)
			c.AbortWithStatusJSON(401, gin.H{"error": "invalid bearer token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(401, gin.H{"error": "invalid bearer token"})
			return
		}

		if !v.hasDeviceRole(claims) {
			c.AbortWithStatusJSON(403, gin.H{"error": "forbidden"})
			return
		}

		c.Set(ContextKeyDeviceClaims, claims)

		reqCtx := c.Request.Context()
		if sub, subErr := claims.GetSubject(); subErr == nil && sub != "" {
			c.Set(helpers.CtxAuthMode, "jwt")
			c.Set(helpers.CtxAuthID, sub)
			reqCtx = context.WithValue(reqCtx, helpers.CtxAuthMode, "jwt")
			reqCtx = context.WithValue(reqCtx, helpers.CtxAuthID, sub)
		}

		c.Request = c.Request.WithContext(reqCtx)
		c.Next()
	}
}

func (v *DeviceTokenVerifier) hasDeviceRole(claims jwt.MapClaims) bool {
	rawRoles, exists := getNestedKey(claims, v.rolesClaim)
	if !exists {
		return false
	}

	switch roles := rawRoles.(type) {
	case string:
		return roles == v.deviceRole
	case []interface{}:
		roleNames := []string{}
		for _, r := range roles {
			if str, ok := r.(string); ok {
				roleNames = append(roleNames, str)
			}
		}
		return slices.Contains(roleNames, v.deviceRole)
	default:
		return false
	}
}

// getNestedKey retrieves the value of a nested key from a map
func getNestedKey(data map[string]any, key string) (any, bool) {
	parts := strings.SplitN(key, ".", 2)

	val, exists := data[parts[0]]
	if !exists {
		return nil, false
	}

	if len(parts) > 1 {
		if submap, ok := val.(map[string]any); ok {
			return getNestedKey(submap, parts[1])
		}
		return nil, false
	}

	return val, true
}

// DeviceContextFromRequest builds the per-request device context from the
// claims stored by the verifier. Only the subject claim is mandatory: it must
// parse as a UUID, anything else means the identity gate handed us a token it
// should not have. The farmer/field/property claims are trusted metadata and
// absent ones are simply left empty.
func DeviceContextFromRequest(c *gin.Context) (models.DeviceContext, error) {
	rawClaims, exists := c.Get(ContextKeyDeviceClaims)
	if !exists {
		return models.DeviceContext{}, errs.ErrDeviceIdentityClaim
	}

	claims, ok := rawClaims.(jwt.MapClaims)
	if !ok {
		return models.DeviceContext{}, errs.ErrDeviceIdentityClaim
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return models.DeviceContext{}, errs.ErrDeviceIdentityClaim
	}

	deviceID, err := uuid.Parse(sub)
	if err != nil {
		return models.DeviceContext{}, errs.ErrDeviceIdentityClaim
	}

	return models.DeviceContext{
		DeviceID:     deviceID,
		FarmerName:   stringClaim(claims, "farmerName"),
		FieldName:    stringClaim(claims, "fieldName"),
		PropertyName: stringClaim(claims, "propertyName"),
	}, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if val, ok := claims[key].(string); ok {
		return val
	}
	return ""
}
