package shared_models

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/snapcharge/backend/logger"
	"github.com/snapcharge/backend/utils"
)

// Station status values. OFFLINE blocks all new bookings; AVAILABLE/BUSY are
// display states and do not gate the slot-based booking path.
const (
	StationStatusAvailable = "AVAILABLE"
	StationStatusBusy      = "BUSY"
	StationStatusOffline   = "OFFLINE"
)

// ValidStationStatuses for request validation.
var ValidStationStatuses = map[string]bool{
	StationStatusAvailable: true,
	StationStatusBusy:      true,
	StationStatusOffline:   true,
}

// Booking status values. COMPLETED and CANCELLED are terminal.
const (
	BookingStatusActive    = "ACTIVE"
	BookingStatusCompleted = "COMPLETED"
	BookingStatusCancelled = "CANCELLED"
)

// User roles.
const (
	RoleDriver = "driver"
	RoleHost   = "host"
)

// Supported vehicle types.
var SupportedVehicleTypes = map[string]bool{
	"2W": true,
	"4W": true,
}

const (
	AccessTokenExpiry  = time.Hour * 1
	RefreshTokenExpiry = time.Hour * 24 * 30
)

// GenerateUUIDv7 generates a new UUIDv7.
func GenerateUUIDv7() (uuid.UUID, error) {
	return uuid.NewV7()
}

// Claims represents the JWT claims carried by both token types.
type Claims struct {
	UserID uuid.UUID `json:"sub"`
	Role   string    `json:"role"`
	Type   string    `json:"type"`
	jwt.RegisteredClaims
}

// GenerateAccessToken creates a signed access token for a user.
func GenerateAccessToken(userID uuid.UUID, role string, duration time.Duration) (string, error) {
	return signToken(userID, role, "access", duration, utils.GetJWTSecret())
}

// GenerateRefreshToken creates a signed refresh token for a user.
func GenerateRefreshToken(userID uuid.UUID, role string, duration time.Duration) (string, error) {
	return signToken(userID, role, "refresh", duration, utils.GetJWTRefreshSecret())
}

func signToken(userID uuid.UUID, role, tokenType string, duration time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"role": role,
		"type": tokenType,
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"exp":  now.Add(duration).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		logger.ErrorLogger.Errorf("failed to sign %s token: %v", tokenType, err)
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return tokenString, nil
}

// ParseToken validates a token of the expected type ("access" or "refresh")
// and returns its claims.
func ParseToken(tokenString, expectedType string) (*Claims, error) {
	secret := utils.GetJWTSecret()
	if expectedType == "refresh" {
		secret = utils.GetJWTRefreshSecret()
	}

	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(30*time.Second),
	)
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.UserID == uuid.Nil {
		return nil, fmt.Errorf("invalid token: user ID missing")
	}
	if claims.Type != expectedType {
		return nil, fmt.Errorf("invalid token: type mismatch, expected %s got %s", expectedType, claims.Type)
	}
	return claims, nil
}
