package shared_models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseAccessToken(t *testing.T) {
	userID, err := GenerateUUIDv7()
	require.NoError(t, err)

	token, err := GenerateAccessToken(userID, RoleDriver, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token, "access")
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, RoleDriver, claims.Role)
	assert.Equal(t, "access", claims.Type)
}

func TestParseTokenRejectsTypeMismatch(t *testing.T) {
	userID, err := GenerateUUIDv7()
	require.NoError(t, err)

	refresh, err := GenerateRefreshToken(userID, RoleHost, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(refresh, "access")
	assert.Error(t, err)

	claims, err := ParseToken(refresh, "refresh")
	require.NoError(t, err)
	assert.Equal(t, RoleHost, claims.Role)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken("not.a.token", "access")
	assert.Error(t, err)

	_, err = ParseToken("", "access")
	assert.Error(t, err)
}

func TestGenerateUUIDv7Ordered(t *testing.T) {
	first, err := GenerateUUIDv7()
	require.NoError(t, err)
	second, err := GenerateUUIDv7()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestStatusSets(t *testing.T) {
	assert.True(t, ValidStationStatuses[StationStatusAvailable])
	assert.True(t, ValidStationStatuses[StationStatusBusy])
	assert.True(t, ValidStationStatuses[StationStatusOffline])
	assert.False(t, ValidStationStatuses["SLEEPING"])

	assert.True(t, SupportedVehicleTypes["2W"])
	assert.True(t, SupportedVehicleTypes["4W"])
	assert.False(t, SupportedVehicleTypes["8W"])
}
