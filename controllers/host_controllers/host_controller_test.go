package host_controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapcharge/backend/models/user_models"
)

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func testRouter(user *user_models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	if user != nil {
		r.Use(func(c *gin.Context) {
			c.Set("user_id", user.ID.String())
			c.Set("authenticated_user", user)
		})
	}

	controller := NewHostController(nil, nil)
	r.POST("/stations", controller.CreateStation)
	r.PATCH("/stations/:station_id", controller.UpdateStation)
	return r
}

func testHost() *user_models.User {
	return &user_models.User{
		ID:       uuid.New(),
		Username: "testhost",
		Email:    "host@test.local",
		Role:     "host",
	}
}

func doJSON(r *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest(method, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestCreateStationRequiresAuth(t *testing.T) {
	r := testRouter(nil)

	w := doJSON(r, http.MethodPost, "/stations", gin.H{"title": "x"})

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, w).Error.Code)
}

func TestCreateStationRejectsIncompletePayload(t *testing.T) {
	r := testRouter(testHost())

	w := doJSON(r, http.MethodPost, "/stations", gin.H{"title": "Missing the rest"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, w).Error.Code)
}

func TestCreateStationRejectsUnknownVehicleType(t *testing.T) {
	r := testRouter(testHost())

	w := doJSON(r, http.MethodPost, "/stations", gin.H{
		"title":                 "Test",
		"location":              "Somewhere",
		"connectorType":         "Type 2",
		"powerOutput":           "22kW",
		"pricePerHour":          150,
		"lat":                   18.52,
		"lng":                   73.85,
		"supportedVehicleTypes": []string{"8W"},
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeError(t, w)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
	assert.Contains(t, envelope.Error.Message, "8W")
}

func TestUpdateStationRejectsBadID(t *testing.T) {
	r := testRouter(testHost())

	w := doJSON(r, http.MethodPatch, "/stations/not-a-uuid", gin.H{"title": "x"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, w).Error.Code)
}

func TestUpdateStationRejectsInvalidStatus(t *testing.T) {
	r := testRouter(testHost())

	w := doJSON(r, http.MethodPatch, "/stations/"+uuid.New().String(),
		gin.H{"status": "SLEEPING"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeError(t, w)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
	assert.Contains(t, envelope.Error.Message, "SLEEPING")
}
