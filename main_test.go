package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/djsmacker01/flavour-api/config"
	"github.com/djsmacker01/flavour-api/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHealthCheck is a unit test for the healthCheck handler function
func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	healthCheck(c)

	assert.Equal(t, http.StatusOK, w.Code, "Expected status code 200")

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err, "Response should be valid JSON")

	assert.Equal(t, true, response["success"], "Expected success to be true")
	assert.Equal(t, "Flavour Restaurant API is running", response["message"], "Expected correct message")
}

// TestHealthCheckResponseFormat tests the exact JSON format
func TestHealthCheckResponseFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	healthCheck(c)

	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Len(t, response, 2, "Response should have exactly 2 fields")
	assert.Contains(t, response, "success")
	assert.Contains(t, response, "message")
}

func TestDatabaseStatus_SQLite(t *testing.T) {
	gin.SetMode(gin.TestMode)

	originalDB := config.GetDB()
	defer config.SetDB(originalDB)

	require.NoError(t, config.ConnectDatabase(&config.Config{DBDriver: "sqlite", DatabaseURL: ":memory:"}))
	require.NoError(t, config.GetDB().AutoMigrate(models.All()...))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/database/status", nil)

	databaseStatus(c)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var response struct {
		Success bool     `json:"success"`
		Tables  []string `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.Subset(t, response.Tables, []string{"menu_items", "order_items", "orders", "reservations", "users"})
}

func TestDatabaseStatus_NotInitialized(t *testing.T) {
	gin.SetMode(gin.TestMode)

	originalDB := config.GetDB()
	defer config.SetDB(originalDB)
	config.SetDB(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/database/status", nil)

	databaseStatus(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCORSConfig(t *testing.T) {
	cfg := corsConfig(&config.Config{CORSAllowedOrigins: []string{"http://localhost:3000"}})
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowOrigins)
	assert.Contains(t, cfg.AllowHeaders, "Authorization")
	assert.Contains(t, cfg.ExposeHeaders, "Content-Disposition")

	open := corsConfig(&config.Config{})
	assert.True(t, open.AllowAllOrigins)
}
