package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/djsmacker01/flavour-api/config"
	"github.com/djsmacker01/flavour-api/middleware"
	"github.com/djsmacker01/flavour-api/models"
	"github.com/djsmacker01/flavour-api/services"
	"github.com/djsmacker01/flavour-api/validation"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := validation.RegisterBindings(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// setupTestDB creates an in-memory database and installs it as config.DB
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...), "Failed to migrate test database")

	original := config.GetDB()
	config.SetDB(db)
	t.Cleanup(func() { config.SetDB(original) })
	return db
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// mockAuthMiddleware simulates the Auth0 JWT middleware for testing.
// It sets up the context exactly as the real EnsureValidToken middleware does.
func mockAuthMiddleware(auth0ID, role, accessToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Set("access_token", accessToken)
		c.Set("validated_claims", &validator.ValidatedClaims{
			RegisteredClaims: validator.RegisteredClaims{Subject: auth0ID},
			CustomClaims:     &middleware.CustomClaims{Role: role},
		})
		c.Next()
	}
}

// testEnv wires a fresh database and mock collaborators into the globals
// the handlers read
type testEnv struct {
	db       *gorm.DB
	payments *services.MockPaymentService
	events   *services.MockEventPublisher
	images   *services.MockImageService
}

func newTestEnv(t *testing.T) *testEnv {
	env := &testEnv{
		db:       setupTestDB(t),
		payments: services.NewMockPaymentService(),
		events:   services.NewMockEventPublisher(),
		images:   services.NewMockImageService(),
	}

	originalPayments := services.GetPaymentService()
	originalEvents := services.GetEventPublisher()
	originalImages := services.GetImageService()
	t.Cleanup(func() {
		services.SetPaymentService(originalPayments)
		services.SetEventPublisher(originalEvents)
		services.SetImageService(originalImages)
	})

	env.payments.SetAsMockForTesting()
	env.events.SetAsMockForTesting()
	env.images.SetAsMockForTesting()
	return env
}

// routerFor returns the full API router authenticated as auth0ID
func (e *testEnv) routerFor(auth0ID string) *gin.Engine {
	router := setupTestRouter()
	RegisterRoutes(router.Group("/api/v1"), mockAuthMiddleware(auth0ID, "", "token-"+auth0ID))
	return router
}

func (e *testEnv) createUser(t *testing.T, auth0ID, role string) *models.User {
	user := &models.User{
		Auth0ID: auth0ID,
		Name:    "Test " + role,
		Email:   auth0ID[len("auth0|"):] + "@example.com",
		Role:    role,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) createMenuItem(t *testing.T, name, price, category string, available bool) *models.MenuItem {
	item := &models.MenuItem{
		Name:        name,
		Price:       models.MustMoney(price),
		Category:    category,
		IsAvailable: available,
	}
	require.NoError(t, e.db.Create(item).Error)
	return item
}

func performRequest(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// leading bytes of real image files, enough to pass content sniffing
var (
	pngImage  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")
	jpegImage = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01")
)

func performUpload(router http.Handler, path, filename string, content []byte) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("image", filename)
	part.Write(content)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "Response should be valid JSON: %s", w.Body.String())
	return response
}

func responseData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	response := decodeResponse(t, w)
	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "Response has no data object: %s", w.Body.String())
	return data
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	response := decodeResponse(t, w)
	errorData, ok := response["error"].(map[string]interface{})
	require.True(t, ok, "Response has no error object: %s", w.Body.String())
	return errorData["code"].(string)
}
