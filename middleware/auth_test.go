package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/djsmacker01/flavour-api/config"
	"github.com/djsmacker01/flavour-api/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	original := config.GetDB()
	config.SetDB(db)
	t.Cleanup(func() { config.SetDB(original) })
	return db
}

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		setupFunc func(*gin.Context)
		wantID    string
		wantErr   bool
	}{
		{
			name: "successfully extracts user ID",
			setupFunc: func(c *gin.Context) {
				c.Set("user_id", "auth0|123456")
			},
			wantID: "auth0|123456",
		},
		{
			name:      "user ID not found in context",
			setupFunc: func(c *gin.Context) {},
			wantErr:   true,
		},
		{
			name: "user ID is not a string",
			setupFunc: func(c *gin.Context) {
				c.Set("user_id", 12345)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			tt.setupFunc(c)

			gotID, err := GetUserID(c)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, gotID)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantID, gotID)
			}
		})
	}
}

func TestGetClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, err := GetClaims(c)
	assert.Error(t, err)

	c.Set("validated_claims", "invalid")
	_, err = GetClaims(c)
	assert.Error(t, err)

	c.Set("validated_claims", &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{Subject: "auth0|123456"},
		CustomClaims:     &CustomClaims{},
	})
	claims, err := GetClaims(c)
	require.NoError(t, err)
	assert.Equal(t, "auth0|123456", claims.RegisteredClaims.Subject)
}

func TestGetAccessToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, err := GetAccessToken(c)
	assert.Error(t, err)

	c.Set("access_token", "token-abc")
	token, err := GetAccessToken(c)
	require.NoError(t, err)
	assert.Equal(t, "token-abc", token)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer abc"))
	assert.Empty(t, bearerToken("Basic abc"))
	assert.Empty(t, bearerToken(""))
}

func TestRequireUserAndStaff(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupAuthTestDB(t)

	require.NoError(t, db.Create(&models.User{Auth0ID: "auth0|customer", Name: "Customer", Email: "customer@example.com", Role: models.RoleCustomer}).Error)
	require.NoError(t, db.Create(&models.User{Auth0ID: "auth0|staff", Name: "Staff", Email: "staff@example.com", Role: models.RoleStaff}).Error)

	tests := []struct {
		name       string
		auth0ID    string
		wantStatus int
	}{
		{"staff passes", "auth0|staff", http.StatusOK},
		{"customer is forbidden", "auth0|customer", http.StatusForbidden},
		{"unknown user has no profile", "auth0|nobody", http.StatusNotFound},
		{"missing identity", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(func(c *gin.Context) {
				if tt.auth0ID != "" {
					c.Set("user_id", tt.auth0ID)
				}
				c.Next()
			})
			router.GET("/staff", RequireUser(), RequireStaff(), func(c *gin.Context) {
				user, err := CurrentUser(c)
				require.NoError(t, err)
				assert.True(t, user.IsStaff())
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/staff", nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestCurrentUser_NotLoaded(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, err := CurrentUser(c)
	assert.Error(t, err)

	c.Set("current_user", "not a user")
	_, err = CurrentUser(c)
	assert.Error(t, err)
}

func TestAuthError(t *testing.T) {
	err := &AuthError{
		Code:    "TEST_ERROR",
		Message: "This is a test error",
	}

	assert.Equal(t, "This is a test error", err.Error())
}
