package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/coinvest-api/models"
	"github.com/yourusername/coinvest-api/testutil"
)

func TestJwtAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testutil.Config()
	db := testutil.NewDB(t)

	user := testutil.CreateProfile(t, db, models.Profile{Email: "user@example.com"})
	inactive := testutil.CreateProfile(t, db, models.Profile{Email: "gone@example.com"})
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

	validToken, _ := GenerateToken(user.ID, "user", PurposeAccess, cfg.JWTSecret, 1*time.Hour)
	expiredToken, _ := GenerateToken(user.ID, "user", PurposeAccess, cfg.JWTSecret, -1*time.Hour)
	refreshToken, _ := GenerateToken(user.ID, "user", PurposeRefresh, cfg.JWTSecret, 1*time.Hour)
	unknownToken, _ := GenerateToken(uuid.New(), "user", PurposeAccess, cfg.JWTSecret, 1*time.Hour)
	inactiveToken, _ := GenerateToken(inactive.ID, "user", PurposeAccess, cfg.JWTSecret, 1*time.Hour)
	forgedRole, _ := GenerateToken(user.ID, "admin", PurposeAccess, cfg.JWTSecret, 1*time.Hour)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedRole   string
		expectedCode   string
	}{
		{
			name:           "Valid Token",
			authHeader:     "Bearer " + validToken,
			expectedStatus: http.StatusOK,
			expectedRole:   "user",
		},
		{
			name:           "Missing Header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid Format",
			authHeader:     "Invalid " + validToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Expired Token",
			authHeader:     "Bearer " + expiredToken,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "ExpiredToken",
		},
		{
			name:           "Invalid Token",
			authHeader:     "Bearer invalid.token.string",
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "InvalidToken",
		},
		{
			name:           "Refresh Token Rejected",
			authHeader:     "Bearer " + refreshToken,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "InvalidToken",
		},
		{
			name:           "Unknown User",
			authHeader:     "Bearer " + unknownToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Inactive User",
			authHeader:     "Bearer " + inactiveToken,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Role Comes From Profile",
			authHeader:     "Bearer " + forgedRole,
			expectedStatus: http.StatusOK,
			expectedRole:   "user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(JwtAuthMiddleware(cfg, db))
			router.GET("/test", func(c *gin.Context) {
				role, _ := c.Get("role")
				c.JSON(http.StatusOK, gin.H{"role": role})
			})

			req, _ := http.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Contains(t, w.Body.String(), tt.expectedCode)
			}
			if tt.expectedRole != "" {
				assert.JSONEq(t, `{"role":"`+tt.expectedRole+`"}`, w.Body.String())
			}
		})
	}
}

func TestParseTokenPurpose(t *testing.T) {
	id := uuid.New()
	token, err := GenerateToken(id, "user", PurposeReset, "s3cret", time.Minute)
	require.NoError(t, err)

	claims, err := ParseToken(token, "s3cret", PurposeReset)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.UserID)

	_, err = ParseToken(token, "s3cret", PurposeAccess)
	assert.ErrorIs(t, err, ErrWrongTokenPurpose)

	_, err = ParseToken(token, "other", PurposeReset)
	assert.Error(t, err)
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		setupContext   func(c *gin.Context)
		requiredRoles  []string
		expectedStatus int
	}{
		{
			name: "Has Required Role",
			setupContext: func(c *gin.Context) {
				c.Set("role", "admin")
			},
			requiredRoles:  []string{"admin"},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Has One Of Required Roles",
			setupContext: func(c *gin.Context) {
				c.Set("role", "superadmin")
			},
			requiredRoles:  []string{"admin", "superadmin"},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Missing Required Role",
			setupContext: func(c *gin.Context) {
				c.Set("role", "user")
			},
			requiredRoles:  []string{"admin"},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "No Role In Context",
			setupContext: func(c *gin.Context) {
			},
			requiredRoles:  []string{"admin"},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(func(c *gin.Context) {
				tt.setupContext(c)
				c.Next()
			})
			router.Use(RequireRole(tt.requiredRoles...))
			router.GET("/test", func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req, _ := http.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
