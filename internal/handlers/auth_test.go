package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"classroom-live-backend/internal/middleware"
	"classroom-live-backend/internal/models"
	"classroom-live-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Poll{},
		&models.PollOption{},
		&models.PollVote{},
		&models.Message{},
	))

	authService := services.NewAuthService(db, "test-secret")
	sessionService := services.NewSessionService(db)
	userService := services.NewUserService(db)
	authHandler := NewAuthHandler(authService, sessionService, userService)

	r := gin.New()
	r.POST("/api/v1/auth/join", authHandler.Join)
	r.GET("/api/v1/auth/me", middleware.JWTAuth(authService), authHandler.Me)
	return r, db
}

func seedSession(t *testing.T, db *gorm.DB) *models.Session {
	t.Helper()
	session := models.Session{
		Name:                      "Test Session",
		Code:                      "ABC123",
		CreatedBy:                 1,
		CreatedByName:             "teacher",
		IsActive:                  true,
		MaxParticipants:           100,
		AllowMultipleFacilitators: true,
	}
	require.NoError(t, db.Create(&session).Error)
	return &session
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJoinEndpoint(t *testing.T) {
	r, db := newTestRouter(t)
	seedSession(t, db)

	w := postJSON(t, r, "/api/v1/auth/join",
		`{"name":"alice","role":"participant","sessionCode":"ABC123"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		User    struct {
			Name        string `json:"name"`
			Role        string `json:"role"`
			SessionName string `json:"sessionName"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Name)
	assert.Equal(t, "participant", resp.User.Role)
	assert.Equal(t, "Test Session", resp.User.SessionName)

	// The token works against an authenticated endpoint.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	me := httptest.NewRecorder()
	r.ServeHTTP(me, req)
	assert.Equal(t, http.StatusOK, me.Code)
}

func TestJoinEndpointUnknownCode(t *testing.T) {
	r, db := newTestRouter(t)
	seedSession(t, db)

	w := postJSON(t, r, "/api/v1/auth/join",
		`{"name":"alice","role":"participant","sessionCode":"ZZZZZZ"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestJoinEndpointNameTaken(t *testing.T) {
	r, db := newTestRouter(t)
	seedSession(t, db)

	first := postJSON(t, r, "/api/v1/auth/join",
		`{"name":"alice","role":"participant","sessionCode":"ABC123"}`)
	require.Equal(t, http.StatusOK, first.Code)

	second := postJSON(t, r, "/api/v1/auth/join",
		`{"name":"alice","role":"participant","sessionCode":"ABC123"}`)
	assert.Equal(t, http.StatusBadRequest, second.Code)
}

func TestJoinEndpointValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postJSON(t, r, "/api/v1/auth/join", `{"name":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMeRequiresToken(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
