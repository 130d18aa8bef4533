package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"classroom-live-backend/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory database. A single connection keeps
// sqlite happy under the concurrent test cases.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

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
	return db
}

func createTestSession(t *testing.T, db *gorm.DB) *models.Session {
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

func createTestUser(t *testing.T, db *gorm.DB, name, role string, sessionID *uint) *models.User {
	t.Helper()
	user := models.User{
		Name:      name,
		Role:      role,
		SessionID: sessionID,
		IsActive:  true,
		LastSeen:  time.Now(),
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}
