package services

import (
	"testing"
	"time"

	"classroom-live-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, "test-secret")

	user := createTestUser(t, db, "alice", models.RoleParticipant, nil)
	token, err := auth.GenerateToken(user)
	require.NoError(t, err)

	userID, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	auth := NewAuthService(newTestDB(t), "test-secret")

	_, err := auth.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice", models.RoleParticipant, nil)

	other := NewAuthService(db, "other-secret")
	token, err := other.GenerateToken(user)
	require.NoError(t, err)

	auth := NewAuthService(db, "test-secret")
	_, err = auth.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyConnection(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, "test-secret")

	_, err := auth.VerifyConnection("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = auth.VerifyConnection("bogus")
	assert.ErrorIs(t, err, ErrInvalidToken)

	user := createTestUser(t, db, "alice", models.RoleParticipant, nil)
	token, err := auth.GenerateToken(user)
	require.NoError(t, err)

	got, err := auth.VerifyConnection(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	// Token for a user that no longer exists.
	require.NoError(t, db.Delete(&models.User{}, user.ID).Error)
	_, err = auth.VerifyConnection(token)
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestVerifyConnectionBanCooldown(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, "test-secret")

	user := createTestUser(t, db, "alice", models.RoleParticipant, nil)
	token, err := auth.GenerateToken(user)
	require.NoError(t, err)

	kickedAt := time.Now().Add(-5 * time.Minute)
	require.NoError(t, db.Model(user).Updates(map[string]interface{}{
		"is_kicked_out": true,
		"kicked_out_at": kickedAt,
		"is_active":     false,
	}).Error)

	// Inside the cool-down window the reconnect is refused.
	_, err = auth.VerifyConnection(token)
	assert.ErrorIs(t, err, ErrBanned)

	// After the window the reconnect succeeds and clears the ban flags.
	elapsed := time.Now().Add(-(models.KickCooldown + time.Minute))
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("kicked_out_at", elapsed).Error)

	got, err := auth.VerifyConnection(token)
	require.NoError(t, err)
	assert.False(t, got.IsKickedOut)
	assert.Nil(t, got.KickedOutAt)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.False(t, reloaded.IsKickedOut)
}
