package services

import (
	"testing"

	"classroom-live-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKick(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	session := createTestSession(t, db)

	facilitator := createTestUser(t, db, "teacher", models.RoleFacilitator, &session.ID)
	student := createTestUser(t, db, "alice", models.RoleParticipant, &session.ID)

	target, err := users.Kick(facilitator, student.ID)
	require.NoError(t, err)
	assert.True(t, target.IsKickedOut)
	assert.False(t, target.IsActive)
	require.NotNil(t, target.KickedOutAt)
	require.NotNil(t, target.KickedOutBy)
	assert.Equal(t, facilitator.ID, *target.KickedOutBy)

	_, err = users.Kick(facilitator, student.ID)
	assert.ErrorIs(t, err, ErrAlreadyKicked)
}

func TestKickGates(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	session := createTestSession(t, db)

	facilitator := createTestUser(t, db, "teacher", models.RoleFacilitator, &session.ID)
	otherFacilitator := createTestUser(t, db, "teacher2", models.RoleFacilitator, &session.ID)
	student := createTestUser(t, db, "alice", models.RoleParticipant, &session.ID)

	_, err := users.Kick(student, facilitator.ID)
	assert.Error(t, err)

	_, err = users.Kick(facilitator, otherFacilitator.ID)
	assert.Error(t, err)

	_, err = users.Kick(facilitator, 9999)
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestActiveParticipantsOrderingAndFiltering(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	session := createTestSession(t, db)

	createTestUser(t, db, "zoe", models.RoleParticipant, &session.ID)
	createTestUser(t, db, "amy", models.RoleParticipant, &session.ID)
	createTestUser(t, db, "mr. smith", models.RoleFacilitator, &session.ID)

	inactive := createTestUser(t, db, "gone", models.RoleParticipant, &session.ID)
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

	kicked := createTestUser(t, db, "banned", models.RoleParticipant, &session.ID)
	require.NoError(t, db.Model(kicked).Update("is_kicked_out", true).Error)

	participants, err := users.ActiveParticipants(session.ID)
	require.NoError(t, err)
	require.Len(t, participants, 3)

	// Facilitators first, then participants by name.
	assert.Equal(t, "mr. smith", participants[0].Name)
	assert.Equal(t, "amy", participants[1].Name)
	assert.Equal(t, "zoe", participants[2].Name)
}

func TestMarkInactiveIdempotent(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)

	user := createTestUser(t, db, "alice", models.RoleParticipant, nil)
	users.MarkInactive(user.ID)
	users.MarkInactive(user.ID)
	users.MarkInactive(9999) // absent user is tolerated

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.False(t, reloaded.IsActive)
}

func TestStats(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	session := createTestSession(t, db)

	createTestUser(t, db, "teacher", models.RoleFacilitator, &session.ID)
	createTestUser(t, db, "alice", models.RoleParticipant, &session.ID)
	kicked := createTestUser(t, db, "banned", models.RoleParticipant, &session.ID)
	require.NoError(t, db.Model(kicked).Updates(map[string]interface{}{
		"is_kicked_out": true,
		"is_active":     false,
	}).Error)

	stats, err := users.Stats(session.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalUsers)
	assert.EqualValues(t, 2, stats.ActiveUsers)
	assert.EqualValues(t, 2, stats.Participants)
	assert.EqualValues(t, 1, stats.Facilitators)
	assert.EqualValues(t, 1, stats.KickedOut)
}
