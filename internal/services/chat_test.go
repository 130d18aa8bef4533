package services

import (
	"strings"
	"testing"

	"classroom-live-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatFixture(t *testing.T) (*ChatService, *models.User, *models.User) {
	t.Helper()
	db := newTestDB(t)
	session := createTestSession(t, db)
	facilitator := createTestUser(t, db, "teacher", models.RoleFacilitator, &session.ID)
	student := createTestUser(t, db, "alice", models.RoleParticipant, &session.ID)
	return NewChatService(db), facilitator, student
}

func TestSendMessage(t *testing.T) {
	chat, _, student := newChatFixture(t)

	message, err := chat.SendMessage(student, "  hello class  ", "")
	require.NoError(t, err)
	assert.Equal(t, "hello class", message.Content)
	assert.Equal(t, models.MessageTypeText, message.MessageType)
	assert.Equal(t, student.Name, message.SenderName)
	assert.Equal(t, models.RoleParticipant, message.SenderRole)
}

func TestSendMessageValidation(t *testing.T) {
	chat, _, student := newChatFixture(t)

	_, err := chat.SendMessage(student, "   ", "")
	assert.Error(t, err)

	_, err = chat.SendMessage(student, strings.Repeat("x", 1001), "")
	assert.Error(t, err)

	_, err = chat.SendMessage(student, "hi", "gif")
	assert.Error(t, err)

	unbound := &models.User{ID: 99, Name: "drifter", Role: models.RoleParticipant}
	_, err = chat.SendMessage(unbound, "hi", "")
	assert.Error(t, err)
}

func TestDeleteMessageSoftDeletes(t *testing.T) {
	chat, facilitator, student := newChatFixture(t)

	message, err := chat.SendMessage(student, "delete me", "")
	require.NoError(t, err)

	deleted, err := chat.DeleteMessage(facilitator, message.ID)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)
	assert.NotNil(t, deleted.DeletedAt)
	require.NotNil(t, deleted.DeletedBy)
	assert.Equal(t, facilitator.ID, *deleted.DeletedBy)

	// Content is retained for audit.
	var reloaded models.Message
	require.NoError(t, chat.db.First(&reloaded, message.ID).Error)
	assert.Equal(t, "delete me", reloaded.Content)

	// But the read path excludes it.
	messages, err := chat.ListMessages(message.SessionID, 0)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestDeleteMessageRoleGate(t *testing.T) {
	chat, _, student := newChatFixture(t)

	message, err := chat.SendMessage(student, "hi", "")
	require.NoError(t, err)

	_, err = chat.DeleteMessage(student, message.ID)
	assert.Error(t, err)

	_, err = chat.DeleteMessage(&models.User{ID: 1, Role: models.RoleFacilitator}, 9999)
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestListMessagesOrderAndLimit(t *testing.T) {
	chat, _, student := newChatFixture(t)

	for _, text := range []string{"first", "second", "third"} {
		_, err := chat.SendMessage(student, text, "")
		require.NoError(t, err)
	}

	messages, err := chat.ListMessages(*student.SessionID, 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "second", messages[0].Content)
	assert.Equal(t, "third", messages[1].Content)
}
