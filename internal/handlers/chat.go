package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"classroom-live-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chat  *services.ChatService
	users *services.UserService
}

func NewChatHandler(chat *services.ChatService, users *services.UserService) *ChatHandler {
	return &ChatHandler{chat: chat, users: users}
}

func (h *ChatHandler) Messages(c *gin.Context) {
	user := currentUser(c, h.users)
	if user == nil {
		return
	}
	if user.SessionID == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "you are not in a session"})
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	messages, err := h.chat.ListMessages(*user.SessionID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type SendMessageRequest struct {
	Content     string `json:"content" binding:"required"`
	MessageType string `json:"messageType"`
}

func (h *ChatHandler) Send(c *gin.Context) {
	user := currentUser(c, h.users)
	if user == nil {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	message, err := h.chat.SendMessage(user, req.Content, req.MessageType)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, message)
}

func (h *ChatHandler) Delete(c *gin.Context) {
	user := currentUser(c, h.users)
	if user == nil {
		return
	}

	messageID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid message id"})
		return
	}

	if _, err := h.chat.DeleteMessage(user, messageID); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "message deleted"})
}
