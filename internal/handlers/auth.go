package handlers

import (
	"errors"
	"net/http"

	"classroom-live-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth     *services.AuthService
	sessions *services.SessionService
	users    *services.UserService
}

func NewAuthHandler(auth *services.AuthService, sessions *services.SessionService, users *services.UserService) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, users: users}
}

type JoinRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=50"`
	Role        string `json:"role" binding:"required"`
	SessionCode string `json:"sessionCode" binding:"required"`
}

func (h *AuthHandler) Join(c *gin.Context) {
	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name, role, and session code are required"})
		return
	}

	user, session, err := h.sessions.JoinSession(req.Name, req.Role, req.SessionCode)
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			status = http.StatusNotFound
		case errors.Is(err, services.ErrBanned):
			status = http.StatusForbidden
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}

	token, err := h.auth.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user": gin.H{
			"id":          user.ID,
			"name":        user.Name,
			"role":        user.Role,
			"isActive":    user.IsActive,
			"sessionId":   user.SessionID,
			"sessionName": session.Name,
		},
	})
}

func (h *AuthHandler) Leave(c *gin.Context) {
	user := currentUser(c, h.users)
	if user == nil {
		return
	}

	if err := h.sessions.LeaveSession(user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "left session successfully"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user := currentUser(c, h.users)
	if user == nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":          user.ID,
			"name":        user.Name,
			"role":        user.Role,
			"isActive":    user.IsActive,
			"isKickedOut": user.IsKickedOut,
			"lastSeen":    user.LastSeen,
		},
	})
}
