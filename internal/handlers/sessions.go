package handlers

import (
	"net/http"
	"strconv"

	"classroom-live-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessions *services.SessionService
	users    *services.UserService
}

func NewSessionHandler(sessions *services.SessionService, users *services.UserService) *SessionHandler {
	return &SessionHandler{sessions: sessions, users: users}
}

type CreateSessionRequest struct {
	Name                      string `json:"name" binding:"required,min=1,max=100"`
	Description               string `json:"description" binding:"max=500"`
	MaxParticipants           int    `json:"maxParticipants"`
	AllowMultipleFacilitators *bool  `json:"allowMultipleFacilitators"`
}

func (h *SessionHandler) Create(c *gin.Context) {
	user := currentUser(c, h.users)
	if user == nil {
		return
	}

	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	allowMultiple := true
	if req.AllowMultipleFacilitators != nil {
		allowMultiple = *req.AllowMultipleFacilitators
	}

	session, err := h.sessions.CreateSession(user, req.Name, req.Description, req.MaxParticipants, allowMultiple)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *SessionHandler) Current(c *gin.Context) {
	user := currentUser(c, h.users)
	if user == nil {
		return
	}
	if user.SessionID == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "you are not in a session"})
		return
	}

	session, err := h.sessions.GetSession(*user.SessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) Participants(c *gin.Context) {
	user := currentUser(c, h.users)
	if user == nil {
		return
	}

	sessionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid session id"})
		return
	}

	participants, err := h.users.ActiveParticipants(uint(sessionID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": participants})
}

func (h *SessionHandler) End(c *gin.Context) {
	user := currentUser(c, h.users)
	if user == nil {
		return
	}

	sessionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid session id"})
		return
	}

	session, endErr := h.sessions.EndSession(uint(sessionID), user.ID)
	if endErr != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: endErr.Error()})
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) History(c *gin.Context) {
	user := currentUser(c, h.users)
	if user == nil {
		return
	}

	sessions, err := h.sessions.History(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}
