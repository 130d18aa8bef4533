package handlers

import (
	"errors"
	"net/http"

	"classroom-live-backend/internal/models"
	"classroom-live-backend/internal/services"
	"classroom-live-backend/internal/ws"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users    *services.UserService
	hub      *ws.Hub
	registry *ws.Registry
}

func NewUserHandler(users *services.UserService, hub *ws.Hub, registry *ws.Registry) *UserHandler {
	return &UserHandler{users: users, hub: hub, registry: registry}
}

func (h *UserHandler) Participants(c *gin.Context) {
	user := currentUser(c, h.users)
	if user == nil {
		return
	}
	if user.SessionID == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "you are not in a session"})
		return
	}

	participants, err := h.users.ActiveParticipants(*user.SessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": participants})
}

func (h *UserHandler) Kick(c *gin.Context) {
	user := currentUser(c, h.users)
	if user == nil {
		return
	}

	targetID, err := parseIDParam(c, "userId")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	target, kickErr := revokeAccess(h.users, h.hub, h.registry, user, targetID)
	if kickErr != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(kickErr, services.ErrUnknownUser):
			status = http.StatusNotFound
		case errors.Is(kickErr, services.ErrAlreadyKicked):
			status = http.StatusConflict
		}
		c.JSON(status, ErrorResponse{Error: kickErr.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    gin.H{"id": target.ID, "name": target.Name},
	})
}

func (h *UserHandler) Stats(c *gin.Context) {
	user := currentUser(c, h.users)
	if user == nil {
		return
	}
	if user.SessionID == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "you are not in a session"})
		return
	}

	stats, err := h.users.Stats(*user.SessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// revokeAccess runs the whole kick-out: persist ban state, force-disconnect
// the live connection if one exists, notify the room, refresh the
// participant list. Shared by the REST and websocket paths.
func revokeAccess(users *services.UserService, hub *ws.Hub, registry *ws.Registry, actor *models.User, targetID uint) (*models.User, error) {
	target, err := users.Kick(actor, targetID)
	if err != nil {
		return nil, err
	}

	if client, ok := registry.Lookup(target.ID); ok {
		client.Send(ws.Event{Type: ws.EventKickedOut, Data: gin.H{
			"message":  "You have been removed from the session",
			"kickedBy": actor.Name,
		}})
		client.Close()
		registry.Unregister(client)
		hub.Leave(client)
	}

	if target.SessionID != nil {
		sessionID := *target.SessionID
		hub.Broadcast(ws.SessionRoom(sessionID), ws.Event{Type: ws.EventUserKicked, Data: gin.H{
			"userId":   target.ID,
			"userName": target.Name,
			"kickedBy": actor.Name,
		}})
		broadcastParticipants(users, hub, sessionID)
	}

	return target, nil
}

// broadcastParticipants recomputes and pushes the session's active
// participant list.
func broadcastParticipants(users *services.UserService, hub *ws.Hub, sessionID uint) {
	participants, err := users.ActiveParticipants(sessionID)
	if err != nil {
		return
	}
	hub.Broadcast(ws.SessionRoom(sessionID), ws.Event{
		Type: ws.EventParticipantsUpdate,
		Data: gin.H{"participants": participants},
	})
}
