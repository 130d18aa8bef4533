package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"classroom-live-backend/internal/models"
	"classroom-live-backend/internal/services"
	"classroom-live-backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WSHandler drives the connection lifecycle: authenticate, register, join
// rooms, pump inbound events, clean up.
type WSHandler struct {
	auth     *services.AuthService
	polls    *services.PollService
	chat     *services.ChatService
	users    *services.UserService
	hub      *ws.Hub
	registry *ws.Registry
}

func NewWSHandler(auth *services.AuthService, polls *services.PollService, chat *services.ChatService, users *services.UserService, hub *ws.Hub, registry *ws.Registry) *WSHandler {
	return &WSHandler{auth: auth, polls: polls, chat: chat, users: users, hub: hub, registry: registry}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	user, err := h.auth.VerifyConnection(c.Query("token"))
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, services.ErrBanned) {
			status = http.StatusForbidden
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade for user %d: %v", user.ID, err)
		return
	}

	client := ws.NewClient(conn, user.ID, user.Name, user.Role, user.SessionID)
	h.users.MarkActive(user.ID)
	h.registry.Register(client)
	h.hub.Join(client)
	log.Printf("ws: user connected: %s (%s)", user.Name, user.Role)

	if user.SessionID != nil {
		broadcastParticipants(h.users, h.hub, *user.SessionID)
	}
	h.sendCurrentPoll(client, user)

	defer h.cleanup(client, user)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var env ws.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			client.Send(ws.ErrorEvent("invalid event format"))
			continue
		}
		h.dispatch(client, user, env)
	}
}

// cleanup runs on any disconnect, transport-initiated or forced. Every step
// tolerates already-gone state so it can race a kick on the same user.
func (h *WSHandler) cleanup(client *ws.Client, user *models.User) {
	client.Close()
	h.hub.Leave(client)
	h.registry.Unregister(client)
	h.users.MarkInactive(user.ID)
	log.Printf("ws: user disconnected: %s (%s)", user.Name, user.Role)

	if user.SessionID != nil {
		broadcastParticipants(h.users, h.hub, *user.SessionID)
	}
}

func (h *WSHandler) dispatch(client *ws.Client, user *models.User, env ws.Envelope) {
	switch env.Type {
	case ws.EventCreatePoll:
		h.createPoll(client, user, env.Data)
	case ws.EventVote:
		h.vote(client, user, env.Data)
	case ws.EventSendMessage:
		h.sendMessage(client, user, env.Data)
	case ws.EventKickUser:
		h.kickUser(client, user, env.Data)
	case ws.EventEndPoll:
		h.endPoll(client, user)
	default:
		client.Send(ws.ErrorEvent("unknown event type"))
	}
}

func (h *WSHandler) createPoll(client *ws.Client, user *models.User, data json.RawMessage) {
	var payload ws.CreatePollPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		client.Send(ws.ErrorEvent("invalid createPoll payload"))
		return
	}
	if err := payload.Validate(); err != nil {
		client.Send(ws.ErrorEvent(err.Error()))
		return
	}

	poll, err := h.polls.CreatePoll(user, payload.Question, payload.Options, payload.CorrectAnswer, payload.Duration)
	if err != nil {
		client.Send(ws.ErrorEvent(err.Error()))
		return
	}

	// Counts start blinded for everyone.
	options := make([]gin.H, len(poll.Options))
	for i, opt := range poll.Options {
		options[i] = gin.H{"text": opt.Text, "votes": 0}
	}
	h.hub.Broadcast(ws.SessionRoom(poll.SessionID), ws.Event{Type: ws.EventNewPoll, Data: gin.H{
		"id":            poll.ID,
		"question":      poll.Question,
		"options":       options,
		"duration":      poll.Duration,
		"startTime":     poll.StartTime,
		"timeRemaining": poll.Duration,
	}})
}

func (h *WSHandler) vote(client *ws.Client, user *models.User, data json.RawMessage) {
	var payload ws.VotePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		client.Send(ws.ErrorEvent("invalid vote payload"))
		return
	}
	if err := payload.Validate(); err != nil {
		client.Send(ws.ErrorEvent(err.Error()))
		return
	}

	poll, err := h.polls.RecordVote(user, payload.PollID, payload.SelectedOption)
	if err != nil {
		client.Send(ws.ErrorEvent(err.Error()))
		return
	}

	results := h.polls.Results(poll)
	client.Send(ws.Event{Type: ws.EventVoteConfirmed, Data: gin.H{
		"pollId":         poll.ID,
		"selectedOption": payload.SelectedOption,
		"results":        results,
		"totalVotes":     poll.TotalVotes,
	}})

	// Live tallies go to facilitators only; other participants stay blind
	// until the facilitator discloses results.
	h.hub.Broadcast(ws.SessionRoleRoom(poll.SessionID, models.RoleFacilitator), ws.Event{
		Type: ws.EventPollUpdate,
		Data: gin.H{
			"pollId":     poll.ID,
			"results":    results,
			"totalVotes": poll.TotalVotes,
		},
	})
}

func (h *WSHandler) sendMessage(client *ws.Client, user *models.User, data json.RawMessage) {
	var payload ws.MessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		client.Send(ws.ErrorEvent("invalid sendMessage payload"))
		return
	}
	if err := payload.Validate(); err != nil {
		client.Send(ws.ErrorEvent(err.Error()))
		return
	}

	message, err := h.chat.SendMessage(user, payload.Content, payload.MessageType)
	if err != nil {
		client.Send(ws.ErrorEvent(err.Error()))
		return
	}

	h.hub.Broadcast(ws.SessionRoom(message.SessionID), ws.Event{Type: ws.EventNewMessage, Data: gin.H{
		"id":          message.ID,
		"content":     message.Content,
		"senderName":  message.SenderName,
		"senderRole":  message.SenderRole,
		"messageType": message.MessageType,
		"timestamp":   message.CreatedAt,
	}})
}

func (h *WSHandler) kickUser(client *ws.Client, user *models.User, data json.RawMessage) {
	var payload ws.KickPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		client.Send(ws.ErrorEvent("invalid kickUser payload"))
		return
	}
	if err := payload.Validate(); err != nil {
		client.Send(ws.ErrorEvent(err.Error()))
		return
	}

	if _, err := revokeAccess(h.users, h.hub, h.registry, user, payload.UserID); err != nil {
		client.Send(ws.ErrorEvent(err.Error()))
	}
}

func (h *WSHandler) endPoll(client *ws.Client, user *models.User) {
	poll, err := h.polls.EndActivePoll(user)
	if err != nil {
		client.Send(ws.ErrorEvent(err.Error()))
		return
	}

	h.hub.Broadcast(ws.SessionRoom(poll.SessionID), ws.Event{Type: ws.EventPollEnded, Data: gin.H{
		"id":            poll.ID,
		"results":       h.polls.Results(poll),
		"totalVotes":    poll.TotalVotes,
		"correctAnswer": poll.CorrectAnswer,
	}})
}

// sendCurrentPoll pushes a role-appropriate snapshot of the session's live
// poll to a freshly connected client.
func (h *WSHandler) sendCurrentPoll(client *ws.Client, user *models.User) {
	if user.SessionID == nil {
		return
	}
	poll, err := h.polls.CurrentPoll(*user.SessionID)
	if err != nil {
		return
	}
	client.Send(ws.Event{Type: ws.EventCurrentPoll, Data: h.polls.Snapshot(poll, user)})
}
