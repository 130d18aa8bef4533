package handlers

import (
	"errors"
	"net/http"

	"classroom-live-backend/internal/services"
	"classroom-live-backend/internal/ws"

	"github.com/gin-gonic/gin"
)

type PollHandler struct {
	polls *services.PollService
	users *services.UserService
}

func NewPollHandler(polls *services.PollService, users *services.UserService) *PollHandler {
	return &PollHandler{polls: polls, users: users}
}

func (h *PollHandler) Create(c *gin.Context) {
	user := currentUser(c, h.users)
	if user == nil {
		return
	}

	var payload ws.CreatePollPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if err := payload.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	poll, err := h.polls.CreatePoll(user, payload.Question, payload.Options, payload.CorrectAnswer, payload.Duration)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, poll)
}

type VoteRequest struct {
	SelectedOption string `json:"selectedOption" binding:"required"`
}

func (h *PollHandler) Vote(c *gin.Context) {
	user := currentUser(c, h.users)
	if user == nil {
		return
	}

	pollID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid poll id"})
		return
	}

	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	poll, err := h.polls.RecordVote(user, pollID, req.SelectedOption)
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, services.ErrPollNotFound):
			status = http.StatusNotFound
		case errors.Is(err, services.ErrDuplicateVote), errors.Is(err, services.ErrPollExpired):
			status = http.StatusConflict
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pollId":     poll.ID,
		"results":    h.polls.Results(poll),
		"totalVotes": poll.TotalVotes,
	})
}

func (h *PollHandler) Current(c *gin.Context) {
	user := currentUser(c, h.users)
	if user == nil {
		return
	}
	if user.SessionID == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "you are not in a session"})
		return
	}

	poll, err := h.polls.CurrentPoll(*user.SessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.polls.Snapshot(poll, user))
}

func (h *PollHandler) History(c *gin.Context) {
	user := currentUser(c, h.users)
	if user == nil {
		return
	}
	if user.SessionID == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "you are not in a session"})
		return
	}

	polls, err := h.polls.History(*user.SessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"polls": polls})
}

func (h *PollHandler) End(c *gin.Context) {
	user := currentUser(c, h.users)
	if user == nil {
		return
	}

	poll, err := h.polls.EndActivePoll(user)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrNoActivePoll) {
			status = http.StatusNotFound
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":            poll.ID,
		"results":       h.polls.Results(poll),
		"totalVotes":    poll.TotalVotes,
		"correctAnswer": poll.CorrectAnswer,
	})
}
