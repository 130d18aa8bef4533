package ws

import (
	"encoding/json"
	"errors"
	"strings"
)

// Event is the wire frame for every message in either direction.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Envelope is the inbound frame before the payload is decoded.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Inbound event types.
const (
	EventCreatePoll  = "createPoll"
	EventVote        = "vote"
	EventSendMessage = "sendMessage"
	EventKickUser    = "kickUser"
	EventEndPoll     = "endPoll"
)

// Outbound event types.
const (
	EventParticipantsUpdate = "participantsUpdate"
	EventCurrentPoll        = "currentPoll"
	EventNewPoll            = "newPoll"
	EventVoteConfirmed      = "voteConfirmed"
	EventPollUpdate         = "pollUpdate"
	EventPollEnded          = "pollEnded"
	EventNewMessage         = "newMessage"
	EventUserKicked         = "userKicked"
	EventKickedOut          = "kickedOut"
	EventError              = "error"
)

func ErrorEvent(message string) Event {
	return Event{Type: EventError, Data: map[string]string{"message": message}}
}

type CreatePollPayload struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
	Duration      int      `json:"duration,omitempty"`
}

func (p *CreatePollPayload) Validate() error {
	p.Question = strings.TrimSpace(p.Question)
	if p.Question == "" {
		return errors.New("question is required")
	}
	if len(p.Question) > 100 {
		return errors.New("question must be 100 characters or less")
	}
	if len(p.Options) < 2 || len(p.Options) > 6 {
		return errors.New("poll must have between 2 and 6 options")
	}
	for i, opt := range p.Options {
		p.Options[i] = strings.TrimSpace(opt)
		if p.Options[i] == "" {
			return errors.New("options cannot be empty")
		}
		if len(p.Options[i]) > 100 {
			return errors.New("options must be 100 characters or less")
		}
	}
	if p.Duration == 0 {
		p.Duration = 60
	}
	if p.Duration < 10 || p.Duration > 600 {
		return errors.New("duration must be between 10 and 600 seconds")
	}
	return nil
}

type VotePayload struct {
	PollID         uint   `json:"pollId"`
	SelectedOption string `json:"selectedOption"`
}

func (p *VotePayload) Validate() error {
	if p.PollID == 0 {
		return errors.New("pollId is required")
	}
	if strings.TrimSpace(p.SelectedOption) == "" {
		return errors.New("selectedOption is required")
	}
	return nil
}

type MessagePayload struct {
	Content     string `json:"content"`
	MessageType string `json:"messageType,omitempty"`
}

func (p *MessagePayload) Validate() error {
	p.Content = strings.TrimSpace(p.Content)
	if p.Content == "" {
		return errors.New("message content is required")
	}
	if len(p.Content) > 1000 {
		return errors.New("message must be 1000 characters or less")
	}
	if p.MessageType == "" {
		p.MessageType = "text"
	}
	switch p.MessageType {
	case "text", "system", "announcement":
	default:
		return errors.New("invalid message type")
	}
	return nil
}

type KickPayload struct {
	UserID uint `json:"userId"`
}

func (p *KickPayload) Validate() error {
	if p.UserID == 0 {
		return errors.New("userId is required")
	}
	return nil
}
