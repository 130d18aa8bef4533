package models

import "time"

type Message struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Content     string     `gorm:"size:1000;not null" json:"content"`
	SenderID    uint       `gorm:"not null;index" json:"sender_id"`
	SenderName  string     `gorm:"size:50;not null" json:"sender_name"`
	SenderRole  string     `gorm:"size:20;not null" json:"sender_role"`
	SessionID   uint       `gorm:"not null;index" json:"session_id"`
	MessageType string     `gorm:"size:20;not null;default:'text'" json:"message_type"`
	IsDeleted   bool       `gorm:"not null;default:false" json:"is_deleted"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	DeletedBy   *uint      `json:"deleted_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

const (
	MessageTypeText         = "text"
	MessageTypeSystem       = "system"
	MessageTypeAnnouncement = "announcement"
)

const MessageMaxLength = 1000

func ValidMessageType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeSystem, MessageTypeAnnouncement:
		return true
	}
	return false
}
