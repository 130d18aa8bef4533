package models

import "time"

type Session struct {
	ID                        uint       `gorm:"primaryKey" json:"id"`
	Name                      string     `gorm:"size:100;not null" json:"name"`
	Code                      string     `gorm:"size:6;uniqueIndex" json:"code"`
	CreatedBy                 uint       `gorm:"not null;index" json:"created_by"`
	CreatedByName             string     `gorm:"size:50;not null" json:"created_by_name"`
	Description               string     `gorm:"size:500" json:"description"`
	IsActive                  bool       `gorm:"not null;default:true" json:"is_active"`
	MaxParticipants           int        `gorm:"not null;default:100" json:"max_participants"`
	AllowMultipleFacilitators bool       `gorm:"not null;default:true" json:"allow_multiple_facilitators"`
	EndedAt                   *time.Time `json:"ended_at,omitempty"`
	CreatedAt                 time.Time  `json:"created_at"`
}
