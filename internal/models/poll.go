package models

import "time"

type Poll struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	Question      string       `gorm:"size:100;not null" json:"question"`
	Options       []PollOption `gorm:"foreignKey:PollID" json:"options,omitempty"`
	CorrectAnswer string       `gorm:"size:100" json:"correct_answer,omitempty"`
	CreatedBy     uint         `gorm:"not null;index" json:"created_by"`
	CreatedByName string       `gorm:"size:50;not null" json:"created_by_name"`
	SessionID     uint         `gorm:"not null;index" json:"session_id"`
	Duration      int          `gorm:"not null;default:60" json:"duration"`
	Status        string       `gorm:"size:20;not null;default:'active';index" json:"status"`
	StartTime     time.Time    `json:"start_time"`
	EndTime       *time.Time   `json:"end_time,omitempty"`
	TotalVotes    int          `gorm:"not null;default:0" json:"total_votes"`
	IsLive        bool         `gorm:"not null;default:true" json:"is_live"`
	CreatedAt     time.Time    `json:"created_at"`
}

const (
	PollStatusActive    = "active"
	PollStatusCompleted = "completed"
	PollStatusCancelled = "cancelled"
)

const (
	PollMinOptions  = 2
	PollMaxOptions  = 6
	PollMinDuration = 10
	PollMaxDuration = 600
)

type PollOption struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	PollID uint   `gorm:"not null;index" json:"poll_id"`
	Text   string `gorm:"size:100;not null" json:"text"`
	Votes  int    `gorm:"not null;default:0" json:"votes"`
}

// PollVote is one recorded ballot. PollID is denormalized so the
// voted-already check is a single query across all options.
type PollVote struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	PollID   uint      `gorm:"not null;index:idx_poll_voter" json:"poll_id"`
	OptionID uint      `gorm:"not null;index" json:"option_id"`
	UserID   uint      `gorm:"not null;index:idx_poll_voter" json:"user_id"`
	UserName string    `gorm:"size:50;not null" json:"user_name"`
	VotedAt  time.Time `json:"voted_at"`
}

// IsExpired reports whether the poll's voting window has passed.
// A non-active poll is always expired.
func (p *Poll) IsExpired() bool {
	if p.Status != PollStatusActive {
		return true
	}
	return time.Now().After(p.StartTime.Add(time.Duration(p.Duration) * time.Second))
}
