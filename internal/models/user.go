package models

import "time"

type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"size:50;not null;index:idx_name_role" json:"name"`
	Role        string     `gorm:"size:20;not null;index:idx_name_role" json:"role"`
	SessionID   *uint      `gorm:"index" json:"session_id,omitempty"`
	SessionCode string     `gorm:"size:6" json:"session_code,omitempty"`
	IsActive    bool       `gorm:"not null;default:false" json:"is_active"`
	IsKickedOut bool       `gorm:"not null;default:false" json:"is_kicked_out"`
	KickedOutAt *time.Time `json:"kicked_out_at,omitempty"`
	KickedOutBy *uint      `json:"kicked_out_by,omitempty"`
	LastSeen    time.Time  `json:"last_seen"`
	CreatedAt   time.Time  `json:"created_at"`
}

const (
	RoleParticipant = "participant"
	RoleFacilitator = "facilitator"
)

// KickCooldown is how long a kicked-out user stays banned from rejoining.
const KickCooldown = 30 * time.Minute

func ValidRole(role string) bool {
	return role == RoleParticipant || role == RoleFacilitator
}

// CanRejoin reports whether a kicked-out user's cool-down has elapsed.
func (u *User) CanRejoin() bool {
	if !u.IsKickedOut {
		return true
	}
	if u.KickedOutAt == nil {
		return true
	}
	return time.Since(*u.KickedOutAt) >= KickCooldown
}
