package services

import (
	"errors"
	"log"
	"time"

	"classroom-live-backend/internal/models"

	"gorm.io/gorm"
)

var ErrAlreadyKicked = errors.New("user is already kicked out")

type ParticipantInfo struct {
	ID       uint      `json:"id"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	LastSeen time.Time `json:"lastSeen"`
}

type SessionStats struct {
	TotalUsers   int64 `json:"total_users"`
	ActiveUsers  int64 `json:"active_users"`
	Participants int64 `json:"participants"`
	Facilitators int64 `json:"facilitators"`
	KickedOut    int64 `json:"kicked_out"`
}

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetUser(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, ErrUnknownUser
	}
	return &user, nil
}

// Kick marks the target as kicked out and inactive. Disconnecting the live
// connection and notifying the room is the caller's job; the persisted ban
// state changes here.
func (s *UserService) Kick(actor *models.User, targetID uint) (*models.User, error) {
	if actor.Role != models.RoleFacilitator {
		return nil, errors.New("only facilitators can kick out users")
	}

	var target models.User
	if err := s.db.First(&target, targetID).Error; err != nil {
		return nil, ErrUnknownUser
	}
	if target.Role != models.RoleParticipant {
		return nil, errors.New("can only kick out participants")
	}
	if target.IsKickedOut {
		return nil, ErrAlreadyKicked
	}

	now := time.Now()
	target.IsKickedOut = true
	target.KickedOutAt = &now
	target.KickedOutBy = &actor.ID
	target.IsActive = false
	if err := s.db.Save(&target).Error; err != nil {
		log.Printf("user: kick %d by %d: %v", targetID, actor.ID, err)
		return nil, errors.New("failed to kick out user")
	}

	log.Printf("user: %s kicked out by %s", target.Name, actor.Name)
	return &target, nil
}

// ActiveParticipants lists who is currently in the session, facilitators
// first, then by name.
func (s *UserService) ActiveParticipants(sessionID uint) ([]ParticipantInfo, error) {
	var users []models.User
	if err := s.db.Where("session_id = ? AND is_active = ? AND is_kicked_out = ?",
		sessionID, true, false).
		Order("role ASC, name ASC").
		Find(&users).Error; err != nil {
		log.Printf("user: list participants for session %d: %v", sessionID, err)
		return nil, errors.New("failed to load participants")
	}

	participants := make([]ParticipantInfo, len(users))
	for i, u := range users {
		participants[i] = ParticipantInfo{ID: u.ID, Name: u.Name, Role: u.Role, LastSeen: u.LastSeen}
	}
	return participants, nil
}

// MarkActive flags the user as reachable. Called when a connection is
// established.
func (s *UserService) MarkActive(userID uint) {
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"is_active": true,
		"last_seen": time.Now(),
	}).Error; err != nil {
		log.Printf("user: mark active %d: %v", userID, err)
	}
}

// MarkInactive flags the user as unreachable. Idempotent, so the disconnect
// path can race a kick on the same user without error.
func (s *UserService) MarkInactive(userID uint) {
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"is_active": false,
		"last_seen": time.Now(),
	}).Error; err != nil {
		log.Printf("user: mark inactive %d: %v", userID, err)
	}
}

func (s *UserService) Stats(sessionID uint) (*SessionStats, error) {
	stats := &SessionStats{}

	s.db.Model(&models.User{}).Where("session_id = ?", sessionID).Count(&stats.TotalUsers)
	s.db.Model(&models.User{}).Where("session_id = ? AND is_active = ?", sessionID, true).Count(&stats.ActiveUsers)
	s.db.Model(&models.User{}).Where("session_id = ? AND role = ?", sessionID, models.RoleParticipant).Count(&stats.Participants)
	s.db.Model(&models.User{}).Where("session_id = ? AND role = ?", sessionID, models.RoleFacilitator).Count(&stats.Facilitators)
	s.db.Model(&models.User{}).Where("session_id = ? AND is_kicked_out = ?", sessionID, true).Count(&stats.KickedOut)

	return stats, nil
}
