package services

import (
	"errors"
	"log"
	"math/rand"
	"strings"
	"time"

	"classroom-live-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrSessionNotFound = errors.New("session not found or inactive")
	ErrSessionFull     = errors.New("session is full")
	ErrNameTaken       = errors.New("name already taken in this session")
	ErrFacilitatorSlot = errors.New("session already has a facilitator and multiple facilitators are not allowed")
)

type SessionService struct {
	db *gorm.DB
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{db: db}
}

func (s *SessionService) CreateSession(creator *models.User, name, description string, maxParticipants int, allowMultipleFacilitators bool) (*models.Session, error) {
	if creator.Role != models.RoleFacilitator {
		return nil, errors.New("only facilitators can create sessions")
	}
	if name = strings.TrimSpace(name); name == "" {
		return nil, errors.New("session name is required")
	}
	if maxParticipants <= 0 {
		maxParticipants = 100
	}

	session := models.Session{
		Name:                      name,
		Code:                      s.generateUniqueCode(),
		CreatedBy:                 creator.ID,
		CreatedByName:             creator.Name,
		Description:               description,
		IsActive:                  true,
		MaxParticipants:           maxParticipants,
		AllowMultipleFacilitators: allowMultipleFacilitators,
	}
	if err := s.db.Create(&session).Error; err != nil {
		log.Printf("session: create: %v", err)
		return nil, errors.New("failed to create session")
	}
	return &session, nil
}

func (s *SessionService) GetSession(sessionID uint) (*models.Session, error) {
	var session models.Session
	if err := s.db.First(&session, sessionID).Error; err != nil {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (s *SessionService) GetSessionByCode(code string) (*models.Session, error) {
	var session models.Session
	if err := s.db.Where("code = ? AND is_active = ?", strings.ToUpper(code), true).
		First(&session).Error; err != nil {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

// JoinSession binds a name+role to a session, creating the user record on
// first join. Rejoin matches on exact (name, role); active-name uniqueness
// within the session is enforced here.
func (s *SessionService) JoinSession(name, role, code string) (*models.User, *models.Session, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 50 {
		return nil, nil, errors.New("name is required and must be 50 characters or less")
	}
	if !models.ValidRole(role) {
		return nil, nil, errors.New("invalid role")
	}

	session, err := s.GetSessionByCode(code)
	if err != nil {
		return nil, nil, err
	}

	var activeCount int64
	s.db.Model(&models.User{}).
		Where("session_id = ? AND is_active = ?", session.ID, true).
		Count(&activeCount)
	if int(activeCount) >= session.MaxParticipants {
		return nil, nil, ErrSessionFull
	}

	if role == models.RoleFacilitator && !session.AllowMultipleFacilitators {
		var facilitators int64
		s.db.Model(&models.User{}).
			Where("session_id = ? AND role = ? AND is_active = ?", session.ID, models.RoleFacilitator, true).
			Count(&facilitators)
		if facilitators > 0 {
			return nil, nil, ErrFacilitatorSlot
		}
	}

	var taken models.User
	if err := s.db.Where("name = ? AND role = ? AND session_id = ? AND is_active = ?",
		name, role, session.ID, true).First(&taken).Error; err == nil {
		return nil, nil, ErrNameTaken
	}

	var user models.User
	err = s.db.Where("name = ? AND role = ? AND (session_id IS NULL OR session_id = ?)",
		name, role, session.ID).First(&user).Error
	if err == nil {
		if user.IsKickedOut && !user.CanRejoin() {
			return nil, nil, ErrBanned
		}
		if user.IsKickedOut {
			user.IsKickedOut = false
			user.KickedOutAt = nil
			user.KickedOutBy = nil
		}
		user.IsActive = true
		user.LastSeen = time.Now()
		user.SessionID = &session.ID
		user.SessionCode = session.Code
		if err := s.db.Save(&user).Error; err != nil {
			log.Printf("session: rejoin user %d: %v", user.ID, err)
			return nil, nil, errors.New("failed to join session")
		}
		return &user, session, nil
	}

	user = models.User{
		Name:        name,
		Role:        role,
		IsActive:    true,
		SessionID:   &session.ID,
		SessionCode: session.Code,
		LastSeen:    time.Now(),
	}
	if err := s.db.Create(&user).Error; err != nil {
		log.Printf("session: join create user: %v", err)
		return nil, nil, errors.New("failed to join session")
	}
	return &user, session, nil
}

// LeaveSession unbinds the user and marks them inactive. Tolerates users
// that are already gone.
func (s *SessionService) LeaveSession(userID uint) error {
	err := s.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"is_active":    false,
		"session_id":   nil,
		"session_code": "",
		"last_seen":    time.Now(),
	}).Error
	if err != nil {
		log.Printf("session: leave user %d: %v", userID, err)
		return errors.New("failed to leave session")
	}
	return nil
}

func (s *SessionService) EndSession(sessionID, userID uint) (*models.Session, error) {
	var session models.Session
	if err := s.db.Where("id = ? AND created_by = ?", sessionID, userID).First(&session).Error; err != nil {
		return nil, ErrSessionNotFound
	}
	if !session.IsActive {
		return nil, errors.New("session already ended")
	}

	now := time.Now()
	session.IsActive = false
	session.EndedAt = &now
	if err := s.db.Save(&session).Error; err != nil {
		log.Printf("session: end %d: %v", sessionID, err)
		return nil, errors.New("failed to end session")
	}
	return &session, nil
}

func (s *SessionService) History(userID uint) ([]models.Session, error) {
	var sessions []models.Session
	if err := s.db.Where("created_by = ?", userID).
		Order("created_at DESC").
		Find(&sessions).Error; err != nil {
		log.Printf("session: history for user %d: %v", userID, err)
		return nil, errors.New("failed to load session history")
	}
	return sessions, nil
}

func (s *SessionService) generateUniqueCode() string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	for {
		b := make([]byte, 6)
		for i := range b {
			b[i] = charset[rand.Intn(len(charset))]
		}
		code := string(b)
		var count int64
		s.db.Model(&models.Session{}).
			Where("code = ?", code).
			Count(&count)
		if count == 0 {
			return code
		}
	}
}
