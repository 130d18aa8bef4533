package services

import (
	"errors"
	"log"
	"time"

	"classroom-live-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

var (
	ErrMissingToken = errors.New("no token provided")
	ErrInvalidToken = errors.New("invalid token")
	ErrUnknownUser  = errors.New("user not found")
	ErrBanned       = errors.New("you are temporarily banned from this session")
)

type AuthService struct {
	db        *gorm.DB
	jwtSecret []byte
}

func NewAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{db: db, jwtSecret: []byte(jwtSecret)}
}

func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"name":    user.Name,
		"role":    user.Role,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) ValidateToken(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, ErrInvalidToken
	}

	return uint(userIDFloat), nil
}

// VerifyConnection authenticates a websocket credential and returns the
// identity snapshot used for the whole connection. A kicked-out user whose
// cool-down has elapsed gets the ban flags cleared as part of the successful
// reconnect.
func (s *AuthService) VerifyConnection(tokenString string) (*models.User, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	userID, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, ErrUnknownUser
	}

	if user.IsKickedOut {
		if !user.CanRejoin() {
			return nil, ErrBanned
		}
		user.IsKickedOut = false
		user.KickedOutAt = nil
		user.KickedOutBy = nil
		if err := s.db.Save(&user).Error; err != nil {
			log.Printf("auth: reset kick-out for user %d: %v", user.ID, err)
			return nil, errors.New("failed to verify connection")
		}
	}

	return &user, nil
}
