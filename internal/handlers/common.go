package handlers

import (
	"net/http"
	"strconv"

	"classroom-live-backend/internal/models"
	"classroom-live-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// currentUser loads the authenticated user set by the JWT middleware.
// Responds with the appropriate status and returns nil when it cannot.
func currentUser(c *gin.Context, users *services.UserService) *models.User {
	userID, ok := c.Get("user_id")
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return nil
	}

	user, err := users.GetUser(userID.(uint))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
		return nil
	}
	return user
}

func parseIDParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
