package main

import (
	"log"
	"net/http"
	"time"

	"classroom-live-backend/internal/config"
	"classroom-live-backend/internal/database"
	"classroom-live-backend/internal/handlers"
	"classroom-live-backend/internal/middleware"
	"classroom-live-backend/internal/services"
	"classroom-live-backend/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db := database.Connect(cfg)
	database.AutoMigrate(db)

	hub := ws.NewHub()
	registry := ws.NewRegistry()

	authService := services.NewAuthService(db, cfg.JWTSecret)
	sessionService := services.NewSessionService(db)
	pollService := services.NewPollService(db, hub)
	chatService := services.NewChatService(db)
	userService := services.NewUserService(db)

	authHandler := handlers.NewAuthHandler(authService, sessionService, userService)
	sessionHandler := handlers.NewSessionHandler(sessionService, userService)
	pollHandler := handlers.NewPollHandler(pollService, userService)
	chatHandler := handlers.NewChatHandler(chatService, userService)
	userHandler := handlers.NewUserHandler(userService, hub, registry)
	wsHandler := handlers.NewWSHandler(authService, pollService, chatService, userService, hub, registry)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.ClientURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "timestamp": time.Now().UTC()})
	})

	r.GET("/ws", wsHandler.HandleWebSocket)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/join", authHandler.Join)
			auth.POST("/leave", middleware.JWTAuth(authService), authHandler.Leave)
			auth.GET("/me", middleware.JWTAuth(authService), authHandler.Me)
		}

		sessions := api.Group("/sessions")
		sessions.Use(middleware.JWTAuth(authService))
		{
			sessions.POST("", sessionHandler.Create)
			sessions.GET("/current", sessionHandler.Current)
			sessions.GET("/history", sessionHandler.History)
			sessions.GET("/:id/participants", sessionHandler.Participants)
			sessions.POST("/:id/end", sessionHandler.End)
		}

		polls := api.Group("/polls")
		polls.Use(middleware.JWTAuth(authService))
		{
			polls.POST("", pollHandler.Create)
			polls.GET("/current", pollHandler.Current)
			polls.GET("/history", pollHandler.History)
			polls.POST("/:id/vote", pollHandler.Vote)
			polls.POST("/end", pollHandler.End)
		}

		chat := api.Group("/chat")
		chat.Use(middleware.JWTAuth(authService))
		{
			chat.GET("/messages", chatHandler.Messages)
			chat.POST("/send", chatHandler.Send)
			chat.DELETE("/:id", chatHandler.Delete)
		}

		users := api.Group("/users")
		users.Use(middleware.JWTAuth(authService))
		{
			users.GET("/participants", userHandler.Participants)
			users.POST("/kick/:userId", userHandler.Kick)
			users.GET("/stats", userHandler.Stats)
		}
	}

	log.Printf("server starting on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
