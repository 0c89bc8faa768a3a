package main

import (
	"log"

	"psychparty/config"
	"psychparty/handlers"
	"psychparty/middleware"
	"psychparty/models"
	"psychparty/routes"
	"psychparty/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.Player{},
		&models.Stat{},
		&models.GameMode{},
		&models.Question{},
		&models.CelebrityAnswer{},
		&models.Game{},
		&models.Round{},
		&models.PlayerAnswer{},
		&models.AnswerSelection{},
		&models.GameStat{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Initialize services
	authService := services.NewAuthService(db, cfg.JWTSecret)
	questionService := services.NewQuestionService(db)
	gameService := services.NewGameService(db, redisClient, questionService)

	// Initialize WebSocket hub
	hub := services.NewHub(gameService)
	go hub.Run()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	questionHandler := handlers.NewQuestionHandler(questionService)
	gameHandler := handlers.NewGameHandler(gameService, hub)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, authHandler, questionHandler, gameHandler, hub, gameService, cfg.JWTSecret)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
