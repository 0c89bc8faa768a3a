package routes

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"psychparty/handlers"
	"psychparty/middleware"
	"psychparty/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	questionHandler *handlers.QuestionHandler,
	gameHandler *handlers.GameHandler,
	hub *services.Hub,
	gameService *services.GameService,
	jwtSecret string,
) {
	// API routes
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Public game data
		api.GET("/modes", questionHandler.ListGameModes)
		api.GET("/games/:code", gameHandler.GetGameByCode)
		api.GET("/games/:code/round", gameHandler.GetRoundData)

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			// Player profile
			protected.GET("/auth/profile", authHandler.GetProfile)

			// Question bank provisioning
			protected.POST("/modes", questionHandler.CreateGameMode)
			protected.POST("/questions", questionHandler.CreateQuestion)

			// Game lifecycle
			games := protected.Group("/games")
			{
				games.POST("", gameHandler.CreateGame)
				games.POST("/:code/join", gameHandler.JoinGame)
				games.POST("/:code/leave", gameHandler.LeaveGame)
				games.POST("/:code/start", gameHandler.StartGame)
				games.POST("/:code/answer", gameHandler.SubmitAnswer)
				games.POST("/:code/select", gameHandler.SelectAnswer)
				games.POST("/:code/ready", gameHandler.PlayerReady)
				games.POST("/:code/unready", gameHandler.PlayerNotReady)
				games.POST("/:code/end", gameHandler.EndGame)
			}
		}
	}

	// WebSocket endpoint for real-time game events
	router.GET("/ws/:code/:playerID", func(c *gin.Context) {
		gameCode := strings.ToLower(c.Param("code"))
		playerIDStr := c.Param("playerID")

		var playerID uint
		if _, err := fmt.Sscanf(playerIDStr, "%d", &playerID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid player ID"})
			return
		}

		alias, err := validatePlayerAccess(gameService, gameCode, playerID)
		if err != nil {
			log.Printf("Player access validation failed for game %s, player %d: %v", gameCode, playerID, err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Player not found in game"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for game %s, player %d: %v", gameCode, playerID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
			return
		}

		hub.RegisterClient(conn, gameCode, playerID, alias)
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// validatePlayerAccess checks the player is on the game's roster and returns
// their alias.
func validatePlayerAccess(gameService *services.GameService, gameCode string, playerID uint) (string, error) {
	game, err := gameService.GetGameByCode(gameCode)
	if err != nil {
		return "", fmt.Errorf("game not found: %w", err)
	}

	if player := game.RosterPlayer(playerID); player != nil {
		return player.Alias, nil
	}
	return "", fmt.Errorf("player %d not found in game %s", playerID, gameCode)
}
