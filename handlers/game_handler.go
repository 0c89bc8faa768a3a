package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"psychparty/models"
	"psychparty/services"

	"github.com/gin-gonic/gin"
)

type GameHandler struct {
	gameService *services.GameService
	hub         *services.Hub
}

func NewGameHandler(gameService *services.GameService, hub *services.Hub) *GameHandler {
	return &GameHandler{
		gameService: gameService,
		hub:         hub,
	}
}

// respondGameError maps core errors to HTTP: a rejected state transition is
// the caller's problem, an unprovisioned question bank is a conflict.
func respondGameError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNoQuestions), errors.Is(err, models.ErrNoCelebrityAnswers):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func playerFromContext(c *gin.Context) (uint, bool) {
	playerID, exists := c.Get("player_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Player not authenticated"})
		return 0, false
	}
	return playerID.(uint), true
}

func gameCodeFromPath(c *gin.Context) (string, bool) {
	code := c.Param("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Game code required"})
		return "", false
	}
	return strings.ToLower(code), true
}

func (h *GameHandler) CreateGame(c *gin.Context) {
	playerID, ok := playerFromContext(c)
	if !ok {
		return
	}

	var req services.CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game, err := h.gameService.CreateGame(playerID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, game)
}

func (h *GameHandler) JoinGame(c *gin.Context) {
	playerID, ok := playerFromContext(c)
	if !ok {
		return
	}
	code, ok := gameCodeFromPath(c)
	if !ok {
		return
	}

	game, err := h.gameService.JoinGame(code, playerID, h.hub)
	if err != nil {
		respondGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, game)
}

func (h *GameHandler) LeaveGame(c *gin.Context) {
	playerID, ok := playerFromContext(c)
	if !ok {
		return
	}
	code, ok := gameCodeFromPath(c)
	if !ok {
		return
	}

	if err := h.gameService.LeaveGame(code, playerID, h.hub); err != nil {
		respondGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Left the game"})
}

func (h *GameHandler) GetGameByCode(c *gin.Context) {
	code, ok := gameCodeFromPath(c)
	if !ok {
		return
	}

	game, err := h.gameService.GetGameByCode(code)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	c.JSON(http.StatusOK, game)
}

func (h *GameHandler) StartGame(c *gin.Context) {
	playerID, ok := playerFromContext(c)
	if !ok {
		return
	}
	code, ok := gameCodeFromPath(c)
	if !ok {
		return
	}

	game, err := h.gameService.StartGame(code, playerID, h.hub)
	if err != nil {
		respondGameError(c, err)
		return
	}

	connected := h.hub.GetConnectedPlayers(code)
	log.Printf("Game %s started. Connected players: %v", code, connected)

	c.JSON(http.StatusOK, gin.H{"message": "Game started", "game": game})
}

func (h *GameHandler) SubmitAnswer(c *gin.Context) {
	playerID, ok := playerFromContext(c)
	if !ok {
		return
	}
	code, ok := gameCodeFromPath(c)
	if !ok {
		return
	}

	var req services.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.gameService.SubmitAnswer(code, playerID, &req, h.hub); err != nil {
		respondGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Answer submitted"})
}

func (h *GameHandler) SelectAnswer(c *gin.Context) {
	playerID, ok := playerFromContext(c)
	if !ok {
		return
	}
	code, ok := gameCodeFromPath(c)
	if !ok {
		return
	}

	var req services.SelectAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.gameService.SelectAnswer(code, playerID, &req, h.hub); err != nil {
		respondGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Answer selected"})
}

func (h *GameHandler) PlayerReady(c *gin.Context) {
	playerID, ok := playerFromContext(c)
	if !ok {
		return
	}
	code, ok := gameCodeFromPath(c)
	if !ok {
		return
	}

	if err := h.gameService.PlayerReady(code, playerID, h.hub); err != nil {
		respondGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ready"})
}

func (h *GameHandler) PlayerNotReady(c *gin.Context) {
	playerID, ok := playerFromContext(c)
	if !ok {
		return
	}
	code, ok := gameCodeFromPath(c)
	if !ok {
		return
	}

	if err := h.gameService.PlayerNotReady(code, playerID, h.hub); err != nil {
		respondGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Not ready"})
}

func (h *GameHandler) EndGame(c *gin.Context) {
	playerID, ok := playerFromContext(c)
	if !ok {
		return
	}
	code, ok := gameCodeFromPath(c)
	if !ok {
		return
	}

	if err := h.gameService.EndGame(code, playerID, h.hub); err != nil {
		respondGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Game ended"})
}

func (h *GameHandler) GetRoundData(c *gin.Context) {
	code, ok := gameCodeFromPath(c)
	if !ok {
		return
	}

	data, err := h.gameService.GetRoundData(code)
	if err != nil {
		respondGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, data)
}
