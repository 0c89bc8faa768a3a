package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	mrand "math/rand"
	"strings"
	"sync"
	"time"

	"psychparty/models"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GameService is the game directory: it loads a game aggregate, runs one
// state-machine operation under the game's exclusive lock, and persists the
// result. The lock makes the "last submitter flips the state" checks atomic
// across concurrent players.
type GameService struct {
	db        *gorm.DB
	redis     *redis.Client
	questions *QuestionService

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewGameService(db *gorm.DB, redisClient *redis.Client, questions *QuestionService) *GameService {
	return &GameService{
		db:        db,
		redis:     redisClient,
		questions: questions,
		locks:     make(map[string]*sync.Mutex),
	}
}

type CreateGameRequest struct {
	GameModeID   uint `json:"game_mode_id" binding:"required"`
	NumRounds    int  `json:"num_rounds"`
	HasCelebrity bool `json:"has_celebrity"`
}

type SubmitAnswerRequest struct {
	Text string `json:"text"`
}

type SelectAnswerRequest struct {
	Text string `json:"text" binding:"required"`
}

// lockGame returns the exclusive lock for a game code, creating it on first
// use. Locks are never removed; a finished game's lock is a few bytes.
func (s *GameService) lockGame(code string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[code]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[code] = lock
	}
	return lock
}

// GetGameByCode loads the full aggregate: roster with lifetime stats, ready
// set, in-game deltas, and rounds in play order.
func (s *GameService) GetGameByCode(code string) (*models.Game, error) {
	var game models.Game
	err := s.db.Where("LOWER(code) = ?", strings.ToLower(code)).
		Preload("GameMode").
		Preload("Players").
		Preload("Players.Stat").
		Preload("ReadyPlayers").
		Preload("PlayerStats").
		Preload("Rounds", func(db *gorm.DB) *gorm.DB {
			return db.Order("rounds.number")
		}).
		Preload("Rounds.Question").
		Preload("Rounds.Answers").
		Preload("Rounds.Selections").
		First(&game).Error
	return &game, err
}

func (s *GameService) GetPlayerByID(playerID uint) (*models.Player, error) {
	var player models.Player
	err := s.db.Preload("Stat").First(&player, playerID).Error
	return &player, err
}

func (s *GameService) CreateGame(playerID uint, req *CreateGameRequest) (*models.Game, error) {
	leader, err := s.GetPlayerByID(playerID)
	if err != nil {
		return nil, errors.New("player not found")
	}
	if leader.CurrentGameID != nil {
		return nil, errors.New("player is already in a game")
	}

	mode, err := s.questions.GetGameModeByID(req.GameModeID)
	if err != nil {
		return nil, errors.New("game mode not found")
	}

	code := s.generateCode()
	game := models.NewGame(leader, mode, code, req.NumRounds, req.HasCelebrity)

	if err := s.db.Omit(clause.Associations).Create(game).Error; err != nil {
		return nil, err
	}

	// The roster entry and delta row were built before the database
	// assigned an ID; point them at the real one.
	gameID := game.ID
	for i := range game.Players {
		game.Players[i].CurrentGameID = &gameID
	}
	for i := range game.PlayerStats {
		game.PlayerStats[i].GameID = gameID
	}
	leader.CurrentGameID = &gameID

	if err := s.saveGame(game); err != nil {
		return nil, err
	}

	log.Printf("Game %s created by player %d (mode %q, %d rounds)", game.Code, playerID, mode.Name, game.NumRounds)
	return game, nil
}

func (s *GameService) JoinGame(code string, playerID uint, hub *Hub) (*models.Game, error) {
	normalized := strings.ToLower(code)
	lock := s.lockGame(normalized)
	lock.Lock()
	defer lock.Unlock()

	game, err := s.GetGameByCode(normalized)
	if err != nil {
		return nil, errors.New("game not found")
	}

	player, err := s.GetPlayerByID(playerID)
	if err != nil {
		return nil, errors.New("player not found")
	}
	if player.CurrentGameID != nil && *player.CurrentGameID != game.ID {
		return nil, errors.New("player is already in another game")
	}

	if err := game.AddPlayer(player); err != nil {
		return nil, err
	}
	if err := s.saveGame(game); err != nil {
		return nil, err
	}

	if hub != nil {
		hub.BroadcastToGame(normalized, "player_update", gin.H{
			"action": "joined",
			"player": gin.H{"id": player.ID, "alias": player.Alias},
			"roster": rosterPayload(game),
		})
	}
	return game, nil
}

func (s *GameService) LeaveGame(code string, playerID uint, hub *Hub) error {
	normalized := strings.ToLower(code)
	lock := s.lockGame(normalized)
	lock.Lock()
	defer lock.Unlock()

	game, err := s.GetGameByCode(normalized)
	if err != nil {
		return errors.New("game not found")
	}

	player, err := s.GetPlayerByID(playerID)
	if err != nil {
		return errors.New("player not found")
	}

	if err := game.RemovePlayer(player); err != nil {
		return err
	}
	if err := s.saveGame(game); err != nil {
		return err
	}
	// The removed player is no longer on the roster, so the aggregate save
	// does not cover their cleared back-reference.
	if err := s.db.Save(player).Error; err != nil {
		return err
	}

	if hub != nil {
		hub.BroadcastToGame(normalized, "player_update", gin.H{
			"action": "left",
			"player": gin.H{"id": player.ID, "alias": player.Alias},
			"roster": rosterPayload(game),
		})
		if game.Status == models.StatusEnded {
			s.broadcastGameEnded(normalized, game, hub)
		}
	}
	return nil
}

func (s *GameService) StartGame(code string, playerID uint, hub *Hub) (*models.Game, error) {
	normalized := strings.ToLower(code)
	lock := s.lockGame(normalized)
	lock.Lock()
	defer lock.Unlock()

	game, err := s.GetGameByCode(normalized)
	if err != nil {
		return nil, errors.New("game not found")
	}

	if err := game.Start(s.actor(game, playerID), s.questions); err != nil {
		return nil, err
	}
	if err := s.saveGame(game); err != nil {
		return nil, err
	}

	s.refreshRoundSnapshot(normalized, game)
	if hub != nil {
		hub.BroadcastToGame(normalized, "game_started", gin.H{
			"num_rounds": game.NumRounds,
			"roster":     rosterPayload(game),
		})
		s.broadcastRoundStarted(normalized, game, hub)
	}

	log.Printf("Game %s started with %d players", normalized, len(game.Players))
	return game, nil
}

func (s *GameService) SubmitAnswer(code string, playerID uint, req *SubmitAnswerRequest, hub *Hub) error {
	normalized := strings.ToLower(code)
	lock := s.lockGame(normalized)
	lock.Lock()
	defer lock.Unlock()

	game, err := s.GetGameByCode(normalized)
	if err != nil {
		return errors.New("game not found")
	}

	if err := game.SubmitAnswer(s.actor(game, playerID), req.Text); err != nil {
		return err
	}
	if err := s.saveGame(game); err != nil {
		return err
	}

	s.refreshRoundSnapshot(normalized, game)
	if hub != nil {
		round, roundErr := game.CurrentRound()
		if roundErr == nil {
			hub.BroadcastToGame(normalized, "answer_progress", gin.H{
				"submitted": len(round.Answers),
				"roster":    len(game.Players),
			})
			if game.Status == models.StatusSelectingAnswers {
				hub.BroadcastToGame(normalized, "selecting_started", gin.H{
					"prompt":  round.Question.Prompt,
					"answers": buildAnswerPool(round),
				})
			}
		}
	}
	return nil
}

func (s *GameService) SelectAnswer(code string, playerID uint, req *SelectAnswerRequest, hub *Hub) error {
	normalized := strings.ToLower(code)
	lock := s.lockGame(normalized)
	lock.Lock()
	defer lock.Unlock()

	game, err := s.GetGameByCode(normalized)
	if err != nil {
		return errors.New("game not found")
	}

	if err := game.SelectAnswer(s.actor(game, playerID), req.Text); err != nil {
		return err
	}
	if err := s.saveGame(game); err != nil {
		return err
	}

	s.refreshRoundSnapshot(normalized, game)
	if hub != nil {
		switch game.Status {
		case models.StatusWaitingForReady:
			s.broadcastRoundResults(normalized, game, hub)
		case models.StatusEnded:
			s.broadcastRoundResults(normalized, game, hub)
			s.broadcastGameEnded(normalized, game, hub)
		default:
			round, roundErr := game.CurrentRound()
			if roundErr == nil {
				hub.BroadcastToGame(normalized, "selection_progress", gin.H{
					"selected": len(round.Selections),
					"roster":   len(game.Players),
				})
			}
		}
	}
	return nil
}

func (s *GameService) PlayerReady(code string, playerID uint, hub *Hub) error {
	normalized := strings.ToLower(code)
	lock := s.lockGame(normalized)
	lock.Lock()
	defer lock.Unlock()

	game, err := s.GetGameByCode(normalized)
	if err != nil {
		return errors.New("game not found")
	}

	if err := game.PlayerIsReady(s.actor(game, playerID), s.questions); err != nil {
		return err
	}
	if err := s.saveGame(game); err != nil {
		return err
	}

	s.refreshRoundSnapshot(normalized, game)
	if hub != nil {
		switch game.Status {
		case models.StatusSubmittingAnswers:
			s.broadcastRoundStarted(normalized, game, hub)
		case models.StatusEnded:
			s.broadcastGameEnded(normalized, game, hub)
		default:
			hub.BroadcastToGame(normalized, "ready_update", gin.H{
				"ready":  len(game.ReadyPlayers),
				"roster": len(game.Players),
			})
		}
	}
	return nil
}

func (s *GameService) PlayerNotReady(code string, playerID uint, hub *Hub) error {
	normalized := strings.ToLower(code)
	lock := s.lockGame(normalized)
	lock.Lock()
	defer lock.Unlock()

	game, err := s.GetGameByCode(normalized)
	if err != nil {
		return errors.New("game not found")
	}

	if err := game.PlayerIsNotReady(s.actor(game, playerID)); err != nil {
		return err
	}
	if err := s.saveGame(game); err != nil {
		return err
	}

	if hub != nil {
		hub.BroadcastToGame(normalized, "ready_update", gin.H{
			"ready":  len(game.ReadyPlayers),
			"roster": len(game.Players),
		})
	}
	return nil
}

func (s *GameService) EndGame(code string, playerID uint, hub *Hub) error {
	normalized := strings.ToLower(code)
	lock := s.lockGame(normalized)
	lock.Lock()
	defer lock.Unlock()

	game, err := s.GetGameByCode(normalized)
	if err != nil {
		return errors.New("game not found")
	}

	if err := game.End(s.actor(game, playerID)); err != nil {
		return err
	}
	if err := s.saveGame(game); err != nil {
		return err
	}

	if hub != nil {
		s.broadcastGameEnded(normalized, game, hub)
	}
	log.Printf("Game %s ended by player %d", normalized, playerID)
	return nil
}

// GetRoundData returns the active round's snapshot, preferring the cached
// copy and falling back to a fresh load.
func (s *GameService) GetRoundData(code string) (*models.RoundData, error) {
	normalized := strings.ToLower(code)

	if data := s.getRoundSnapshot(normalized); data != nil {
		return data, nil
	}

	game, err := s.GetGameByCode(normalized)
	if err != nil {
		return nil, errors.New("game not found")
	}
	data, err := game.RoundData()
	if err != nil {
		return nil, err
	}
	s.storeRoundSnapshot(normalized, data)
	return data, nil
}

// actor resolves the acting player to their roster entry so aggregate
// mutations land on the loaded copy. Unknown players get a bare stand-in the
// aggregate's membership checks will reject.
func (s *GameService) actor(game *models.Game, playerID uint) *models.Player {
	if player := game.RosterPlayer(playerID); player != nil {
		return player
	}
	return &models.Player{ID: playerID}
}

// saveGame writes the aggregate back: the game row, every association, and
// the join tables, with removals applied.
func (s *GameService) saveGame(game *models.Game) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(game).Error; err != nil {
			return err
		}
		if err := tx.Model(game).Association("Players").Replace(&game.Players); err != nil {
			return err
		}
		return tx.Model(game).Association("ReadyPlayers").Replace(&game.ReadyPlayers)
	})
}

func (s *GameService) generateCode() string {
	bytes := make([]byte, 3)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)[:6]
}

// buildAnswerPool assembles the deduplicated, shuffled pool a selector
// chooses from: every bluff, the correct answer, and the decoy if present.
func buildAnswerPool(round *models.Round) []string {
	seen := make(map[string]bool)
	pool := make([]string, 0, len(round.Answers)+2)
	add := func(text string) {
		if text != "" && !seen[text] {
			seen[text] = true
			pool = append(pool, text)
		}
	}
	for i := range round.Answers {
		add(round.Answers[i].Text)
	}
	add(round.Question.CorrectAnswer)
	add(round.CelebrityAnswer)
	mrand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool
}

func rosterPayload(game *models.Game) []gin.H {
	roster := make([]gin.H, 0, len(game.Players))
	for i := range game.Players {
		roster = append(roster, gin.H{
			"id":    game.Players[i].ID,
			"alias": game.Players[i].Alias,
		})
	}
	return roster
}

func (s *GameService) broadcastRoundStarted(code string, game *models.Game, hub *Hub) {
	round, err := game.CurrentRound()
	if err != nil {
		return
	}
	hub.BroadcastToGame(code, "round_started", gin.H{
		"number": round.Number,
		"prompt": round.Question.Prompt,
		// The correct answer stays hidden until the round resolves
	})
}

func (s *GameService) broadcastRoundResults(code string, game *models.Game, hub *Hub) {
	round, err := game.CurrentRound()
	if err != nil {
		return
	}
	hub.BroadcastToGame(code, "round_results", gin.H{
		"round":          round.Data(),
		"correct_answer": round.Question.CorrectAnswer,
		"stats":          game.PlayerStats,
	})
}

func (s *GameService) broadcastGameEnded(code string, game *models.Game, hub *Hub) {
	players := make([]gin.H, 0, len(game.Players))
	for i := range game.Players {
		players = append(players, gin.H{
			"id":    game.Players[i].ID,
			"alias": game.Players[i].Alias,
			"stat":  game.Players[i].Stat,
		})
	}
	hub.BroadcastToGame(code, "game_ended", gin.H{
		"rounds_played": len(game.Rounds),
		"players":       players,
	})
}

func (s *GameService) storeRoundSnapshot(code string, data *models.RoundData) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("Failed to marshal round snapshot for %s: %v", code, err)
		return
	}
	if err := s.redis.Set(context.Background(), roundKey(code), payload, 2*time.Hour).Err(); err != nil {
		log.Printf("Failed to store round snapshot for %s: %v", code, err)
	}
}

func (s *GameService) getRoundSnapshot(code string) *models.RoundData {
	payload, err := s.redis.Get(context.Background(), roundKey(code)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Redis error getting round snapshot for %s: %v", code, err)
		}
		return nil
	}
	var data models.RoundData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		log.Printf("Failed to unmarshal round snapshot for %s: %v", code, err)
		return nil
	}
	return &data
}

func (s *GameService) refreshRoundSnapshot(code string, game *models.Game) {
	data, err := game.RoundData()
	if err != nil {
		return
	}
	s.storeRoundSnapshot(code, data)
}

func roundKey(code string) string {
	return fmt.Sprintf("game:%s:round", code)
}
