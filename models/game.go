package models

import (
	"time"

	"gorm.io/gorm"
)

type GameStatus string

const (
	StatusPlayersJoining    GameStatus = "PLAYERS_JOINING"
	StatusSubmittingAnswers GameStatus = "SUBMITTING_ANSWERS"
	StatusSelectingAnswers  GameStatus = "SELECTING_ANSWERS"
	StatusWaitingForReady   GameStatus = "WAITING_FOR_READY"
	StatusEnded             GameStatus = "ENDED"
)

const DefaultNumRounds = 10

// QuestionSource supplies prompts for new rounds. The game directory plugs
// in a storage-backed implementation; tests plug in a stub.
type QuestionSource interface {
	RandomQuestion(gameModeID uint) (*Question, error)
	RandomCelebrityAnswer(question *Question) (string, error)
}

// Game is the aggregate root for one play session: the roster, the leader,
// the ordered rounds, readiness tracking, and per-player stat deltas. All
// state transitions go through its methods; every method either fully
// applies its mutation or fails with an InvalidActionError and no visible
// side effect.
type Game struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Code         string         `json:"code" gorm:"uniqueIndex;not null"`
	GameModeID   uint           `json:"game_mode_id" gorm:"not null"`
	NumRounds    int            `json:"num_rounds" gorm:"not null;default:10"`
	HasCelebrity bool           `json:"has_celebrity" gorm:"not null;default:false"`
	LeaderID     uint           `json:"leader_id" gorm:"not null"`
	Status       GameStatus     `json:"status" gorm:"not null;default:'PLAYERS_JOINING'"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	GameMode     GameMode   `json:"game_mode,omitempty"`
	Players      []Player   `json:"players,omitempty" gorm:"many2many:game_players;"`
	ReadyPlayers []Player   `json:"ready_players,omitempty" gorm:"many2many:game_ready_players;"`
	PlayerStats  []GameStat `json:"player_stats,omitempty" gorm:"foreignKey:GameID"`
	Rounds       []Round    `json:"rounds,omitempty" gorm:"foreignKey:GameID"`
}

// NewGame creates a session in PLAYERS_JOINING with the leader already on
// the roster. A non-positive numRounds falls back to DefaultNumRounds.
func NewGame(leader *Player, mode *GameMode, code string, numRounds int, hasCelebrity bool) *Game {
	if numRounds <= 0 {
		numRounds = DefaultNumRounds
	}
	game := &Game{
		Code:         code,
		GameModeID:   mode.ID,
		GameMode:     *mode,
		NumRounds:    numRounds,
		HasCelebrity: hasCelebrity,
		LeaderID:     leader.ID,
		Status:       StatusPlayersJoining,
	}
	game.AddPlayer(leader)
	return game
}

// RosterPlayer returns the roster entry for a player, or nil.
func (g *Game) RosterPlayer(playerID uint) *Player {
	for i := range g.Players {
		if g.Players[i].ID == playerID {
			return &g.Players[i]
		}
	}
	return nil
}

// HasPlayer reports whether the player is on the roster.
func (g *Game) HasPlayer(playerID uint) bool {
	for i := range g.Players {
		if g.Players[i].ID == playerID {
			return true
		}
	}
	return false
}

// AddPlayer joins a player to the roster. Legal only while the game is in
// PLAYERS_JOINING. Joining twice is a no-op.
func (g *Game) AddPlayer(player *Player) error {
	if g.Status != StatusPlayersJoining {
		return newInvalidAction("cannot join a game that has already started")
	}
	if g.HasPlayer(player.ID) {
		return nil
	}
	gameID := g.ID
	player.CurrentGameID = &gameID
	g.Players = append(g.Players, *player)
	g.PlayerStats = append(g.PlayerStats, GameStat{GameID: g.ID, PlayerID: player.ID})
	return nil
}

// RemovePlayer takes a player off the roster and clears their back-reference
// if it pointed here. An empty roster ends the game, as does a roster of one
// once the game is past PLAYERS_JOINING: a single player left standing after
// the game started cannot continue.
func (g *Game) RemovePlayer(player *Player) error {
	index := -1
	for i := range g.Players {
		if g.Players[i].ID == player.ID {
			index = i
			break
		}
	}
	if index < 0 {
		return newInvalidAction("no such player in the game")
	}
	g.Players = append(g.Players[:index], g.Players[index+1:]...)
	g.removeReady(player.ID)
	if player.CurrentGameID != nil && *player.CurrentGameID == g.ID {
		player.CurrentGameID = nil
	}
	if len(g.Players) == 0 || (len(g.Players) == 1 && g.Status != StatusPlayersJoining) {
		g.finish()
	}
	return nil
}

// Start begins the first round. Only the leader may start, only from
// PLAYERS_JOINING, and never with fewer than two players.
func (g *Game) Start(requester *Player, bank QuestionSource) error {
	if g.Status != StatusPlayersJoining {
		return newInvalidAction("the game has already started")
	}
	if len(g.Players) < 2 {
		return newInvalidAction("cannot start a game with fewer than two players")
	}
	if requester.ID != g.LeaderID {
		return newInvalidAction("only the leader can start the game")
	}
	return g.startNewRound(bank)
}

// startNewRound draws a question (and decoy if enabled), appends the next
// round, clears readiness, and moves to SUBMITTING_ANSWERS. The draw happens
// before any mutation so a question-bank failure leaves the game untouched.
func (g *Game) startNewRound(bank QuestionSource) error {
	question, err := bank.RandomQuestion(g.GameModeID)
	if err != nil {
		return err
	}
	round := Round{
		GameID:     g.ID,
		Number:     len(g.Rounds) + 1,
		QuestionID: question.ID,
		Question:   *question,
	}
	if g.HasCelebrity {
		decoy, err := bank.RandomCelebrityAnswer(question)
		if err != nil {
			return err
		}
		round.CelebrityAnswer = decoy
	}
	g.Status = StatusSubmittingAnswers
	g.ReadyPlayers = g.ReadyPlayers[:0]
	g.Rounds = append(g.Rounds, round)
	return nil
}

// SubmitAnswer records a player's bluff on the current round. When the last
// distinct roster member submits, the game flips to SELECTING_ANSWERS.
func (g *Game) SubmitAnswer(player *Player, text string) error {
	if text == "" {
		return newInvalidAction("answer cannot be empty")
	}
	if !g.HasPlayer(player.ID) {
		return newInvalidAction("no such player in the game")
	}
	if g.Status != StatusSubmittingAnswers {
		return newInvalidAction("game is not accepting answers at present")
	}
	round, err := g.CurrentRound()
	if err != nil {
		return err
	}
	round.SubmitAnswer(player.ID, text)
	if round.AllAnswersSubmitted(len(g.Players)) {
		g.Status = StatusSelectingAnswers
	}
	return nil
}

// SelectAnswer records which answer a player believes is real and scores it:
// the correct answer bumps the selector's correct count; another player's
// bluff bumps the selector's got-psyched count and the author's
// psyched-others count; picking your own bluff or the celebrity decoy moves
// nothing. When the last roster member selects, the game either waits for
// readiness or, on the final round, ends.
func (g *Game) SelectAnswer(player *Player, text string) error {
	if !g.HasPlayer(player.ID) {
		return newInvalidAction("no such player in the game")
	}
	if g.Status != StatusSelectingAnswers {
		return newInvalidAction("game is not accepting selections at present")
	}
	round, err := g.CurrentRound()
	if err != nil {
		return err
	}
	if round.HasSelected(player.ID) {
		return newInvalidAction("player has already selected an answer this round")
	}
	author := round.AnswerAuthor(text)
	round.SelectAnswer(player.ID, text, author)
	if text == round.Question.CorrectAnswer {
		g.statDelta(player.ID).CorrectAnswerCount++
	} else if author != nil && *author != player.ID {
		g.statDelta(player.ID).GotPsychedCount++
		g.statDelta(*author).PsychedOthersCount++
	}
	if round.AllAnswersSelected(len(g.Players)) {
		if len(g.Rounds) < g.NumRounds {
			g.Status = StatusWaitingForReady
		} else {
			g.finish()
		}
	}
	return nil
}

// PlayerIsReady marks a player ready for the next round. Once the whole
// roster is ready the next round starts. If the round budget is already
// spent the game ends instead.
func (g *Game) PlayerIsReady(player *Player, bank QuestionSource) error {
	if !g.HasPlayer(player.ID) {
		return newInvalidAction("no such player in the game")
	}
	if g.Status != StatusWaitingForReady {
		return newInvalidAction("game is not waiting for players to be ready")
	}
	if !g.isReady(player.ID) {
		g.ReadyPlayers = append(g.ReadyPlayers, *player)
	}
	if len(g.Rounds) == g.NumRounds {
		g.finish()
		return nil
	}
	if len(g.ReadyPlayers) == len(g.Players) {
		return g.startNewRound(bank)
	}
	return nil
}

// PlayerIsNotReady withdraws a player's readiness.
func (g *Game) PlayerIsNotReady(player *Player) error {
	if !g.HasPlayer(player.ID) {
		return newInvalidAction("no such player in the game")
	}
	if g.Status != StatusWaitingForReady {
		return newInvalidAction("game is not waiting for players to be ready")
	}
	g.removeReady(player.ID)
	return nil
}

// End terminates the game on the leader's request.
func (g *Game) End(requester *Player) error {
	if g.Status == StatusEnded {
		return newInvalidAction("the game has already ended")
	}
	if requester.ID != g.LeaderID {
		return newInvalidAction("only the leader can end the game")
	}
	g.finish()
	return nil
}

// finish moves the game to ENDED, clears every roster member's back-reference,
// and folds each in-game delta into the lifetime stat. Guarded so a game that
// already ended is never aggregated twice.
func (g *Game) finish() {
	if g.Status == StatusEnded {
		return
	}
	g.Status = StatusEnded
	for i := range g.Players {
		player := &g.Players[i]
		if player.CurrentGameID != nil && *player.CurrentGameID == g.ID {
			player.CurrentGameID = nil
		}
		for j := range g.PlayerStats {
			if g.PlayerStats[j].PlayerID == player.ID {
				player.Stat.Add(&g.PlayerStats[j])
				break
			}
		}
	}
}

// CurrentRound returns the active round.
func (g *Game) CurrentRound() (*Round, error) {
	if len(g.Rounds) == 0 {
		return nil, newInvalidAction("game has not started yet")
	}
	return &g.Rounds[len(g.Rounds)-1], nil
}

// RoundData returns the read-only snapshot of the active round.
func (g *Game) RoundData() (*RoundData, error) {
	round, err := g.CurrentRound()
	if err != nil {
		return nil, err
	}
	return round.Data(), nil
}

func (g *Game) isReady(playerID uint) bool {
	for i := range g.ReadyPlayers {
		if g.ReadyPlayers[i].ID == playerID {
			return true
		}
	}
	return false
}

func (g *Game) removeReady(playerID uint) {
	for i := range g.ReadyPlayers {
		if g.ReadyPlayers[i].ID == playerID {
			g.ReadyPlayers = append(g.ReadyPlayers[:i], g.ReadyPlayers[i+1:]...)
			return
		}
	}
}

// statDelta returns the in-game delta for a player, creating it if absent.
func (g *Game) statDelta(playerID uint) *GameStat {
	for i := range g.PlayerStats {
		if g.PlayerStats[i].PlayerID == playerID {
			return &g.PlayerStats[i]
		}
	}
	g.PlayerStats = append(g.PlayerStats, GameStat{GameID: g.ID, PlayerID: playerID})
	return &g.PlayerStats[len(g.PlayerStats)-1]
}
