package models

import (
	"time"
)

// Stat holds a player's lifetime counters across all finished games. It is
// created zeroed alongside the player and only ever grows, by folding in a
// per-game delta when a game ends.
type Stat struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	PlayerID           uint      `json:"player_id" gorm:"uniqueIndex;not null"`
	CorrectAnswerCount int       `json:"correct_answer_count" gorm:"not null;default:0"`
	PsychedOthersCount int       `json:"psyched_others_count" gorm:"not null;default:0"`
	GotPsychedCount    int       `json:"got_psyched_count" gorm:"not null;default:0"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// GameStat is one player's in-game delta: how they did in a single game.
// Folded into the lifetime Stat exactly once, when the game ends.
type GameStat struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	GameID             uint      `json:"game_id" gorm:"not null;index"`
	PlayerID           uint      `json:"player_id" gorm:"not null"`
	CorrectAnswerCount int       `json:"correct_answer_count" gorm:"not null;default:0"`
	PsychedOthersCount int       `json:"psyched_others_count" gorm:"not null;default:0"`
	GotPsychedCount    int       `json:"got_psyched_count" gorm:"not null;default:0"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Add folds a per-game delta into the lifetime counters.
func (s *Stat) Add(delta *GameStat) {
	s.CorrectAnswerCount += delta.CorrectAnswerCount
	s.PsychedOthersCount += delta.PsychedOthersCount
	s.GotPsychedCount += delta.GotPsychedCount
}
