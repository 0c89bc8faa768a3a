package models

import (
	"time"

	"gorm.io/gorm"
)

type Question struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	GameModeID    uint           `json:"game_mode_id" gorm:"not null;index"`
	Prompt        string         `json:"prompt" gorm:"not null"`
	CorrectAnswer string         `json:"correct_answer" gorm:"not null"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	GameMode         GameMode          `json:"game_mode,omitempty"`
	CelebrityAnswers []CelebrityAnswer `json:"celebrity_answers,omitempty" gorm:"foreignKey:QuestionID"`
}

// CelebrityAnswer is a plausible-but-fake decoy injected into a round's
// answer pool when the game enables decoy mode.
type CelebrityAnswer struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	QuestionID uint           `json:"question_id" gorm:"not null;index"`
	Text       string         `json:"text" gorm:"not null"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}
