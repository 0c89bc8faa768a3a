package models

import (
	"time"

	"gorm.io/gorm"
)

type Player struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Alias        string `json:"alias" gorm:"uniqueIndex;not null"`
	Email        string `json:"-" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"not null"`
	// CurrentGameID points at the one in-progress game the player is a
	// member of, or is nil. Resolved through the game directory, never a
	// live object reference.
	CurrentGameID *uint          `json:"current_game_id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Stat Stat `json:"stat,omitempty" gorm:"foreignKey:PlayerID"`
}
