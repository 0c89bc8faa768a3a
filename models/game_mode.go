package models

import (
	"time"

	"gorm.io/gorm"
)

// GameMode is a named category of questions, e.g. "IS THIS A FACT".
// Reference data: provisioned once, never mutated by gameplay.
type GameMode struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"uniqueIndex;not null"`
	ImageURL    string         `json:"image_url"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:GameModeID"`
}
