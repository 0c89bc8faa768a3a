package models

import (
	"time"

	"gorm.io/gorm"
)

// PlayerAnswer is one player's bluff answer for a round.
type PlayerAnswer struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	RoundID   uint      `json:"round_id" gorm:"not null;index"`
	PlayerID  uint      `json:"player_id" gorm:"not null"`
	Text      string    `json:"text" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AnswerSelection records which answer a player picked as the real one.
// AuthorID is the player whose bluff was picked, or nil when the pick was
// the correct answer or the celebrity decoy.
type AnswerSelection struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	RoundID   uint      `json:"round_id" gorm:"not null;index"`
	PlayerID  uint      `json:"player_id" gorm:"not null"`
	Text      string    `json:"text" gorm:"not null"`
	AuthorID  *uint     `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Round is one question cycle within a game. The owning Game decides when
// submissions and selections are legal; the round only keeps the books.
type Round struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	GameID          uint           `json:"game_id" gorm:"not null;index"`
	Number          int            `json:"number" gorm:"not null"`
	QuestionID      uint           `json:"question_id" gorm:"not null"`
	CelebrityAnswer string         `json:"celebrity_answer"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Question   Question          `json:"question,omitempty"`
	Answers    []PlayerAnswer    `json:"answers,omitempty" gorm:"foreignKey:RoundID"`
	Selections []AnswerSelection `json:"selections,omitempty" gorm:"foreignKey:RoundID"`
}

// SubmitAnswer records a player's bluff. A resubmission by the same player
// overwrites the earlier text, so Answers always holds one entry per
// distinct submitter.
func (r *Round) SubmitAnswer(playerID uint, text string) {
	for i := range r.Answers {
		if r.Answers[i].PlayerID == playerID {
			r.Answers[i].Text = text
			return
		}
	}
	r.Answers = append(r.Answers, PlayerAnswer{
		RoundID:  r.ID,
		PlayerID: playerID,
		Text:     text,
	})
}

// AllAnswersSubmitted reports whether every roster member has submitted.
func (r *Round) AllAnswersSubmitted(rosterSize int) bool {
	return len(r.Answers) >= rosterSize
}

// AnswerAuthor returns the ID of the player who submitted the given bluff
// text, or nil if no submitted answer matches.
func (r *Round) AnswerAuthor(text string) *uint {
	for i := range r.Answers {
		if r.Answers[i].Text == text {
			author := r.Answers[i].PlayerID
			return &author
		}
	}
	return nil
}

// HasSelected reports whether the player already picked an answer this round.
func (r *Round) HasSelected(playerID uint) bool {
	for i := range r.Selections {
		if r.Selections[i].PlayerID == playerID {
			return true
		}
	}
	return false
}

// SelectAnswer records a player's pick.
func (r *Round) SelectAnswer(playerID uint, text string, authorID *uint) {
	r.Selections = append(r.Selections, AnswerSelection{
		RoundID:  r.ID,
		PlayerID: playerID,
		Text:     text,
		AuthorID: authorID,
	})
}

// AllAnswersSelected reports whether every roster member has picked.
func (r *Round) AllAnswersSelected(rosterSize int) bool {
	return len(r.Selections) >= rosterSize
}

// RoundData is the read-only projection of a round handed to the interface
// layer. The correct answer is withheld while the round is still live; the
// service decides when to include it.
type RoundData struct {
	Number          int             `json:"number"`
	Prompt          string          `json:"prompt"`
	CelebrityAnswer string          `json:"celebrity_answer,omitempty"`
	Answers         []AnswerData    `json:"answers"`
	Selections      []SelectionData `json:"selections"`
}

type AnswerData struct {
	PlayerID uint   `json:"player_id"`
	Text     string `json:"text"`
}

type SelectionData struct {
	PlayerID uint   `json:"player_id"`
	Text     string `json:"text"`
	AuthorID *uint  `json:"author_id,omitempty"`
}

// Data assembles the snapshot. It reflects exactly the submissions and
// selections recorded so far.
func (r *Round) Data() *RoundData {
	data := &RoundData{
		Number:          r.Number,
		Prompt:          r.Question.Prompt,
		CelebrityAnswer: r.CelebrityAnswer,
		Answers:         make([]AnswerData, 0, len(r.Answers)),
		Selections:      make([]SelectionData, 0, len(r.Selections)),
	}
	for i := range r.Answers {
		data.Answers = append(data.Answers, AnswerData{
			PlayerID: r.Answers[i].PlayerID,
			Text:     r.Answers[i].Text,
		})
	}
	for i := range r.Selections {
		data.Selections = append(data.Selections, SelectionData{
			PlayerID: r.Selections[i].PlayerID,
			Text:     r.Selections[i].Text,
			AuthorID: r.Selections[i].AuthorID,
		})
	}
	return data
}
