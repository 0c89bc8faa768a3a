package services

import (
	"errors"

	"psychparty/models"

	"gorm.io/gorm"
)

// QuestionService is the question bank: random draws for new rounds plus
// provisioning of game modes and questions.
type QuestionService struct {
	db *gorm.DB
}

func NewQuestionService(db *gorm.DB) *QuestionService {
	return &QuestionService{db: db}
}

type CreateGameModeRequest struct {
	Name        string `json:"name" binding:"required"`
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
}

type CreateQuestionRequest struct {
	GameModeID       uint     `json:"game_mode_id" binding:"required"`
	Prompt           string   `json:"prompt" binding:"required"`
	CorrectAnswer    string   `json:"correct_answer" binding:"required"`
	CelebrityAnswers []string `json:"celebrity_answers"`
}

// RandomQuestion draws a uniformly random question for the mode.
func (s *QuestionService) RandomQuestion(gameModeID uint) (*models.Question, error) {
	var question models.Question
	err := s.db.Where("game_mode_id = ?", gameModeID).
		Order("RANDOM()").
		First(&question).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNoQuestions
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// RandomCelebrityAnswer draws a decoy for the question, falling back to any
// decoy from the same mode when the question has none of its own.
func (s *QuestionService) RandomCelebrityAnswer(question *models.Question) (string, error) {
	var decoy models.CelebrityAnswer
	err := s.db.Where("question_id = ?", question.ID).
		Order("RANDOM()").
		First(&decoy).Error
	if err == nil {
		return decoy.Text, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	err = s.db.Joins("JOIN questions ON questions.id = celebrity_answers.question_id").
		Where("questions.game_mode_id = ? AND celebrity_answers.question_id <> ?",
			question.GameModeID, question.ID).
		Order("RANDOM()").
		First(&decoy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", models.ErrNoCelebrityAnswers
	}
	if err != nil {
		return "", err
	}
	return decoy.Text, nil
}

func (s *QuestionService) ListGameModes() ([]models.GameMode, error) {
	var modes []models.GameMode
	err := s.db.Order("name").Find(&modes).Error
	return modes, err
}

func (s *QuestionService) GetGameModeByID(id uint) (*models.GameMode, error) {
	var mode models.GameMode
	err := s.db.First(&mode, id).Error
	return &mode, err
}

func (s *QuestionService) CreateGameMode(req *CreateGameModeRequest) (*models.GameMode, error) {
	mode := models.GameMode{
		Name:        req.Name,
		ImageURL:    req.ImageURL,
		Description: req.Description,
	}
	if err := s.db.Create(&mode).Error; err != nil {
		return nil, err
	}
	return &mode, nil
}

func (s *QuestionService) CreateQuestion(req *CreateQuestionRequest) (*models.Question, error) {
	// Mode must exist before we attach questions to it
	var mode models.GameMode
	if err := s.db.First(&mode, req.GameModeID).Error; err != nil {
		return nil, errors.New("game mode not found")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	question := models.Question{
		GameModeID:    req.GameModeID,
		Prompt:        req.Prompt,
		CorrectAnswer: req.CorrectAnswer,
	}
	if err := tx.Create(&question).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, text := range req.CelebrityAnswers {
		decoy := models.CelebrityAnswer{
			QuestionID: question.ID,
			Text:       text,
		}
		if err := tx.Create(&decoy).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	var created models.Question
	err := s.db.Preload("CelebrityAnswers").First(&created, question.ID).Error
	return &created, err
}
