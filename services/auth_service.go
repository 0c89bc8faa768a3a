package services

import (
	"errors"
	"time"

	"psychparty/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	db        *gorm.DB
	jwtSecret string
}

func NewAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{db: db, jwtSecret: jwtSecret}
}

type RegisterRequest struct {
	Alias    string `json:"alias" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *AuthService) Register(req *RegisterRequest) (*models.Player, error) {
	var existing models.Player
	if err := s.db.Where("alias = ? OR email = ?", req.Alias, req.Email).First(&existing).Error; err == nil {
		return nil, errors.New("alias or email already taken")
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	player := models.Player{
		Alias:        req.Alias,
		Email:        req.Email,
		PasswordHash: hash,
		Stat:         models.Stat{},
	}
	if err := s.db.Create(&player).Error; err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *AuthService) Login(req *LoginRequest) (string, *models.Player, error) {
	var player models.Player
	if err := s.db.Preload("Stat").Where("email = ?", req.Email).First(&player).Error; err != nil {
		return "", nil, errors.New("invalid email or password")
	}
	if !checkPassword(player.PasswordHash, req.Password) {
		return "", nil, errors.New("invalid email or password")
	}

	token, err := s.generateToken(player.ID)
	if err != nil {
		return "", nil, err
	}
	return token, &player, nil
}

func (s *AuthService) GetProfile(playerID uint) (*models.Player, error) {
	var player models.Player
	err := s.db.Preload("Stat").First(&player, playerID).Error
	return &player, err
}

func (s *AuthService) generateToken(playerID uint) (string, error) {
	claims := jwt.MapClaims{
		"player_id": float64(playerID),
		"exp":       time.Now().Add(24 * time.Hour).Unix(),
		"iat":       time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
