package service

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"chat-agent-be/internal/dto"
	"chat-agent-be/internal/entity"
	"chat-agent-be/internal/pkg/logger"
	"chat-agent-be/internal/repository/contract"
)

// AuthService authenticates dashboard operators. Guests on the messaging
// channel never touch this path.
type AuthService struct {
	operators contract.OperatorRepository
	validate  *validator.Validate
	logger    logger.ILogger
}

func NewAuthService(operators contract.OperatorRepository, log logger.ILogger) *AuthService {
	return &AuthService{
		operators: operators,
		validate:  validator.New(),
		logger:    log,
	}
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.New("invalid credentials")
	}

	operator, err := s.operators.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if operator == nil {
		return nil, errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(operator.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid credentials")
	}

	claims := jwt.MapClaims{
		"operator_id": operator.Id.String(),
		"exp":         time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_secret"
	}
	signedToken, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, err
	}

	s.logger.Info("AuthService", "operator logged in", map[string]interface{}{
		"operator_id": operator.Id,
	})

	return &dto.LoginResponse{
		AccessToken: signedToken,
		OperatorId:  operator.Id.String(),
		FullName:    operator.FullName,
	}, nil
}

// CreateOperator registers a dashboard account. Used by the migrate command
// to seed the first operator.
func (s *AuthService) CreateOperator(ctx context.Context, email, password, fullName string) (*entity.Operator, error) {
	existing, err := s.operators.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("operator already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	operator := &entity.Operator{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
	}
	if err := s.operators.Create(ctx, operator); err != nil {
		return nil, err
	}
	return operator, nil
}
