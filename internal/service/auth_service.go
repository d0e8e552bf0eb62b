package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/grupo-sgp/erp-api/internal/auth"
	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/repository"
)

// AuthService authenticates users and issues access tokens
type AuthService struct {
	users  *repository.UserRepository
	tokens *auth.TokenService
	logger *zap.Logger
}

func NewAuthService(users *repository.UserRepository, tokens *auth.TokenService, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, logger: logger}
}

// Login verifies the credentials and returns a signed token response.
// Invalid email and invalid password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Burn a hash comparison anyway so response timing does not
			// reveal whether the account exists.
			_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOa3kM0t7sT3eZC1lW1u0VYt9eJt6bDm2"), []byte(req.Password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		s.logger.Warn("failed login attempt", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	token, err := s.tokens.IssueToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in",
		zap.String("userId", user.ID.String()),
		zap.String("role", string(user.Role)))

	return &domain.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		UserID:      user.ID,
		Role:        user.Role,
		FullName:    user.FullName,
		Email:       user.Email,
	}, nil
}
