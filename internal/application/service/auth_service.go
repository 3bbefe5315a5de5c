package service

import (
	"context"

	"github.com/sangkips/mn-payments-api/internal/domain/entity"
	"github.com/sangkips/mn-payments-api/internal/domain/repository"
	"github.com/sangkips/mn-payments-api/pkg/apperror"
	"github.com/sangkips/mn-payments-api/pkg/utils"
)

// AuthService exchanges POS terminal credentials for API tokens.
type AuthService struct {
	terminalRepo repository.TerminalRepository
	jwtManager   *utils.JWTManager
}

// NewAuthService creates a new auth service
func NewAuthService(terminalRepo repository.TerminalRepository, jwtManager *utils.JWTManager) *AuthService {
	return &AuthService{
		terminalRepo: terminalRepo,
		jwtManager:   jwtManager,
	}
}

// LoginInput represents the terminal login input
type LoginInput struct {
	Code   string
	Secret string
}

// LoginOutput represents the login output
type LoginOutput struct {
	Terminal     *entity.PosTerminal
	AccessToken  string
	RefreshToken string
}

// Login authenticates a POS terminal and returns tokens
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	terminal, err := s.terminalRepo.GetByCode(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	if terminal == nil || !terminal.Active {
		return nil, apperror.NewAuthError("Invalid terminal credentials")
	}

	if !utils.CheckPasswordHash(input.Secret, terminal.SecretHash) {
		return nil, apperror.NewAuthError("Invalid terminal credentials")
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(terminal.ID, terminal.Code)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(terminal.ID)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		Terminal:     terminal,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginOutput, error) {
	terminalID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.NewAuthError("Invalid refresh token")
	}

	terminal, err := s.terminalRepo.GetByID(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	if terminal == nil || !terminal.Active {
		return nil, apperror.NewAuthError("Terminal is not active")
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(terminal.ID, terminal.Code)
	if err != nil {
		return nil, err
	}

	newRefreshToken, err := s.jwtManager.GenerateRefreshToken(terminal.ID)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		Terminal:     terminal,
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}
