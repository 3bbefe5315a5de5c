package service

import (
	"context"
	"testing"
	"time"

	"github.com/sangkips/mn-payments-api/internal/domain/entity"
	infraRepo "github.com/sangkips/mn-payments-api/internal/infrastructure/repository"
	"github.com/sangkips/mn-payments-api/pkg/apperror"
	"github.com/sangkips/mn-payments-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (*AuthService, *entity.PosTerminal) {
	t.Helper()
	db := setupTestDB(t)
	repo := infraRepo.NewTerminalRepository(db)

	hash, err := utils.HashPassword("terminal-secret")
	require.NoError(t, err)
	terminal := &entity.PosTerminal{
		Code:       "POS-001",
		Name:       "Front desk",
		SecretHash: hash,
		Active:     true,
	}
	require.NoError(t, repo.Create(context.Background(), terminal))

	jwtManager := utils.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	return NewAuthService(repo, jwtManager), terminal
}

func TestLoginIssuesTerminalToken(t *testing.T) {
	svc, terminal := newAuthFixture(t)

	out, err := svc.Login(context.Background(), &LoginInput{Code: "POS-001", Secret: "terminal-secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.AccessToken)
	assert.NotEmpty(t, out.RefreshToken)
	assert.Equal(t, terminal.ID, out.Terminal.ID)

	claims, err := utils.NewJWTManager("test-secret", time.Hour, 24*time.Hour).ValidateAccessToken(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, terminal.ID, claims.TerminalID)
	assert.Equal(t, "POS-001", claims.TerminalCode)
}

func TestLoginRejectsWrongSecret(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), &LoginInput{Code: "POS-001", Secret: "wrong"})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindAuth))
}

func TestLoginRejectsUnknownTerminal(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), &LoginInput{Code: "POS-999", Secret: "terminal-secret"})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindAuth))
}

func TestRefreshRotatesTokens(t *testing.T) {
	svc, _ := newAuthFixture(t)

	out, err := svc.Login(context.Background(), &LoginInput{Code: "POS-001", Secret: "terminal-secret"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), out.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
}
