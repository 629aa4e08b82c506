package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/e-agenda/e-agenda-api/internal/models"
	appErrors "github.com/e-agenda/e-agenda-api/pkg/errors"
)

type authRepoStub struct {
	user         *models.User
	refreshToken *models.RefreshToken
	createdToken *models.RefreshToken
	revokedID    string
}

func (s *authRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, sql.ErrNoRows
	}
	copied := *s.user
	return &copied, nil
}

func (s *authRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, sql.ErrNoRows
	}
	copied := *s.user
	return &copied, nil
}

func (s *authRepoStub) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (s *authRepoStub) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	s.createdToken = token
	return nil
}

func (s *authRepoStub) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if s.refreshToken == nil || s.refreshToken.Token != token {
		return nil, sql.ErrNoRows
	}
	copied := *s.refreshToken
	return &copied, nil
}

func (s *authRepoStub) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	s.revokedID = id
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "e-agenda-api",
	}
}

func activeUser(t *testing.T) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "u1",
		Email:        "admin@example.com",
		PasswordHash: string(hash),
		Name:         "Admin",
		Role:         models.RoleAdmin,
		Setor:        models.SetorPresidencia,
		Active:       true,
	}
}

func TestLoginOK(t *testing.T) {
	repo := &authRepoStub{user: activeUser(t)}
	audit := &auditStub{}
	service := NewAuthService(repo, audit, nil, nil, testAuthConfig())

	result, err := service.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "u1", result.User.ID)
	require.NotNil(t, repo.createdToken)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionLogin, audit.entries[0].Action)

	claims, err := service.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	service := NewAuthService(&authRepoStub{user: activeUser(t)}, nil, nil, nil, testAuthConfig())

	_, err := service.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	user := activeUser(t)
	user.Active = false
	service := NewAuthService(&authRepoStub{user: user}, nil, nil, nil, testAuthConfig())

	_, err := service.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	repo := &authRepoStub{
		user: activeUser(t),
		refreshToken: &models.RefreshToken{
			ID:        "rt1",
			UserID:    "u1",
			Token:     "old-token",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	service := NewAuthService(repo, nil, nil, nil, testAuthConfig())

	result, err := service.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEqual(t, "old-token", result.RefreshToken)
	assert.Equal(t, "rt1", repo.revokedID)
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	repo := &authRepoStub{
		user: activeUser(t),
		refreshToken: &models.RefreshToken{
			ID:        "rt1",
			UserID:    "u1",
			Token:     "old-token",
			ExpiresAt: time.Now().Add(-time.Hour),
		},
	}
	service := NewAuthService(repo, nil, nil, nil, testAuthConfig())

	_, err := service.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestLogoutRejectsForeignToken(t *testing.T) {
	repo := &authRepoStub{
		refreshToken: &models.RefreshToken{ID: "rt1", UserID: "u2", Token: "tok", ExpiresAt: time.Now().Add(time.Hour)},
	}
	service := NewAuthService(repo, nil, nil, nil, testAuthConfig())

	err := service.Logout(context.Background(), "tok", "u1", models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.revokedID)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	service := NewAuthService(&authRepoStub{}, nil, nil, nil, testAuthConfig())

	_, err := service.ValidateToken("not-a-jwt")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
