package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e-agenda/e-agenda-api/internal/models"
	appErrors "github.com/e-agenda/e-agenda-api/pkg/errors"
)

type userRepoStub struct {
	users     []models.User
	stored    *models.User
	updated   *models.User
	deletedID string
	revokedID string
	revokeErr error
}

func (s *userRepoStub) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	return s.users, nil
}

func (s *userRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if s.stored == nil {
		return nil, sql.ErrNoRows
	}
	copied := *s.stored
	return &copied, nil
}

func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	s.updated = user
	return nil
}

func (s *userRepoStub) Delete(ctx context.Context, id string) error {
	s.deletedID = id
	return nil
}

func (s *userRepoStub) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	s.revokedID = userID
	return s.revokeErr
}

func TestUpdateUserRole(t *testing.T) {
	repo := &userRepoStub{stored: &models.User{ID: "u2", Role: models.RoleViewer}}
	audit := &auditStub{}
	service := NewUserService(repo, audit, nil)

	role := string(models.RoleAdmin)
	user, err := service.Update(context.Background(), "u2", UpdateUserRequest{Role: &role}, "u1", models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	require.Len(t, audit.entries, 1)
	assert.JSONEq(t, `{"role":"ADMIN"}`, string(audit.entries[0].ChangedFields))
}

func TestUpdateUserRejectsUnknownRole(t *testing.T) {
	service := NewUserService(&userRepoStub{}, nil, nil)

	role := "SUPERUSER"
	_, err := service.Update(context.Background(), "u2", UpdateUserRequest{Role: &role}, "u1", models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDeleteUserCannotRevokeSelf(t *testing.T) {
	repo := &userRepoStub{}
	service := NewUserService(repo, nil, nil)

	err := service.Delete(context.Background(), "u1", "u1", models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deletedID)
}

func TestDeleteUserRevokesSessionsFirst(t *testing.T) {
	repo := &userRepoStub{}
	audit := &auditStub{}
	service := NewUserService(repo, audit, nil)

	require.NoError(t, service.Delete(context.Background(), "u2", "u1", models.RequestMeta{}))
	assert.Equal(t, "u2", repo.revokedID)
	assert.Equal(t, "u2", repo.deletedID)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionDelete, audit.entries[0].Action)
}

func TestDeleteUserProceedsWhenRevokeFails(t *testing.T) {
	repo := &userRepoStub{revokeErr: errors.New("redis down")}
	service := NewUserService(repo, nil, nil)

	require.NoError(t, service.Delete(context.Background(), "u2", "u1", models.RequestMeta{}))
	assert.Equal(t, "u2", repo.deletedID)
}
