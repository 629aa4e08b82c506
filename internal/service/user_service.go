package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/e-agenda/e-agenda-api/internal/models"
	appErrors "github.com/e-agenda/e-agenda-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	RevokeUserRefreshTokens(ctx context.Context, userID string) error
}

// UserService manages user access administration.
type UserService struct {
	repo   userRepository
	audit  auditRecorder
	logger *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(repo userRepository, audit auditRecorder, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, audit: audit, logger: logger}
}

// UpdateUserRequest carries the admin-editable fields.
type UpdateUserRequest struct {
	Role  *string `json:"role"`
	Setor *string `json:"setor"`
}

// List returns users ordered by name.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	users, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, nil
}

// Update changes a user's role and/or setor.
func (s *UserService) Update(ctx context.Context, id string, req UpdateUserRequest, actorID string, meta models.RequestMeta) (*models.User, error) {
	if req.Role != nil {
		switch models.UserRole(*req.Role) {
		case models.RoleAdmin, models.RoleViewer:
		default:
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	changed := map[string]interface{}{}
	if req.Role != nil {
		user.Role = models.UserRole(*req.Role)
		changed["role"] = *req.Role
	}
	if req.Setor != nil {
		user.Setor = models.Setor(*req.Setor)
		changed["setor"] = *req.Setor
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}

	s.recordAudit(ctx, actorID, models.AuditActionUpdate, id, changed, meta)

	return user, nil
}

// Delete revokes a user's access entirely. Admins cannot revoke themselves.
func (s *UserService) Delete(ctx context.Context, id string, actorID string, meta models.RequestMeta) error {
	if id == actorID {
		return appErrors.Clone(appErrors.ErrValidation, "cannot revoke your own access")
	}
	if err := s.repo.RevokeUserRefreshTokens(ctx, id); err != nil {
		s.logger.Warn("failed to revoke sessions before user delete", zap.Error(err))
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	s.recordAudit(ctx, actorID, models.AuditActionDelete, id, map[string]interface{}{}, meta)
	return nil
}

func (s *UserService) recordAudit(ctx context.Context, actorID, action, entityID string, fields map[string]interface{}, meta models.RequestMeta) {
	if s.audit == nil {
		return
	}
	snapshot, err := json.Marshal(fields)
	if err != nil {
		snapshot = []byte("{}")
	}
	if err := s.audit.Create(ctx, &models.AuditLog{
		UserID:        &actorID,
		Action:        action,
		EntityType:    models.EntityUser,
		EntityID:      &entityID,
		ChangedFields: snapshot,
		IPAddress:     meta.IP,
		UserAgent:     meta.UserAgent,
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("failed to record user audit log", zap.Error(err))
	}
}
