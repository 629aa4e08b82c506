package service

import (
	"context"

	"github.com/e-agenda/e-agenda-api/internal/models"
	appErrors "github.com/e-agenda/e-agenda-api/pkg/errors"
)

type auditLister interface {
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, int, error)
}

// AuditService exposes the audit trail to administrators.
type AuditService struct {
	repo auditLister
}

// NewAuditService constructs the service.
func NewAuditService(repo auditLister) *AuditService {
	return &AuditService{repo: repo}
}

// List returns audit records matching the filter, newest first.
func (s *AuditService) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	logs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit logs")
	}
	pagination := &models.Pagination{Page: filter.Page, Limit: filter.Limit, TotalCount: total}
	return logs, pagination, nil
}
