package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/e-agenda/e-agenda-api/internal/models"
)

// SharedCalendarRepository persists share links.
type SharedCalendarRepository struct {
	db *sqlx.DB
}

// NewSharedCalendarRepository constructs a shared calendar repository.
func NewSharedCalendarRepository(db *sqlx.DB) *SharedCalendarRepository {
	return &SharedCalendarRepository{db: db}
}

const sharedColumns = "id, name, description, share_type, share_token, shared_with, expires_at, created_by, created_at"

// List returns share links, newest first.
func (r *SharedCalendarRepository) List(ctx context.Context) ([]models.SharedCalendar, error) {
	query := fmt.Sprintf("SELECT %s FROM shared_calendars ORDER BY created_at DESC", sharedColumns)
	var shares []models.SharedCalendar
	if err := r.db.SelectContext(ctx, &shares, query); err != nil {
		return nil, fmt.Errorf("list shared calendars: %w", err)
	}
	return shares, nil
}

// FindByToken fetches a share link by its opaque token.
func (r *SharedCalendarRepository) FindByToken(ctx context.Context, token string) (*models.SharedCalendar, error) {
	query := fmt.Sprintf("SELECT %s FROM shared_calendars WHERE share_token = $1 LIMIT 1", sharedColumns)
	var shared models.SharedCalendar
	if err := r.db.GetContext(ctx, &shared, query, token); err != nil {
		return nil, err
	}
	return &shared, nil
}

// Create inserts a share link. Share links are immutable once created.
func (r *SharedCalendarRepository) Create(ctx context.Context, shared *models.SharedCalendar) error {
	if shared.ID == "" {
		shared.ID = uuid.NewString()
	}
	if shared.CreatedAt.IsZero() {
		shared.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO shared_calendars (id, name, description, share_type, share_token, shared_with, expires_at, created_by, created_at)
VALUES (:id, :name, :description, :share_type, :share_token, :shared_with, :expires_at, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, shared); err != nil {
		return fmt.Errorf("create shared calendar: %w", err)
	}
	return nil
}
