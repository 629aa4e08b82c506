package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/e-agenda/e-agenda-api/internal/models"
)

// EventRepository persists agenda events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs an event repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = "id, title, description, start_time, end_time, location, priority, category, created_by, setores_envolvidos, google_calendar_event_id, created_at, updated_at"

// List returns events matching the filter ordered by start time.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	base := "FROM events"
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Start != nil {
		where = append(where, fmt.Sprintf("start_time >= $%d", len(args)+1))
		args = append(args, *filter.Start)
	}
	if filter.End != nil {
		where = append(where, fmt.Sprintf("end_time <= $%d", len(args)+1))
		args = append(args, *filter.End)
	}
	if filter.Setor != "" {
		where = append(where, fmt.Sprintf("$%d = ANY(setores_envolvidos)", len(args)+1))
		args = append(args, filter.Setor)
	}
	if filter.Priority != "" {
		where = append(where, fmt.Sprintf("priority = $%d", len(args)+1))
		args = append(args, filter.Priority)
	}
	if filter.Category != "" {
		where = append(where, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := (page - 1) * limit

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY start_time ASC LIMIT %d OFFSET %d",
		eventColumns, base, whereClause, limit, offset)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}
	return events, total, nil
}

// GetByID fetches a single event.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events WHERE id = $1", eventColumns)
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// ListOverlapping returns events whose interval strictly overlaps
// [start, end). Touching endpoints do not overlap.
func (r *EventRepository) ListOverlapping(ctx context.Context, start, end time.Time, excludeID *string) ([]models.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events WHERE start_time < $1 AND end_time > $2", eventColumns)
	args := []interface{}{end, start}
	if excludeID != nil && *excludeID != "" {
		query += " AND id <> $3"
		args = append(args, *excludeID)
	}
	query += " ORDER BY start_time ASC"
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("list overlapping events: %w", err)
	}
	return events, nil
}

// Create inserts an event.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now
	query := `INSERT INTO events (id, title, description, start_time, end_time, location, priority, category, created_by, setores_envolvidos, google_calendar_event_id, created_at, updated_at)
VALUES (:id, :title, :description, :start_time, :end_time, :location, :priority, :category, :created_by, :setores_envolvidos, :google_calendar_event_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Update persists all mutable fields of an event.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now().UTC()
	query := `UPDATE events SET title = :title, description = :description, start_time = :start_time, end_time = :end_time,
location = :location, priority = :priority, category = :category, setores_envolvidos = :setores_envolvidos,
google_calendar_event_id = :google_calendar_event_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

// Delete removes an event.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
