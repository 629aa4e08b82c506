package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/e-agenda/e-agenda-api/internal/models"
	appErrors "github.com/e-agenda/e-agenda-api/pkg/errors"
)

type eventRepository interface {
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error)
	GetByID(ctx context.Context, id string) (*models.Event, error)
	ListOverlapping(ctx context.Context, start, end time.Time, excludeID *string) ([]models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
}

type auditRecorder interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

type windowInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// EventService manages agenda events and conflict detection.
type EventService struct {
	repo      eventRepository
	audit     auditRecorder
	cache     windowInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEventService constructs the service. The cache invalidator, when
// present, drops cached share windows after every event mutation.
func NewEventService(repo eventRepository, audit auditRecorder, cache windowInvalidator, validate *validator.Validate, logger *zap.Logger) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{repo: repo, audit: audit, cache: cache, validator: validate, logger: logger}
}

// CreateEventRequest describes the create payload.
type CreateEventRequest struct {
	Title             string     `json:"title" validate:"required"`
	Description       string     `json:"description"`
	StartTime         *time.Time `json:"start_time" validate:"required"`
	EndTime           *time.Time `json:"end_time" validate:"required"`
	Location          string     `json:"location"`
	Priority          string     `json:"priority"`
	Category          string     `json:"category"`
	SetoresEnvolvidos []string   `json:"setores_envolvidos"`
}

// UpdateEventRequest describes the partial-update payload. Only non-nil
// fields are applied.
type UpdateEventRequest struct {
	Title             *string    `json:"title"`
	Description       *string    `json:"description"`
	StartTime         *time.Time `json:"start_time"`
	EndTime           *time.Time `json:"end_time"`
	Location          *string    `json:"location"`
	Priority          *string    `json:"priority"`
	Category          *string    `json:"category"`
	SetoresEnvolvidos *[]string  `json:"setores_envolvidos"`
}

// EventWithConflicts pairs a saved event with the advisory conflicts found at
// save time. Conflicts never block the write.
type EventWithConflicts struct {
	Event     *models.Event         `json:"event"`
	Conflicts []models.ConflictInfo `json:"conflicts,omitempty"`
}

// List returns events matching the filter.
func (s *EventService) List(ctx context.Context, filter models.EventFilter) ([]models.Event, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	pagination := &models.Pagination{Page: filter.Page, Limit: filter.Limit, TotalCount: total}
	return events, pagination, nil
}

// Get returns an event by id.
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get event")
	}
	return event, nil
}

// FindConflicts returns every stored event whose interval strictly overlaps
// [start, end), excluding excludeID when provided, along with the overlap
// window of each. A repository failure degrades to an empty result with
// degraded=true: callers must not read an empty list as proof of absence.
func (s *EventService) FindConflicts(ctx context.Context, start, end time.Time, excludeID *string) ([]models.ConflictInfo, bool) {
	events, err := s.repo.ListOverlapping(ctx, start, end, excludeID)
	if err != nil {
		s.logger.Warn("conflict lookup degraded", zap.Error(err))
		return nil, true
	}
	conflicts := make([]models.ConflictInfo, 0, len(events))
	for _, event := range events {
		overlapStart := event.StartTime
		if start.After(overlapStart) {
			overlapStart = start
		}
		overlapEnd := event.EndTime
		if end.Before(overlapEnd) {
			overlapEnd = end
		}
		conflicts = append(conflicts, models.ConflictInfo{
			Event:        event,
			OverlapStart: overlapStart,
			OverlapEnd:   overlapEnd,
		})
	}
	return conflicts, false
}

// Create validates and saves a new event. Overlapping events are reported as
// advisory conflicts alongside the saved event; the conflict check and the
// insert are not atomic, so two concurrent creates can each see zero
// conflicts. That gap is accepted.
func (s *EventService) Create(ctx context.Context, req CreateEventRequest, actorID string, meta models.RequestMeta) (*EventWithConflicts, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "title, start_time and end_time are required")
	}
	if !req.StartTime.Before(*req.EndTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_time must be before end_time")
	}

	priority := models.EventPriority(req.Priority)
	if req.Priority == "" {
		priority = models.PriorityMedium
	} else if !models.ValidPriority(priority) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown priority")
	}
	category := models.EventCategory(req.Category)
	if req.Category == "" {
		category = models.CategoryOutro
	} else if !models.ValidCategory(category) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown category")
	}

	conflicts, degraded := s.FindConflicts(ctx, *req.StartTime, *req.EndTime, nil)
	if degraded {
		s.logger.Warn("saving event without conflict check", zap.String("title", req.Title))
	}

	event := &models.Event{
		Title:             req.Title,
		Description:       req.Description,
		StartTime:         *req.StartTime,
		EndTime:           *req.EndTime,
		Location:          req.Location,
		Priority:          priority,
		Category:          category,
		CreatedBy:         actorID,
		SetoresEnvolvidos: req.SetoresEnvolvidos,
	}
	if event.SetoresEnvolvidos == nil {
		event.SetoresEnvolvidos = []string{}
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}

	s.invalidateWindows(ctx)
	s.recordAudit(ctx, actorID, models.AuditActionCreate, event.ID, map[string]interface{}{
		"title":      event.Title,
		"start_time": event.StartTime,
		"end_time":   event.EndTime,
	}, meta)

	return &EventWithConflicts{Event: event, Conflicts: conflicts}, nil
}

// Update applies the supplied fields to an existing event. When both interval
// bounds are supplied the pair is re-validated and conflicts are recomputed
// excluding the event itself.
func (s *EventService) Update(ctx context.Context, id string, req UpdateEventRequest, actorID string, meta models.RequestMeta) (*EventWithConflicts, error) {
	if req.StartTime != nil && req.EndTime != nil && !req.StartTime.Before(*req.EndTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_time must be before end_time")
	}
	if req.Priority != nil && !models.ValidPriority(models.EventPriority(*req.Priority)) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown priority")
	}
	if req.Category != nil && !models.ValidCategory(models.EventCategory(*req.Category)) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown category")
	}

	var conflicts []models.ConflictInfo
	if req.StartTime != nil && req.EndTime != nil {
		conflicts, _ = s.FindConflicts(ctx, *req.StartTime, *req.EndTime, &id)
	}

	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}

	changed := map[string]interface{}{}
	if req.Title != nil {
		event.Title = *req.Title
		changed["title"] = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
		changed["description"] = *req.Description
	}
	if req.StartTime != nil {
		event.StartTime = *req.StartTime
		changed["start_time"] = *req.StartTime
	}
	if req.EndTime != nil {
		event.EndTime = *req.EndTime
		changed["end_time"] = *req.EndTime
	}
	if req.Location != nil {
		event.Location = *req.Location
		changed["location"] = *req.Location
	}
	if req.Priority != nil {
		event.Priority = models.EventPriority(*req.Priority)
		changed["priority"] = *req.Priority
	}
	if req.Category != nil {
		event.Category = models.EventCategory(*req.Category)
		changed["category"] = *req.Category
	}
	if req.SetoresEnvolvidos != nil {
		event.SetoresEnvolvidos = *req.SetoresEnvolvidos
		changed["setores_envolvidos"] = *req.SetoresEnvolvidos
	}

	if err := s.repo.Update(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}

	s.invalidateWindows(ctx)
	s.recordAudit(ctx, actorID, models.AuditActionUpdate, id, changed, meta)

	return &EventWithConflicts{Event: event, Conflicts: conflicts}, nil
}

// Delete removes an event by id.
func (s *EventService) Delete(ctx context.Context, id string, actorID string, meta models.RequestMeta) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	s.invalidateWindows(ctx)
	s.recordAudit(ctx, actorID, models.AuditActionDelete, id, map[string]interface{}{}, meta)
	return nil
}

// invalidateWindows drops every cached share window after a mutation so
// public share links never serve deleted or stale events for a full TTL.
func (s *EventService) invalidateWindows(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, sharedWindowKeyPrefix+"*"); err != nil {
		s.logger.Warn("failed to invalidate shared windows", zap.Error(err))
	}
}

func (s *EventService) recordAudit(ctx context.Context, actorID, action, entityID string, fields map[string]interface{}, meta models.RequestMeta) {
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
		EntityType:    models.EntityEvent,
		EntityID:      &entityID,
		ChangedFields: snapshot,
		IPAddress:     meta.IP,
		UserAgent:     meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record event audit log", zap.Error(err))
	}
}
