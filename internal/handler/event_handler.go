package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/e-agenda/e-agenda-api/internal/models"
	"github.com/e-agenda/e-agenda-api/internal/service"
	appErrors "github.com/e-agenda/e-agenda-api/pkg/errors"
	"github.com/e-agenda/e-agenda-api/pkg/response"
)

type eventService interface {
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Event, error)
	FindConflicts(ctx context.Context, start, end time.Time, excludeID *string) ([]models.ConflictInfo, bool)
	Create(ctx context.Context, req service.CreateEventRequest, actorID string, meta models.RequestMeta) (*service.EventWithConflicts, error)
	Update(ctx context.Context, id string, req service.UpdateEventRequest, actorID string, meta models.RequestMeta) (*service.EventWithConflicts, error)
	Delete(ctx context.Context, id string, actorID string, meta models.RequestMeta) error
}

// EventHandler wires the event service to HTTP routes.
type EventHandler struct {
	service eventService
}

// NewEventHandler constructs the handler.
func NewEventHandler(svc eventService) *EventHandler {
	return &EventHandler{service: svc}
}

// List godoc
// @Summary List events
// @Tags Events
// @Produce json
// @Param start query string false "Window start (RFC3339)"
// @Param end query string false "Window end (RFC3339)"
// @Param setor query string false "Involved setor filter"
// @Param priority query string false "Priority filter"
// @Param category query string false "Category filter"
// @Param search query string false "Title/description search"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	filter := models.EventFilter{
		Setor:    c.Query("setor"),
		Priority: c.Query("priority"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}
	var err error
	if filter.Start, err = parseTimeQuery(c, "start"); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid start"))
		return
	}
	if filter.End, err = parseTimeQuery(c, "end"); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid end"))
		return
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.Limit = limit
	}

	events, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, events, pagination)
}

// Get godoc
// @Summary Get event
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, event, nil)
}

// Conflicts godoc
// @Summary Check interval conflicts
// @Description Returns events overlapping the candidate interval. The edit
// @Description form polls this endpoint while the user types.
// @Tags Events
// @Produce json
// @Param start_time query string true "Candidate start (RFC3339)"
// @Param end_time query string true "Candidate end (RFC3339)"
// @Param exclude_id query string false "Event ID to exclude"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /events/conflicts [get]
func (h *EventHandler) Conflicts(c *gin.Context) {
	start, err := time.Parse(time.RFC3339, c.Query("start_time"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid start_time"))
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end_time"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid end_time"))
		return
	}
	if !start.Before(end) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "start_time must be before end_time"))
		return
	}

	var excludeID *string
	if raw := c.Query("exclude_id"); raw != "" {
		excludeID = &raw
	}

	conflicts, degraded := h.service.FindConflicts(c.Request.Context(), start, end, excludeID)
	response.JSON(c, http.StatusOK, gin.H{"conflicts": conflicts, "degraded": degraded}, nil)
}

// Create godoc
// @Summary Create event
// @Description Saves the event and reports overlapping events as advisory
// @Description conflicts. Conflicts never reject the save.
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body service.CreateEventRequest true "Create payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.service.Create(c.Request.Context(), req, claims.UserID, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// Update godoc
// @Summary Update event
// @Description Partial update; only supplied fields change.
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body service.UpdateEventRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /events/{id} [put]
func (h *EventHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.service.Update(c.Request.Context(), c.Param("id"), req, claims.UserID, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Delete event
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 204 {object} response.Envelope
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claims.UserID, requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

func parseTimeQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}
