package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/e-agenda/e-agenda-api/internal/models"
	"github.com/e-agenda/e-agenda-api/internal/service"
	appErrors "github.com/e-agenda/e-agenda-api/pkg/errors"
	"github.com/e-agenda/e-agenda-api/pkg/response"
)

type sharedCalendarService interface {
	List(ctx context.Context) ([]models.SharedCalendar, error)
	Create(ctx context.Context, req service.CreateShareRequest, actorID string, meta models.RequestMeta) (*service.CreatedShare, error)
	Resolve(ctx context.Context, token string, start, end *time.Time) (*service.SharedWindow, error)
}

// SharedCalendarHandler exposes share-link management plus the public
// token-consumption endpoint.
type SharedCalendarHandler struct {
	service sharedCalendarService
}

// NewSharedCalendarHandler constructs the handler.
func NewSharedCalendarHandler(svc sharedCalendarService) *SharedCalendarHandler {
	return &SharedCalendarHandler{service: svc}
}

// List godoc
// @Summary List share links
// @Tags Shared
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /shared [get]
func (h *SharedCalendarHandler) List(c *gin.Context) {
	shares, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, shares, nil)
}

// Create godoc
// @Summary Create share link
// @Tags Shared
// @Accept json
// @Produce json
// @Param payload body service.CreateShareRequest true "Share payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /shared [post]
func (h *SharedCalendarHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	created, err := h.service.Create(c.Request.Context(), req, claims.UserID, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, created)
}

// Resolve godoc
// @Summary Consume a share token
// @Description Public endpoint; no authentication. Returns 404 for unknown
// @Description tokens and 410 for expired ones.
// @Tags Shared
// @Produce json
// @Param token path string true "Share token"
// @Param start query string false "Window start (RFC3339)"
// @Param end query string false "Window end (RFC3339)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /shared/{token} [get]
func (h *SharedCalendarHandler) Resolve(c *gin.Context) {
	start, err := parseTimeQuery(c, "start")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid start"))
		return
	}
	end, err := parseTimeQuery(c, "end")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid end"))
		return
	}

	window, err := h.service.Resolve(c.Request.Context(), c.Param("token"), start, end)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, window, nil)
}
