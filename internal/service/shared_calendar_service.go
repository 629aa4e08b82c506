package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/e-agenda/e-agenda-api/internal/models"
	appErrors "github.com/e-agenda/e-agenda-api/pkg/errors"
)

const (
	shareTokenLength   = 32
	shareTokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// sharedWindowKeyPrefix namespaces cached share windows; event mutations
	// invalidate the whole namespace.
	sharedWindowKeyPrefix = "shared:"
)

type sharedCalendarRepository interface {
	List(ctx context.Context) ([]models.SharedCalendar, error)
	FindByToken(ctx context.Context, token string) (*models.SharedCalendar, error)
	Create(ctx context.Context, shared *models.SharedCalendar) error
}

type sharedEventLister interface {
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error)
}

type sharedCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type cacheLookupObserver interface {
	ObserveCacheLookup(hit bool)
}

// SharedCalendarConfig tunes share link behaviour.
type SharedCalendarConfig struct {
	PublicBaseURL string
	CacheTTL      time.Duration
}

// SharedCalendarService issues and resolves read-only share links.
type SharedCalendarService struct {
	repo      sharedCalendarRepository
	events    sharedEventLister
	cache     sharedCache
	metrics   cacheLookupObserver
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
	cfg       SharedCalendarConfig
}

// NewSharedCalendarService constructs the service.
func NewSharedCalendarService(repo sharedCalendarRepository, events sharedEventLister, cache sharedCache, metrics cacheLookupObserver, audit auditRecorder, validate *validator.Validate, logger *zap.Logger, cfg SharedCalendarConfig) *SharedCalendarService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &SharedCalendarService{repo: repo, events: events, cache: cache, metrics: metrics, audit: audit, validator: validate, logger: logger, cfg: cfg}
}

// CreateShareRequest describes the share creation payload.
type CreateShareRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ShareType   string     `json:"share_type"`
	SharedWith  []string   `json:"shared_with" validate:"omitempty,dive,email"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// CreatedShare pairs the stored share with its absolute URL.
type CreatedShare struct {
	Shared   *models.SharedCalendar `json:"shared"`
	ShareURL string                 `json:"share_url"`
}

// SharedWindow is the public payload returned when a valid token is consumed.
type SharedWindow struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	ShareType   string         `json:"share_type"`
	Events      []models.Event `json:"events"`
}

// List returns every share link, newest first.
func (s *SharedCalendarService) List(ctx context.Context) ([]models.SharedCalendar, error) {
	shares, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list shared calendars")
	}
	return shares, nil
}

// Create issues a new share link with a fresh token.
func (s *SharedCalendarService) Create(ctx context.Context, req CreateShareRequest, actorID string, meta models.RequestMeta) (*CreatedShare, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid share payload")
	}

	shareType := models.ShareType(req.ShareType)
	switch shareType {
	case models.SharePublic, models.ShareRestricted:
	case "":
		shareType = models.SharePublic
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown share_type")
	}

	token, err := IssueShareToken()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate share token")
	}

	name := req.Name
	if name == "" {
		name = "Agenda Compartilhada"
	}

	shared := &models.SharedCalendar{
		Name:        name,
		Description: req.Description,
		ShareType:   shareType,
		ShareToken:  token,
		SharedWith:  req.SharedWith,
		ExpiresAt:   req.ExpiresAt,
		CreatedBy:   actorID,
	}
	if shared.SharedWith == nil {
		shared.SharedWith = []string{}
	}
	if err := s.repo.Create(ctx, shared); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create shared calendar")
	}

	s.recordAudit(ctx, actorID, shared, meta)

	return &CreatedShare{
		Shared:   shared,
		ShareURL: fmt.Sprintf("%s/shared/%s", s.cfg.PublicBaseURL, token),
	}, nil
}

// Resolve consumes a share token and returns the events inside the optional
// window. Unknown tokens map to not-found, expired tokens to gone.
func (s *SharedCalendarService) Resolve(ctx context.Context, token string, start, end *time.Time) (*SharedWindow, error) {
	shared, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "share link not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load share link")
	}
	if shared.Expired(time.Now().UTC()) {
		return nil, appErrors.Clone(appErrors.ErrGone, "share link expired")
	}

	key := windowCacheKey(token, start, end)
	if s.cache != nil {
		var cached SharedWindow
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.observeCacheLookup(true)
			return &cached, nil
		}
		s.observeCacheLookup(false)
	}

	events, err := s.listWindow(ctx, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list shared events")
	}

	window := &SharedWindow{
		Name:        shared.Name,
		Description: shared.Description,
		ShareType:   string(shared.ShareType),
		Events:      events,
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, window, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("failed to cache shared window", zap.Error(err))
		}
	}
	return window, nil
}

// listWindow pages through the repository so the share window carries every
// event in range, not just the first page.
func (s *SharedCalendarService) listWindow(ctx context.Context, start, end *time.Time) ([]models.Event, error) {
	filter := models.EventFilter{Start: start, End: end, Limit: 200}
	var events []models.Event
	for page := 1; ; page++ {
		filter.Page = page
		batch, total, err := s.events.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		events = append(events, batch...)
		if len(batch) == 0 || len(events) >= total {
			return events, nil
		}
	}
}

func (s *SharedCalendarService) observeCacheLookup(hit bool) {
	if s.metrics != nil {
		s.metrics.ObserveCacheLookup(hit)
	}
}

// IssueShareToken draws a 32-character token from the alphanumeric alphabet.
func IssueShareToken() (string, error) {
	max := big.NewInt(int64(len(shareTokenAlphabet)))
	buf := make([]byte, shareTokenLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("draw token character: %w", err)
		}
		buf[i] = shareTokenAlphabet[n.Int64()]
	}
	return string(buf), nil
}

func windowCacheKey(token string, start, end *time.Time) string {
	s, e := "", ""
	if start != nil {
		s = start.UTC().Format(time.RFC3339)
	}
	if end != nil {
		e = end.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("%s%s:%s:%s", sharedWindowKeyPrefix, token, s, e)
}

func (s *SharedCalendarService) recordAudit(ctx context.Context, actorID string, shared *models.SharedCalendar, meta models.RequestMeta) {
	if s.audit == nil {
		return
	}
	snapshot, err := json.Marshal(map[string]interface{}{
		"name":       shared.Name,
		"share_type": shared.ShareType,
		"expires_at": shared.ExpiresAt,
	})
	if err != nil {
		snapshot = []byte("{}")
	}
	if err := s.audit.Create(ctx, &models.AuditLog{
		UserID:        &actorID,
		Action:        models.AuditActionCreate,
		EntityType:    models.EntitySharedCalendar,
		EntityID:      &shared.ID,
		ChangedFields: snapshot,
		IPAddress:     meta.IP,
		UserAgent:     meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record share audit log", zap.Error(err))
	}
}
