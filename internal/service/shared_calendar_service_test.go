package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e-agenda/e-agenda-api/internal/models"
	appErrors "github.com/e-agenda/e-agenda-api/pkg/errors"
)

type sharedRepoStub struct {
	shares  []models.SharedCalendar
	byToken *models.SharedCalendar
	created *models.SharedCalendar
}

func (s *sharedRepoStub) List(ctx context.Context) ([]models.SharedCalendar, error) {
	return s.shares, nil
}

func (s *sharedRepoStub) FindByToken(ctx context.Context, token string) (*models.SharedCalendar, error) {
	if s.byToken == nil || s.byToken.ShareToken != token {
		return nil, sql.ErrNoRows
	}
	copied := *s.byToken
	return &copied, nil
}

func (s *sharedRepoStub) Create(ctx context.Context, shared *models.SharedCalendar) error {
	shared.ID = "share-1"
	s.created = shared
	return nil
}

type eventListerStub struct {
	events []models.Event
}

func (s eventListerStub) List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	return s.events, len(s.events), nil
}

type cacheStub struct {
	gets int
	sets int
}

func (s *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	s.gets++
	return appErrors.ErrCacheMiss
}

func (s *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.sets++
	return nil
}

func TestIssueShareTokenShape(t *testing.T) {
	token, err := IssueShareToken()
	require.NoError(t, err)
	assert.Len(t, token, 32)
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9]{32}$`), token)

	other, err := IssueShareToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestCreateShareDefaults(t *testing.T) {
	repo := &sharedRepoStub{}
	audit := &auditStub{}
	service := NewSharedCalendarService(repo, eventListerStub{}, nil, nil, audit, nil, nil, SharedCalendarConfig{PublicBaseURL: "https://agenda.example.com"})

	result, err := service.Create(context.Background(), CreateShareRequest{}, "u1", models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, "Agenda Compartilhada", result.Shared.Name)
	assert.Equal(t, models.SharePublic, result.Shared.ShareType)
	assert.Len(t, result.Shared.ShareToken, 32)
	assert.Equal(t, "https://agenda.example.com/shared/"+result.Shared.ShareToken, result.ShareURL)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.EntitySharedCalendar, audit.entries[0].EntityType)
}

func TestCreateShareRejectsBadEmails(t *testing.T) {
	service := NewSharedCalendarService(&sharedRepoStub{}, eventListerStub{}, nil, nil, nil, nil, nil, SharedCalendarConfig{})

	_, err := service.Create(context.Background(), CreateShareRequest{SharedWith: []string{"not-an-email"}}, "u1", models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestResolveUnknownToken(t *testing.T) {
	service := NewSharedCalendarService(&sharedRepoStub{}, eventListerStub{}, nil, nil, nil, nil, nil, SharedCalendarConfig{})

	_, err := service.Resolve(context.Background(), "missing", nil, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestResolveExpiredTokenIsGone(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	repo := &sharedRepoStub{byToken: &models.SharedCalendar{ShareToken: "tok", ExpiresAt: &past}}
	service := NewSharedCalendarService(repo, eventListerStub{}, nil, nil, nil, nil, nil, SharedCalendarConfig{})

	_, err := service.Resolve(context.Background(), "tok", nil, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusGone, appErrors.FromError(err).Status)
}

func TestResolveReturnsWindow(t *testing.T) {
	repo := &sharedRepoStub{byToken: &models.SharedCalendar{ShareToken: "tok", Name: "Agenda", ShareType: models.SharePublic}}
	events := eventListerStub{events: []models.Event{{ID: "e1", Title: "Reuniao"}}}
	cache := &cacheStub{}
	service := NewSharedCalendarService(repo, events, cache, nil, nil, nil, nil, SharedCalendarConfig{})

	window, err := service.Resolve(context.Background(), "tok", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Agenda", window.Name)
	require.Len(t, window.Events, 1)
	assert.Equal(t, 1, cache.gets)
	assert.Equal(t, 1, cache.sets)
}

func TestResolveTokenWithoutExpiryNeverExpires(t *testing.T) {
	repo := &sharedRepoStub{byToken: &models.SharedCalendar{ShareToken: "tok"}}
	service := NewSharedCalendarService(repo, eventListerStub{}, nil, nil, nil, nil, nil, SharedCalendarConfig{})

	_, err := service.Resolve(context.Background(), "tok", nil, nil)
	assert.NoError(t, err)
}

type cacheMetricsStub struct {
	hits   int
	misses int
}

func (s *cacheMetricsStub) ObserveCacheLookup(hit bool) {
	if hit {
		s.hits++
		return
	}
	s.misses++
}

type servingCacheStub struct {
	values map[string][]byte
}

func (s *servingCacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := s.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *servingCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if s.values == nil {
		s.values = map[string][]byte{}
	}
	s.values[key] = raw
	return nil
}

func TestResolveObservesCacheHitsAndMisses(t *testing.T) {
	repo := &sharedRepoStub{byToken: &models.SharedCalendar{ShareToken: "tok", Name: "Agenda"}}
	events := eventListerStub{events: []models.Event{{ID: "e1", Title: "Reuniao"}}}
	cache := &servingCacheStub{}
	metrics := &cacheMetricsStub{}
	service := NewSharedCalendarService(repo, events, cache, metrics, nil, nil, nil, SharedCalendarConfig{})

	_, err := service.Resolve(context.Background(), "tok", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.misses)
	assert.Equal(t, 0, metrics.hits)

	window, err := service.Resolve(context.Background(), "tok", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Agenda", window.Name)
	assert.Equal(t, 1, metrics.misses)
	assert.Equal(t, 1, metrics.hits)
}

type pagedListerStub struct {
	pages [][]models.Event
	total int
	calls int
}

func (s *pagedListerStub) List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	s.calls++
	if filter.Page-1 < len(s.pages) {
		return s.pages[filter.Page-1], s.total, nil
	}
	return nil, s.total, nil
}

func TestResolveCollectsFullWindow(t *testing.T) {
	repo := &sharedRepoStub{byToken: &models.SharedCalendar{ShareToken: "tok"}}
	events := &pagedListerStub{
		pages: [][]models.Event{
			{{ID: "e1"}, {ID: "e2"}},
			{{ID: "e3"}},
		},
		total: 3,
	}
	service := NewSharedCalendarService(repo, events, nil, nil, nil, nil, nil, SharedCalendarConfig{})

	window, err := service.Resolve(context.Background(), "tok", nil, nil)
	require.NoError(t, err)
	require.Len(t, window.Events, 3)
	assert.Equal(t, "e3", window.Events[2].ID)
	assert.Equal(t, 2, events.calls)
}
