package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e-agenda/e-agenda-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func eventRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "description", "start_time", "end_time", "location", "priority", "category", "created_by", "setores_envolvidos", "google_calendar_event_id", "created_at", "updated_at"}).
		AddRow("e1", "Reuniao de pauta", "", now, now.Add(time.Hour), "Sala 3", "MEDIUM", "REUNIAO", "u1", "{SEREP}", nil, now, now)
}

func TestListEvents(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + eventColumns + " FROM events WHERE 1=1 ORDER BY start_time ASC LIMIT 50 OFFSET 0")).
		WillReturnRows(eventRows(now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM events WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	events, total, err := repo.List(context.Background(), models.EventFilter{})
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Reuniao de pauta", events[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEventsBySetor(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + eventColumns + " FROM events WHERE 1=1 AND $1 = ANY(setores_envolvidos) ORDER BY start_time ASC LIMIT 50 OFFSET 0")).
		WithArgs("SEREP").
		WillReturnRows(eventRows(now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM events WHERE 1=1 AND $1 = ANY(setores_envolvidos)")).
		WithArgs("SEREP").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	events, total, err := repo.List(context.Background(), models.EventFilter{Setor: "SEREP"})
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOverlapping(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + eventColumns + " FROM events WHERE start_time < $1 AND end_time > $2 ORDER BY start_time ASC")).
		WithArgs(end, start).
		WillReturnRows(eventRows(start))

	events, err := repo.ListOverlapping(context.Background(), start, end, nil)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOverlappingExcludesID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	exclude := "e1"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + eventColumns + " FROM events WHERE start_time < $1 AND end_time > $2 AND id <> $3 ORDER BY start_time ASC")).
		WithArgs(end, start, exclude).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "start_time", "end_time", "location", "priority", "category", "created_by", "setores_envolvidos", "google_calendar_event_id", "created_at", "updated_at"}))

	events, err := repo.ListOverlapping(context.Background(), start, end, &exclude)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEvent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec("INSERT INTO events").WillReturnResult(sqlmock.NewResult(1, 1))

	event := &models.Event{
		Title:             "Cerimonia de posse",
		StartTime:         time.Now(),
		EndTime:           time.Now().Add(2 * time.Hour),
		Priority:          models.PriorityHigh,
		Category:          models.CategoryCerimonia,
		CreatedBy:         "u1",
		SetoresEnvolvidos: []string{"PRESIDENCIA"},
	}
	err := repo.Create(context.Background(), event)
	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEvent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM events WHERE id = $1")).
		WithArgs("e1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "e1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
