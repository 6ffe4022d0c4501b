package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"kivuevent/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var joinedEventCols = []string{
	"id", "title", "description", "category", "start_date", "end_date", "capacity",
	"registration_deadline", "status", "image_url", "tags", "price",
	"organizer_id", "venue_id", "created_at", "updated_at",
	"o_id", "o_email", "o_first_name", "o_last_name", "o_company", "o_role",
	"v_id", "v_name", "v_street", "v_city", "v_country", "v_capacity", "v_facilities", "v_active",
}

func joinedEventRow(rows *sqlmock.Rows, id string) *sqlmock.Rows {
	start := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	return rows.AddRow(
		id, "Tech Summit", "Annual summit", "conference", start, start.Add(8*time.Hour), 200,
		start.Add(-24*time.Hour), "published", nil, "{go,cloud}", 49.99,
		"org-1", "venue-1", start.Add(-30*24*time.Hour), start.Add(-30*24*time.Hour),
		"org-1", "org@example.com", "Amina", "U", "Kivu Ltd", "organizer",
		"venue-1", "Kivu Hall", "12 Lake Rd", "Goma", "DRC", 300, "{wifi,parking}", true,
	)
}

func TestEventRepository_CreateWithVenue(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	newEvent := func() *domain.Event {
		return &domain.Event{
			Title:                "Tech Summit",
			Description:          "Annual summit",
			Category:             "conference",
			StartDate:            now.AddDate(0, 1, 0),
			EndDate:              now.AddDate(0, 1, 1),
			Capacity:             200,
			RegistrationDeadline: now.AddDate(0, 0, 25),
			Status:               domain.EventStatusDraft,
			Tags:                 []string{"go"},
			Price:                10,
			OrganizerID:          "org-1",
			CreatedAt:            now,
			UpdatedAt:            now,
		}
	}
	candidate := &domain.VenueCandidate{Name: "Kivu Hall", Address: "12 Lake Rd", City: "Goma", Country: "DRC", Capacity: 300}

	t.Run("reuses matching venue", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM venues WHERE name = \$1 AND street = \$2`).
			WithArgs("Kivu Hall", "12 Lake Rd").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("venue-1"))
		mock.ExpectQuery(`INSERT INTO events`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-1"))
		mock.ExpectCommit()

		repo := NewEventRepository(db)
		event := newEvent()
		require.NoError(t, repo.CreateWithVenue(ctx, event, candidate))
		require.Equal(t, "ev-1", event.ID)
		require.Equal(t, "venue-1", event.VenueID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inserts venue when none matches", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM venues WHERE name = \$1 AND street = \$2`).
			WithArgs("Kivu Hall", "12 Lake Rd").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`INSERT INTO venues`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("venue-new"))
		mock.ExpectQuery(`INSERT INTO events`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-1"))
		mock.ExpectCommit()

		repo := NewEventRepository(db)
		event := newEvent()
		require.NoError(t, repo.CreateWithVenue(ctx, event, candidate))
		require.Equal(t, "venue-new", event.VenueID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("placeholder venue when location omitted", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO venues`).
			WithArgs(domain.VenuePendingName, domain.VenuePendingStreet, domain.VenueUnspecified,
				domain.VenueUnspecified, domain.DefaultVenueCapacity, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("venue-ph"))
		mock.ExpectQuery(`INSERT INTO events`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-1"))
		mock.ExpectCommit()

		repo := NewEventRepository(db)
		event := newEvent()
		require.NoError(t, repo.CreateWithVenue(ctx, event, nil))
		require.Equal(t, "venue-ph", event.VenueID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when event insert fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM venues WHERE name = \$1 AND street = \$2`).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`INSERT INTO venues`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("venue-new"))
		mock.ExpectQuery(`INSERT INTO events`).
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		repo := NewEventRepository(db)
		require.Error(t, repo.CreateWithVenue(ctx, newEvent(), candidate))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when venue resolution fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM venues WHERE name = \$1 AND street = \$2`).
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		repo := NewEventRepository(db)
		require.Error(t, repo.CreateWithVenue(ctx, newEvent(), candidate))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("success with joined organizer and venue", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT(.|\n)+FROM events e`).
			WithArgs("ev-1").
			WillReturnRows(joinedEventRow(sqlmock.NewRows(joinedEventCols), "ev-1"))

		repo := NewEventRepository(db)
		got, err := repo.GetByID(ctx, "ev-1")
		require.NoError(t, err)
		require.Equal(t, "ev-1", got.ID)
		require.Equal(t, []string{"go", "cloud"}, got.Tags)
		require.NotNil(t, got.Organizer)
		require.Equal(t, "org@example.com", got.Organizer.Email)
		require.NotNil(t, got.Venue)
		require.Equal(t, "Kivu Hall", got.Venue.Name)
		require.Equal(t, []string{"wifi", "parking"}, got.Venue.Facilities)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT(.|\n)+FROM events e`).
			WithArgs("ev-missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		got, err := repo.GetByID(ctx, "ev-missing")
		require.Nil(t, got)
		require.True(t, errors.Is(err, domain.ErrNotFound))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_List(t *testing.T) {
	ctx := context.Background()
	params := domain.PaginationParams{Page: 2, Limit: 10}

	t.Run("filters and paginates", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM events e WHERE`).
			WithArgs("conference", "%summit%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))
		mock.ExpectQuery(`SELECT(.|\n)+FROM events e(.|\n)+ORDER BY e.start_date DESC LIMIT \$3 OFFSET \$4`).
			WithArgs("conference", "%summit%", 10, 10).
			WillReturnRows(joinedEventRow(sqlmock.NewRows(joinedEventCols), "ev-1"))

		repo := NewEventRepository(db)
		filter := domain.EventFilter{Category: "conference", Search: "summit"}
		events, total, err := repo.List(ctx, filter, params)
		require.NoError(t, err)
		require.Equal(t, 42, total)
		require.Len(t, events, 1)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty result", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM events e`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT(.|\n)+FROM events e`).
			WillReturnRows(sqlmock.NewRows(joinedEventCols))

		repo := NewEventRepository(db)
		events, total, err := repo.List(ctx, domain.EventFilter{}, domain.PaginationParams{Page: 1, Limit: 20})
		require.NoError(t, err)
		require.Zero(t, total)
		require.Empty(t, events)
		require.NotNil(t, events)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("empty patch reads current row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT(.|\n)+FROM events e`).
			WithArgs("ev-1").
			WillReturnRows(joinedEventRow(sqlmock.NewRows(joinedEventCols), "ev-1"))

		repo := NewEventRepository(db)
		got, err := repo.Update(ctx, "ev-1", domain.EventPatch{})
		require.NoError(t, err)
		require.Equal(t, "ev-1", got.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sets only provided fields", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE events SET updated_at = NOW\(\), title = \$1, price = \$2 WHERE id = \$3 RETURNING id`).
			WithArgs("New Title", 25.0, "ev-1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-1"))
		mock.ExpectQuery(`SELECT(.|\n)+FROM events e`).
			WithArgs("ev-1").
			WillReturnRows(joinedEventRow(sqlmock.NewRows(joinedEventCols), "ev-1"))

		repo := NewEventRepository(db)
		title := "New Title"
		price := 25.0
		got, err := repo.Update(ctx, "ev-1", domain.EventPatch{Title: &title, Price: &price})
		require.NoError(t, err)
		require.Equal(t, "ev-1", got.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE events SET`).
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		title := "x"
		got, err := repo.Update(ctx, "ev-missing", domain.EventPatch{Title: &title})
		require.Nil(t, got)
		require.True(t, errors.Is(err, domain.ErrNotFound))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes event and participants in one transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT(.|\n)+FROM events e`).
			WithArgs("ev-1").
			WillReturnRows(joinedEventRow(sqlmock.NewRows(joinedEventCols), "ev-1"))
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM participants WHERE event_id = \$1`).
			WithArgs("ev-1").
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
			WithArgs("ev-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		repo := NewEventRepository(db)
		got, err := repo.Delete(ctx, "ev-1")
		require.NoError(t, err)
		require.Equal(t, "ev-1", got.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found at snapshot", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT(.|\n)+FROM events e`).
			WithArgs("ev-missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		got, err := repo.Delete(ctx, "ev-missing")
		require.Nil(t, got)
		require.True(t, errors.Is(err, domain.ErrNotFound))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
