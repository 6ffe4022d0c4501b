package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"kivuevent/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

// createTxAttempts bounds the retry on serialization failures inside the
// event-create transaction. All other operations are never retried.
const createTxAttempts = 2

func (r *eventRepository) CreateWithVenue(ctx context.Context, e *domain.Event, venue *domain.VenueCandidate) error {
	var lastErr error
	for attempt := 0; attempt < createTxAttempts; attempt++ {
		err := r.createOnce(ctx, e, venue)
		if err == nil {
			return nil
		}
		if !retryableTxError(err) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

func (r *eventRepository) createOnce(ctx context.Context, e *domain.Event, venue *domain.VenueCandidate) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	venueID, err := resolveVenue(ctx, tx, venue)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("resolve venue: %w", err)
	}
	e.VenueID = venueID

	query := `
		INSERT INTO events (title, description, category, start_date, end_date, capacity,
			registration_deadline, status, image_url, tags, price, organizer_id, venue_id,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Category, e.StartDate, e.EndDate, e.Capacity,
		e.RegistrationDeadline, e.Status, e.ImageURL, pq.Array(e.Tags), e.Price,
		e.OrganizerID, e.VenueID, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("insert event: %w", err)
	}

	return tx.Commit()
}

// retryableTxError reports whether err is a Postgres serialization failure or
// deadlock, the only failures worth one more attempt.
func retryableTxError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

const joinedEventColumns = `
	e.id, e.title, e.description, e.category, e.start_date, e.end_date, e.capacity,
	e.registration_deadline, e.status, e.image_url, e.tags, e.price,
	e.organizer_id, e.venue_id, e.created_at, e.updated_at,
	o.id, o.email, o.first_name, o.last_name, o.company, o.role,
	v.id, v.name, v.street, v.city, v.country, v.capacity, v.facilities, v.active
`

const joinedEventFrom = `
	FROM events e
	LEFT JOIN users o ON o.id = e.organizer_id
	LEFT JOIN venues v ON v.id = e.venue_id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJoinedEvent(s rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var (
		imageNull                                        sql.NullString
		oID, oEmail, oFirst, oLast, oCompany, oRole      sql.NullString
		vID, vName, vStreet, vCity, vCountry             sql.NullString
		vCapacity                                        sql.NullInt64
		vFacilities                                      []string
		vActive                                          sql.NullBool
	)
	err := s.Scan(
		&e.ID, &e.Title, &e.Description, &e.Category, &e.StartDate, &e.EndDate, &e.Capacity,
		&e.RegistrationDeadline, &e.Status, &imageNull, pq.Array(&e.Tags), &e.Price,
		&e.OrganizerID, &e.VenueID, &e.CreatedAt, &e.UpdatedAt,
		&oID, &oEmail, &oFirst, &oLast, &oCompany, &oRole,
		&vID, &vName, &vStreet, &vCity, &vCountry, &vCapacity, pq.Array(&vFacilities), &vActive,
	)
	if err != nil {
		return nil, err
	}
	if imageNull.Valid {
		e.ImageURL = imageNull.String
	}
	if oID.Valid {
		e.Organizer = &domain.User{
			ID:        oID.String,
			Email:     oEmail.String,
			FirstName: oFirst.String,
			LastName:  oLast.String,
			Company:   oCompany.String,
			Role:      oRole.String,
		}
	}
	if vID.Valid {
		e.Venue = &domain.Venue{
			ID:         vID.String,
			Name:       vName.String,
			Street:     vStreet.String,
			City:       vCity.String,
			Country:    vCountry.String,
			Capacity:   int(vCapacity.Int64),
			Facilities: vFacilities,
			Active:     vActive.Bool,
		}
	}
	return e, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + joinedEventColumns + joinedEventFrom + `WHERE e.id = $1`
	e, err := scanJoinedEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var where []string
	var args []any
	n := 1
	if filter.Category != "" {
		where = append(where, fmt.Sprintf("e.category = $%d", n))
		args = append(args, filter.Category)
		n++
	}
	if filter.Status != "" {
		where = append(where, fmt.Sprintf("e.status = $%d", n))
		args = append(args, filter.Status)
		n++
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(e.title ILIKE $%d OR e.description ILIKE $%d)", n, n))
		args = append(args, "%"+filter.Search+"%")
		n++
	}
	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM events e` + whereClause
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	query := `SELECT ` + joinedEventColumns + joinedEventFrom + whereClause +
		fmt.Sprintf(" ORDER BY e.start_date DESC LIMIT $%d OFFSET $%d", n, n+1)
	args = append(args, params.Limit, params.Offset())

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanJoinedEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	if patch.IsZero() {
		// No fields to update; just fetch the current row.
		return r.GetByID(ctx, id)
	}

	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	addSet := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if patch.Title != nil {
		addSet("title", *patch.Title)
	}
	if patch.Description != nil {
		addSet("description", *patch.Description)
	}
	if patch.Category != nil {
		addSet("category", *patch.Category)
	}
	if patch.StartDate != nil {
		addSet("start_date", *patch.StartDate)
	}
	if patch.EndDate != nil {
		addSet("end_date", *patch.EndDate)
	}
	if patch.Capacity != nil {
		addSet("capacity", *patch.Capacity)
	}
	if patch.RegistrationDeadline != nil {
		addSet("registration_deadline", *patch.RegistrationDeadline)
	}
	if patch.Status != nil {
		addSet("status", *patch.Status)
	}
	if patch.ImageURL != nil {
		addSet("image_url", *patch.ImageURL)
	}
	if patch.Tags != nil {
		addSet("tags", pq.Array(*patch.Tags))
	}
	if patch.Price != nil {
		addSet("price", *patch.Price)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE events SET %s WHERE id = $%d RETURNING id`,
		strings.Join(setClauses, ", "), n)
	var updatedID string
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&updatedID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *eventRepository) Delete(ctx context.Context, id string) (*domain.Event, error) {
	// Snapshot the joined row first so the caller can show what was removed.
	snapshot, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM participants WHERE event_id = $1`, id); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("delete participants: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("delete event: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		tx.Rollback()
		return nil, domain.ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return snapshot, nil
}
