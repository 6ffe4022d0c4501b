package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"kivuevent/internal/domain"
)

// queryer is satisfied by both *sql.DB and *sql.Tx so venue resolution can
// run standalone or inside the event-create transaction.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type venueRepository struct {
	DB *sql.DB
}

func NewVenueRepository(db *sql.DB) domain.VenueRepository {
	return &venueRepository{DB: db}
}

func (r *venueRepository) Resolve(ctx context.Context, candidate *domain.VenueCandidate) (string, error) {
	return resolveVenue(ctx, r.DB, candidate)
}

// resolveVenue finds a venue by (name, street) or inserts a new row.
// A nil candidate inserts a placeholder venue with sentinel fields.
func resolveVenue(ctx context.Context, q queryer, c *domain.VenueCandidate) (string, error) {
	if c == nil {
		c = &domain.VenueCandidate{
			Name:    domain.VenuePendingName,
			Address: domain.VenuePendingStreet,
		}
	} else {
		var id string
		err := q.QueryRowContext(ctx,
			`SELECT id FROM venues WHERE name = $1 AND street = $2`,
			c.Name, c.Address,
		).Scan(&id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return "", err
		}
	}

	capacity := c.Capacity
	if capacity <= 0 {
		capacity = domain.DefaultVenueCapacity
	}
	city := c.City
	if city == "" {
		city = domain.VenueUnspecified
	}
	country := c.Country
	if country == "" {
		country = domain.VenueUnspecified
	}

	query := `
		INSERT INTO venues (name, street, city, country, capacity, facilities, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, NOW(), NOW())
		RETURNING id
	`
	var id string
	err := q.QueryRowContext(ctx, query, c.Name, c.Address, city, country, capacity, pq.Array([]string{})).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *venueRepository) ListActive(ctx context.Context) ([]*domain.Venue, error) {
	query := `
		SELECT id, name, street, city, country, capacity, facilities, active, created_at, updated_at
		FROM venues
		WHERE active
		ORDER BY name
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	venues := make([]*domain.Venue, 0)
	for rows.Next() {
		v := &domain.Venue{}
		if err := rows.Scan(&v.ID, &v.Name, &v.Street, &v.City, &v.Country, &v.Capacity,
			pq.Array(&v.Facilities), &v.Active, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}
