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

type participantRepository struct {
	DB *sql.DB
}

func NewParticipantRepository(db *sql.DB) domain.ParticipantRepository {
	return &participantRepository{DB: db}
}

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

func (r *participantRepository) Create(ctx context.Context, p *domain.Participant) error {
	query := `
		INSERT INTO participants (id, event_id, user_id, registration_date, status,
			company, job_title, dietary_restrictions, special_requirements, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.DB.ExecContext(ctx, query,
		p.ID, p.EventID, p.UserID, p.RegistrationDate, p.Status,
		p.Company, p.JobTitle, p.DietaryRestrictions, p.SpecialRequirements,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			// The (user_id, event_id) unique constraint is the backstop for the
			// read-then-insert race in the registry.
			return domain.ErrAlreadyRegistered
		}
		return err
	}
	return nil
}

const joinedParticipantColumns = `
	p.id, p.event_id, p.user_id, p.registration_date, p.status,
	p.company, p.job_title, p.dietary_restrictions, p.special_requirements,
	p.feedback_rating, p.feedback_comment, p.feedback_submitted_at,
	p.created_at, p.updated_at,
	u.id, u.email, u.first_name, u.last_name, u.phone, u.company, u.job_title, u.role
`

const joinedParticipantFrom = `
	FROM participants p
	LEFT JOIN users u ON u.id = p.user_id
`

func scanJoinedParticipant(s rowScanner) (*domain.Participant, error) {
	p := &domain.Participant{}
	var (
		ratingNull    sql.NullInt64
		commentNull   sql.NullString
		submittedNull sql.NullTime

		uID, uEmail, uFirst, uLast, uPhone, uCompany, uJob, uRole sql.NullString
	)
	err := s.Scan(
		&p.ID, &p.EventID, &p.UserID, &p.RegistrationDate, &p.Status,
		&p.Company, &p.JobTitle, &p.DietaryRestrictions, &p.SpecialRequirements,
		&ratingNull, &commentNull, &submittedNull,
		&p.CreatedAt, &p.UpdatedAt,
		&uID, &uEmail, &uFirst, &uLast, &uPhone, &uCompany, &uJob, &uRole,
	)
	if err != nil {
		return nil, err
	}
	if ratingNull.Valid {
		rating := int(ratingNull.Int64)
		p.FeedbackRating = &rating
	}
	if commentNull.Valid {
		p.FeedbackComment = &commentNull.String
	}
	if submittedNull.Valid {
		p.FeedbackSubmittedAt = &submittedNull.Time
	}
	if uID.Valid {
		p.User = &domain.User{
			ID:        uID.String,
			Email:     uEmail.String,
			FirstName: uFirst.String,
			LastName:  uLast.String,
			Phone:     uPhone.String,
			Company:   uCompany.String,
			JobTitle:  uJob.String,
			Role:      uRole.String,
		}
	}
	return p, nil
}

func (r *participantRepository) GetByID(ctx context.Context, id, eventID string) (*domain.Participant, error) {
	query := `SELECT ` + joinedParticipantColumns + joinedParticipantFrom + `WHERE p.id = $1 AND p.event_id = $2`
	p, err := scanJoinedParticipant(r.DB.QueryRowContext(ctx, query, id, eventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *participantRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Participant, error) {
	query := `SELECT ` + joinedParticipantColumns + joinedParticipantFrom + `WHERE p.event_id = $1 AND p.user_id = $2`
	p, err := scanJoinedParticipant(r.DB.QueryRowContext(ctx, query, eventID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *participantRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Participant, error) {
	query := `SELECT ` + joinedParticipantColumns + joinedParticipantFrom +
		`WHERE p.event_id = $1 ORDER BY p.registration_date`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	participants := make([]*domain.Participant, 0)
	for rows.Next() {
		p, err := scanJoinedParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *participantRepository) Update(ctx context.Context, id, eventID string, patch domain.ParticipantPatch) (*domain.Participant, error) {
	if patch.IsZero() {
		return r.GetByID(ctx, id, eventID)
	}

	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	addSet := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if patch.Status != nil {
		addSet("status", *patch.Status)
	}
	if patch.Company != nil {
		addSet("company", *patch.Company)
	}
	if patch.JobTitle != nil {
		addSet("job_title", *patch.JobTitle)
	}
	if patch.DietaryRestrictions != nil {
		addSet("dietary_restrictions", *patch.DietaryRestrictions)
	}
	if patch.SpecialRequirements != nil {
		addSet("special_requirements", *patch.SpecialRequirements)
	}
	if patch.FeedbackRating != nil {
		addSet("feedback_rating", *patch.FeedbackRating)
	}
	if patch.FeedbackComment != nil {
		addSet("feedback_comment", *patch.FeedbackComment)
	}
	if patch.FeedbackSubmittedAt != nil {
		addSet("feedback_submitted_at", *patch.FeedbackSubmittedAt)
	}

	args = append(args, id, eventID)
	query := fmt.Sprintf(`UPDATE participants SET %s WHERE id = $%d AND event_id = $%d RETURNING id`,
		strings.Join(setClauses, ", "), n, n+1)
	var updatedID string
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&updatedID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, id, eventID)
}

func (r *participantRepository) Delete(ctx context.Context, id, eventID string) (*domain.Participant, error) {
	snapshot, err := r.GetByID(ctx, id, eventID)
	if err != nil {
		return nil, err
	}
	result, err := r.DB.ExecContext(ctx, `DELETE FROM participants WHERE id = $1 AND event_id = $2`, id, eventID)
	if err != nil {
		return nil, err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, domain.ErrNotFound
	}
	return snapshot, nil
}
