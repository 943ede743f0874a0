package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aryngazy/fest-system/models"
	"github.com/lib/pq"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")

	// Уникальные индексы — подстраховка гонки check-then-insert (§ DESIGN.md).
	ErrRegistrationEmailConflict    = errors.New("registration email conflict")
	ErrRegistrationTeamNameConflict = errors.New("registration team name conflict")
)

type RegistrationRepository interface {
	Create(ctx context.Context, reg *models.Registration) error
	GetByID(ctx context.Context, id int) (*models.Registration, error)
	ExistsByEventAndEmail(ctx context.Context, eventID, email string) (bool, error)
	ExistsByEventAndTeamName(ctx context.Context, eventID, teamName string) (bool, error)
	// ExistsByEventAndMember reports whether any of the given identities
	// already appears in a roster (or as the registrant email) for the event.
	ExistsByEventAndMember(ctx context.Context, eventID string, members []string) (bool, error)
	ListByEmail(ctx context.Context, email string) ([]models.Registration, error)
	List(ctx context.Context) ([]models.Registration, error)
	Count(ctx context.Context) (int, error)
	UpdateStatus(ctx context.Context, id int, status models.RegistrationStatus) error
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

const registrationColumns = `
	id, public_id, event_id, name, email, contact_email, phone, team_name,
	team_members, payment_screenshot_url, payment_transaction_id, status,
	created_at`

func (r *postgresRegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	query := `
		INSERT INTO registrations
			(public_id, event_id, name, email, contact_email, phone, team_name,
			 team_members, payment_screenshot_url, payment_transaction_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	var phone sql.NullString
	if reg.Phone != "" {
		phone = sql.NullString{String: reg.Phone, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		reg.PublicID,
		reg.EventID,
		reg.Name,
		reg.Email,
		reg.ContactEmail,
		phone,
		reg.TeamName,
		pq.Array(reg.TeamMembers),
		reg.PaymentScreenshotURL,
		reg.PaymentTransactionID,
		reg.Status,
	).Scan(&reg.ID, &reg.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			switch pqErr.Constraint {
			case "registrations_event_email_key":
				return ErrRegistrationEmailConflict
			case "registrations_event_team_name_key":
				return ErrRegistrationTeamNameConflict
			}
		}
		return err
	}
	return nil
}

func (r *postgresRegistrationRepository) GetByID(ctx context.Context, id int) (*models.Registration, error) {
	query := `SELECT` + registrationColumns + ` FROM registrations WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	reg, err := scanRegistration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) ExistsByEventAndEmail(ctx context.Context, eventID, email string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM registrations
			WHERE event_id = $1 AND lower(email) = lower($2)
		)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, eventID, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check registration by email: %w", err)
	}
	return exists, nil
}

func (r *postgresRegistrationRepository) ExistsByEventAndTeamName(ctx context.Context, eventID, teamName string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM registrations
			WHERE event_id = $1 AND lower(team_name) = lower($2)
		)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, eventID, teamName).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check registration by team name: %w", err)
	}
	return exists, nil
}

func (r *postgresRegistrationRepository) ExistsByEventAndMember(ctx context.Context, eventID string, members []string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM registrations
			WHERE event_id = $1
			  AND (team_members && $2 OR lower(email) = ANY($2))
		)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, eventID, pq.Array(members)).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check registration by members: %w", err)
	}
	return exists, nil
}

func (r *postgresRegistrationRepository) ListByEmail(ctx context.Context, email string) ([]models.Registration, error) {
	query := `SELECT` + registrationColumns + `
		FROM registrations
		WHERE lower(email) = lower($1)
		ORDER BY created_at DESC`
	return r.list(ctx, query, email)
}

func (r *postgresRegistrationRepository) List(ctx context.Context) ([]models.Registration, error) {
	query := `SELECT` + registrationColumns + `
		FROM registrations
		ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *postgresRegistrationRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return count, nil
}

func (r *postgresRegistrationRepository) UpdateStatus(ctx context.Context, id int, status models.RegistrationStatus) error {
	query := `UPDATE registrations SET status = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Registration, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]models.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, *reg)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return regs, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRegistration(row rowScanner) (*models.Registration, error) {
	var reg models.Registration
	var phone sql.NullString
	err := row.Scan(
		&reg.ID,
		&reg.PublicID,
		&reg.EventID,
		&reg.Name,
		&reg.Email,
		&reg.ContactEmail,
		&phone,
		&reg.TeamName,
		pq.Array(&reg.TeamMembers),
		&reg.PaymentScreenshotURL,
		&reg.PaymentTransactionID,
		&reg.Status,
		&reg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	reg.Phone = phone.String
	if event, ok := models.EventByID(reg.EventID); ok {
		reg.EventName = event.Name
	}
	return &reg, nil
}
