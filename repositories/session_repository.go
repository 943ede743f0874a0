package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aryngazy/fest-system/models"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	// GetByID возвращает сессию вместе с данными пользователя (если она
	// не анонимная).
	GetByID(ctx context.Context, id string) (*models.Session, error)
	// SetUser привязывает пользователя к сессии после OAuth-колбэка.
	SetUser(ctx context.Context, id string, userID int, isAdmin bool) error
	SetAdmin(ctx context.Context, id string, isAdmin bool) error
	SetReturnTo(ctx context.Context, id string, returnTo string) error
	// TakeReturnTo читает и сбрасывает одноразовый return-to URL.
	TakeReturnTo(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type postgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(db *sql.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

func (r *postgresSessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, is_admin, return_to, expires_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		session.ID,
		session.UserID,
		session.IsAdmin,
		session.ReturnTo,
		session.ExpiresAt,
	).Scan(&session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *postgresSessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	query := `
		SELECT
			s.id, s.user_id, s.is_admin, s.return_to, s.created_at, s.expires_at,
			u.id, u.email, u.name, u.avatar_url, u.provider, u.last_login, u.created_at
		FROM sessions s
		LEFT JOIN users u ON s.user_id = u.id
		WHERE s.id = $1`

	var session models.Session
	var returnTo sql.NullString

	var userID sql.NullInt64
	var userEmail, userName, userAvatar, userProvider sql.NullString
	var userLastLogin, userCreatedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.UserID,
		&session.IsAdmin,
		&returnTo,
		&session.CreatedAt,
		&session.ExpiresAt,
		&userID,
		&userEmail,
		&userName,
		&userAvatar,
		&userProvider,
		&userLastLogin,
		&userCreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	session.ReturnTo = returnTo.String
	if userID.Valid {
		session.User = &models.User{
			ID:        int(userID.Int64),
			Email:     userEmail.String,
			Name:      userName.String,
			AvatarURL: userAvatar.String,
			Provider:  models.AuthProvider(userProvider.String),
			LastLogin: userLastLogin.Time,
			CreatedAt: userCreatedAt.Time,
		}
	}
	return &session, nil
}

func (r *postgresSessionRepository) SetUser(ctx context.Context, id string, userID int, isAdmin bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET user_id = $1, is_admin = $2 WHERE id = $3`,
		userID, isAdmin, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSessionNotFound)
}

func (r *postgresSessionRepository) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE sessions SET is_admin = $1 WHERE id = $2`, isAdmin, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSessionNotFound)
}

func (r *postgresSessionRepository) SetReturnTo(ctx context.Context, id string, returnTo string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE sessions SET return_to = NULLIF($1, '') WHERE id = $2`, returnTo, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSessionNotFound)
}

func (r *postgresSessionRepository) TakeReturnTo(ctx context.Context, id string) (string, error) {
	// Read-and-clear in one transaction so the URL is consumed exactly once.
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var returnTo sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT return_to FROM sessions WHERE id = $1 FOR UPDATE`, id).Scan(&returnTo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrSessionNotFound
		}
		return "", err
	}
	if _, err = tx.ExecContext(ctx, `UPDATE sessions SET return_to = NULL WHERE id = $1`, id); err != nil {
		return "", err
	}
	if err = tx.Commit(); err != nil {
		return "", err
	}
	return returnTo.String, nil
}

func (r *postgresSessionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSessionNotFound)
}

func (r *postgresSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
