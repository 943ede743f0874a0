package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aryngazy/fest-system/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	// Upsert создаёт пользователя по email (нижний регистр) или обновляет
	// профиль и last_login существующего. Возвращает актуальную запись.
	Upsert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int, error)
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) Upsert(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, name, avatar_url, provider, last_login)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			avatar_url = EXCLUDED.avatar_url,
			provider = EXCLUDED.provider,
			last_login = NOW()
		RETURNING id, last_login, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Email,
		user.Name,
		user.AvatarURL,
		user.Provider,
	).Scan(&user.ID, &user.LastLogin, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `
		SELECT id, email, name, avatar_url, provider, last_login, created_at
		FROM users
		WHERE id = $1`
	return r.scanUser(ctx, query, id)
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, name, avatar_url, provider, last_login, created_at
		FROM users
		WHERE email = $1`
	return r.scanUser(ctx, query, email)
}

func (r *postgresUserRepository) List(ctx context.Context) ([]models.User, error) {
	query := `
		SELECT id, email, name, avatar_url, provider, last_login, created_at
		FROM users
		ORDER BY last_login DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		var avatarURL sql.NullString
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.Name,
			&avatarURL,
			&user.Provider,
			&user.LastLogin,
			&user.CreatedAt,
		); err != nil {
			return nil, err
		}
		user.AvatarURL = avatarURL.String
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *postgresUserRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *postgresUserRepository) scanUser(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	user := &models.User{}
	var avatarURL sql.NullString
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&avatarURL,
		&user.Provider,
		&user.LastLogin,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.AvatarURL = avatarURL.String
	return user, nil
}
