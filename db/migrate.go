package db

import (
	"context"
	"database/sql"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		avatar_url VARCHAR(500),
		provider VARCHAR(50) NOT NULL,
		last_login TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	)`,

	// email — идентичность подателя (email сессии), contact_email — контакт
	// из формы. Уникальность считается по первому.
	`CREATE TABLE IF NOT EXISTS registrations (
		id SERIAL PRIMARY KEY,
		public_id VARCHAR(64) UNIQUE NOT NULL,
		event_id VARCHAR(16) NOT NULL,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		contact_email VARCHAR(255) NOT NULL,
		phone VARCHAR(32),
		team_name VARCHAR(255),
		team_members TEXT[],
		payment_screenshot_url VARCHAR(500) NOT NULL,
		payment_transaction_id VARCHAR(255) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	)`,

	// Storage-level backstop for the check-then-insert race on the two
	// identities the workflow can name precisely. Member overlap between
	// rosters has no equivalent constraint and stays best-effort.
	`CREATE UNIQUE INDEX IF NOT EXISTS registrations_event_email_key
		ON registrations (event_id, lower(email))`,
	`CREATE UNIQUE INDEX IF NOT EXISTS registrations_event_team_name_key
		ON registrations (event_id, lower(team_name)) WHERE team_name IS NOT NULL`,

	// user_id is NULL for anonymous sessions (created to hold a return-to
	// URL before the OAuth round trip completes).
	`CREATE TABLE IF NOT EXISTS sessions (
		id VARCHAR(64) PRIMARY KEY,
		user_id INTEGER REFERENCES users(id) ON DELETE CASCADE,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		return_to VARCHAR(500),
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS sessions_expires_at_idx ON sessions (expires_at)`,
}

// Migrate применяет схему при старте. Все стейтменты идемпотентны.
func Migrate(ctx context.Context, conn *sql.DB) error {
	for i, m := range migrations {
		if _, err := conn.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
