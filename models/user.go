package models

import "time"

type AuthProvider string

const (
	ProviderGoogle AuthProvider = "google"
	ProviderGitHub AuthProvider = "github"
)

// User создаётся при первом OAuth-входе (upsert по email в нижнем регистре)
// и никогда не удаляется.
type User struct {
	ID        int          `json:"id"`
	Email     string       `json:"email"`
	Name      string       `json:"name"`
	AvatarURL string       `json:"avatar_url,omitempty"`
	Provider  AuthProvider `json:"provider"`
	LastLogin time.Time    `json:"last_login"`
	CreatedAt time.Time    `json:"created_at"`
}
