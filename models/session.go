package models

import "time"

// Session — серверная сессия; браузер держит только подписанный cookie
// с её идентификатором. Сессия может быть анонимной (до логина), тогда
// она хранит лишь одноразовый return-to URL. ReturnTo читается и
// сбрасывается после логина.
type Session struct {
	ID        string    `json:"id"`
	UserID    *int      `json:"user_id,omitempty"`
	IsAdmin   bool      `json:"is_admin"`
	ReturnTo  string    `json:"return_to,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	User *User `json:"user,omitempty"`
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

func (s *Session) Authenticated() bool {
	return s.User != nil
}
