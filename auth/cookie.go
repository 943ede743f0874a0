package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	SessionCookieName = "fest_session"
	StateCookieName   = "oauth_state"

	// Multi-month cookie; the server-side session row carries the same TTL.
	SessionTTL = 90 * 24 * time.Hour
)

var ErrInvalidSessionToken = errors.New("invalid session token")

// CookieCodec подписывает идентификатор серверной сессии в cookie.
// Сам cookie не несёт пользовательских данных — только sid.
type CookieCodec struct {
	secret []byte
	secure bool
}

func NewCookieCodec(secret string, secure bool) *CookieCodec {
	return &CookieCodec{secret: []byte(secret), secure: secure}
}

func (c *CookieCodec) SessionCookie(sessionID string, expiresAt time.Time) *http.Cookie {
	claims := jwt.MapClaims{
		"sid": sessionID,
		"exp": expiresAt.Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		// HMAC signing over in-memory data does not fail in practice.
		signed = ""
	}

	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    signed,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredSessionCookie выдаёт cookie, затирающий сессию (logout).
func (c *CookieCodec) ExpiredSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// DecodeSessionCookie проверяет подпись и возвращает идентификатор сессии.
func (c *CookieCodec) DecodeSessionCookie(value string) (string, error) {
	token, err := jwt.Parse(value, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidSessionToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidSessionToken
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", ErrInvalidSessionToken
	}
	return sid, nil
}

// StateCookie хранит OAuth state nonce на время редиректа к провайдеру.
func (c *CookieCodec) StateCookie(state string) *http.Cookie {
	return &http.Cookie{
		Name:     StateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (c *CookieCodec) ExpiredStateCookie() *http.Cookie {
	return &http.Cookie{
		Name:     StateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
