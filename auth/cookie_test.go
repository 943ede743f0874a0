package auth

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionCookieRoundTrip(t *testing.T) {
	codec := NewCookieCodec("test-secret", true)
	expiresAt := time.Now().Add(time.Hour)

	cookie := codec.SessionCookie("sid-123", expiresAt)

	assert.Equal(t, SessionCookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	sid, err := codec.DecodeSessionCookie(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "sid-123", sid)
}

func TestDecodeSessionCookie_WrongSecret(t *testing.T) {
	cookie := NewCookieCodec("secret-a", false).SessionCookie("sid-123", time.Now().Add(time.Hour))

	_, err := NewCookieCodec("secret-b", false).DecodeSessionCookie(cookie.Value)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestDecodeSessionCookie_Garbage(t *testing.T) {
	codec := NewCookieCodec("test-secret", false)

	_, err := codec.DecodeSessionCookie("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidSessionToken)

	_, err = codec.DecodeSessionCookie("")
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestDecodeSessionCookie_Expired(t *testing.T) {
	codec := NewCookieCodec("test-secret", false)
	cookie := codec.SessionCookie("sid-123", time.Now().Add(-time.Minute))

	_, err := codec.DecodeSessionCookie(cookie.Value)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestExpiredSessionCookieClearsValue(t *testing.T) {
	cookie := NewCookieCodec("test-secret", false).ExpiredSessionCookie()

	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestStateCookie(t *testing.T) {
	codec := NewCookieCodec("test-secret", false)

	cookie := codec.StateCookie("nonce")
	assert.Equal(t, StateCookieName, cookie.Name)
	assert.Equal(t, "nonce", cookie.Value)
	assert.True(t, cookie.HttpOnly)

	assert.Negative(t, codec.ExpiredStateCookie().MaxAge)
}
