package oauth

import (
	"testing"

	"github.com/aryngazy/fest-system/config"
	"github.com/aryngazy/fest-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleProvider_Name(t *testing.T) {
	provider := NewGoogleProvider(config.OAuthConfig{})
	assert.Equal(t, models.ProviderGoogle, provider.Name())
}

func TestGoogleProvider_ConsentURL(t *testing.T) {
	provider := NewGoogleProvider(config.OAuthConfig{
		ClientID:    "test-client-id",
		RedirectURL: "http://localhost/auth/google/callback",
	})

	url := provider.ConsentURL("test-state")

	assert.Contains(t, url, "accounts.google.com")
	assert.Contains(t, url, "client_id=test-client-id")
	assert.Contains(t, url, "state=test-state")
	assert.Contains(t, url, "redirect_uri=http")
	assert.Contains(t, url, "userinfo.email")
}

func TestGenerateState(t *testing.T) {
	first, err := GenerateState()
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := GenerateState()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
