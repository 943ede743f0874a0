package oauth

import (
	"testing"

	"github.com/aryngazy/fest-system/config"
	"github.com/aryngazy/fest-system/models"
	"github.com/stretchr/testify/assert"
)

func TestGitHubProvider_Name(t *testing.T) {
	provider := NewGitHubProvider(config.OAuthConfig{})
	assert.Equal(t, models.ProviderGitHub, provider.Name())
}

func TestGitHubProvider_ConsentURL(t *testing.T) {
	provider := NewGitHubProvider(config.OAuthConfig{
		ClientID:    "test-client-id",
		RedirectURL: "http://localhost/auth/github/callback",
	})

	url := provider.ConsentURL("test-state")

	assert.Contains(t, url, "github.com")
	assert.Contains(t, url, "client_id=test-client-id")
	assert.Contains(t, url, "state=test-state")
	assert.Contains(t, url, "user%3Aemail")
}
