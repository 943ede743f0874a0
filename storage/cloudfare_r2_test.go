package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetPublicURL(t *testing.T) {
	u := &cloudflareR2Uploader{publicBaseURL: "https://cdn.example.com/bucket"}
	assert.Equal(t, "https://cdn.example.com/bucket/payments/x.png", u.GetPublicURL("payments/x.png"))

	// Завершающий слэш в базе не меняет результат.
	u = &cloudflareR2Uploader{publicBaseURL: "https://cdn.example.com/bucket/"}
	assert.Equal(t, "https://cdn.example.com/bucket/payments/x.png", u.GetPublicURL("payments/x.png"))

	u = &cloudflareR2Uploader{publicBaseURL: "https://cdn.example.com"}
	assert.Equal(t, "https://cdn.example.com/payments/x.png", u.GetPublicURL("/payments/x.png"))

	assert.Empty(t, u.GetPublicURL(""))
	assert.Empty(t, (&cloudflareR2Uploader{}).GetPublicURL("payments/x.png"))
}
