package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Unauthenticated(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewRegistrationHandler(nil, logger)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/register", strings.NewReader(""))
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	// Регистрация всегда отвечает 200; исход кодируется в теле.
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "Please log in to register", body.Message)
}
