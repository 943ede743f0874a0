package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"

	"github.com/aryngazy/fest-system/models"
)

// Profile — сырой профиль, уже помеченный провайдером на границе.
// Дальше по коду провайдер никогда не выводится из формы полей.
type Profile struct {
	Email     string
	Name      string
	AvatarURL string
	Provider  models.AuthProvider
}

type Provider interface {
	ConsentURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*Profile, error)
	Name() models.AuthProvider
}

// GenerateState выдаёт одноразовый anti-CSRF nonce для OAuth-редиректа.
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
