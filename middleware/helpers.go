package middleware

import (
	"context"

	"github.com/aryngazy/fest-system/models"
)

func SessionFromContext(ctx context.Context) (*models.Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(*models.Session)
	return session, ok
}

// UserFromContext возвращает пользователя аутентифицированной сессии.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	session, ok := SessionFromContext(ctx)
	if !ok || session.User == nil {
		return nil, false
	}
	return session.User, true
}
