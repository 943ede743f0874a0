package middleware

import (
	"context"
	"net/http"

	"github.com/aryngazy/fest-system/auth"
	"github.com/aryngazy/fest-system/services"
)

type contextKey string

const sessionContextKey contextKey = "session"

// LoadSession резолвит подписанный cookie в серверную сессию и кладёт её в
// контекст. Невалидный или истёкший cookie молча игнорируется — запрос идёт
// дальше как анонимный. Живой cookie обновляется на каждом запросе.
func LoadSession(codec *auth.CookieCodec, sessions *services.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			sid, err := codec.DecodeSessionCookie(cookie.Value)
			if err != nil {
				http.SetCookie(w, codec.ExpiredSessionCookie())
				next.ServeHTTP(w, r)
				return
			}

			session, err := sessions.Get(r.Context(), sid)
			if err != nil {
				http.SetCookie(w, codec.ExpiredSessionCookie())
				next.ServeHTTP(w, r)
				return
			}

			http.SetCookie(w, codec.SessionCookie(session.ID, session.ExpiresAt))
			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePageUser охраняет HTML-страницы: аноним уезжает на /login, а его
// исходный URL запоминается как одноразовый return-to.
func RequirePageUser(codec *auth.CookieCodec, sessions *services.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session, ok := SessionFromContext(r.Context()); ok && session.Authenticated() {
				next.ServeHTTP(w, r)
				return
			}

			returnTo := r.URL.RequestURI()
			if session, ok := SessionFromContext(r.Context()); ok {
				_ = sessions.RememberReturnTo(r.Context(), session.ID, returnTo)
			} else if anon, err := sessions.CreateAnonymous(r.Context(), returnTo); err == nil {
				http.SetCookie(w, codec.SessionCookie(anon.ID, anon.ExpiresAt))
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
		})
	}
}

// RequireAPIUser охраняет JSON-эндпоинты.
func RequireAPIUser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session, ok := SessionFromContext(r.Context()); ok && session.Authenticated() {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":"error","message":"Please log in first"}`))
		})
	}
}

// RequireAdmin прячет админку: для всех, кроме админов, маршрута «не
// существует» — ответ всегда 404, никакого отдельного forbidden.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFromContext(r.Context())
			if !ok || !session.IsAdmin {
				http.NotFound(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
