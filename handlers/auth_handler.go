package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/aryngazy/fest-system/auth"
	"github.com/aryngazy/fest-system/middleware"
	"github.com/aryngazy/fest-system/models"
	"github.com/aryngazy/fest-system/oauth"
	"github.com/aryngazy/fest-system/services"
	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	providers map[models.AuthProvider]oauth.Provider
	users     *services.UserService
	sessions  *services.SessionService
	codec     *auth.CookieCodec
	logger    *slog.Logger
}

func NewAuthHandler(
	providers []oauth.Provider,
	users *services.UserService,
	sessions *services.SessionService,
	codec *auth.CookieCodec,
	logger *slog.Logger,
) *AuthHandler {
	byName := make(map[models.AuthProvider]oauth.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &AuthHandler{
		providers: byName,
		users:     users,
		sessions:  sessions,
		codec:     codec,
		logger:    logger,
	}
}

// Login редиректит на страницу согласия провайдера, спрятав anti-CSRF state
// в короткоживущий cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.provider(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	state, err := oauth.GenerateState()
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	http.SetCookie(w, h.codec.StateCookie(state))
	http.Redirect(w, r, provider.ConsentURL(state), http.StatusTemporaryRedirect)
}

// Callback завершает OAuth-рукопожатие: меняет код на профиль, прогоняет его
// через справочник пользователей и привязывает сессию. Мост «сырой профиль →
// нормализованная запись» происходит ровно здесь и ровно один раз за логин.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.provider(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	stateCookie, err := r.Cookie(auth.StateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		http.Redirect(w, r, "/login?error=state_mismatch", http.StatusSeeOther)
		return
	}
	http.SetCookie(w, h.codec.ExpiredStateCookie())

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/login?error=access_denied", http.StatusSeeOther)
		return
	}

	profile, err := provider.ExchangeCode(r.Context(), code)
	if err != nil {
		h.logger.Warn("oauth code exchange failed",
			slog.String("provider", string(provider.Name())), slog.Any("error", err))
		http.Redirect(w, r, "/login?error=exchange_failed", http.StatusSeeOther)
		return
	}

	user, err := h.users.UpsertFromProfile(r.Context(), profile)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	// Живая анонимная сессия (если была) несёт return-to; переиспользуем её.
	var currentSessionID string
	if session, ok := middleware.SessionFromContext(r.Context()); ok {
		currentSessionID = session.ID
	}

	session, err := h.sessions.Login(r.Context(), currentSessionID, user)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	http.SetCookie(w, h.codec.SessionCookie(session.ID, session.ExpiresAt))

	returnTo := h.sessions.TakeReturnTo(r.Context(), session.ID)
	if returnTo == "" || !strings.HasPrefix(returnTo, "/") {
		returnTo = "/user/events"
	}
	http.Redirect(w, r, returnTo, http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if session, ok := middleware.SessionFromContext(r.Context()); ok {
		h.sessions.Logout(r.Context(), session.ID)
	}
	http.SetCookie(w, h.codec.ExpiredSessionCookie())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) provider(r *http.Request) (oauth.Provider, bool) {
	name := models.AuthProvider(chi.URLParam(r, "provider"))
	p, ok := h.providers[name]
	return p, ok
}
