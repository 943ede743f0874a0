package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aryngazy/fest-system/auth"
	"github.com/aryngazy/fest-system/live"
	"github.com/aryngazy/fest-system/middleware"
	"github.com/aryngazy/fest-system/services"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type AdminHandler struct {
	admin    *services.AdminService
	stats    *services.StatsService
	sessions *services.SessionService
	codec    *auth.CookieCodec
	hub      *live.Hub
	logger   *slog.Logger
}

func NewAdminHandler(
	admin *services.AdminService,
	stats *services.StatsService,
	sessions *services.SessionService,
	codec *auth.CookieCodec,
	hub *live.Hub,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		admin:    admin,
		stats:    stats,
		sessions: sessions,
		codec:    codec,
		hub:      hub,
		logger:   logger,
	}
}

// Login поднимает текущую сессию до админской по общему паролю. Письмо из
// ADMIN_EMAILS получает права автоматически при OAuth-входе, пароль — фолбэк.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	password := r.PostFormValue("password")
	if password == "" {
		badRequestResponse(w, r, errors.New("password is required"))
		return
	}

	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		// Пароль можно вводить и без OAuth-логина; сессия создаётся на месте.
		anon, err := h.sessions.CreateAnonymous(r.Context(), "")
		if err != nil {
			serverErrorResponse(w, r, err)
			return
		}
		http.SetCookie(w, h.codec.SessionCookie(anon.ID, anon.ExpiresAt))
		session = anon
	}

	if err := h.sessions.ElevateWithPassword(r.Context(), session.ID, password); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	http.Redirect(w, r, "/admin/stats", http.StatusSeeOther)
}

// Stats — агрегированный дашборд: счётчики и списки пользователей и заявок.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Dashboard(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, stats, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Review обрабатывает GET /admin/{registrationID}/{action} и возвращает
// модератора на дашборд. Неизвестный id или action — 404.
func (h *AdminHandler) Review(w http.ResponseWriter, r *http.Request) {
	registrationID, err := getIDFromURL(r, "registrationID")
	if err != nil {
		notFoundResponse(w, r)
		return
	}
	action := services.ReviewAction(chi.URLParam(r, "action"))

	if _, err := h.admin.SetStatus(r.Context(), registrationID, action); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	http.Redirect(w, r, "/admin/stats", http.StatusSeeOther)
}

// Live апгрейдит соединение до WebSocket и подключает дашборд к фиду
// событий регистраций.
func (h *AdminHandler) Live(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := live.NewClient(h.hub, conn)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
