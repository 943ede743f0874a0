package handlers

import (
	"net/http"

	"github.com/aryngazy/fest-system/middleware"
	"github.com/aryngazy/fest-system/models"
	"github.com/aryngazy/fest-system/services"
	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	registrations *services.RegistrationService
}

func NewUserHandler(registrations *services.RegistrationService) *UserHandler {
	return &UserHandler{registrations: registrations}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MyRegistrations отдаёт заявки текущего пользователя (страница /user/events).
func (h *UserHandler) MyRegistrations(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	regs, err := h.registrations.ListByEmail(r.Context(), user.Email)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"registrations": regs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type EventHandler struct{}

func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// List отдаёт фиксированный каталог событий: взносы и размеры команд
// рисует форма регистрации.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"events": models.AllEvents()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Get отдаёт одно событие по slug (ссылки с публичных страниц).
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, ok := models.EventBySlug(chi.URLParam(r, "slug"))
	if !ok {
		notFoundResponse(w, r)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"event": event}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
