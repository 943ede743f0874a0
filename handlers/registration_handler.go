package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aryngazy/fest-system/middleware"
	"github.com/aryngazy/fest-system/services"
)

// maxUploadSize ограничивает multipart-форму; скриншот платежа больше 8 МБ —
// это точно не скриншот.
const maxUploadSize = 8 << 20

type RegistrationHandler struct {
	registrations *services.RegistrationService
	logger        *slog.Logger
}

func NewRegistrationHandler(registrations *services.RegistrationService, logger *slog.Logger) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations, logger: logger}
}

// Register принимает multipart-форму. Ответ всегда HTTP 200 с tagged-результатом
// {status, message} — фронтенд различает исходы только по полю status.
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.writeResult(w, r, services.SubmitResult{
			Status:  "error",
			Message: "Please log in to register",
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.logger.Warn("failed to parse registration form", slog.Any("error", err))
		h.writeResult(w, r, services.SubmitResult{
			Status:  "error",
			Message: "Could not read the registration form",
		})
		return
	}

	input := services.SubmitInput{
		SubmitterEmail: user.Email,
		EventID:        r.FormValue("event"),
		Name:           r.FormValue("name"),
		Email:          r.FormValue("email"),
		Phone:          r.FormValue("phone"),
		TeamName:       r.FormValue("teamName"),
		TeamMembers:    r.FormValue("teamMembers"),
		TransactionID:  r.FormValue("paymentTransactionId"),
	}

	file, header, err := r.FormFile("paymentScreenshot")
	if err == nil {
		defer file.Close()
		input.Screenshot = file
		input.ScreenshotName = header.Filename
		input.ContentType = header.Header.Get("Content-Type")
	} else if !errors.Is(err, http.ErrMissingFile) {
		h.logger.Warn("failed to read payment screenshot from form", slog.Any("error", err))
		h.writeResult(w, r, services.SubmitResult{
			Status:  "error",
			Message: "Could not read the payment screenshot",
		})
		return
	}

	h.writeResult(w, r, h.registrations.Submit(r.Context(), input))
}

func (h *RegistrationHandler) writeResult(w http.ResponseWriter, r *http.Request, result services.SubmitResult) {
	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
