package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aryngazy/fest-system/live"
	"github.com/aryngazy/fest-system/models"
	"github.com/aryngazy/fest-system/repositories"
	"github.com/aryngazy/fest-system/storage"
	"github.com/google/uuid"
)

// uploadTimeout ограничивает единственный внешний платный вызов.
// Ретраев нет: браузер сам отправит форму повторно.
const uploadTimeout = 15 * time.Second

// SubmitInput — multipart-форма регистрации. SubmitterEmail берётся из
// сессии, а не из формы: именно он участвует в проверках ростера и
// уникальности. Email из формы сохраняется как контактный.
type SubmitInput struct {
	SubmitterEmail string

	EventID       string
	Name          string
	Email         string
	Phone         string
	TeamName      string
	TeamMembers   string // comma-separated emails, raw form value
	TransactionID string

	Screenshot     io.Reader
	ScreenshotName string
	ContentType    string
}

// SubmitResult — tagged-ответ воркфлоу; наружу не выходит ни одной паники
// или необработанной ошибки.
type SubmitResult struct {
	Status       string               `json:"status"`
	Message      string               `json:"message"`
	Registration *models.Registration `json:"-"`
}

type RegistrationService struct {
	regRepo  repositories.RegistrationRepository
	uploader storage.FileUploader
	hub      *live.Hub
	email    *EmailService
	logger   *slog.Logger
}

func NewRegistrationService(
	regRepo repositories.RegistrationRepository,
	uploader storage.FileUploader,
	hub *live.Hub,
	email *EmailService,
	logger *slog.Logger,
) *RegistrationService {
	return &RegistrationService{
		regRepo:  regRepo,
		uploader: uploader,
		hub:      hub,
		email:    email,
		logger:   logger,
	}
}

// Submit прогоняет заявку через весь воркфлоу: валидация, аплоад скриншота,
// проверки уникальности, вставка. Любая ошибка превращается в
// {status: error, message}; HTTP-слой всегда отвечает 200.
func (s *RegistrationService) Submit(ctx context.Context, input SubmitInput) SubmitResult {
	reg, err := s.submit(ctx, input)
	if err != nil {
		if IsValidationError(err) {
			return SubmitResult{Status: "error", Message: err.Error()}
		}
		// Upload/storage failures: log the cause, mask the message.
		s.logger.Error("registration submit failed",
			slog.String("event", input.EventID),
			slog.String("email", input.SubmitterEmail),
			slog.Any("error", err),
		)
		return SubmitResult{Status: "error", Message: GenericRetryMessage}
	}

	if s.hub != nil {
		s.hub.Broadcast(live.EventRegistrationCreated, reg)
	}
	if s.email != nil {
		// Best effort; a lost email never fails the registration.
		if err := s.email.SendRegistrationReceived(reg); err != nil {
			s.logger.Warn("failed to send confirmation email",
				slog.String("email", reg.ContactEmail), slog.Any("error", err))
		}
	}

	return SubmitResult{
		Status:       "success",
		Message:      fmt.Sprintf("Registered for %s successfully", reg.EventName),
		Registration: reg,
	}
}

func (s *RegistrationService) submit(ctx context.Context, input SubmitInput) (*models.Registration, error) {
	// 1. Событие строго из каталога.
	event, ok := models.EventByID(strings.TrimSpace(input.EventID))
	if !ok {
		return nil, validationError("Please select a valid event")
	}

	submitter := NormalizeEmail(input.SubmitterEmail)
	name := strings.TrimSpace(input.Name)
	contactEmail := NormalizeEmail(input.Email)
	if name == "" || contactEmail == "" {
		return nil, validationError("Please fill in the required fields: Name, Email")
	}

	// 2. Командные правила.
	var teamName *string
	var roster []string
	if event.IsTeamEvent() {
		tn := strings.TrimSpace(input.TeamName)
		if tn == "" {
			return nil, validationError("Please enter your team name")
		}

		roster = ParseRoster(input.TeamMembers)
		if len(roster) == 0 {
			return nil, validationError("Please enter your team members' email addresses")
		}
		if len(roster) != event.TeamSize {
			return nil, validationError(fmt.Sprintf(
				"To participate in %s, you need to have %d members in your team", event.Name, event.TeamSize))
		}
		if !rosterContains(roster, submitter) {
			return nil, validationError("Your own email address must be included in the team members list")
		}
		for _, member := range roster {
			if !strings.Contains(member, "@") {
				return nil, validationError(fmt.Sprintf("'%s' is not a valid email address", member))
			}
		}
		if hasDuplicates(roster) {
			return nil, validationError("Team member email addresses must be unique")
		}
		teamName = &tn
	}

	// 3. Телефон: ровно 10 цифр.
	phone := strings.TrimSpace(input.Phone)
	if !isValidPhone(phone) {
		return nil, validationError("Please enter a valid 10-digit phone number")
	}

	// 4. Платёжные поля.
	if input.Screenshot == nil {
		return nil, validationError("Please upload the payment screenshot")
	}
	transactionID := strings.TrimSpace(input.TransactionID)
	if transactionID == "" {
		return nil, validationError("Please enter the payment transaction ID")
	}

	// 5. Ранний дубль-чек по email подателя — до того, как жечь аплоад.
	exists, err := s.regRepo.ExistsByEventAndEmail(ctx, event.ID, submitter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}
	if exists {
		return nil, validationError(fmt.Sprintf("You have already registered for %s", event.Name))
	}

	// 6. Аплоад скриншота. Единственная попытка, фиксированный таймаут.
	uploadCtx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	key := storage.ScreenshotKey(input.ScreenshotName)
	uploaded, err := s.uploader.Upload(uploadCtx, key, input.ContentType, input.Screenshot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	// 7. Повторные проверки уникальности. Отказ здесь оставляет сиротский
	// аплоад — осознанно: ранняя валидация уже отсеяла дешёвые ошибки.
	if err := s.checkUniqueness(ctx, event, submitter, teamName, roster); err != nil {
		return nil, err
	}

	// 8. Вставка. Email — идентичность подателя, тот же, что прошёл проверки
	// шагов 5 и 7; уникальные индексы страхуют гонку двух параллельных заявок.
	reg := &models.Registration{
		PublicID:             uuid.NewString(),
		EventID:              event.ID,
		EventName:            event.Name,
		Name:                 name,
		Email:                submitter,
		ContactEmail:         contactEmail,
		Phone:                phone,
		TeamName:             teamName,
		TeamMembers:          roster,
		PaymentScreenshotURL: uploaded.Location,
		PaymentTransactionID: transactionID,
		Status:               models.RegistrationPending,
	}
	if err := s.regRepo.Create(ctx, reg); err != nil {
		switch {
		case errors.Is(err, repositories.ErrRegistrationEmailConflict):
			return nil, validationError(fmt.Sprintf("You have already registered for %s", event.Name))
		case errors.Is(err, repositories.ErrRegistrationTeamNameConflict):
			return nil, validationError(fmt.Sprintf("Team name '%s' is already taken for %s", *teamName, event.Name))
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}
	return reg, nil
}

func (s *RegistrationService) checkUniqueness(
	ctx context.Context,
	event models.Event,
	submitter string,
	teamName *string,
	roster []string,
) error {
	if event.IsTeamEvent() {
		taken, err := s.regRepo.ExistsByEventAndTeamName(ctx, event.ID, *teamName)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStorageFailed, err)
		}
		if taken {
			return validationError(fmt.Sprintf("Team name '%s' is already taken for %s", *teamName, event.Name))
		}

		registered, err := s.regRepo.ExistsByEventAndMember(ctx, event.ID, roster)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStorageFailed, err)
		}
		if registered {
			return validationError(fmt.Sprintf("One of your team members is already registered for %s", event.Name))
		}
	}

	exists, err := s.regRepo.ExistsByEventAndEmail(ctx, event.ID, submitter)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}
	if exists {
		return validationError(fmt.Sprintf("You have already registered for %s", event.Name))
	}
	return nil
}

// ListByEmail возвращает заявки пользователя (страница "мои события").
func (s *RegistrationService) ListByEmail(ctx context.Context, email string) ([]models.Registration, error) {
	return s.regRepo.ListByEmail(ctx, NormalizeEmail(email))
}

// NormalizeEmail — каноническая форма идентичности: trim + нижний регистр.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParseRoster разбирает строку "a@x.com, b@y.com" в нормализованный список,
// отбрасывая пустые элементы и сохраняя порядок.
func ParseRoster(raw string) []string {
	parts := strings.Split(raw, ",")
	roster := make([]string, 0, len(parts))
	for _, p := range parts {
		p = NormalizeEmail(p)
		if p != "" {
			roster = append(roster, p)
		}
	}
	return roster
}

func rosterContains(roster []string, email string) bool {
	for _, m := range roster {
		if m == email {
			return true
		}
	}
	return false
}

func hasDuplicates(roster []string) bool {
	seen := make(map[string]struct{}, len(roster))
	for _, m := range roster {
		if _, ok := seen[m]; ok {
			return true
		}
		seen[m] = struct{}{}
	}
	return false
}

func isValidPhone(phone string) bool {
	if len(phone) != 10 {
		return false
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
