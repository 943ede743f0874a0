package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrUnknownReviewAction  = errors.New("unknown review action")
	ErrAdminPasswordInvalid = errors.New("invalid admin password")
	ErrAdminLoginDisabled   = errors.New("admin password login is not configured")
)

// ValidationError — пользовательская ошибка формы регистрации. Текст
// показывается как есть в JSON-ответе {status: error, message}.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Сбои аплоада и стораджа наружу не детализируются: пользователь видит
// одно generic-сообщение, причина остаётся в логах.
var (
	ErrUploadFailed  = errors.New("payment screenshot upload failed")
	ErrStorageFailed = errors.New("registration could not be saved")
)

const GenericRetryMessage = "Oops! Something went wrong. Please try again later"
