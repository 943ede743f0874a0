package models

import "time"

type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
)

// Registration — заявка участника (или команды) на одно событие.
// Статус меняет только админка: pending -> approved | rejected.
// Email — идентичность подателя (email его сессии, нижний регистр);
// именно по нему работают проверки уникальности. ContactEmail — контакт
// из формы, на него уходит письмо-подтверждение.
type Registration struct {
	ID                   int                `json:"id"`
	PublicID             string             `json:"public_id"`
	EventID              string             `json:"event_id"`
	EventName            string             `json:"event_name"`
	Name                 string             `json:"name"`
	Email                string             `json:"email"`
	ContactEmail         string             `json:"contact_email"`
	Phone                string             `json:"phone,omitempty"`
	TeamName             *string            `json:"team_name,omitempty"`
	TeamMembers          []string           `json:"team_members,omitempty"` // normalized member emails, submission order
	PaymentScreenshotURL string             `json:"payment_screenshot_url"`
	PaymentTransactionID string             `json:"payment_transaction_id"`
	Status               RegistrationStatus `json:"status"`
	CreatedAt            time.Time          `json:"created_at"`
}
