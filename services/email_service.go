package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/aryngazy/fest-system/config"
	"github.com/aryngazy/fest-system/models"
)

var registrationReceivedTmpl = template.Must(template.New("registration_received").Parse(`
<h2>We got your registration!</h2>
<p>Hi {{.Name}},</p>
<p>Your registration for <b>{{.EventName}}</b> has been received and is pending review.
We verify every payment manually, so this can take up to a day.</p>
{{if .TeamName}}<p>Team: <b>{{.TeamName}}</b></p>{{end}}
<p>Transaction ID: {{.PaymentTransactionID}}</p>
<p>See you at the fest!</p>
`))

type EmailService struct {
	cfg *config.Config
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{cfg: cfg}
}

// Enabled — SMTP опционален: без настроек письма просто не отправляются.
func (s *EmailService) Enabled() bool {
	return s.cfg.SMTPHost != ""
}

func (s *EmailService) SendRegistrationReceived(reg *models.Registration) error {
	if !s.Enabled() {
		return nil
	}
	var body bytes.Buffer
	if err := registrationReceivedTmpl.Execute(&body, reg); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}
	subject := fmt.Sprintf("Registration received: %s", reg.EventName)
	return s.send([]string{reg.ContactEmail}, subject, body.String())
}

func (s *EmailService) send(to []string, subject string, body string) error {
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)

	msg := []byte("To: " + to[0] + "\r\n" +
		"From: " + s.cfg.SMTPFrom + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	tlsconfig := &tls.Config{
		ServerName: s.cfg.SMTPHost,
	}

	var client *smtp.Client
	if s.cfg.SMTPPort == 465 {
		// Implicit TLS
		conn, err := tls.Dial("tcp", addr, tlsconfig)
		if err != nil {
			return fmt.Errorf("smtp tls dial failed: %w", err)
		}
		defer conn.Close()
		client, err = smtp.NewClient(conn, s.cfg.SMTPHost)
		if err != nil {
			return fmt.Errorf("smtp client failed: %w", err)
		}
	} else {
		// STARTTLS (587)
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("smtp dial failed: %w", err)
		}
		client = c
		if err = client.StartTLS(tlsconfig); err != nil {
			client.Close()
			return fmt.Errorf("smtp starttls failed: %w", err)
		}
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth failed: %w", err)
	}
	if err := client.Mail(s.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("smtp MAIL failed: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp RCPT failed: %w", err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA failed: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("smtp write failed: %w", err)
	}
	return w.Close()
}
