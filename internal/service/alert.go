package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type alertService struct {
	apiKey   string
	from     string
	opsEmail string
}

// NewAlertService sends operator alerts through SendGrid. Used by the
// reconciliation job when a vehicle-status push keeps failing.
func NewAlertService(apiKey, from, opsEmail string) AlertService {
	return &alertService{
		apiKey:   apiKey,
		from:     from,
		opsEmail: opsEmail,
	}
}

func (s *alertService) SendOpsAlert(ctx context.Context, subject, message string) error {
	sender := mail.NewEmail("Swiftride Rental Service", s.from)
	recipient := mail.NewEmail("Operations", s.opsEmail)
	email := mail.NewSingleEmail(sender, subject, recipient, message, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(email)
	if err != nil {
		return fmt.Errorf("failed to send ops alert: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}
