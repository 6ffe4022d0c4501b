package domain

import (
	"context"
	"time"
)

// Mailer sends an email with both HTML and plain-text bodies.
type Mailer interface {
	Send(to, subject, htmlBody, textBody string) error
}

// EmailTemplateRenderer renders a named template with the given data and
// returns the subject and both bodies.
type EmailTemplateRenderer interface {
	Render(name string, data any) (subject, htmlBody, textBody string, err error)
}

// RegistrationEmailData is the data for the registration confirmation email.
type RegistrationEmailData struct {
	Email          string
	FirstName      string
	EventTitle     string
	EventStart     time.Time
	CheckinPayload string
}

// EmailService defines the outbound email operations.
type EmailService interface {
	SendRegistrationConfirmation(ctx context.Context, data *RegistrationEmailData) error
}
