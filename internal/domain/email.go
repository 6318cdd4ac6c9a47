package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// RegistrationConfirmationEmailData holds data for the registration
// confirmation email sent after a successful registration.
type RegistrationConfirmationEmailData struct {
	Email      string
	Username   string
	EventTitle string
	EventDate  string
	Location   string
}

// EmailService sends application emails. Sends are best-effort: callers log
// failures but never fail the triggering operation.
type EmailService interface {
	SendRegistrationConfirmation(ctx context.Context, data *RegistrationConfirmationEmailData) error
}
