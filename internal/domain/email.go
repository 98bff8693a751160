package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// RequestStatusEmailData holds data for the participation request status email.
type RequestStatusEmailData struct {
	Email      string
	Name       string
	EventTitle string
	RequestID  int64
	Status     RequestStatus
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendRequestStatus(ctx context.Context, data *RequestStatusEmailData) error
}
