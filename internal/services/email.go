package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventhub/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	if logger == nil {
		logger = slog.Default()
	}
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendRequestStatus tells a requester how their participation request was resolved,
// using the "request_status" template.
func (s *emailService) SendRequestStatus(ctx context.Context, data *domain.RequestStatusEmailData) error {
	if data == nil {
		return fmt.Errorf("request status email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("request_status", data)
	if err != nil {
		return fmt.Errorf("failed to render request_status template: %w", err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send request status email: %w", err)
	}
	s.logger.InfoContext(ctx, "request status email sent", "request_id", data.RequestID, "status", data.Status)
	return nil
}
