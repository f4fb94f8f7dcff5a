package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventcircle/internal/domain"
)

const (
	templateEventInvitation = "event_invitation"
	templateRequestAccepted = "request_accepted"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

func (s *emailService) SendEventInvitation(ctx context.Context, data *domain.EventInvitationEmailData) error {
	if data == nil {
		return fmt.Errorf("event invitation data is nil")
	}
	return s.send(ctx, templateEventInvitation, data.Email, data)
}

func (s *emailService) SendRequestAccepted(ctx context.Context, data *domain.RequestAcceptedEmailData) error {
	if data == nil {
		return fmt.Errorf("request accepted data is nil")
	}
	return s.send(ctx, templateRequestAccepted, data.Email, data)
}

func (s *emailService) send(ctx context.Context, template, to string, data any) error {
	subject, htmlBody, textBody, err := s.renderer.Render(template, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", template, err)
	}
	if err := s.mailer.Send(ctx, to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", template, err)
	}
	s.logger.InfoContext(ctx, "email sent", "template", template, "to", to)
	return nil
}
