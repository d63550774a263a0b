package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hoangchien/portfolio/internal/mail"
	"github.com/hoangchien/portfolio/internal/metrics"
	"github.com/hoangchien/portfolio/internal/validation"
)

// ContactService relays contact-form messages to the owner.
type ContactService struct {
	sender mail.Sender
	logger *slog.Logger
}

func NewContactService(sender mail.Sender, logger *slog.Logger) *ContactService {
	return &ContactService{sender: sender, logger: logger}
}

// ContactInput is the contact form. All four fields are required.
type ContactInput struct {
	Name    string `json:"name"    validate:"notblank,max=200"`
	Email   string `json:"email"   validate:"required,email,max=254"`
	Subject string `json:"subject" validate:"notblank,max=300"`
	Message string `json:"message" validate:"notblank,max=10000"`
}

// Send validates the form and hands it to the mail relay. A relay failure is
// returned as an internal error.
func (s *ContactService) Send(ctx context.Context, in ContactInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Subject = strings.TrimSpace(in.Subject)
	if err := validation.Struct(&in); err != nil {
		return err
	}

	err := s.sender.Send(ctx, mail.Message{
		Name:    in.Name,
		Email:   in.Email,
		Subject: in.Subject,
		Body:    in.Message,
	})
	metrics.RecordContact(err == nil)
	if err != nil {
		s.logger.Error("contact message not delivered", slog.String("error", err.Error()))
		return fmt.Errorf("service/contact: %w", err)
	}

	s.logger.Info("contact message relayed", slog.String("subject", in.Subject))
	return nil
}
