package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/logger"
	"driveeasy-rental-backend/internal/validation"
)

var ErrDeliveryFailed = errors.New("message could not be delivered")

type contactService struct {
	emailSvc EmailService
}

func NewContactService(emailSvc EmailService) ContactService {
	return &contactService{emailSvc: emailSvc}
}

// SendMessage forwards a storefront enquiry to the concierge desk. Delivery
// failures are returned so the visitor can retry.
func (s *contactService) SendMessage(ctx context.Context, msg domain.ContactMessage) error {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Phone = strings.TrimSpace(msg.Phone)
	msg.Subject = strings.TrimSpace(msg.Subject)
	if err := validation.Contact(msg); err != nil {
		recordViolations("contact", err)
		return err
	}
	if err := s.emailSvc.SendContactMessage(ctx, msg); err != nil {
		logger.Error("Failed to forward contact message", "email", msg.Email, "error", err)
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	logger.Info("Contact message forwarded", "email", msg.Email)
	return nil
}
