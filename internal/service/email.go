package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/mailer"
	"driveeasy-rental-backend/internal/metrics"
)

type emailService struct {
	mailer     mailer.Mailer
	concierge  string
	operations string
}

func NewEmailService(m mailer.Mailer, conciergeAddress, operationsAddress string) EmailService {
	return &emailService{
		mailer:     m,
		concierge:  conciergeAddress,
		operations: operationsAddress,
	}
}

func (s *emailService) SendRentalConfirmation(ctx context.Context, r domain.Rental) error {
	body := fmt.Sprintf("Hello %s,\n\nYour rental of the %s is confirmed.\n\n"+
		"Reference: %s\nDuration: %d day(s)\nReturn by: %s\nDaily rate: %s\nTotal: %s\n\n"+
		"Please bring your ID and driving license when you pick up the car.\n\nBest regards,\nThe DriveEasy Team",
		r.CustomerName, r.CarName, r.ID, r.RentalDays,
		r.EndTime.Format(time.RFC1123), FormatCents(int64(r.DailyRateCents)), FormatCents(r.TotalPriceCents))
	return s.send(ctx, "rental_confirmation", mailer.Message{
		To:      r.Email,
		ToName:  r.CustomerName,
		Subject: fmt.Sprintf("Your DriveEasy rental: %s", r.CarName),
		Body:    body,
	})
}

func (s *emailService) SendRentalCompleted(ctx context.Context, r domain.Rental) error {
	body := fmt.Sprintf("Hello %s,\n\nThank you for returning the %s. Your rental %s is now closed.\n\nBest regards,\nThe DriveEasy Team",
		r.CustomerName, r.CarName, r.ID)
	return s.send(ctx, "rental_completed", mailer.Message{
		To:      r.Email,
		ToName:  r.CustomerName,
		Subject: "Thanks for driving with DriveEasy",
		Body:    body,
	})
}

func (s *emailService) SendRentalCancelled(ctx context.Context, r domain.Rental) error {
	body := fmt.Sprintf("Hello %s,\n\nYour rental %s of the %s has been cancelled.\n"+
		"If you did not expect this, please contact us.\n\nBest regards,\nThe DriveEasy Team",
		r.CustomerName, r.ID, r.CarName)
	return s.send(ctx, "rental_cancelled", mailer.Message{
		To:      r.Email,
		ToName:  r.CustomerName,
		Subject: "Your DriveEasy rental was cancelled",
		Body:    body,
	})
}

func (s *emailService) SendContactMessage(ctx context.Context, msg domain.ContactMessage) error {
	subject := msg.Subject
	if strings.TrimSpace(subject) == "" {
		subject = "Website enquiry"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\n", msg.Name, msg.Email)
	if msg.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", msg.Phone)
	}
	b.WriteString("\n")
	b.WriteString(msg.Message)
	return s.send(ctx, "contact", mailer.Message{
		To:      s.concierge,
		ReplyTo: msg.Email,
		Subject: "[Contact] " + subject,
		Body:    b.String(),
	})
}

func (s *emailService) SendExpiredRentalsReport(ctx context.Context, rentals []domain.Rental, now time.Time) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%d active rental(s) are past their end time as of %s.\n\n", len(rentals), now.UTC().Format(time.RFC1123))
	for _, r := range rentals {
		fmt.Fprintf(&b, "- %s: %s rented by %s (%s), due %s\n",
			r.ID, r.CarName, r.CustomerName, r.Phone, r.EndTime.UTC().Format(time.RFC1123))
	}
	return s.send(ctx, "expired_report", mailer.Message{
		To:      s.operations,
		Subject: fmt.Sprintf("Overdue rentals: %d", len(rentals)),
		Body:    b.String(),
	})
}

func (s *emailService) SendFleetSummary(ctx context.Context, st domain.DashboardStats, now time.Time) error {
	body := fmt.Sprintf("Fleet summary for %s\n\nCars: %d (available %d, rented %d)\n"+
		"Rentals: %d (active %d, completed %d, cancelled %d)\n",
		now.UTC().Format("2006-01-02"),
		st.TotalCars, st.AvailableCars, st.RentedCars,
		st.TotalRentals, st.ActiveRentals, st.CompletedRentals, st.CancelledRentals)
	return s.send(ctx, "fleet_summary", mailer.Message{
		To:      s.operations,
		Subject: "DriveEasy fleet summary",
		Body:    body,
	})
}

func (s *emailService) send(ctx context.Context, kind string, msg mailer.Message) error {
	if msg.To == "" {
		metrics.EmailsSent.WithLabelValues(kind, "skipped").Inc()
		return fmt.Errorf("no recipient for %s email", kind)
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		metrics.EmailsSent.WithLabelValues(kind, "error").Inc()
		return err
	}
	metrics.EmailsSent.WithLabelValues(kind, "sent").Inc()
	return nil
}

// FormatCents renders an amount in cents as dollars, e.g. 12345 -> "$123.45".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
