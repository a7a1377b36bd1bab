// Package validation checks customer and admin input before anything reaches
// the store. Every check runs; callers get all violations at once.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"driveeasy-rental-backend/internal/domain"
)

const DateLayout = "2006-01-02"

const (
	minIDNumberLen = 8
	maxIDNumberLen = 20
	minLicenseLen  = 8
	maxLicenseLen  = 15
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern    = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	phoneSeparators = strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "")
	idNumberCharset = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
	licenseCharset  = regexp.MustCompile(`^[A-Za-z0-9]+$`)
)

type collector struct {
	violations []domain.FieldViolation
}

func (c *collector) add(field, rule, msg string) {
	c.violations = append(c.violations, domain.FieldViolation{Field: field, Rule: rule, Message: msg})
}

func (c *collector) err() error {
	if len(c.violations) == 0 {
		return nil
	}
	return &domain.ValidationError{Violations: c.violations}
}

// RentalRequest validates the intake form. today is the customer's current
// calendar day; any time-of-day component is ignored.
func RentalRequest(req domain.RentalRequest, today time.Time) error {
	var c collector

	if strings.TrimSpace(req.CustomerName) == "" {
		c.add("customerName", "required", "name is required")
	}
	if !emailPattern.MatchString(req.Email) {
		c.add("email", "format", "must be a valid email address")
	}
	if !phonePattern.MatchString(phoneSeparators.Replace(req.Phone)) {
		c.add("phone", "format", "must be a valid phone number with at most 15 digits")
	}
	if req.RentalDays < domain.MinRentalDays || req.RentalDays > domain.MaxRentalDays {
		c.add("rentalDays", "range", fmt.Sprintf("must be between %d and %d days", domain.MinRentalDays, domain.MaxRentalDays))
	}

	switch n := len(req.IDNumber); {
	case n < minIDNumberLen:
		c.add("idNumber", "min_length", fmt.Sprintf("must be at least %d characters", minIDNumberLen))
	case n > maxIDNumberLen:
		c.add("idNumber", "max_length", fmt.Sprintf("must be at most %d characters", maxIDNumberLen))
	}
	if req.IDNumber != "" && !idNumberCharset.MatchString(req.IDNumber) {
		c.add("idNumber", "charset", "may contain only letters, digits and hyphens")
	}

	switch n := len(req.LicenseNumber); {
	case n < minLicenseLen:
		c.add("licenseNumber", "min_length", fmt.Sprintf("must be at least %d characters", minLicenseLen))
	case n > maxLicenseLen:
		c.add("licenseNumber", "max_length", fmt.Sprintf("must be at most %d characters", maxLicenseLen))
	}
	if req.LicenseNumber != "" && !licenseCharset.MatchString(req.LicenseNumber) {
		c.add("licenseNumber", "charset", "may contain only letters and digits")
	}

	start, err := time.ParseInLocation(DateLayout, req.StartDate, time.UTC)
	if err != nil {
		c.add("startDate", "format", "must be a date in YYYY-MM-DD format")
	} else if start.Before(truncateDay(today)) {
		c.add("startDate", "not_past", "cannot be in the past")
	}

	return c.err()
}

// Car validates the admin car form.
func Car(in domain.CarInput) error {
	var c collector
	if strings.TrimSpace(in.Name) == "" {
		c.add("name", "required", "name is required")
	}
	if strings.TrimSpace(in.Type) == "" {
		c.add("type", "required", "type is required")
	}
	if in.PricePerDayCents <= 0 {
		c.add("price", "positive", "price must be greater than zero")
	}
	if in.Year < 0 {
		c.add("year", "range", "year cannot be negative")
	}
	return c.err()
}

func Contact(msg domain.ContactMessage) error {
	var c collector
	if strings.TrimSpace(msg.Name) == "" {
		c.add("name", "required", "name is required")
	}
	if !emailPattern.MatchString(msg.Email) {
		c.add("email", "format", "must be a valid email address")
	}
	if msg.Phone != "" && !phonePattern.MatchString(phoneSeparators.Replace(msg.Phone)) {
		c.add("phone", "format", "must be a valid phone number with at most 15 digits")
	}
	if strings.TrimSpace(msg.Message) == "" {
		c.add("message", "required", "message is required")
	}
	return c.err()
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
