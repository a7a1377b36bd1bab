package domain

import "time"

type RentalStatus string

const (
	RentalStatusPending   RentalStatus = "pending"
	RentalStatusActive    RentalStatus = "active"
	RentalStatusCompleted RentalStatus = "completed"
	RentalStatusCancelled RentalStatus = "cancelled"
)

func (s RentalStatus) Valid() bool {
	switch s {
	case RentalStatusPending, RentalStatusActive, RentalStatusCompleted, RentalStatusCancelled:
		return true
	}
	return false
}

// Holds reports whether a rental in this status keeps its car unavailable.
func (s RentalStatus) Holds() bool {
	return s == RentalStatusActive
}

const (
	MinRentalDays = 1
	MaxRentalDays = 30
	RentalDay     = 24 * time.Hour
)

type Rental struct {
	ID            string `json:"id"`
	CarID         string `json:"car_id"`
	CarName       string `json:"car_name"`
	CarType       string `json:"car_type"`
	CustomerName  string `json:"customer_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	IDNumber      string `json:"id_number"`
	LicenseNumber string `json:"license_number"`
	RentalDays    int32  `json:"rental_days"`
	StartDate     string `json:"start_date"` // Requested calendar day, YYYY-MM-DD
	// The rental clock starts at submission time, not at StartDate.
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	// Price snapshot taken from the car when the rental was created.
	DailyRateCents  int32        `json:"daily_rate_cents"`
	TotalPriceCents int64        `json:"total_price_cents"`
	Status          RentalStatus `json:"status"`
	IDFileURL       string       `json:"id_file_url,omitempty"`
	LicenseFileURL  string       `json:"license_file_url,omitempty"`
	CompletedAt     *time.Time   `json:"completed_at,omitempty"`
	CancelledAt     *time.Time   `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// RentalRequest is what a customer submits through the intake form.
type RentalRequest struct {
	CarID          string
	CustomerName   string
	Email          string
	Phone          string
	IDNumber       string
	LicenseNumber  string
	RentalDays     int32
	StartDate      string
	IDFileURL      string
	LicenseFileURL string
}

func RentalTotalCents(days, dailyRateCents int32) int64 {
	return int64(days) * int64(dailyRateCents)
}

func RentalEnd(start time.Time, days int32) time.Time {
	return start.Add(time.Duration(days) * RentalDay)
}

// NewActiveRental builds the rental record for car starting at now.
func NewActiveRental(req RentalRequest, car Car, now time.Time) Rental {
	now = now.UTC()
	return Rental{
		CarID:           car.ID,
		CarName:         car.Name,
		CarType:         car.Type,
		CustomerName:    req.CustomerName,
		Email:           req.Email,
		Phone:           req.Phone,
		IDNumber:        req.IDNumber,
		LicenseNumber:   req.LicenseNumber,
		RentalDays:      req.RentalDays,
		StartDate:       req.StartDate,
		StartTime:       now,
		EndTime:         RentalEnd(now, req.RentalDays),
		DailyRateCents:  car.PricePerDayCents,
		TotalPriceCents: RentalTotalCents(req.RentalDays, car.PricePerDayCents),
		Status:          RentalStatusActive,
		IDFileURL:       req.IDFileURL,
		LicenseFileURL:  req.LicenseFileURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Transition moves r to next, stamping completion or cancellation times.
func (r *Rental) Transition(next RentalStatus, now time.Time) error {
	if !canTransition(r.Status, next) {
		return &TransitionError{RentalID: r.ID, From: r.Status, To: next}
	}
	now = now.UTC()
	r.Status = next
	r.UpdatedAt = now
	switch next {
	case RentalStatusCompleted:
		r.CompletedAt = &now
	case RentalStatusCancelled:
		r.CancelledAt = &now
	}
	return nil
}

func canTransition(from, to RentalStatus) bool {
	switch to {
	case RentalStatusActive:
		return from == RentalStatusPending
	case RentalStatusCompleted:
		return from == RentalStatusActive
	case RentalStatusCancelled:
		return from == RentalStatusPending || from == RentalStatusActive
	}
	return false
}

func (r Rental) Expired(now time.Time) bool {
	return r.Status == RentalStatusActive && !now.Before(r.EndTime)
}
