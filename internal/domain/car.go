package domain

import "time"

type Car struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Type             string    `json:"type"`
	Brand            string    `json:"brand"`
	Year             int32     `json:"year"`
	PricePerDayCents int32     `json:"price_per_day_cents"`
	Description      string    `json:"description"`
	ImageURL         string    `json:"image_url"`
	Features         []string  `json:"features"`
	Available        bool      `json:"available"`
	RentalID         *string   `json:"rental_id,omitempty"` // Set while an active rental holds the car
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CarInput carries the admin-editable fields of a car. Availability is owned by
// the rental lifecycle and is therefore not part of it.
type CarInput struct {
	Name             string
	Type             string
	Brand            string
	Year             int32
	PricePerDayCents int32
	Description      string
	ImageURL         string
	Features         []string
}

// Apply copies the editable fields onto c.
func (in CarInput) Apply(c *Car) {
	c.Name = in.Name
	c.Type = in.Type
	c.Brand = in.Brand
	c.Year = in.Year
	c.PricePerDayCents = in.PricePerDayCents
	c.Description = in.Description
	c.ImageURL = in.ImageURL
	c.Features = append([]string(nil), in.Features...)
}

func (c Car) Rented() bool {
	return !c.Available
}

type CarTab string

const (
	CarTabAll       CarTab = "all"
	CarTabRented    CarTab = "rented"
	CarTabAvailable CarTab = "available"
)

func ParseCarTab(s string) (CarTab, bool) {
	switch CarTab(s) {
	case "", CarTabAll:
		return CarTabAll, true
	case CarTabRented:
		return CarTabRented, true
	case CarTabAvailable:
		return CarTabAvailable, true
	}
	return "", false
}
