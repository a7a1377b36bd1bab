package domain

import "time"

type EventType string

const (
	EventRentalStarted   EventType = "rental.started"
	EventRentalCompleted EventType = "rental.completed"
	EventRentalCancelled EventType = "rental.cancelled"
	EventCarCreated      EventType = "car.created"
	EventCarUpdated      EventType = "car.updated"
	EventCarDeleted      EventType = "car.deleted"
)

// Event is published after the store commits the change it describes.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	CarID      string    `json:"car_id"`
	RentalID   string    `json:"rental_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
