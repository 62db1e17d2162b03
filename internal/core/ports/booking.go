package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// Booking is a read-only snapshot of a booking provided by the booking
// collaborator.
type Booking struct {
	Id            string
	OwnerId       string
	PayoutAccount string
	Value         decimal.Decimal
	Locked        bool
}

// BookingService is the booking/listing collaborator.
type BookingService interface {
	// GetBooking returns the snapshot of the booking with the given id.
	GetBooking(ctx context.Context, bookingId string) (*Booking, error)
	// UnlockBooking makes the booking available again once its swap listing
	// is closed.
	UnlockBooking(ctx context.Context, bookingId string) error
}
