package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SwapStatus represents the different statuses that a swap listing can assume.
type SwapStatus string

const (
	SwapStatusActive    SwapStatus = "active"
	SwapStatusPending   SwapStatus = "pending"
	SwapStatusAccepted  SwapStatus = "accepted"
	SwapStatusRejected  SwapStatus = "rejected"
	SwapStatusCancelled SwapStatus = "cancelled"
	SwapStatusExpired   SwapStatus = "expired"
)

// IsTerminal returns whether no further transition (except the manual
// closure of an automatically closed swap) is allowed from the status.
func (s SwapStatus) IsTerminal() bool {
	switch s {
	case SwapStatusAccepted, SwapStatusRejected,
		SwapStatusCancelled, SwapStatusExpired:
		return true
	default:
		return false
	}
}

// IsValid returns whether the status is a known one.
func (s SwapStatus) IsValid() bool {
	switch s {
	case SwapStatusActive, SwapStatusPending, SwapStatusAccepted,
		SwapStatusRejected, SwapStatusCancelled, SwapStatusExpired:
		return true
	default:
		return false
	}
}

func (s SwapStatus) String() string {
	return string(s)
}

// Swap is the data structure representing a listed, exchangeable booking.
type Swap struct {
	Id        string
	OwnerId   string
	BookingId string
	Status    SwapStatus
	CreatedAt time.Time
	// ExpiresAt is the deadline for acting on the swap. It never changes
	// after creation.
	ExpiresAt time.Time
	UpdatedAt time.Time
	// Version is incremented at every persisted status change and is used to
	// detect concurrent transitions.
	Version uint64
}

// NewSwap returns a new active swap for the given booking.
func NewSwap(
	ownerId, bookingId string, createdAt, expiresAt time.Time,
) (*Swap, error) {
	if len(ownerId) <= 0 {
		return nil, ErrSwapMissingOwner
	}
	if len(bookingId) <= 0 {
		return nil, ErrSwapMissingBooking
	}
	if !expiresAt.After(createdAt) {
		return nil, ErrSwapInvalidDeadline
	}

	return &Swap{
		Id:        uuid.New().String(),
		OwnerId:   ownerId,
		BookingId: bookingId,
		Status:    SwapStatusActive,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
		UpdatedAt: createdAt,
	}, nil
}

// IsOpen returns whether the swap can still receive proposals or be settled.
func (s *Swap) IsOpen() bool {
	return s.Status == SwapStatusActive || s.Status == SwapStatusPending
}

// IsTerminal returns whether the swap is in any of the terminal statuses.
func (s *Swap) IsTerminal() bool {
	return s.Status.IsTerminal()
}

// IsPastDeadline returns whether the deadline of the swap has been reached at
// the given time. The check is independent from the stored status so that a
// swap not yet processed by the sweeper is still treated as expired.
func (s *Swap) IsPastDeadline(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// IsOwnedBy returns whether the given user owns the swap.
func (s *Swap) IsOwnedBy(userId string) bool {
	return len(userId) > 0 && s.OwnerId == userId
}

// IsClosedAutomatically returns whether the swap reached a terminal status
// that still allows its owner to close it manually.
func (s *Swap) IsClosedAutomatically() bool {
	return s.Status == SwapStatusExpired || s.Status == SwapStatusCancelled
}

func (s *Swap) String() string {
	return fmt.Sprintf("swap %s (%s, v%d)", s.Id, s.Status, s.Version)
}
