package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// TransferStatus is the status of a transfer reported by the escrow provider.
type TransferStatus int

const (
	TransferStatusPending TransferStatus = iota
	TransferStatusConfirmed
	TransferStatusFailed
)

func (s TransferStatus) String() string {
	switch s {
	case TransferStatusConfirmed:
		return "confirmed"
	case TransferStatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// EscrowProvider is the external service holding the escrowed funds.
type EscrowProvider interface {
	// PlaceHold sets aside the given amount from the account and returns the
	// provider reference of the hold.
	PlaceHold(
		ctx context.Context, holdingId, account string, amount decimal.Decimal,
	) error
	// Transfer moves the given amount of a hold to the recipient account and
	// returns the handle of the transfer.
	Transfer(
		ctx context.Context, holdingId, toAccount string, amount decimal.Decimal,
	) (string, error)
	// TransferStatus returns the status of the transfer with the given
	// handle.
	TransferStatus(ctx context.Context, handle string) (TransferStatus, error)
	// CancelTransfer aborts a transfer not yet confirmed.
	CancelTransfer(ctx context.Context, handle string) error
	// ReleaseHold gives the held funds back to the source account.
	ReleaseHold(ctx context.Context, holdingId string) error
}
