package ports

import (
	"context"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
)

// Ledger is the append-only external ledger where settlement outcomes are
// attested.
type Ledger interface {
	// Submit appends the entry and waits for its confirmation, returning the
	// ledger transaction handle. Submitting twice an entry with the same
	// idempotency key returns the handle of the first submission.
	Submit(ctx context.Context, entry domain.LedgerEntry) (string, error)
	Close() error
}
