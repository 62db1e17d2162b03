package inmemory

import (
	"fmt"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
)

var (
	// ErrSwapNotFound ...
	ErrSwapNotFound = fmt.Errorf("swap %w", domain.ErrNotFound)
	// ErrProposalNotFound ...
	ErrProposalNotFound = fmt.Errorf("proposal %w", domain.ErrNotFound)
	// ErrHoldingNotFound ...
	ErrHoldingNotFound = fmt.Errorf("escrow holding %w", domain.ErrNotFound)
	// ErrRecordNotFound ...
	ErrRecordNotFound = fmt.Errorf("ledger record %w", domain.ErrNotFound)
	// ErrPendingWriteNotFound ...
	ErrPendingWriteNotFound = fmt.Errorf("pending ledger write %w", domain.ErrNotFound)
	// ErrAlreadyExists ...
	ErrAlreadyExists = fmt.Errorf("entity already exists")
)

func versionConflict(kind, id string) error {
	return fmt.Errorf("%w: %s %s was modified concurrently", domain.ErrConflict, kind, id)
}
