package ports

import (
	"context"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
)

// RepoManager interface defines the methods for swaps, proposals, escrow
// holdings and ledger records.
type RepoManager interface {
	SwapRepository() domain.SwapRepository
	ProposalRepository() domain.ProposalRepository
	EscrowRepository() domain.EscrowRepository
	LedgerRepository() domain.LedgerRepository

	// RunTransaction runs the given handler within a database transaction.
	// The repositories called with the context passed to the handler join
	// the transaction, which is committed if the handler returns no error
	// and rolled back otherwise.
	RunTransaction(
		ctx context.Context,
		readOnly bool,
		handler func(ctx context.Context) (interface{}, error),
	) (interface{}, error)

	Close()
}
