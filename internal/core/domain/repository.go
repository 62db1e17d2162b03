package domain

import (
	"context"
	"time"
)

// The repositories below are meant to be used within a transaction opened by
// the repo manager: the ForUpdate methods lock the returned rows until the
// transaction ends, while the Update methods persist the entity only if its
// version matches the stored one, returning ErrConflict otherwise.

// SwapRepository is the abstraction for any kind of database intended to
// persist Swaps.
type SwapRepository interface {
	// AddSwap adds a new swap to the repository.
	AddSwap(ctx context.Context, swap *Swap) error
	// GetSwap returns the swap with the given id.
	GetSwap(ctx context.Context, swapId string) (*Swap, error)
	// GetSwapForUpdate returns the swap with the given id and locks it.
	GetSwapForUpdate(ctx context.Context, swapId string) (*Swap, error)
	// GetExpiredSwaps returns up to limit open swaps whose deadline is
	// reached at the given time, oldest deadline first.
	GetExpiredSwaps(
		ctx context.Context, now time.Time, limit int,
	) ([]Swap, error)
	// UpdateSwap persists the status of the given swap and bumps its version.
	UpdateSwap(ctx context.Context, swap *Swap) error
}

// ProposalRepository is the abstraction for any kind of database intended to
// persist Proposals.
type ProposalRepository interface {
	// AddProposal adds a new proposal to the repository.
	AddProposal(ctx context.Context, proposal *Proposal) error
	// GetProposal returns the proposal with the given id.
	GetProposal(ctx context.Context, proposalId string) (*Proposal, error)
	// GetProposalForUpdate returns the proposal with the given id and locks it.
	GetProposalForUpdate(
		ctx context.Context, proposalId string,
	) (*Proposal, error)
	// GetProposalsForSwap returns all the proposals made on a swap.
	GetProposalsForSwap(ctx context.Context, swapId string) ([]Proposal, error)
	// GetPendingProposalsForSwap returns the pending proposals made on a swap
	// and locks them.
	GetPendingProposalsForSwap(
		ctx context.Context, swapId string,
	) ([]Proposal, error)
	// UpdateProposal persists the status of the given proposal and bumps its
	// version.
	UpdateProposal(ctx context.Context, proposal *Proposal) error
}

// EscrowRepository is the abstraction for any kind of database intended to
// persist EscrowHoldings.
type EscrowRepository interface {
	// AddHolding adds a new escrow holding to the repository.
	AddHolding(ctx context.Context, holding *EscrowHolding) error
	// GetHolding returns the holding with the given id.
	GetHolding(ctx context.Context, holdingId string) (*EscrowHolding, error)
	// GetHoldingForUpdate returns the holding with the given id and locks it.
	GetHoldingForUpdate(
		ctx context.Context, holdingId string,
	) (*EscrowHolding, error)
	// GetHoldingByProposal returns the holding of the given proposal.
	GetHoldingByProposal(
		ctx context.Context, proposalId string,
	) (*EscrowHolding, error)
	// UpdateHolding persists the status of the given holding and bumps its
	// version.
	UpdateHolding(ctx context.Context, holding *EscrowHolding) error
}

// LedgerRepository is the abstraction for any kind of database intended to
// persist LedgerRecords and PendingLedgerWrites.
type LedgerRepository interface {
	// AddRecord adds a record unless one with the same subject and outcome
	// already exists, in which case it returns false.
	AddRecord(ctx context.Context, record *LedgerRecord) (bool, error)
	// GetRecord returns the record for the given subject and outcome.
	GetRecord(
		ctx context.Context, subjectId, outcome string,
	) (*LedgerRecord, error)
	// GetRecordsForSubject returns all the records of a subject.
	GetRecordsForSubject(
		ctx context.Context, subjectId string,
	) ([]LedgerRecord, error)
	// AddPendingWrite adds a marker unless one for the same subject and
	// outcome already exists.
	AddPendingWrite(ctx context.Context, write *PendingLedgerWrite) error
	// GetPendingWrite returns the marker for the given subject and outcome.
	GetPendingWrite(
		ctx context.Context, subjectId, outcome string,
	) (*PendingLedgerWrite, error)
	// UpdatePendingWrite persists state, attempts and last error of a marker.
	UpdatePendingWrite(ctx context.Context, write *PendingLedgerWrite) error
	// DeletePendingWrite removes the marker for the given subject and outcome.
	DeletePendingWrite(ctx context.Context, subjectId, outcome string) error
	// GetPendingWrites returns up to limit deferred markers and queued ones
	// not updated since the given time.
	GetPendingWrites(
		ctx context.Context, queuedBefore time.Time, limit int,
	) ([]PendingLedgerWrite, error)
	// GetUnattestedProposals returns up to limit terminal proposals updated
	// before the given time that have neither a record nor a marker for
	// their current status.
	GetUnattestedProposals(
		ctx context.Context, updatedBefore time.Time, limit int,
	) ([]Proposal, error)
}
