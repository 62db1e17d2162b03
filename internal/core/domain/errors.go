package domain

import "errors"

var (
	// ErrForbidden is returned when the acting user is not allowed to perform
	// the requested action.
	ErrForbidden = errors.New("you are not allowed to perform this action")
	// ErrInvalidState is returned when the requested transition is not valid
	// from the current status.
	ErrInvalidState = errors.New("action not allowed in the current status")
	// ErrExpired is returned when the deadline of the swap has passed.
	ErrExpired = errors.New("this swap has expired")
	// ErrConflict is returned when a concurrent action finalized the subject
	// first.
	ErrConflict = errors.New("someone else already decided this")
	// ErrTransferFailed is returned when moving the escrowed funds failed. The
	// whole settlement is rolled back.
	ErrTransferFailed = errors.New("escrow transfer failed, retry later")
	// ErrLedgerWriteDeferred is returned when the outcome has been committed
	// but could not be attested on the ledger yet.
	ErrLedgerWriteDeferred = errors.New("ledger write deferred for retry")
	// ErrAlreadyClosed is returned when closing an already closed swap.
	ErrAlreadyClosed = errors.New("swap is already closed")
	// ErrNotFound is returned when the subject does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSwapMissingOwner ...
	ErrSwapMissingOwner = errors.New("swap owner must not be empty")
	// ErrSwapMissingBooking ...
	ErrSwapMissingBooking = errors.New("swap booking must not be empty")
	// ErrSwapInvalidDeadline ...
	ErrSwapInvalidDeadline = errors.New("swap deadline must be in the future")
	// ErrProposalMissingSwap ...
	ErrProposalMissingSwap = errors.New("proposal target swap must not be empty")
	// ErrProposalMissingProposer ...
	ErrProposalMissingProposer = errors.New("proposer must not be empty")
	// ErrProposalInvalidAmount ...
	ErrProposalInvalidAmount = errors.New("proposal amount must be positive")
	// ErrProposalSameSwap ...
	ErrProposalSameSwap = errors.New("source and target swap must differ")
	// ErrProposalEmptyOffer ...
	ErrProposalEmptyOffer = errors.New(
		"proposal must offer either a booking or an amount",
	)
	// ErrProposalOwnSwap ...
	ErrProposalOwnSwap = errors.New("cannot make a proposal on your own swap")
	// ErrEscrowMissingProposal ...
	ErrEscrowMissingProposal = errors.New("escrow proposal must not be empty")
	// ErrEscrowInsufficientFunds ...
	ErrEscrowInsufficientFunds = errors.New(
		"transfer amount exceeds escrowed funds",
	)
	// ErrEscrowInconsistent is returned when a proposal and its escrow holding
	// are about to be persisted with incompatible statuses.
	ErrEscrowInconsistent = errors.New("escrow and proposal statuses mismatch")
)
