package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EscrowStatus represents the different statuses of an escrow holding.
type EscrowStatus string

const (
	EscrowStatusHeld     EscrowStatus = "held"
	EscrowStatusReleased EscrowStatus = "released"
	EscrowStatusReverted EscrowStatus = "reverted"
)

func (s EscrowStatus) String() string {
	return string(s)
}

// EscrowHolding holds the funds set aside for a financial proposal until the
// proposal is settled.
type EscrowHolding struct {
	Id         string
	ProposalId string
	// Account is the proposer's account the funds were taken from.
	Account        string
	Amount         decimal.Decimal
	Status         EscrowStatus
	TransferHandle string
	UpdatedAt      time.Time
	Version        uint64
}

// NewEscrowHolding returns a held escrow holding for the given proposal.
func NewEscrowHolding(
	proposalId, account string, amount decimal.Decimal, now time.Time,
) (*EscrowHolding, error) {
	if len(proposalId) <= 0 {
		return nil, ErrEscrowMissingProposal
	}
	if !amount.IsPositive() {
		return nil, ErrProposalInvalidAmount
	}
	return &EscrowHolding{
		Id:         uuid.New().String(),
		ProposalId: proposalId,
		Account:    account,
		Amount:     amount,
		Status:     EscrowStatusHeld,
		UpdatedAt:  now,
	}, nil
}

// Release brings a held holding to the released status.
func (h *EscrowHolding) Release(amount decimal.Decimal, now time.Time) error {
	if h.Status != EscrowStatusHeld {
		return fmt.Errorf(
			"%w: escrow holding %s is %s", ErrInvalidState, h.Id, h.Status,
		)
	}
	if amount.GreaterThan(h.Amount) {
		return ErrEscrowInsufficientFunds
	}
	h.Status = EscrowStatusReleased
	h.UpdatedAt = now
	return nil
}

// Restore brings back a released holding to held, after its transfer failed.
func (h *EscrowHolding) Restore(now time.Time) {
	if h.Status != EscrowStatusReleased {
		return
	}
	h.Status = EscrowStatusHeld
	h.TransferHandle = ""
	h.UpdatedAt = now
}

// Revert brings a held holding to the reverted status, making the funds
// available to the proposer again.
func (h *EscrowHolding) Revert(now time.Time) error {
	if h.Status == EscrowStatusReverted {
		return nil
	}
	if h.Status != EscrowStatusHeld {
		return fmt.Errorf(
			"%w: escrow holding %s is %s", ErrInvalidState, h.Id, h.Status,
		)
	}
	h.Status = EscrowStatusReverted
	h.UpdatedAt = now
	return nil
}

// CheckEscrowConsistency makes sure the statuses of a financial proposal and
// of its escrow holding are compatible: released if and only if accepted,
// reverted only once the proposal is closed without acceptance, held only
// while the proposal is pending.
func CheckEscrowConsistency(p Proposal, h EscrowHolding) error {
	ok := false
	switch h.Status {
	case EscrowStatusHeld:
		ok = p.Status == ProposalStatusPending
	case EscrowStatusReleased:
		ok = p.Status == ProposalStatusAccepted
	case EscrowStatusReverted:
		ok = p.Status == ProposalStatusRejected ||
			p.Status == ProposalStatusWithdrawn ||
			p.Status == ProposalStatusExpired
	}
	if !ok {
		return fmt.Errorf(
			"%w: escrow %s is %s while proposal %s is %s",
			ErrEscrowInconsistent, h.Id, h.Status, p.Id, p.Status,
		)
	}
	return nil
}
