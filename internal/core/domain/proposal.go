package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProposalStatus represents the different statuses that a proposal can assume.
type ProposalStatus string

const (
	ProposalStatusPending   ProposalStatus = "pending"
	ProposalStatusAccepted  ProposalStatus = "accepted"
	ProposalStatusRejected  ProposalStatus = "rejected"
	ProposalStatusWithdrawn ProposalStatus = "withdrawn"
	ProposalStatusExpired   ProposalStatus = "expired"
)

const (
	ReasonAcceptedElsewhere = "swap accepted elsewhere"
	ReasonCancelledByOwner  = "swap cancelled by owner"
	ReasonClosedByOwner     = "swap closed by owner"
	ReasonRejectedByOwner   = "rejected by owner"
	ReasonSwapExpired       = "swap expired"
)

// IsTerminal returns whether the status can't change anymore.
func (s ProposalStatus) IsTerminal() bool {
	return s != ProposalStatusPending
}

// IsValid returns whether the status is a known one.
func (s ProposalStatus) IsValid() bool {
	switch s {
	case ProposalStatusPending, ProposalStatusAccepted,
		ProposalStatusRejected, ProposalStatusWithdrawn,
		ProposalStatusExpired:
		return true
	default:
		return false
	}
}

func (s ProposalStatus) String() string {
	return string(s)
}

// Proposal is an offer made by a proposer against a target swap, optionally
// coupled with a cash amount held in escrow.
type Proposal struct {
	Id     string
	SwapId string
	// SourceSwapId is set when the proposer offers one of its own listed
	// bookings in exchange.
	SourceSwapId    string
	ProposerId      string
	Amount          decimal.Decimal
	Status          ProposalStatus
	RejectionReason string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         uint64
}

// NewProposal returns a new pending proposal. A zero amount makes the
// proposal non financial.
func NewProposal(
	swapId, sourceSwapId, proposerId string,
	amount decimal.Decimal, createdAt time.Time,
) (*Proposal, error) {
	if len(swapId) <= 0 {
		return nil, ErrProposalMissingSwap
	}
	if len(proposerId) <= 0 {
		return nil, ErrProposalMissingProposer
	}
	if amount.IsNegative() {
		return nil, ErrProposalInvalidAmount
	}
	if sourceSwapId == swapId {
		return nil, ErrProposalSameSwap
	}
	if len(sourceSwapId) <= 0 && amount.IsZero() {
		return nil, ErrProposalEmptyOffer
	}

	return &Proposal{
		Id:           uuid.New().String(),
		SwapId:       swapId,
		SourceSwapId: sourceSwapId,
		ProposerId:   proposerId,
		Amount:       amount,
		Status:       ProposalStatusPending,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}, nil
}

// IsFinancial returns whether the proposal carries a cash component.
func (p *Proposal) IsFinancial() bool {
	return p.Amount.IsPositive()
}

// IsPending returns whether the proposal is still waiting for a decision.
func (p *Proposal) IsPending() bool {
	return p.Status == ProposalStatusPending
}

// IsProposedBy returns whether the given user made the proposal.
func (p *Proposal) IsProposedBy(userId string) bool {
	return len(userId) > 0 && p.ProposerId == userId
}
