package domain

import (
	"fmt"
	"time"
)

// Transition is the change set produced by a state machine operation. The
// functions of this file never touch their arguments: they return updated
// copies that the caller is in charge of persisting atomically.
type Transition struct {
	// Swap is the updated swap, always set.
	Swap Swap
	// SwapChanged tells whether the swap status has changed.
	SwapChanged bool
	// Proposals are the proposals whose status changed, the one targeted by
	// the operation first.
	Proposals []Proposal
	// Outcome is the headline result of the operation.
	Outcome string
	// Reason optionally explains a rejection.
	Reason string
}

// LedgerEntries returns an entry for every subject that reached a terminal
// status with this transition.
func (t *Transition) LedgerEntries(now time.Time) []LedgerEntry {
	entries := make([]LedgerEntry, 0, len(t.Proposals)+1)
	if t.SwapChanged && t.Swap.IsTerminal() {
		entries = append(entries, LedgerEntry{
			SubjectId:    t.Swap.Id,
			SubjectType:  SubjectSwap,
			Outcome:      t.Swap.Status.String(),
			Participants: []string{t.Swap.OwnerId},
			Timestamp:    now,
		})
	}
	for _, p := range t.Proposals {
		if !p.Status.IsTerminal() {
			continue
		}
		entries = append(entries, LedgerEntry{
			SubjectId:    p.Id,
			SubjectType:  SubjectProposal,
			Outcome:      p.Status.String(),
			Participants: []string{t.Swap.OwnerId, p.ProposerId},
			Timestamp:    now,
		})
	}
	return entries
}

// Target returns the proposal targeted by the operation, if any.
func (t *Transition) Target() *Proposal {
	if len(t.Proposals) <= 0 {
		return nil
	}
	return &t.Proposals[0]
}

// Propose validates that the swap can receive a new proposal and returns it
// in pending status.
func Propose(swap Swap, now time.Time) (Swap, error) {
	if swap.IsTerminal() {
		return swap, fmt.Errorf(
			"%w: swap %s is %s", ErrInvalidState, swap.Id, swap.Status,
		)
	}
	if swap.IsPastDeadline(now) {
		return swap, ErrExpired
	}
	if swap.Status == SwapStatusActive {
		swap.Status = SwapStatusPending
		swap.UpdatedAt = now
	}
	return swap, nil
}

// Accept brings the target proposal and its swap to the accepted status and
// rejects every other pending proposal of the swap. The deadline is checked
// against the given time, regardless of the stored status.
func Accept(
	swap Swap, target Proposal, siblings []Proposal, now time.Time,
) (*Transition, error) {
	if target.SwapId != swap.Id {
		return nil, fmt.Errorf(
			"%w: proposal %s does not belong to swap %s",
			ErrInvalidState, target.Id, swap.Id,
		)
	}
	if target.Status == ProposalStatusExpired ||
		swap.Status == SwapStatusExpired {
		return nil, ErrExpired
	}
	if !target.IsPending() {
		return nil, fmt.Errorf(
			"%w: proposal %s is %s", ErrInvalidState, target.Id, target.Status,
		)
	}
	if swap.IsTerminal() {
		return nil, fmt.Errorf(
			"%w: swap %s is %s", ErrInvalidState, swap.Id, swap.Status,
		)
	}
	if swap.IsPastDeadline(now) {
		return nil, ErrExpired
	}

	swap.Status = SwapStatusAccepted
	swap.UpdatedAt = now
	target.Status = ProposalStatusAccepted
	target.UpdatedAt = now

	t := &Transition{
		Swap:        swap,
		SwapChanged: true,
		Proposals:   []Proposal{target},
		Outcome:     ProposalStatusAccepted.String(),
	}
	for _, p := range siblings {
		if p.Id == target.Id || !p.IsPending() {
			continue
		}
		p.Status = ProposalStatusRejected
		p.RejectionReason = ReasonAcceptedElsewhere
		p.UpdatedAt = now
		t.Proposals = append(t.Proposals, p)
	}
	return t, nil
}

// Reject brings a pending proposal to the rejected status. Swaps that are
// already accepted reject no further proposals, while swaps closed
// automatically still allow the cleanup of their leftover proposals.
func Reject(
	swap Swap, target Proposal, siblings []Proposal, reason string,
	now time.Time,
) (*Transition, error) {
	if err := validatePendingOnSwap(swap, target); err != nil {
		return nil, err
	}
	if len(reason) <= 0 {
		reason = ReasonRejectedByOwner
	}

	target.Status = ProposalStatusRejected
	target.RejectionReason = reason
	target.UpdatedAt = now

	t := &Transition{
		Proposals: []Proposal{target},
		Outcome:   ProposalStatusRejected.String(),
		Reason:    reason,
	}
	t.Swap, t.SwapChanged = reopenIfIdle(swap, target, siblings, now)
	return t, nil
}

// Withdraw brings a pending proposal to the withdrawn status. Only the
// proposer is allowed to withdraw its own proposal.
func Withdraw(
	swap Swap, target Proposal, siblings []Proposal, actorId string,
	now time.Time,
) (*Transition, error) {
	if !target.IsProposedBy(actorId) {
		return nil, ErrForbidden
	}
	if err := validatePendingOnSwap(swap, target); err != nil {
		return nil, err
	}

	target.Status = ProposalStatusWithdrawn
	target.UpdatedAt = now

	t := &Transition{
		Proposals: []Proposal{target},
		Outcome:   ProposalStatusWithdrawn.String(),
	}
	t.Swap, t.SwapChanged = reopenIfIdle(swap, target, siblings, now)
	return t, nil
}

// Expire brings an open swap whose deadline has passed to the expired status
// and expires all its pending proposals.
func Expire(swap Swap, pending []Proposal, now time.Time) (*Transition, error) {
	if !swap.IsOpen() {
		return nil, fmt.Errorf(
			"%w: swap %s is %s", ErrInvalidState, swap.Id, swap.Status,
		)
	}
	if !swap.IsPastDeadline(now) {
		return nil, fmt.Errorf(
			"%w: swap %s deadline not reached", ErrInvalidState, swap.Id,
		)
	}

	swap.Status = SwapStatusExpired
	swap.UpdatedAt = now
	return &Transition{
		Swap:        swap,
		SwapChanged: true,
		Proposals:   closeAll(pending, ProposalStatusExpired, ReasonSwapExpired, now),
		Outcome:     SwapStatusExpired.String(),
	}, nil
}

// Cancel brings an open swap to the cancelled status on its owner's request
// and rejects all its pending proposals.
func Cancel(swap Swap, pending []Proposal, now time.Time) (*Transition, error) {
	if !swap.IsOpen() {
		return nil, fmt.Errorf(
			"%w: swap %s is %s", ErrInvalidState, swap.Id, swap.Status,
		)
	}
	if swap.IsPastDeadline(now) {
		return nil, ErrExpired
	}

	swap.Status = SwapStatusCancelled
	swap.UpdatedAt = now
	return &Transition{
		Swap:        swap,
		SwapChanged: true,
		Proposals: closeAll(
			pending, ProposalStatusRejected, ReasonCancelledByOwner, now,
		),
		Outcome: SwapStatusCancelled.String(),
		Reason:  ReasonCancelledByOwner,
	}, nil
}

// CloseExpired brings a swap that was closed automatically, or whose deadline
// has passed, to the rejected status for user facing closure. Closing an
// already rejected swap returns ErrAlreadyClosed.
func CloseExpired(
	swap Swap, pending []Proposal, now time.Time,
) (*Transition, error) {
	var proposals []Proposal
	switch {
	case swap.Status == SwapStatusRejected:
		return nil, ErrAlreadyClosed
	case swap.IsClosedAutomatically():
		proposals = closeAll(
			pending, ProposalStatusRejected, ReasonClosedByOwner, now,
		)
	case swap.IsOpen() && swap.IsPastDeadline(now):
		proposals = closeAll(
			pending, ProposalStatusExpired, ReasonSwapExpired, now,
		)
	case swap.IsOpen():
		return nil, fmt.Errorf(
			"%w: swap %s has not expired yet", ErrInvalidState, swap.Id,
		)
	default:
		return nil, fmt.Errorf(
			"%w: swap %s is %s", ErrInvalidState, swap.Id, swap.Status,
		)
	}

	swap.Status = SwapStatusRejected
	swap.UpdatedAt = now
	return &Transition{
		Swap:        swap,
		SwapChanged: true,
		Proposals:   proposals,
		Outcome:     SwapStatusRejected.String(),
		Reason:      ReasonClosedByOwner,
	}, nil
}

func validatePendingOnSwap(swap Swap, target Proposal) error {
	if target.SwapId != swap.Id {
		return fmt.Errorf(
			"%w: proposal %s does not belong to swap %s",
			ErrInvalidState, target.Id, swap.Id,
		)
	}
	if !target.IsPending() {
		return fmt.Errorf(
			"%w: proposal %s is %s", ErrInvalidState, target.Id, target.Status,
		)
	}
	if swap.Status == SwapStatusAccepted {
		return fmt.Errorf(
			"%w: swap %s is already accepted", ErrInvalidState, swap.Id,
		)
	}
	return nil
}

// reopenIfIdle brings a pending swap back to active when the given proposal
// was the last pending one.
func reopenIfIdle(
	swap Swap, closed Proposal, siblings []Proposal, now time.Time,
) (Swap, bool) {
	if swap.Status != SwapStatusPending {
		return swap, false
	}
	for _, p := range siblings {
		if p.Id != closed.Id && p.IsPending() {
			return swap, false
		}
	}
	swap.Status = SwapStatusActive
	swap.UpdatedAt = now
	return swap, true
}

func closeAll(
	pending []Proposal, status ProposalStatus, reason string, now time.Time,
) []Proposal {
	closed := make([]Proposal, 0, len(pending))
	for _, p := range pending {
		if !p.IsPending() {
			continue
		}
		p.Status = status
		if status == ProposalStatusRejected {
			p.RejectionReason = reason
		}
		p.UpdatedAt = now
		closed = append(closed, p)
	}
	return closed
}
