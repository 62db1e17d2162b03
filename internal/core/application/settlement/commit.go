package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	log "github.com/sirupsen/logrus"
)

// transitionFunc applies a state machine operation to the locked state.
// target is nil for operations on swaps.
type transitionFunc func(
	swap domain.Swap, target *domain.Proposal, pending []domain.Proposal,
	now time.Time,
) (*domain.Transition, error)

// transferFunc moves the escrowed funds of an accepted proposal and returns
// the handle of the provider transfer, if any. It runs in the transaction as
// the last step before commit.
type transferFunc func(ctx context.Context, t *domain.Transition) (string, error)

// snapshot is the state read before opening the transaction, used to tell
// a concurrent finalization apart from an invalid request.
type snapshot struct {
	swap     *domain.Swap
	proposal *domain.Proposal
	readAt   time.Time
}

type settlement struct {
	transition *domain.Transition
	entries    []domain.LedgerEntry
	reverted   []string
	now        time.Time
}

func (s *Service) readSwapSnapshot(
	ctx context.Context, swapId string,
) (*snapshot, error) {
	swap, err := s.repoManager.SwapRepository().GetSwap(ctx, swapId)
	if err != nil {
		return nil, err
	}
	return &snapshot{swap: swap, readAt: s.clock.Now()}, nil
}

func (s *Service) readProposalSnapshot(
	ctx context.Context, proposalId string,
) (*snapshot, error) {
	proposal, err := s.repoManager.ProposalRepository().GetProposal(
		ctx, proposalId,
	)
	if err != nil {
		return nil, err
	}
	swap, err := s.repoManager.SwapRepository().GetSwap(ctx, proposal.SwapId)
	if err != nil {
		return nil, err
	}
	return &snapshot{
		swap: swap, proposal: proposal, readAt: s.clock.Now(),
	}, nil
}

// settle runs the commit protocol: within a single transaction it locks the
// swap and its proposals, applies the transition, writes the new statuses,
// reverts the escrow of the closed proposals and enqueues the ledger writes.
// The escrowed funds of an accepted proposal are transferred last, so that
// nothing but the commit can fail once they have moved. Once committed, the
// side effects are started in background.
func (s *Service) settle(
	ctx context.Context, snap *snapshot, fn transitionFunc,
	transfer transferFunc,
) (*settlement, error) {
	var transferHandle string
	res, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			swap, err := s.repoManager.SwapRepository().GetSwapForUpdate(
				ctx, snap.swap.Id,
			)
			if err != nil {
				return nil, err
			}
			pending, err := s.repoManager.ProposalRepository().
				GetPendingProposalsForSwap(ctx, swap.Id)
			if err != nil {
				return nil, err
			}
			var target *domain.Proposal
			if snap.proposal != nil {
				if target, err = s.repoManager.ProposalRepository().
					GetProposalForUpdate(ctx, snap.proposal.Id); err != nil {
					return nil, err
				}
			}

			now := s.clock.Now()
			t, err := fn(*swap, target, pending, now)
			if err != nil {
				if !errors.Is(err, domain.ErrAlreadyClosed) &&
					lostRace(snap, swap, target, fn) {
					return nil, domain.ErrConflict
				}
				return nil, err
			}

			reverted, err := s.persist(ctx, t)
			if err != nil {
				return nil, err
			}

			entries := t.LedgerEntries(now)
			for _, e := range entries {
				if err := s.repoManager.LedgerRepository().AddPendingWrite(
					ctx, domain.NewPendingLedgerWrite(e, now),
				); err != nil {
					return nil, err
				}
			}

			if transferHandle, err = s.transferFunds(
				ctx, t, transfer,
			); err != nil {
				return nil, err
			}
			return &settlement{t, entries, reverted, now}, nil
		},
	)
	if err != nil {
		if len(transferHandle) > 0 {
			// The provider confirmed the transfer but the new statuses did
			// not make it to the db.
			log.WithError(err).WithFields(log.Fields{
				"swap":     snap.swap.Id,
				"transfer": transferHandle,
			}).Error("escrow transferred but settlement rolled back, reconcile manually")
			return nil, fmt.Errorf(
				"%w: transfer %s confirmed but settlement not committed: %s",
				domain.ErrEscrowInconsistent, transferHandle, err,
			)
		}
		if errors.Is(err, context.DeadlineExceeded) ||
			errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, err
	}

	st := res.(*settlement)
	s.afterCommit(st)
	return st, nil
}

// lostRace tells whether the operation would have been valid on the state
// read before the transaction, meaning that it failed only because someone
// else finalized the subject in the meantime.
func lostRace(
	snap *snapshot, swap *domain.Swap, target *domain.Proposal,
	fn transitionFunc,
) bool {
	changed := swap.Version != snap.swap.Version
	if target != nil && snap.proposal != nil {
		changed = changed || target.Version != snap.proposal.Version
	}
	if !changed {
		return false
	}
	_, err := fn(*snap.swap, snap.proposal, nil, snap.readAt)
	return err == nil
}

// persist writes the transition within the transaction of the given
// context. The holdings of the proposals closed without acceptance are
// reverted and every escrow status, but the one of the accepted proposal, is
// checked against the proposal one. The ids of the reverted holdings are
// returned.
func (s *Service) persist(
	ctx context.Context, t *domain.Transition,
) ([]string, error) {
	if t.SwapChanged {
		swap := t.Swap
		if err := s.repoManager.SwapRepository().UpdateSwap(ctx, &swap); err != nil {
			return nil, err
		}
	}

	proposalRepo := s.repoManager.ProposalRepository()
	for i := range t.Proposals {
		p := t.Proposals[i]
		if err := proposalRepo.UpdateProposal(ctx, &p); err != nil {
			return nil, err
		}
	}

	reverted := make([]string, 0)
	for _, p := range t.Proposals {
		if !p.Status.IsTerminal() || p.Status == domain.ProposalStatusAccepted {
			continue
		}
		holdingId, err := s.escrow.RevertForProposal(ctx, p.Id)
		if err != nil {
			return nil, err
		}
		if len(holdingId) > 0 {
			reverted = append(reverted, holdingId)
		}
	}

	for _, p := range t.Proposals {
		if p.Status == domain.ProposalStatusAccepted {
			continue
		}
		if err := s.checkEscrow(ctx, p); err != nil {
			return nil, err
		}
	}
	return reverted, nil
}

// transferFunds runs the transfer of an accepted proposal and checks the
// resulting escrow status. It returns the handle of the transfer.
func (s *Service) transferFunds(
	ctx context.Context, t *domain.Transition, transfer transferFunc,
) (string, error) {
	target := t.Target()
	if transfer == nil || target == nil ||
		target.Status != domain.ProposalStatusAccepted {
		return "", nil
	}
	handle, err := transfer(ctx, t)
	if err != nil {
		return "", err
	}
	return handle, s.checkEscrow(ctx, *target)
}

func (s *Service) checkEscrow(ctx context.Context, p domain.Proposal) error {
	if !p.IsFinancial() {
		return nil
	}
	holding, err := s.repoManager.EscrowRepository().GetHoldingByProposal(
		ctx, p.Id,
	)
	if err != nil {
		return err
	}
	return domain.CheckEscrowConsistency(p, *holding)
}

// afterCommit starts the best effort side effects of a committed settlement.
// None of them can revert the committed state.
func (s *Service) afterCommit(st *settlement) {
	t := st.transition

	s.recorder.RecordAsync(st.entries)

	for _, id := range st.reverted {
		holdingId := id
		s.goWithTimeout(func(ctx context.Context) {
			if err := s.escrow.ReleaseHold(ctx, holdingId); err != nil {
				log.WithError(err).WithField("holding", holdingId).
					Warn("failed to release escrow hold")
			}
		})
	}

	if t.SwapChanged && t.Swap.IsTerminal() &&
		t.Swap.Status != domain.SwapStatusAccepted {
		bookingId := t.Swap.BookingId
		s.goWithTimeout(func(ctx context.Context) {
			if err := s.bookings.UnlockBooking(ctx, bookingId); err != nil {
				log.WithError(err).WithField("booking", bookingId).
					Warn("failed to unlock booking")
			}
		})
	}

	if s.notifier != nil {
		event := domain.NewSettlementEvent(t, st.now)
		s.goWithTimeout(func(ctx context.Context) {
			if err := s.notifier.Publish(ctx, event); err != nil {
				log.WithError(err).WithFields(log.Fields{
					"topic": event.Topic,
					"swap":  event.SwapId,
				}).Warn("failed to publish settlement event")
			}
		})
	}
}

func (s *Service) goWithTimeout(fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(
			context.Background(), sideEffectTimeout,
		)
		defer cancel()
		fn(ctx)
	}()
}
