package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// ListSwap makes the given booking available for swap proposals until the
// given deadline. Only the owner of the booking can list it.
func (s *Service) ListSwap(
	ctx context.Context, ownerId, bookingId string, expiresAt time.Time,
) (*domain.Swap, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.OperationTimeout)
	defer cancel()

	booking, err := s.bookings.GetBooking(ctx, bookingId)
	if err != nil {
		_, err = s.fail(opListSwap, Result{}, err)
		return nil, err
	}
	if booking.OwnerId != ownerId {
		_, err = s.fail(opListSwap, Result{}, domain.ErrForbidden)
		return nil, err
	}

	swap, err := domain.NewSwap(ownerId, bookingId, s.clock.Now(), expiresAt)
	if err != nil {
		_, err = s.fail(opListSwap, Result{}, err)
		return nil, err
	}
	if err := s.repoManager.SwapRepository().AddSwap(ctx, swap); err != nil {
		_, err = s.fail(opListSwap, Result{SwapId: swap.Id}, err)
		return nil, err
	}

	log.WithFields(log.Fields{
		"swap":    swap.Id,
		"booking": bookingId,
	}).Infof("swap listed until %s", expiresAt.Format(time.RFC3339))
	return swap, nil
}

// ProposalRequest holds what a user offers in exchange for a listed swap:
// another swap of its own, an amount of money, or both. Account is where the
// offered amount is taken from and is required only for financial proposals.
type ProposalRequest struct {
	SwapId       string
	ProposerId   string
	SourceSwapId string
	Amount       decimal.Decimal
	Account      string
}

// SubmitProposal stores a new pending proposal on the given swap. For
// financial proposals the offered amount is held in escrow by the provider
// before the proposal is committed.
func (s *Service) SubmitProposal(
	ctx context.Context, req ProposalRequest,
) (*domain.Proposal, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.OperationTimeout)
	defer cancel()

	if req.Amount.IsPositive() && len(req.Account) <= 0 {
		_, err := s.fail(opPropose, Result{SwapId: req.SwapId}, ErrMissingAccount)
		return nil, err
	}

	res, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			swapRepo := s.repoManager.SwapRepository()

			swap, err := swapRepo.GetSwapForUpdate(ctx, req.SwapId)
			if err != nil {
				return nil, err
			}
			if swap.IsOwnedBy(req.ProposerId) {
				return nil, domain.ErrProposalOwnSwap
			}
			if len(req.SourceSwapId) > 0 {
				source, err := swapRepo.GetSwap(ctx, req.SourceSwapId)
				if err != nil {
					return nil, err
				}
				if !source.IsOwnedBy(req.ProposerId) {
					return nil, domain.ErrForbidden
				}
				if !source.IsOpen() {
					return nil, fmt.Errorf(
						"%w: swap %s is %s",
						domain.ErrInvalidState, source.Id, source.Status,
					)
				}
			}

			now := s.clock.Now()
			proposal, err := domain.NewProposal(
				swap.Id, req.SourceSwapId, req.ProposerId, req.Amount, now,
			)
			if err != nil {
				return nil, err
			}
			updated, err := domain.Propose(*swap, now)
			if err != nil {
				return nil, err
			}

			if updated.Status != swap.Status {
				if err := swapRepo.UpdateSwap(ctx, &updated); err != nil {
					return nil, err
				}
			}
			if err := s.repoManager.ProposalRepository().AddProposal(
				ctx, proposal,
			); err != nil {
				return nil, err
			}
			if proposal.IsFinancial() {
				if _, err := s.escrow.Hold(ctx, *proposal, req.Account); err != nil {
					return nil, err
				}
			}
			return proposal, nil
		},
	)
	if err != nil {
		_, err = s.fail(opPropose, Result{SwapId: req.SwapId}, err)
		return nil, err
	}

	proposal := res.(*domain.Proposal)
	log.WithFields(log.Fields{
		"swap":     proposal.SwapId,
		"proposal": proposal.Id,
	}).Info("proposal submitted")
	return proposal, nil
}
