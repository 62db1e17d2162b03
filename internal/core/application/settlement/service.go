package settlement

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/bushboy/bookingswap-sub023/internal/core/ports"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultOperationTimeout = 45 * time.Second
	// sideEffectTimeout bounds the best effort calls made after commit.
	sideEffectTimeout = 30 * time.Second
)

// ErrTimeout is returned when an operation does not complete within the
// operation timeout. Nothing has been committed and the caller can retry.
var ErrTimeout = errors.New("operation timed out, retry later")

// ErrMissingAccount is returned when a financial proposal does not name the
// account the offered amount is taken from.
var ErrMissingAccount = errors.New("missing source account for financial proposal")

// EscrowExecutor is the subset of the escrow service used during settlement.
// All methods are called with the context of the settlement transaction.
type EscrowExecutor interface {
	Hold(
		ctx context.Context, proposal domain.Proposal, account string,
	) (*domain.EscrowHolding, error)
	Transfer(
		ctx context.Context, holdingId, toAccount string, amount decimal.Decimal,
	) (string, error)
	RevertForProposal(ctx context.Context, proposalId string) (string, error)
	// ReleaseHold is called after commit for every reverted holding.
	ReleaseHold(ctx context.Context, holdingId string) error
}

// LedgerRecorder attests committed outcomes in background.
type LedgerRecorder interface {
	RecordAsync(entries []domain.LedgerEntry)
	Wait()
}

type Config struct {
	OperationTimeout time.Duration
}

// Service is the settlement coordinator. It is the only component allowed to
// change the status of swaps and proposals, and it does so within a single
// database transaction per operation, together with the related escrow
// changes and pending ledger writes.
type Service struct {
	repoManager ports.RepoManager
	escrow      EscrowExecutor
	recorder    LedgerRecorder
	bookings    ports.BookingService
	notifier    ports.Notifier
	clock       clock.Clock
	cfg         Config

	wg sync.WaitGroup
}

func NewService(
	repoManager ports.RepoManager,
	escrow EscrowExecutor,
	recorder LedgerRecorder,
	bookings ports.BookingService,
	notifier ports.Notifier,
	clk clock.Clock,
	cfg Config,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if escrow == nil {
		return nil, fmt.Errorf("missing escrow executor")
	}
	if recorder == nil {
		return nil, fmt.Errorf("missing ledger recorder")
	}
	if bookings == nil {
		return nil, fmt.Errorf("missing booking service")
	}
	if clk == nil {
		clk = clock.NewDefaultClock()
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = DefaultOperationTimeout
	}
	return &Service{
		repoManager: repoManager,
		escrow:      escrow,
		recorder:    recorder,
		bookings:    bookings,
		notifier:    notifier,
		clock:       clk,
		cfg:         cfg,
	}, nil
}

// Accept accepts the given proposal on behalf of the swap owner, rejecting
// all the other pending proposals of the swap. For financial proposals the
// escrowed funds are transferred to the owner before anything is committed.
func (s *Service) Accept(
	ctx context.Context, proposalId, actorId string,
) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.OperationTimeout)
	defer cancel()

	snap, err := s.readProposalSnapshot(ctx, proposalId)
	if err != nil {
		return s.fail(opAccept, Result{ProposalId: proposalId}, err)
	}
	result := Result{SwapId: snap.swap.Id, ProposalId: proposalId}

	if !snap.swap.IsOwnedBy(actorId) {
		return s.fail(opAccept, result, domain.ErrForbidden)
	}

	var payoutAccount string
	if snap.proposal.IsFinancial() {
		booking, err := s.bookings.GetBooking(ctx, snap.swap.BookingId)
		if err != nil {
			return s.fail(opAccept, result, err)
		}
		payoutAccount = booking.PayoutAccount
	}

	transition := func(
		swap domain.Swap, target *domain.Proposal, pending []domain.Proposal,
		now time.Time,
	) (*domain.Transition, error) {
		return domain.Accept(swap, *target, pending, now)
	}
	transfer := func(ctx context.Context, t *domain.Transition) (string, error) {
		target := t.Target()
		if !target.IsFinancial() {
			return "", nil
		}
		holding, err := s.repoManager.EscrowRepository().GetHoldingByProposal(
			ctx, target.Id,
		)
		if err != nil {
			return "", err
		}
		return s.escrow.Transfer(ctx, holding.Id, payoutAccount, target.Amount)
	}

	if _, err := s.settle(ctx, snap, transition, transfer); err != nil {
		return s.fail(opAccept, result, err)
	}

	result.Status = ResultAccepted
	return s.succeed(opAccept, result), nil
}

// Reject closes the given pending proposal. The swap owner rejects it, while
// the proposer withdraws it. The escrowed funds, if any, are given back to
// the proposer.
func (s *Service) Reject(
	ctx context.Context, proposalId, actorId, reason string,
) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.OperationTimeout)
	defer cancel()

	snap, err := s.readProposalSnapshot(ctx, proposalId)
	if err != nil {
		return s.fail(opReject, Result{ProposalId: proposalId}, err)
	}
	result := Result{SwapId: snap.swap.Id, ProposalId: proposalId}

	switch {
	case snap.swap.IsOwnedBy(actorId):
	case snap.proposal.IsProposedBy(actorId):
		return s.withdraw(ctx, snap, actorId)
	default:
		return s.fail(opReject, result, domain.ErrForbidden)
	}

	transition := func(
		swap domain.Swap, target *domain.Proposal, pending []domain.Proposal,
		now time.Time,
	) (*domain.Transition, error) {
		return domain.Reject(swap, *target, pending, reason, now)
	}

	if _, err := s.settle(ctx, snap, transition, nil); err != nil {
		return s.fail(opReject, result, err)
	}

	result.Status = ResultRejected
	return s.succeed(opReject, result), nil
}

// Withdraw closes the given pending proposal on behalf of its proposer.
func (s *Service) Withdraw(
	ctx context.Context, proposalId, actorId string,
) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.OperationTimeout)
	defer cancel()

	snap, err := s.readProposalSnapshot(ctx, proposalId)
	if err != nil {
		return s.fail(opWithdraw, Result{ProposalId: proposalId}, err)
	}
	return s.withdraw(ctx, snap, actorId)
}

// Expire brings an open swap whose deadline has passed to the expired
// status, together with all its pending proposals.
func (s *Service) Expire(ctx context.Context, swapId string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.OperationTimeout)
	defer cancel()

	result := Result{SwapId: swapId}
	snap, err := s.readSwapSnapshot(ctx, swapId)
	if err != nil {
		return s.fail(opExpire, result, err)
	}

	transition := func(
		swap domain.Swap, _ *domain.Proposal, pending []domain.Proposal,
		now time.Time,
	) (*domain.Transition, error) {
		return domain.Expire(swap, pending, now)
	}

	if _, err := s.settle(ctx, snap, transition, nil); err != nil {
		return s.fail(opExpire, result, err)
	}

	result.Status = ResultExpired
	return s.succeed(opExpire, result), nil
}

// Cancel closes an open swap on behalf of its owner, rejecting all its
// pending proposals.
func (s *Service) Cancel(
	ctx context.Context, swapId, actorId string,
) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.OperationTimeout)
	defer cancel()

	result := Result{SwapId: swapId}
	snap, err := s.readSwapSnapshot(ctx, swapId)
	if err != nil {
		return s.fail(opCancel, result, err)
	}
	if !snap.swap.IsOwnedBy(actorId) {
		return s.fail(opCancel, result, domain.ErrForbidden)
	}

	transition := func(
		swap domain.Swap, _ *domain.Proposal, pending []domain.Proposal,
		now time.Time,
	) (*domain.Transition, error) {
		return domain.Cancel(swap, pending, now)
	}

	if _, err := s.settle(ctx, snap, transition, nil); err != nil {
		return s.fail(opCancel, result, err)
	}

	result.Status = ResultCancelled
	return s.succeed(opCancel, result), nil
}

// ManualRejectExpired lets the owner close a swap that was closed
// automatically, or whose deadline has passed. Calling it on a swap already
// closed this way returns the already_closed status without error.
func (s *Service) ManualRejectExpired(
	ctx context.Context, swapId, actorId string,
) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.OperationTimeout)
	defer cancel()

	result := Result{SwapId: swapId}
	snap, err := s.readSwapSnapshot(ctx, swapId)
	if err != nil {
		return s.fail(opManualReject, result, err)
	}
	if !snap.swap.IsOwnedBy(actorId) {
		return s.fail(opManualReject, result, domain.ErrForbidden)
	}

	transition := func(
		swap domain.Swap, _ *domain.Proposal, pending []domain.Proposal,
		now time.Time,
	) (*domain.Transition, error) {
		return domain.CloseExpired(swap, pending, now)
	}

	if _, err := s.settle(ctx, snap, transition, nil); err != nil {
		if errors.Is(err, domain.ErrAlreadyClosed) {
			result.Status = ResultAlreadyClosed
			return s.succeed(opManualReject, result), nil
		}
		return s.fail(opManualReject, result, err)
	}

	result.Status = ResultRejected
	return s.succeed(opManualReject, result), nil
}

// GetSwap returns the swap with the given id and all its proposals.
func (s *Service) GetSwap(
	ctx context.Context, swapId string,
) (*domain.Swap, []domain.Proposal, error) {
	swap, err := s.repoManager.SwapRepository().GetSwap(ctx, swapId)
	if err != nil {
		return nil, nil, err
	}
	proposals, err := s.repoManager.ProposalRepository().GetProposalsForSwap(
		ctx, swapId,
	)
	if err != nil {
		return nil, nil, err
	}
	return swap, proposals, nil
}

// Wait blocks until all the side effects of the committed operations are
// done.
func (s *Service) Wait() {
	s.wg.Wait()
	s.recorder.Wait()
}

// Close waits for pending side effects and closes the notifier.
func (s *Service) Close() {
	s.Wait()
	if s.notifier != nil {
		if err := s.notifier.Close(); err != nil {
			log.WithError(err).Warn("failed to close notifier")
		}
	}
}

func (s *Service) withdraw(
	ctx context.Context, snap *snapshot, actorId string,
) (Result, error) {
	result := Result{SwapId: snap.swap.Id, ProposalId: snap.proposal.Id}
	if !snap.proposal.IsProposedBy(actorId) {
		return s.fail(opWithdraw, result, domain.ErrForbidden)
	}

	transition := func(
		swap domain.Swap, target *domain.Proposal, pending []domain.Proposal,
		now time.Time,
	) (*domain.Transition, error) {
		return domain.Withdraw(swap, *target, pending, actorId, now)
	}

	if _, err := s.settle(ctx, snap, transition, nil); err != nil {
		return s.fail(opWithdraw, result, err)
	}

	result.Status = ResultWithdrawn
	return s.succeed(opWithdraw, result), nil
}
