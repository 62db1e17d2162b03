package httpinterface_test

import (
	"context"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/application/settlement"
	"github.com/bushboy/bookingswap-sub023/internal/core/application/sweeper"
	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type mockSettlementService struct {
	mock.Mock
}

func (m *mockSettlementService) ListSwap(
	ctx context.Context, ownerId, bookingId string, expiresAt time.Time,
) (*domain.Swap, error) {
	args := m.Called(ctx, ownerId, bookingId, expiresAt)
	var res *domain.Swap
	if a := args.Get(0); a != nil {
		res = a.(*domain.Swap)
	}
	return res, args.Error(1)
}

func (m *mockSettlementService) SubmitProposal(
	ctx context.Context, req settlement.ProposalRequest,
) (*domain.Proposal, error) {
	args := m.Called(ctx, req)
	var res *domain.Proposal
	if a := args.Get(0); a != nil {
		res = a.(*domain.Proposal)
	}
	return res, args.Error(1)
}

func (m *mockSettlementService) Accept(
	ctx context.Context, proposalId, actorId string,
) (settlement.Result, error) {
	args := m.Called(ctx, proposalId, actorId)
	return args.Get(0).(settlement.Result), args.Error(1)
}

func (m *mockSettlementService) Reject(
	ctx context.Context, proposalId, actorId, reason string,
) (settlement.Result, error) {
	args := m.Called(ctx, proposalId, actorId, reason)
	return args.Get(0).(settlement.Result), args.Error(1)
}

func (m *mockSettlementService) Withdraw(
	ctx context.Context, proposalId, actorId string,
) (settlement.Result, error) {
	args := m.Called(ctx, proposalId, actorId)
	return args.Get(0).(settlement.Result), args.Error(1)
}

func (m *mockSettlementService) Cancel(
	ctx context.Context, swapId, actorId string,
) (settlement.Result, error) {
	args := m.Called(ctx, swapId, actorId)
	return args.Get(0).(settlement.Result), args.Error(1)
}

func (m *mockSettlementService) ManualRejectExpired(
	ctx context.Context, swapId, actorId string,
) (settlement.Result, error) {
	args := m.Called(ctx, swapId, actorId)
	return args.Get(0).(settlement.Result), args.Error(1)
}

func (m *mockSettlementService) GetSwap(
	ctx context.Context, swapId string,
) (*domain.Swap, []domain.Proposal, error) {
	args := m.Called(ctx, swapId)
	var swap *domain.Swap
	if a := args.Get(0); a != nil {
		swap = a.(*domain.Swap)
	}
	var proposals []domain.Proposal
	if a := args.Get(1); a != nil {
		proposals = a.([]domain.Proposal)
	}
	return swap, proposals, args.Error(2)
}

type mockSweeperService struct {
	mock.Mock
}

func (m *mockSweeperService) Status() sweeper.Status {
	args := m.Called()
	return args.Get(0).(sweeper.Status)
}
