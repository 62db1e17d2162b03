package settlement_test

import (
	"testing"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/application/settlement"
	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestListSwap(t *testing.T) {
	env := newTestEnv(t, nil)

	swap, err := env.svc.ListSwap(ctx, ownerId, "booking", startTime.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, domain.SwapStatusActive, swap.Status)
	require.Equal(t, swap, env.swap(t, swap.Id))

	_, err = env.svc.ListSwap(ctx, otherId, "booking", startTime.Add(time.Hour))
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = env.svc.ListSwap(ctx, ownerId, "booking", startTime.Add(-time.Hour))
	require.ErrorIs(t, err, domain.ErrSwapInvalidDeadline)
}

func TestSubmitProposal(t *testing.T) {
	t.Run("financial", func(t *testing.T) {
		env := newTestEnv(t, nil)
		swap := env.addSwap(t, domain.SwapStatusActive, time.Hour)
		amount := decimal.NewFromInt(40)

		proposal, err := env.svc.SubmitProposal(ctx, settlement.ProposalRequest{
			SwapId:     swap.Id,
			ProposerId: proposerId,
			Amount:     amount,
			Account:    sourceAccount,
		})
		require.NoError(t, err)
		require.Equal(t, domain.ProposalStatusPending, proposal.Status)
		require.Equal(t, domain.SwapStatusPending, env.swap(t, swap.Id).Status)

		holding := env.holding(t, proposal.Id)
		require.Equal(t, domain.EscrowStatusHeld, holding.Status)
		require.True(t, holding.Amount.Equal(amount))
		env.provider.AssertCalled(
			t, "PlaceHold", mock.Anything, holding.Id, sourceAccount, mock.Anything,
		)
	})

	t.Run("booking_for_booking", func(t *testing.T) {
		env := newTestEnv(t, nil)
		swap := env.addSwap(t, domain.SwapStatusPending, time.Hour)
		source := env.addSwapFor(t, proposerId, domain.SwapStatusActive, time.Hour)

		proposal, err := env.svc.SubmitProposal(ctx, settlement.ProposalRequest{
			SwapId:       swap.Id,
			ProposerId:   proposerId,
			SourceSwapId: source.Id,
		})
		require.NoError(t, err)
		require.False(t, proposal.IsFinancial())

		_, err = env.repoManager.EscrowRepository().GetHoldingByProposal(
			ctx, proposal.Id,
		)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("invalid", func(t *testing.T) {
		env := newTestEnv(t, nil)
		swap := env.addSwap(t, domain.SwapStatusActive, time.Hour)
		expired := env.addSwap(t, domain.SwapStatusActive, -time.Minute)
		closed := env.addSwap(t, domain.SwapStatusAccepted, time.Hour)
		othersSource := env.addSwapFor(t, otherId, domain.SwapStatusActive, time.Hour)
		closedSource := env.addSwapFor(
			t, proposerId, domain.SwapStatusCancelled, time.Hour,
		)
		ten := decimal.NewFromInt(10)

		tests := []struct {
			name          string
			req           settlement.ProposalRequest
			expectedError error
		}{
			{
				name: "own_swap",
				req: settlement.ProposalRequest{
					SwapId: swap.Id, ProposerId: ownerId, Amount: ten,
					Account: sourceAccount,
				},
				expectedError: domain.ErrProposalOwnSwap,
			},
			{
				name: "missing_account",
				req: settlement.ProposalRequest{
					SwapId: swap.Id, ProposerId: proposerId, Amount: ten,
				},
				expectedError: settlement.ErrMissingAccount,
			},
			{
				name: "empty_offer",
				req: settlement.ProposalRequest{
					SwapId: swap.Id, ProposerId: proposerId,
				},
				expectedError: domain.ErrProposalEmptyOffer,
			},
			{
				name: "expired_swap",
				req: settlement.ProposalRequest{
					SwapId: expired.Id, ProposerId: proposerId, Amount: ten,
					Account: sourceAccount,
				},
				expectedError: domain.ErrExpired,
			},
			{
				name: "closed_swap",
				req: settlement.ProposalRequest{
					SwapId: closed.Id, ProposerId: proposerId, Amount: ten,
					Account: sourceAccount,
				},
				expectedError: domain.ErrInvalidState,
			},
			{
				name: "source_of_someone_else",
				req: settlement.ProposalRequest{
					SwapId: swap.Id, ProposerId: proposerId,
					SourceSwapId: othersSource.Id,
				},
				expectedError: domain.ErrForbidden,
			},
			{
				name: "source_closed",
				req: settlement.ProposalRequest{
					SwapId: swap.Id, ProposerId: proposerId,
					SourceSwapId: closedSource.Id,
				},
				expectedError: domain.ErrInvalidState,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := env.svc.SubmitProposal(ctx, tt.req)
				require.ErrorIs(t, err, tt.expectedError)
			})
		}

		proposals, err := env.repoManager.ProposalRepository().
			GetProposalsForSwap(ctx, swap.Id)
		require.NoError(t, err)
		require.Empty(t, proposals)
		require.Equal(t, domain.SwapStatusActive, env.swap(t, swap.Id).Status)
	})
}
