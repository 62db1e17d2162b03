package escrow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/application/escrow"
	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/bushboy/bookingswap-sub023/internal/core/ports"
	"github.com/bushboy/bookingswap-sub023/internal/infrastructure/storage/db/inmemory"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	ctx    = context.Background()
	amount = decimal.NewFromInt(50)
	cfg    = escrow.Config{
		TransferTimeout: time.Second,
		VerifyTimeout:   200 * time.Millisecond,
		PollInterval:    10 * time.Millisecond,
	}
	errProvider = errors.New("provider unreachable")
)

func TestHold(t *testing.T) {
	repoManager := inmemory.NewRepoManager()
	provider := &mockProvider{}
	provider.On(
		"PlaceHold", mock.Anything, mock.Anything, "acct", amount,
	).Return(nil)

	svc := newService(t, repoManager, provider)
	proposal := newProposal(t)

	holding, err := svc.Hold(ctx, *proposal, "acct")
	require.NoError(t, err)
	require.Equal(t, domain.EscrowStatusHeld, holding.Status)

	stored, err := repoManager.EscrowRepository().GetHoldingByProposal(
		ctx, proposal.Id,
	)
	require.NoError(t, err)
	require.Equal(t, holding.Id, stored.Id)
	provider.AssertExpectations(t)

	t.Run("provider_failure", func(t *testing.T) {
		provider := &mockProvider{}
		provider.On(
			"PlaceHold", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
		).Return(errProvider)

		svc := newService(t, repoManager, provider)
		_, err := svc.Hold(ctx, *newProposal(t), "acct")
		require.ErrorIs(t, err, domain.ErrTransferFailed)
	})
}

func TestTransfer(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		repoManager, holding := newHeldHolding(t)
		provider := &mockProvider{}
		provider.On(
			"Transfer", mock.Anything, holding.Id, "payout", amount,
		).Return("handle", nil)
		provider.On(
			"TransferStatus", mock.Anything, "handle",
		).Return(ports.TransferStatusPending, nil).Once()
		provider.On(
			"TransferStatus", mock.Anything, "handle",
		).Return(ports.TransferStatusConfirmed, nil)

		svc := newService(t, repoManager, provider)
		handle, err := svc.Transfer(ctx, holding.Id, "payout", amount)
		require.NoError(t, err)
		require.Equal(t, "handle", handle)

		stored := getHolding(t, repoManager, holding.Id)
		require.Equal(t, domain.EscrowStatusReleased, stored.Status)
		require.Equal(t, "handle", stored.TransferHandle)
		provider.AssertNotCalled(t, "CancelTransfer", mock.Anything, mock.Anything)
	})

	t.Run("amount_exceeds_holding", func(t *testing.T) {
		repoManager, holding := newHeldHolding(t)
		provider := &mockProvider{}

		svc := newService(t, repoManager, provider)
		_, err := svc.Transfer(
			ctx, holding.Id, "payout", amount.Add(decimal.NewFromInt(1)),
		)
		require.ErrorIs(t, err, domain.ErrEscrowInsufficientFunds)
		require.Equal(
			t, domain.EscrowStatusHeld, getHolding(t, repoManager, holding.Id).Status,
		)
		provider.AssertNotCalled(
			t, "Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
		)
	})

	tests := []struct {
		name         string
		setup        func(p *mockProvider)
		expectCancel bool
	}{
		{
			name: "initiation_failed",
			setup: func(p *mockProvider) {
				p.On(
					"Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
				).Return("", errProvider)
			},
		},
		{
			name: "rejected_by_provider",
			setup: func(p *mockProvider) {
				p.On(
					"Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
				).Return("handle", nil)
				p.On("TransferStatus", mock.Anything, "handle").
					Return(ports.TransferStatusFailed, nil)
				p.On("CancelTransfer", mock.Anything, "handle").Return(nil)
			},
			expectCancel: true,
		},
		{
			name: "not_confirmed_in_time",
			setup: func(p *mockProvider) {
				p.On(
					"Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
				).Return("handle", nil)
				p.On("TransferStatus", mock.Anything, "handle").
					Return(ports.TransferStatusPending, nil)
				p.On("CancelTransfer", mock.Anything, "handle").Return(errProvider)
			},
			expectCancel: true,
		},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repoManager, holding := newHeldHolding(t)
			provider := &mockProvider{}
			tt.setup(provider)

			svc := newService(t, repoManager, provider)
			_, err := svc.Transfer(ctx, holding.Id, "payout", amount)
			require.ErrorIs(t, err, domain.ErrTransferFailed)

			stored := getHolding(t, repoManager, holding.Id)
			require.Equal(t, domain.EscrowStatusHeld, stored.Status)
			require.Empty(t, stored.TransferHandle)

			if tt.expectCancel {
				provider.AssertCalled(t, "CancelTransfer", mock.Anything, "handle")
			} else {
				provider.AssertNotCalled(
					t, "CancelTransfer", mock.Anything, mock.Anything,
				)
			}
		})
	}
}

func TestRevert(t *testing.T) {
	repoManager, holding := newHeldHolding(t)
	provider := &mockProvider{}

	svc := newService(t, repoManager, provider)

	id, err := svc.RevertForProposal(ctx, holding.ProposalId)
	require.NoError(t, err)
	require.Equal(t, holding.Id, id)
	require.Equal(
		t, domain.EscrowStatusReverted, getHolding(t, repoManager, holding.Id).Status,
	)

	// Reverting twice is a no-op.
	require.NoError(t, svc.Revert(ctx, holding.Id))
	id, err = svc.RevertForProposal(ctx, holding.ProposalId)
	require.NoError(t, err)
	require.Empty(t, id)

	// Proposals without holding are ignored.
	id, err = svc.RevertForProposal(ctx, "non-financial")
	require.NoError(t, err)
	require.Empty(t, id)

	// The provider is reached only when releasing the hold.
	provider.AssertNotCalled(t, "ReleaseHold", mock.Anything, mock.Anything)

	t.Run("released_holding", func(t *testing.T) {
		repoManager, holding := newHeldHolding(t)
		released := getHolding(t, repoManager, holding.Id)
		require.NoError(t, released.Release(amount, time.Now()))
		require.NoError(t, repoManager.EscrowRepository().UpdateHolding(ctx, released))

		svc := newService(t, repoManager, &mockProvider{})
		err := svc.Revert(ctx, holding.Id)
		require.ErrorIs(t, err, domain.ErrInvalidState)
	})
}

func TestReleaseHold(t *testing.T) {
	provider := &mockProvider{}
	provider.On("ReleaseHold", mock.Anything, "h1").Return(nil)
	provider.On("ReleaseHold", mock.Anything, "h2").Return(errProvider)

	svc := newService(t, inmemory.NewRepoManager(), provider)

	require.NoError(t, svc.ReleaseHold(ctx, "h1"))
	err := svc.ReleaseHold(ctx, "h2")
	require.ErrorIs(t, err, domain.ErrTransferFailed)
}

func newService(
	t *testing.T, repoManager ports.RepoManager, provider ports.EscrowProvider,
) *escrow.Service {
	svc, err := escrow.NewService(
		repoManager, provider, clock.NewTestClock(time.Now()), cfg,
	)
	require.NoError(t, err)
	return svc
}

func newProposal(t *testing.T) *domain.Proposal {
	p, err := domain.NewProposal("swap", "", "proposer", amount, time.Now())
	require.NoError(t, err)
	return p
}

func newHeldHolding(t *testing.T) (ports.RepoManager, *domain.EscrowHolding) {
	repoManager := inmemory.NewRepoManager()
	holding, err := domain.NewEscrowHolding(
		newProposal(t).Id, "acct", amount, time.Now(),
	)
	require.NoError(t, err)
	require.NoError(t, repoManager.EscrowRepository().AddHolding(ctx, holding))
	return repoManager, holding
}

func getHolding(
	t *testing.T, repoManager ports.RepoManager, id string,
) *domain.EscrowHolding {
	holding, err := repoManager.EscrowRepository().GetHolding(ctx, id)
	require.NoError(t, err)
	return holding
}
