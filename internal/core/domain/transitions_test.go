package domain_test

import (
	"testing"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	ownerId    = "owner"
	proposerId = "proposer"
	now        = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	future     = now.Add(time.Hour)
	past       = now.Add(-time.Hour)
)

func TestAccept(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		swap := newSwap(domain.SwapStatusPending, future)
		target := newProposal(swap.Id, domain.ProposalStatusPending)
		sibling := newProposal(swap.Id, domain.ProposalStatusPending)
		withdrawn := newProposal(swap.Id, domain.ProposalStatusWithdrawn)

		tr, err := domain.Accept(
			swap, target, []domain.Proposal{target, sibling, withdrawn}, now,
		)
		require.NoError(t, err)
		require.NotNil(t, tr)

		require.True(t, tr.SwapChanged)
		require.Equal(t, domain.SwapStatusAccepted, tr.Swap.Status)
		require.Equal(t, domain.ProposalStatusAccepted.String(), tr.Outcome)
		require.Len(t, tr.Proposals, 2)

		require.Equal(t, target.Id, tr.Target().Id)
		require.Equal(t, domain.ProposalStatusAccepted, tr.Target().Status)
		require.Equal(t, sibling.Id, tr.Proposals[1].Id)
		require.Equal(t, domain.ProposalStatusRejected, tr.Proposals[1].Status)
		require.Equal(
			t, domain.ReasonAcceptedElsewhere, tr.Proposals[1].RejectionReason,
		)

		// Arguments are never touched.
		require.Equal(t, domain.SwapStatusPending, swap.Status)
		require.Equal(t, domain.ProposalStatusPending, target.Status)

		entries := tr.LedgerEntries(now)
		require.Len(t, entries, 3)
		require.Equal(t, domain.SubjectSwap, entries[0].SubjectType)
		require.Equal(t, "accepted", entries[0].Outcome)
		require.Equal(t, "accepted", entries[1].Outcome)
		require.Equal(t, "rejected", entries[2].Outcome)
		require.Equal(
			t, []string{ownerId, proposerId}, entries[1].Participants,
		)
	})

	t.Run("invalid", func(t *testing.T) {
		tests := []struct {
			name           string
			swapStatus     domain.SwapStatus
			proposalStatus domain.ProposalStatus
			expiresAt      time.Time
			expectedError  error
		}{
			{
				name:           "proposal_accepted",
				swapStatus:     domain.SwapStatusPending,
				proposalStatus: domain.ProposalStatusAccepted,
				expiresAt:      future,
				expectedError:  domain.ErrInvalidState,
			},
			{
				name:           "proposal_withdrawn",
				swapStatus:     domain.SwapStatusPending,
				proposalStatus: domain.ProposalStatusWithdrawn,
				expiresAt:      future,
				expectedError:  domain.ErrInvalidState,
			},
			{
				name:           "proposal_expired",
				swapStatus:     domain.SwapStatusPending,
				proposalStatus: domain.ProposalStatusExpired,
				expiresAt:      future,
				expectedError:  domain.ErrExpired,
			},
			{
				name:           "swap_accepted",
				swapStatus:     domain.SwapStatusAccepted,
				proposalStatus: domain.ProposalStatusPending,
				expiresAt:      future,
				expectedError:  domain.ErrInvalidState,
			},
			{
				name:           "swap_cancelled",
				swapStatus:     domain.SwapStatusCancelled,
				proposalStatus: domain.ProposalStatusPending,
				expiresAt:      future,
				expectedError:  domain.ErrInvalidState,
			},
			{
				name:           "swap_expired",
				swapStatus:     domain.SwapStatusExpired,
				proposalStatus: domain.ProposalStatusPending,
				expiresAt:      past,
				expectedError:  domain.ErrExpired,
			},
			{
				name:           "deadline_passed_not_swept",
				swapStatus:     domain.SwapStatusPending,
				proposalStatus: domain.ProposalStatusPending,
				expiresAt:      past,
				expectedError:  domain.ErrExpired,
			},
			{
				name:           "deadline_reached_now",
				swapStatus:     domain.SwapStatusPending,
				proposalStatus: domain.ProposalStatusPending,
				expiresAt:      now,
				expectedError:  domain.ErrExpired,
			},
		}

		for i := range tests {
			tt := tests[i]
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				swap := newSwap(tt.swapStatus, tt.expiresAt)
				target := newProposal(swap.Id, tt.proposalStatus)

				tr, err := domain.Accept(swap, target, nil, now)
				require.ErrorIs(t, err, tt.expectedError)
				require.Nil(t, tr)
			})
		}
	})

	t.Run("proposal_of_another_swap", func(t *testing.T) {
		swap := newSwap(domain.SwapStatusPending, future)
		target := newProposal(uuid.New().String(), domain.ProposalStatusPending)

		_, err := domain.Accept(swap, target, nil, now)
		require.ErrorIs(t, err, domain.ErrInvalidState)
	})
}

func TestReject(t *testing.T) {
	t.Run("reopens_idle_swap", func(t *testing.T) {
		swap := newSwap(domain.SwapStatusPending, future)
		target := newProposal(swap.Id, domain.ProposalStatusPending)

		tr, err := domain.Reject(
			swap, target, []domain.Proposal{target}, "", now,
		)
		require.NoError(t, err)
		require.True(t, tr.SwapChanged)
		require.Equal(t, domain.SwapStatusActive, tr.Swap.Status)
		require.Equal(t, domain.ProposalStatusRejected, tr.Target().Status)
		require.Equal(t, domain.ReasonRejectedByOwner, tr.Target().RejectionReason)

		// An active swap is not a terminal subject.
		entries := tr.LedgerEntries(now)
		require.Len(t, entries, 1)
		require.Equal(t, target.Id, entries[0].SubjectId)
	})

	t.Run("keeps_swap_with_other_pending", func(t *testing.T) {
		swap := newSwap(domain.SwapStatusPending, future)
		target := newProposal(swap.Id, domain.ProposalStatusPending)
		sibling := newProposal(swap.Id, domain.ProposalStatusPending)

		tr, err := domain.Reject(
			swap, target, []domain.Proposal{target, sibling}, "too low", now,
		)
		require.NoError(t, err)
		require.False(t, tr.SwapChanged)
		require.Equal(t, domain.SwapStatusPending, tr.Swap.Status)
		require.Equal(t, "too low", tr.Target().RejectionReason)
		require.Len(t, tr.Proposals, 1)
	})

	t.Run("allowed_on_closed_swaps", func(t *testing.T) {
		for _, status := range []domain.SwapStatus{
			domain.SwapStatusCancelled,
			domain.SwapStatusExpired,
			domain.SwapStatusRejected,
		} {
			swap := newSwap(status, past)
			target := newProposal(swap.Id, domain.ProposalStatusPending)

			tr, err := domain.Reject(swap, target, nil, "", now)
			require.NoError(t, err, status)
			require.False(t, tr.SwapChanged)
			require.Equal(t, status, tr.Swap.Status)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		swap := newSwap(domain.SwapStatusAccepted, future)
		target := newProposal(swap.Id, domain.ProposalStatusPending)
		_, err := domain.Reject(swap, target, nil, "", now)
		require.ErrorIs(t, err, domain.ErrInvalidState)

		swap = newSwap(domain.SwapStatusPending, future)
		target = newProposal(swap.Id, domain.ProposalStatusRejected)
		_, err = domain.Reject(swap, target, nil, "", now)
		require.ErrorIs(t, err, domain.ErrInvalidState)
	})
}

func TestWithdraw(t *testing.T) {
	swap := newSwap(domain.SwapStatusPending, future)
	target := newProposal(swap.Id, domain.ProposalStatusPending)

	_, err := domain.Withdraw(swap, target, nil, ownerId, now)
	require.ErrorIs(t, err, domain.ErrForbidden)

	tr, err := domain.Withdraw(swap, target, nil, proposerId, now)
	require.NoError(t, err)
	require.Equal(t, domain.ProposalStatusWithdrawn, tr.Target().Status)
	require.Empty(t, tr.Target().RejectionReason)
	require.Equal(t, domain.SwapStatusActive, tr.Swap.Status)

	target.Status = domain.ProposalStatusWithdrawn
	_, err = domain.Withdraw(swap, target, nil, proposerId, now)
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestExpire(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		for _, status := range []domain.SwapStatus{
			domain.SwapStatusActive, domain.SwapStatusPending,
		} {
			swap := newSwap(status, past)
			pending := []domain.Proposal{
				newProposal(swap.Id, domain.ProposalStatusPending),
				newProposal(swap.Id, domain.ProposalStatusPending),
			}

			tr, err := domain.Expire(swap, pending, now)
			require.NoError(t, err)
			require.Equal(t, domain.SwapStatusExpired, tr.Swap.Status)
			require.Equal(t, domain.SwapStatusExpired.String(), tr.Outcome)
			require.Len(t, tr.Proposals, 2)
			for _, p := range tr.Proposals {
				require.Equal(t, domain.ProposalStatusExpired, p.Status)
			}
			require.Len(t, tr.LedgerEntries(now), 3)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		swap := newSwap(domain.SwapStatusActive, future)
		_, err := domain.Expire(swap, nil, now)
		require.ErrorIs(t, err, domain.ErrInvalidState)

		for _, status := range []domain.SwapStatus{
			domain.SwapStatusAccepted, domain.SwapStatusRejected,
			domain.SwapStatusCancelled, domain.SwapStatusExpired,
		} {
			swap := newSwap(status, past)
			_, err := domain.Expire(swap, nil, now)
			require.ErrorIs(t, err, domain.ErrInvalidState, status)
		}
	})
}

func TestCancel(t *testing.T) {
	swap := newSwap(domain.SwapStatusPending, future)
	pending := []domain.Proposal{
		newProposal(swap.Id, domain.ProposalStatusPending),
	}

	tr, err := domain.Cancel(swap, pending, now)
	require.NoError(t, err)
	require.Equal(t, domain.SwapStatusCancelled, tr.Swap.Status)
	require.Len(t, tr.Proposals, 1)
	require.Equal(t, domain.ProposalStatusRejected, tr.Proposals[0].Status)
	require.Equal(
		t, domain.ReasonCancelledByOwner, tr.Proposals[0].RejectionReason,
	)

	_, err = domain.Cancel(newSwap(domain.SwapStatusActive, past), nil, now)
	require.ErrorIs(t, err, domain.ErrExpired)

	_, err = domain.Cancel(newSwap(domain.SwapStatusAccepted, future), nil, now)
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestCloseExpired(t *testing.T) {
	tests := []struct {
		name             string
		swapStatus       domain.SwapStatus
		expiresAt        time.Time
		expectedError    error
		expectedProposal domain.ProposalStatus
	}{
		{
			name:             "closed_by_sweeper_expired",
			swapStatus:       domain.SwapStatusExpired,
			expiresAt:        past,
			expectedProposal: domain.ProposalStatusRejected,
		},
		{
			name:             "closed_by_sweeper_cancelled",
			swapStatus:       domain.SwapStatusCancelled,
			expiresAt:        past,
			expectedProposal: domain.ProposalStatusRejected,
		},
		{
			name:             "not_yet_swept",
			swapStatus:       domain.SwapStatusPending,
			expiresAt:        past,
			expectedProposal: domain.ProposalStatusExpired,
		},
		{
			name:          "already_closed",
			swapStatus:    domain.SwapStatusRejected,
			expiresAt:     past,
			expectedError: domain.ErrAlreadyClosed,
		},
		{
			name:          "not_expired",
			swapStatus:    domain.SwapStatusActive,
			expiresAt:     future,
			expectedError: domain.ErrInvalidState,
		},
		{
			name:          "accepted",
			swapStatus:    domain.SwapStatusAccepted,
			expiresAt:     past,
			expectedError: domain.ErrInvalidState,
		},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			swap := newSwap(tt.swapStatus, tt.expiresAt)
			pending := []domain.Proposal{
				newProposal(swap.Id, domain.ProposalStatusPending),
			}

			tr, err := domain.CloseExpired(swap, pending, now)
			if tt.expectedError != nil {
				require.ErrorIs(t, err, tt.expectedError)
				require.Nil(t, tr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, domain.SwapStatusRejected, tr.Swap.Status)
			require.Len(t, tr.Proposals, 1)
			require.Equal(t, tt.expectedProposal, tr.Proposals[0].Status)
		})
	}
}

func TestPropose(t *testing.T) {
	swap, err := domain.Propose(newSwap(domain.SwapStatusActive, future), now)
	require.NoError(t, err)
	require.Equal(t, domain.SwapStatusPending, swap.Status)

	swap, err = domain.Propose(newSwap(domain.SwapStatusPending, future), now)
	require.NoError(t, err)
	require.Equal(t, domain.SwapStatusPending, swap.Status)

	_, err = domain.Propose(newSwap(domain.SwapStatusActive, past), now)
	require.ErrorIs(t, err, domain.ErrExpired)

	_, err = domain.Propose(newSwap(domain.SwapStatusExpired, past), now)
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestNewSwapAndProposal(t *testing.T) {
	_, err := domain.NewSwap("", "booking", now, future)
	require.ErrorIs(t, err, domain.ErrSwapMissingOwner)
	_, err = domain.NewSwap(ownerId, "", now, future)
	require.ErrorIs(t, err, domain.ErrSwapMissingBooking)
	_, err = domain.NewSwap(ownerId, "booking", now, past)
	require.ErrorIs(t, err, domain.ErrSwapInvalidDeadline)

	swap, err := domain.NewSwap(ownerId, "booking", now, future)
	require.NoError(t, err)
	require.Equal(t, domain.SwapStatusActive, swap.Status)
	require.NotEmpty(t, swap.Id)

	_, err = domain.NewProposal(swap.Id, "", proposerId, decimal.Zero, now)
	require.ErrorIs(t, err, domain.ErrProposalEmptyOffer)
	_, err = domain.NewProposal(swap.Id, swap.Id, proposerId, decimal.Zero, now)
	require.ErrorIs(t, err, domain.ErrProposalSameSwap)
	_, err = domain.NewProposal(
		swap.Id, "", proposerId, decimal.NewFromInt(-1), now,
	)
	require.ErrorIs(t, err, domain.ErrProposalInvalidAmount)

	p, err := domain.NewProposal(
		swap.Id, "", proposerId, decimal.NewFromInt(50), now,
	)
	require.NoError(t, err)
	require.True(t, p.IsFinancial())
	require.True(t, p.IsPending())
}

func newSwap(status domain.SwapStatus, expiresAt time.Time) domain.Swap {
	return domain.Swap{
		Id:        uuid.New().String(),
		OwnerId:   ownerId,
		BookingId: uuid.New().String(),
		Status:    status,
		CreatedAt: now.Add(-24 * time.Hour),
		ExpiresAt: expiresAt,
		Version:   1,
	}
}

func newProposal(swapId string, status domain.ProposalStatus) domain.Proposal {
	return domain.Proposal{
		Id:           uuid.New().String(),
		SwapId:       swapId,
		SourceSwapId: uuid.New().String(),
		ProposerId:   proposerId,
		Status:       status,
		CreatedAt:    now.Add(-time.Hour),
		Version:      1,
	}
}
