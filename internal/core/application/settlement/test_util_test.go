package settlement_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/application/escrow"
	"github.com/bushboy/bookingswap-sub023/internal/core/application/ledger"
	"github.com/bushboy/bookingswap-sub023/internal/core/application/settlement"
	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/bushboy/bookingswap-sub023/internal/core/ports"
	"github.com/bushboy/bookingswap-sub023/internal/infrastructure/storage/db/inmemory"
	"github.com/google/uuid"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	ownerId       = "owner"
	proposerId    = "proposer"
	otherId       = "other"
	payoutAccount = "owner-payout"
	sourceAccount = "proposer-account"
)

var (
	ctx       = context.Background()
	startTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

type testEnv struct {
	svc         *settlement.Service
	repoManager ports.RepoManager
	clock       *clock.TestClock
	provider    *mockProvider
	ledger      *mockLedger
	bookings    *mockBookingService
	notifier    *mockNotifier
}

// newTestEnv wires the coordinator with the in-memory store and the real
// escrow executor and ledger recorder, mocking only the external
// collaborators. setup can register provider expectations that take
// precedence over the default ones.
func newTestEnv(t *testing.T, setup func(p *mockProvider)) *testEnv {
	return newTestEnvWithRepo(t, inmemory.NewRepoManager(), setup)
}

func newTestEnvWithRepo(
	t *testing.T, repoManager ports.RepoManager, setup func(p *mockProvider),
) *testEnv {
	testClock := clock.NewTestClock(startTime)

	provider := &mockProvider{}
	if setup != nil {
		setup(provider)
	}
	provider.On(
		"PlaceHold", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
	).Return(nil).Maybe()
	provider.On(
		"Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
	).Return("transfer-handle", nil).Maybe()
	provider.On("TransferStatus", mock.Anything, mock.Anything).
		Return(ports.TransferStatusConfirmed, nil).Maybe()
	provider.On("CancelTransfer", mock.Anything, mock.Anything).
		Return(nil).Maybe()
	provider.On("ReleaseHold", mock.Anything, mock.Anything).
		Return(nil).Maybe()

	ledgerMock := &mockLedger{}
	ledgerMock.On("Submit", mock.Anything, mock.Anything).
		Return("ledger-tx", nil).Maybe()

	bookings := &mockBookingService{}
	bookings.On("GetBooking", mock.Anything, mock.Anything).Return(
		&ports.Booking{OwnerId: ownerId, PayoutAccount: payoutAccount}, nil,
	).Maybe()
	bookings.On("UnlockBooking", mock.Anything, mock.Anything).
		Return(nil).Maybe()

	notifier := &mockNotifier{}
	notifier.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	notifier.On("Close").Return(nil).Maybe()

	escrowSvc, err := escrow.NewService(
		repoManager, provider, testClock, escrow.Config{
			VerifyTimeout: 200 * time.Millisecond,
			PollInterval:  5 * time.Millisecond,
		},
	)
	require.NoError(t, err)
	recorder, err := ledger.NewRecorder(
		repoManager, ledgerMock, testClock,
		ledger.Config{RetryBackoff: time.Millisecond},
	)
	require.NoError(t, err)
	svc, err := settlement.NewService(
		repoManager, escrowSvc, recorder, bookings, notifier, testClock,
		settlement.Config{},
	)
	require.NoError(t, err)

	return &testEnv{
		svc:         svc,
		repoManager: repoManager,
		clock:       testClock,
		provider:    provider,
		ledger:      ledgerMock,
		bookings:    bookings,
		notifier:    notifier,
	}
}

func (e *testEnv) addSwap(
	t *testing.T, status domain.SwapStatus, expiresIn time.Duration,
) *domain.Swap {
	return e.addSwapFor(t, ownerId, status, expiresIn)
}

func (e *testEnv) addSwapFor(
	t *testing.T, owner string, status domain.SwapStatus,
	expiresIn time.Duration,
) *domain.Swap {
	createdAt := startTime.Add(-48 * time.Hour)
	swap := &domain.Swap{
		Id:        uuid.New().String(),
		OwnerId:   owner,
		BookingId: uuid.New().String(),
		Status:    status,
		CreatedAt: createdAt,
		ExpiresAt: startTime.Add(expiresIn),
		UpdatedAt: createdAt,
	}
	require.NoError(t, e.repoManager.SwapRepository().AddSwap(ctx, swap))
	return swap
}

// addProposal stores a pending proposal on the given swap, with its held
// escrow holding if financial.
func (e *testEnv) addProposal(
	t *testing.T, swapId string, amount int64,
) *domain.Proposal {
	proposal, err := domain.NewProposal(
		swapId, uuid.New().String(), proposerId, decimal.NewFromInt(amount),
		startTime.Add(-time.Minute),
	)
	require.NoError(t, err)
	require.NoError(
		t, e.repoManager.ProposalRepository().AddProposal(ctx, proposal),
	)

	if proposal.IsFinancial() {
		holding, err := domain.NewEscrowHolding(
			proposal.Id, sourceAccount, proposal.Amount, startTime,
		)
		require.NoError(t, err)
		require.NoError(
			t, e.repoManager.EscrowRepository().AddHolding(ctx, holding),
		)
	}
	return proposal
}

func (e *testEnv) swap(t *testing.T, id string) *domain.Swap {
	swap, err := e.repoManager.SwapRepository().GetSwap(ctx, id)
	require.NoError(t, err)
	return swap
}

func (e *testEnv) proposal(t *testing.T, id string) *domain.Proposal {
	proposal, err := e.repoManager.ProposalRepository().GetProposal(ctx, id)
	require.NoError(t, err)
	return proposal
}

func (e *testEnv) holding(t *testing.T, proposalId string) *domain.EscrowHolding {
	holding, err := e.repoManager.EscrowRepository().GetHoldingByProposal(
		ctx, proposalId,
	)
	require.NoError(t, err)
	return holding
}

func (e *testEnv) records(t *testing.T, subjectId string) []domain.LedgerRecord {
	records, err := e.repoManager.LedgerRepository().GetRecordsForSubject(
		ctx, subjectId,
	)
	require.NoError(t, err)
	return records
}

// submitted returns how many times the given outcome has been submitted to
// the ledger.
func (e *testEnv) submitted(subjectId, outcome string) int {
	count := 0
	for _, call := range e.ledger.Calls {
		if call.Method != "Submit" {
			continue
		}
		entry := call.Arguments.Get(1).(domain.LedgerEntry)
		if entry.SubjectId == subjectId && entry.Outcome == outcome {
			count++
		}
	}
	return count
}

// faultyRepoManager fails reading the holding of a proposal once its funds
// have been released, that is right after the escrow transfer.
type faultyRepoManager struct {
	ports.RepoManager
}

func (m faultyRepoManager) EscrowRepository() domain.EscrowRepository {
	return faultyEscrowRepository{m.RepoManager.EscrowRepository()}
}

type faultyEscrowRepository struct {
	domain.EscrowRepository
}

func (r faultyEscrowRepository) GetHoldingByProposal(
	ctx context.Context, proposalId string,
) (*domain.EscrowHolding, error) {
	holding, err := r.EscrowRepository.GetHoldingByProposal(ctx, proposalId)
	if err != nil {
		return nil, err
	}
	if holding.Status == domain.EscrowStatusReleased {
		return nil, errors.New("escrow repository unavailable")
	}
	return holding, nil
}
