package settlement_test

import (
	"context"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/bushboy/bookingswap-sub023/internal/core/ports"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) PlaceHold(
	ctx context.Context, holdingId, account string, amount decimal.Decimal,
) error {
	args := m.Called(ctx, holdingId, account, amount)
	return args.Error(0)
}

func (m *mockProvider) Transfer(
	ctx context.Context, holdingId, toAccount string, amount decimal.Decimal,
) (string, error) {
	args := m.Called(ctx, holdingId, toAccount, amount)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) TransferStatus(
	ctx context.Context, handle string,
) (ports.TransferStatus, error) {
	args := m.Called(ctx, handle)
	return args.Get(0).(ports.TransferStatus), args.Error(1)
}

func (m *mockProvider) CancelTransfer(ctx context.Context, handle string) error {
	return m.Called(ctx, handle).Error(0)
}

func (m *mockProvider) ReleaseHold(ctx context.Context, holdingId string) error {
	return m.Called(ctx, holdingId).Error(0)
}

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) Submit(
	ctx context.Context, entry domain.LedgerEntry,
) (string, error) {
	args := m.Called(ctx, entry)
	return args.String(0), args.Error(1)
}

func (m *mockLedger) Close() error {
	return m.Called().Error(0)
}

type mockBookingService struct {
	mock.Mock
}

func (m *mockBookingService) GetBooking(
	ctx context.Context, bookingId string,
) (*ports.Booking, error) {
	args := m.Called(ctx, bookingId)

	var res *ports.Booking
	if a := args.Get(0); a != nil {
		res = a.(*ports.Booking)
	}
	return res, args.Error(1)
}

func (m *mockBookingService) UnlockBooking(
	ctx context.Context, bookingId string,
) error {
	return m.Called(ctx, bookingId).Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Publish(
	ctx context.Context, event domain.SettlementEvent,
) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockNotifier) Close() error {
	return m.Called().Error(0)
}
