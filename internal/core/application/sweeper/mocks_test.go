package sweeper_test

import (
	"context"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/application/settlement"
	"github.com/bushboy/bookingswap-sub023/internal/core/ports"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockExpirer struct {
	mock.Mock
}

func (m *mockExpirer) Expire(
	ctx context.Context, swapId string,
) (settlement.Result, error) {
	args := m.Called(ctx, swapId)
	return args.Get(0).(settlement.Result), args.Error(1)
}

type mockLocker struct {
	mock.Mock
}

func (m *mockLocker) TryLock(
	ctx context.Context, key string, ttl time.Duration,
) (func(), bool, error) {
	args := m.Called(ctx, key, ttl)

	var unlock func()
	if a := args.Get(0); a != nil {
		unlock = a.(func())
	}
	return unlock, args.Bool(1), args.Error(2)
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

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) PlaceHold(
	ctx context.Context, holdingId, account string, amount decimal.Decimal,
) error {
	return m.Called(ctx, holdingId, account, amount).Error(0)
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
