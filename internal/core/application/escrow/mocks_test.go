package escrow_test

import (
	"context"

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
	args := m.Called(ctx, handle)
	return args.Error(0)
}

func (m *mockProvider) ReleaseHold(ctx context.Context, holdingId string) error {
	args := m.Called(ctx, holdingId)
	return args.Error(0)
}
