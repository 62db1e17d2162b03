package ledger_test

import (
	"context"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

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
