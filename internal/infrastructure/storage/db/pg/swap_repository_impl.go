package postgresdb

import (
	"context"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/bushboy/bookingswap-sub023/internal/infrastructure/storage/db/pg/sqlc/queries"
)

type swapRepositoryImpl struct {
	querier func(ctx context.Context) *queries.Queries
}

func NewSwapRepositoryImpl(
	querier func(ctx context.Context) *queries.Queries,
) domain.SwapRepository {
	return &swapRepositoryImpl{querier}
}

func (s *swapRepositoryImpl) AddSwap(
	ctx context.Context, swap *domain.Swap,
) error {
	if err := s.querier(ctx).InsertSwap(ctx, queries.InsertSwapParams{
		ID:        swap.Id,
		OwnerID:   swap.OwnerId,
		BookingID: swap.BookingId,
		Status:    swap.Status.String(),
		CreatedAt: swap.CreatedAt,
		ExpiresAt: swap.ExpiresAt,
		UpdatedAt: swap.UpdatedAt,
		Version:   int64(swap.Version),
	}); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (s *swapRepositoryImpl) GetSwap(
	ctx context.Context, swapId string,
) (*domain.Swap, error) {
	row, err := s.querier(ctx).GetSwap(ctx, swapId)
	if err != nil {
		return nil, notFound("swap", err)
	}
	return toSwap(row), nil
}

func (s *swapRepositoryImpl) GetSwapForUpdate(
	ctx context.Context, swapId string,
) (*domain.Swap, error) {
	row, err := s.querier(ctx).GetSwapForUpdate(ctx, swapId)
	if err != nil {
		return nil, notFound("swap", err)
	}
	return toSwap(row), nil
}

func (s *swapRepositoryImpl) GetExpiredSwaps(
	ctx context.Context, now time.Time, limit int,
) ([]domain.Swap, error) {
	rows, err := s.querier(ctx).GetExpiredSwaps(
		ctx, queries.GetExpiredSwapsParams{
			ExpiresAt: now,
			Limit:     int32(limit),
		},
	)
	if err != nil {
		return nil, err
	}

	swaps := make([]domain.Swap, 0, len(rows))
	for _, row := range rows {
		swaps = append(swaps, *toSwap(row))
	}
	return swaps, nil
}

func (s *swapRepositoryImpl) UpdateSwap(
	ctx context.Context, swap *domain.Swap,
) error {
	affected, err := s.querier(ctx).UpdateSwapStatus(
		ctx, queries.UpdateSwapStatusParams{
			ID:        swap.Id,
			Status:    swap.Status.String(),
			UpdatedAt: swap.UpdatedAt,
			Version:   int64(swap.Version),
		},
	)
	if err != nil {
		return err
	}
	if affected <= 0 {
		return versionConflict("swap", swap.Id)
	}
	swap.Version++
	return nil
}

func toSwap(row queries.Swap) *domain.Swap {
	return &domain.Swap{
		Id:        row.ID,
		OwnerId:   row.OwnerID,
		BookingId: row.BookingID,
		Status:    domain.SwapStatus(row.Status),
		CreatedAt: row.CreatedAt,
		ExpiresAt: row.ExpiresAt,
		UpdatedAt: row.UpdatedAt,
		Version:   uint64(row.Version),
	}
}
