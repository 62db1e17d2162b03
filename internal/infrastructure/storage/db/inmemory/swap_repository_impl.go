package inmemory

import (
	"context"
	"sort"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
)

type swapRepositoryImpl struct {
	store *store
}

// NewSwapRepositoryImpl returns a new inmemory SwapRepository implementation.
func NewSwapRepositoryImpl(store *store) domain.SwapRepository {
	return &swapRepositoryImpl{store}
}

func (r *swapRepositoryImpl) AddSwap(ctx context.Context, swap *domain.Swap) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	if _, ok := r.store.swaps[swap.Id]; ok {
		return ErrAlreadyExists
	}
	r.store.swaps[swap.Id] = *swap
	return nil
}

func (r *swapRepositoryImpl) GetSwap(
	ctx context.Context, swapId string,
) (*domain.Swap, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	return r.getSwap(swapId)
}

func (r *swapRepositoryImpl) GetSwapForUpdate(
	ctx context.Context, swapId string,
) (*domain.Swap, error) {
	return r.GetSwap(ctx, swapId)
}

func (r *swapRepositoryImpl) GetExpiredSwaps(
	ctx context.Context, now time.Time, limit int,
) ([]domain.Swap, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	swaps := make([]domain.Swap, 0)
	for _, s := range r.store.swaps {
		if s.IsOpen() && s.IsPastDeadline(now) {
			swaps = append(swaps, s)
		}
	}
	sort.SliceStable(swaps, func(i, j int) bool {
		return swaps[i].ExpiresAt.Before(swaps[j].ExpiresAt)
	})
	if limit > 0 && len(swaps) > limit {
		swaps = swaps[:limit]
	}
	return swaps, nil
}

func (r *swapRepositoryImpl) UpdateSwap(
	ctx context.Context, swap *domain.Swap,
) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	current, ok := r.store.swaps[swap.Id]
	if !ok {
		return ErrSwapNotFound
	}
	if current.Version != swap.Version {
		return versionConflict("swap", swap.Id)
	}

	swap.Version++
	r.store.swaps[swap.Id] = *swap
	return nil
}

func (r *swapRepositoryImpl) getSwap(swapId string) (*domain.Swap, error) {
	swap, ok := r.store.swaps[swapId]
	if !ok {
		return nil, ErrSwapNotFound
	}
	return &swap, nil
}
