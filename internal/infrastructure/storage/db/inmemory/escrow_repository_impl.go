package inmemory

import (
	"context"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
)

type escrowRepositoryImpl struct {
	store *store
}

// NewEscrowRepositoryImpl returns a new inmemory EscrowRepository
// implementation.
func NewEscrowRepositoryImpl(store *store) domain.EscrowRepository {
	return &escrowRepositoryImpl{store}
}

func (r *escrowRepositoryImpl) AddHolding(
	ctx context.Context, holding *domain.EscrowHolding,
) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	if _, ok := r.store.holdings[holding.Id]; ok {
		return ErrAlreadyExists
	}
	for _, h := range r.store.holdings {
		if h.ProposalId == holding.ProposalId {
			return ErrAlreadyExists
		}
	}
	r.store.holdings[holding.Id] = *holding
	return nil
}

func (r *escrowRepositoryImpl) GetHolding(
	ctx context.Context, holdingId string,
) (*domain.EscrowHolding, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	holding, ok := r.store.holdings[holdingId]
	if !ok {
		return nil, ErrHoldingNotFound
	}
	return &holding, nil
}

func (r *escrowRepositoryImpl) GetHoldingForUpdate(
	ctx context.Context, holdingId string,
) (*domain.EscrowHolding, error) {
	return r.GetHolding(ctx, holdingId)
}

func (r *escrowRepositoryImpl) GetHoldingByProposal(
	ctx context.Context, proposalId string,
) (*domain.EscrowHolding, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	for _, h := range r.store.holdings {
		if h.ProposalId == proposalId {
			holding := h
			return &holding, nil
		}
	}
	return nil, ErrHoldingNotFound
}

func (r *escrowRepositoryImpl) UpdateHolding(
	ctx context.Context, holding *domain.EscrowHolding,
) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	current, ok := r.store.holdings[holding.Id]
	if !ok {
		return ErrHoldingNotFound
	}
	if current.Version != holding.Version {
		return versionConflict("escrow holding", holding.Id)
	}

	holding.Version++
	r.store.holdings[holding.Id] = *holding
	return nil
}
