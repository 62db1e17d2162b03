package inmemory

import (
	"context"
	"sort"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
)

type proposalRepositoryImpl struct {
	store *store
}

// NewProposalRepositoryImpl returns a new inmemory ProposalRepository
// implementation.
func NewProposalRepositoryImpl(store *store) domain.ProposalRepository {
	return &proposalRepositoryImpl{store}
}

func (r *proposalRepositoryImpl) AddProposal(
	ctx context.Context, proposal *domain.Proposal,
) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	if _, ok := r.store.proposals[proposal.Id]; ok {
		return ErrAlreadyExists
	}
	r.store.proposals[proposal.Id] = *proposal
	return nil
}

func (r *proposalRepositoryImpl) GetProposal(
	ctx context.Context, proposalId string,
) (*domain.Proposal, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	proposal, ok := r.store.proposals[proposalId]
	if !ok {
		return nil, ErrProposalNotFound
	}
	return &proposal, nil
}

func (r *proposalRepositoryImpl) GetProposalForUpdate(
	ctx context.Context, proposalId string,
) (*domain.Proposal, error) {
	return r.GetProposal(ctx, proposalId)
}

func (r *proposalRepositoryImpl) GetProposalsForSwap(
	ctx context.Context, swapId string,
) ([]domain.Proposal, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	return r.filter(func(p domain.Proposal) bool {
		return p.SwapId == swapId
	}), nil
}

func (r *proposalRepositoryImpl) GetPendingProposalsForSwap(
	ctx context.Context, swapId string,
) ([]domain.Proposal, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	return r.filter(func(p domain.Proposal) bool {
		return p.SwapId == swapId && p.IsPending()
	}), nil
}

func (r *proposalRepositoryImpl) UpdateProposal(
	ctx context.Context, proposal *domain.Proposal,
) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	current, ok := r.store.proposals[proposal.Id]
	if !ok {
		return ErrProposalNotFound
	}
	if current.Version != proposal.Version {
		return versionConflict("proposal", proposal.Id)
	}

	proposal.Version++
	r.store.proposals[proposal.Id] = *proposal
	return nil
}

func (r *proposalRepositoryImpl) filter(
	match func(p domain.Proposal) bool,
) []domain.Proposal {
	proposals := make([]domain.Proposal, 0)
	for _, p := range r.store.proposals {
		if match(p) {
			proposals = append(proposals, p)
		}
	}
	sort.SliceStable(proposals, func(i, j int) bool {
		return proposals[i].CreatedAt.Before(proposals[j].CreatedAt)
	})
	return proposals
}
