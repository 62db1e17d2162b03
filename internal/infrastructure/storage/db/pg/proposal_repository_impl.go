package postgresdb

import (
	"context"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/bushboy/bookingswap-sub023/internal/infrastructure/storage/db/pg/sqlc/queries"
	"github.com/shopspring/decimal"
)

type proposalRepositoryImpl struct {
	querier func(ctx context.Context) *queries.Queries
}

func NewProposalRepositoryImpl(
	querier func(ctx context.Context) *queries.Queries,
) domain.ProposalRepository {
	return &proposalRepositoryImpl{querier}
}

func (p *proposalRepositoryImpl) AddProposal(
	ctx context.Context, proposal *domain.Proposal,
) error {
	if err := p.querier(ctx).InsertProposal(ctx, queries.InsertProposalParams{
		ID:              proposal.Id,
		SwapID:          proposal.SwapId,
		SourceSwapID:    proposal.SourceSwapId,
		ProposerID:      proposal.ProposerId,
		Amount:          proposal.Amount.String(),
		Status:          proposal.Status.String(),
		RejectionReason: proposal.RejectionReason,
		CreatedAt:       proposal.CreatedAt,
		UpdatedAt:       proposal.UpdatedAt,
		Version:         int64(proposal.Version),
	}); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (p *proposalRepositoryImpl) GetProposal(
	ctx context.Context, proposalId string,
) (*domain.Proposal, error) {
	row, err := p.querier(ctx).GetProposal(ctx, proposalId)
	if err != nil {
		return nil, notFound("proposal", err)
	}
	return toProposal(row)
}

func (p *proposalRepositoryImpl) GetProposalForUpdate(
	ctx context.Context, proposalId string,
) (*domain.Proposal, error) {
	row, err := p.querier(ctx).GetProposalForUpdate(ctx, proposalId)
	if err != nil {
		return nil, notFound("proposal", err)
	}
	return toProposal(row)
}

func (p *proposalRepositoryImpl) GetProposalsForSwap(
	ctx context.Context, swapId string,
) ([]domain.Proposal, error) {
	rows, err := p.querier(ctx).GetProposalsBySwap(ctx, swapId)
	if err != nil {
		return nil, err
	}
	return toProposals(rows)
}

func (p *proposalRepositoryImpl) GetPendingProposalsForSwap(
	ctx context.Context, swapId string,
) ([]domain.Proposal, error) {
	rows, err := p.querier(ctx).GetPendingProposalsBySwapForUpdate(ctx, swapId)
	if err != nil {
		return nil, err
	}
	return toProposals(rows)
}

func (p *proposalRepositoryImpl) UpdateProposal(
	ctx context.Context, proposal *domain.Proposal,
) error {
	affected, err := p.querier(ctx).UpdateProposalStatus(
		ctx, queries.UpdateProposalStatusParams{
			ID:              proposal.Id,
			Status:          proposal.Status.String(),
			RejectionReason: proposal.RejectionReason,
			UpdatedAt:       proposal.UpdatedAt,
			Version:         int64(proposal.Version),
		},
	)
	if err != nil {
		return err
	}
	if affected <= 0 {
		return versionConflict("proposal", proposal.Id)
	}
	proposal.Version++
	return nil
}

func toProposal(row queries.Proposal) (*domain.Proposal, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return nil, err
	}
	return &domain.Proposal{
		Id:              row.ID,
		SwapId:          row.SwapID,
		SourceSwapId:    row.SourceSwapID,
		ProposerId:      row.ProposerID,
		Amount:          amount,
		Status:          domain.ProposalStatus(row.Status),
		RejectionReason: row.RejectionReason,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
		Version:         uint64(row.Version),
	}, nil
}

func toProposals(rows []queries.Proposal) ([]domain.Proposal, error) {
	proposals := make([]domain.Proposal, 0, len(rows))
	for _, row := range rows {
		proposal, err := toProposal(row)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, *proposal)
	}
	return proposals, nil
}
