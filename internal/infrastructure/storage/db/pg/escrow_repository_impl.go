package postgresdb

import (
	"context"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/bushboy/bookingswap-sub023/internal/infrastructure/storage/db/pg/sqlc/queries"
	"github.com/shopspring/decimal"
)

type escrowRepositoryImpl struct {
	querier func(ctx context.Context) *queries.Queries
}

func NewEscrowRepositoryImpl(
	querier func(ctx context.Context) *queries.Queries,
) domain.EscrowRepository {
	return &escrowRepositoryImpl{querier}
}

func (e *escrowRepositoryImpl) AddHolding(
	ctx context.Context, holding *domain.EscrowHolding,
) error {
	if err := e.querier(ctx).InsertHolding(ctx, queries.InsertHoldingParams{
		ID:             holding.Id,
		ProposalID:     holding.ProposalId,
		Account:        holding.Account,
		Amount:         holding.Amount.String(),
		Status:         holding.Status.String(),
		TransferHandle: holding.TransferHandle,
		UpdatedAt:      holding.UpdatedAt,
		Version:        int64(holding.Version),
	}); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (e *escrowRepositoryImpl) GetHolding(
	ctx context.Context, holdingId string,
) (*domain.EscrowHolding, error) {
	row, err := e.querier(ctx).GetHolding(ctx, holdingId)
	if err != nil {
		return nil, notFound("escrow holding", err)
	}
	return toHolding(row)
}

func (e *escrowRepositoryImpl) GetHoldingForUpdate(
	ctx context.Context, holdingId string,
) (*domain.EscrowHolding, error) {
	row, err := e.querier(ctx).GetHoldingForUpdate(ctx, holdingId)
	if err != nil {
		return nil, notFound("escrow holding", err)
	}
	return toHolding(row)
}

func (e *escrowRepositoryImpl) GetHoldingByProposal(
	ctx context.Context, proposalId string,
) (*domain.EscrowHolding, error) {
	row, err := e.querier(ctx).GetHoldingByProposal(ctx, proposalId)
	if err != nil {
		return nil, notFound("escrow holding", err)
	}
	return toHolding(row)
}

func (e *escrowRepositoryImpl) UpdateHolding(
	ctx context.Context, holding *domain.EscrowHolding,
) error {
	affected, err := e.querier(ctx).UpdateHolding(
		ctx, queries.UpdateHoldingParams{
			ID:             holding.Id,
			Status:         holding.Status.String(),
			TransferHandle: holding.TransferHandle,
			UpdatedAt:      holding.UpdatedAt,
			Version:        int64(holding.Version),
		},
	)
	if err != nil {
		return err
	}
	if affected <= 0 {
		return versionConflict("escrow holding", holding.Id)
	}
	holding.Version++
	return nil
}

func toHolding(row queries.EscrowHolding) (*domain.EscrowHolding, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return nil, err
	}
	return &domain.EscrowHolding{
		Id:             row.ID,
		ProposalId:     row.ProposalID,
		Account:        row.Account,
		Amount:         amount,
		Status:         domain.EscrowStatus(row.Status),
		TransferHandle: row.TransferHandle,
		UpdatedAt:      row.UpdatedAt,
		Version:        uint64(row.Version),
	}, nil
}
