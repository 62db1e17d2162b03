package escrow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/bushboy/bookingswap-sub023/internal/core/ports"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTransferTimeout = 10 * time.Second
	DefaultVerifyTimeout   = 30 * time.Second
	DefaultPollInterval    = time.Second
)

var (
	// ErrVerifyTimeout is returned when a transfer is not confirmed in time.
	ErrVerifyTimeout = errors.New("transfer not confirmed in time")
	// ErrTransferRejected is returned when the provider reports a transfer as
	// failed.
	ErrTransferRejected = errors.New("transfer rejected by provider")
)

type Config struct {
	TransferTimeout time.Duration
	VerifyTimeout   time.Duration
	PollInterval    time.Duration
}

func (c Config) withDefaults() Config {
	if c.TransferTimeout <= 0 {
		c.TransferTimeout = DefaultTransferTimeout
	}
	if c.VerifyTimeout <= 0 {
		c.VerifyTimeout = DefaultVerifyTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	return c
}

// Service is the only component allowed to change the status of escrow
// holdings. All its methods but Verify expect to be called with the context
// of a transaction opened by the caller, so that escrow statuses are
// committed or rolled back together with the settlement they belong to.
type Service struct {
	repoManager ports.RepoManager
	provider    ports.EscrowProvider
	clock       clock.Clock
	cfg         Config
}

func NewService(
	repoManager ports.RepoManager, provider ports.EscrowProvider,
	clk clock.Clock, cfg Config,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if provider == nil {
		return nil, fmt.Errorf("missing escrow provider")
	}
	if clk == nil {
		clk = clock.NewDefaultClock()
	}
	return &Service{repoManager, provider, clk, cfg.withDefaults()}, nil
}

// Hold asks the provider to set aside the amount of the given financial
// proposal and stores the related holding.
func (s *Service) Hold(
	ctx context.Context, proposal domain.Proposal, account string,
) (*domain.EscrowHolding, error) {
	holding, err := domain.NewEscrowHolding(
		proposal.Id, account, proposal.Amount, s.clock.Now(),
	)
	if err != nil {
		return nil, err
	}

	if err := s.repoManager.EscrowRepository().AddHolding(
		ctx, holding,
	); err != nil {
		return nil, err
	}

	holdCtx, cancel := context.WithTimeout(ctx, s.cfg.TransferTimeout)
	defer cancel()
	if err := s.provider.PlaceHold(
		holdCtx, holding.Id, account, holding.Amount,
	); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrTransferFailed, err)
	}

	log.Debugf("placed escrow hold %s for proposal %s", holding.Id, proposal.Id)
	return holding, nil
}

// Transfer marks the holding as released, initiates the transfer of the
// given amount to the recipient account and waits for its confirmation.
// If the transfer fails or is not confirmed in time the holding is brought
// back to held and ErrTransferFailed is returned.
func (s *Service) Transfer(
	ctx context.Context, holdingId, toAccount string, amount decimal.Decimal,
) (string, error) {
	repo := s.repoManager.EscrowRepository()

	holding, err := repo.GetHoldingForUpdate(ctx, holdingId)
	if err != nil {
		return "", err
	}
	if err := holding.Release(amount, s.clock.Now()); err != nil {
		return "", err
	}
	if err := repo.UpdateHolding(ctx, holding); err != nil {
		return "", err
	}

	transferCtx, cancel := context.WithTimeout(ctx, s.cfg.TransferTimeout)
	handle, err := s.provider.Transfer(transferCtx, holding.Id, toAccount, amount)
	cancel()
	if err != nil {
		s.restore(ctx, holding, "")
		return "", fmt.Errorf("%w: %s", domain.ErrTransferFailed, err)
	}

	if err := s.Verify(ctx, handle); err != nil {
		s.restore(ctx, holding, handle)
		return "", fmt.Errorf("%w: %s", domain.ErrTransferFailed, err)
	}

	holding.TransferHandle = handle
	if err := repo.UpdateHolding(ctx, holding); err != nil {
		return "", err
	}

	log.Debugf(
		"released escrow holding %s to %s with transfer %s",
		holding.Id, toAccount, handle,
	)
	return handle, nil
}

// Verify polls the provider until the transfer with the given handle is
// confirmed, fails, or the verify timeout elapses.
func (s *Service) Verify(ctx context.Context, handle string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.VerifyTimeout)
	defer cancel()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		status, err := s.provider.TransferStatus(ctx, handle)
		if err != nil {
			log.WithError(err).Debugf("failed to fetch status of transfer %s", handle)
		}
		switch status {
		case ports.TransferStatusConfirmed:
			return nil
		case ports.TransferStatusFailed:
			return ErrTransferRejected
		}

		select {
		case <-ctx.Done():
			return ErrVerifyTimeout
		case <-ticker.C:
		}
	}
}

// Revert brings a held holding to the reverted status. It only changes the
// stored status: the funds are given back to the proposer with ReleaseHold
// once the transaction is committed.
func (s *Service) Revert(ctx context.Context, holdingId string) error {
	repo := s.repoManager.EscrowRepository()

	holding, err := repo.GetHoldingForUpdate(ctx, holdingId)
	if err != nil {
		return err
	}
	if holding.Status == domain.EscrowStatusReverted {
		return nil
	}

	if err := holding.Revert(s.clock.Now()); err != nil {
		return err
	}
	if err := repo.UpdateHolding(ctx, holding); err != nil {
		return err
	}

	log.Debugf(
		"reverted escrow holding %s of proposal %s", holding.Id, holding.ProposalId,
	)
	return nil
}

// RevertForProposal reverts the holding of a proposal closed without
// acceptance and returns its id. Non financial proposals have no holding and
// an empty id is returned.
func (s *Service) RevertForProposal(
	ctx context.Context, proposalId string,
) (string, error) {
	holding, err := s.repoManager.EscrowRepository().GetHoldingByProposal(
		ctx, proposalId,
	)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	if holding.Status == domain.EscrowStatusReverted {
		return "", nil
	}
	if err := s.Revert(ctx, holding.Id); err != nil {
		return "", err
	}
	return holding.Id, nil
}

// ReleaseHold asks the provider to give the funds of a reverted holding back
// to the proposer.
func (s *Service) ReleaseHold(ctx context.Context, holdingId string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.TransferTimeout)
	defer cancel()

	if err := s.provider.ReleaseHold(ctx, holdingId); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrTransferFailed, err)
	}
	return nil
}

func (s *Service) restore(
	ctx context.Context, holding *domain.EscrowHolding, handle string,
) {
	if len(handle) > 0 {
		cancelCtx, cancel := context.WithTimeout(
			context.Background(), s.cfg.TransferTimeout,
		)
		if err := s.provider.CancelTransfer(cancelCtx, handle); err != nil {
			log.WithError(err).Warnf("failed to cancel transfer %s", handle)
		}
		cancel()
	}

	holding.Restore(s.clock.Now())
	if err := s.repoManager.EscrowRepository().UpdateHolding(
		ctx, holding,
	); err != nil {
		log.WithError(err).Warnf(
			"failed to restore escrow holding %s, relying on rollback", holding.Id,
		)
	}
}
