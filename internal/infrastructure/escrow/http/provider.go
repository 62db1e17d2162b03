package httpescrow

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/ports"
	"github.com/bushboy/bookingswap-sub023/pkg/util"
	"github.com/shopspring/decimal"
)

var (
	// ErrMissingAddr is returned if the escrow provider address is not set.
	ErrMissingAddr = errors.New("missing escrow provider address")
	// ErrUnknownStatus is returned if the provider replies with a transfer
	// status not recognized.
	ErrUnknownStatus = errors.New("unknown transfer status")
)

type holdRequest struct {
	HoldingId string          `json:"holdingId"`
	Account   string          `json:"account"`
	Amount    decimal.Decimal `json:"amount"`
}

type transferRequest struct {
	ToAccount string          `json:"toAccount"`
	Amount    decimal.Decimal `json:"amount"`
}

type transferReply struct {
	Handle string `json:"handle"`
	Status string `json:"status"`
}

type provider struct {
	client *util.JSONClient
}

// NewProvider returns a client of the escrow provider service listening at
// the given address.
func NewProvider(
	addr string, requestTimeout time.Duration,
) (ports.EscrowProvider, error) {
	if len(addr) <= 0 {
		return nil, ErrMissingAddr
	}
	if _, err := url.Parse(addr); err != nil {
		return nil, fmt.Errorf("invalid escrow provider address: %w", err)
	}
	return &provider{
		util.NewJSONClient("escrow", addr, requestTimeout, nil),
	}, nil
}

func (p *provider) PlaceHold(
	ctx context.Context, holdingId, account string, amount decimal.Decimal,
) error {
	return p.client.Post(ctx, "/v1/holds", holdRequest{
		HoldingId: holdingId,
		Account:   account,
		Amount:    amount,
	}, nil)
}

func (p *provider) Transfer(
	ctx context.Context, holdingId, toAccount string, amount decimal.Decimal,
) (string, error) {
	var reply transferReply
	if err := p.client.Post(
		ctx, fmt.Sprintf("/v1/holds/%s/transfer", url.PathEscape(holdingId)),
		transferRequest{toAccount, amount}, &reply,
	); err != nil {
		return "", err
	}
	return reply.Handle, nil
}

func (p *provider) TransferStatus(
	ctx context.Context, handle string,
) (ports.TransferStatus, error) {
	var reply transferReply
	if err := p.client.Get(
		ctx, "/v1/transfers/"+url.PathEscape(handle), &reply,
	); err != nil {
		return ports.TransferStatusPending, err
	}

	switch reply.Status {
	case ports.TransferStatusPending.String():
		return ports.TransferStatusPending, nil
	case ports.TransferStatusConfirmed.String():
		return ports.TransferStatusConfirmed, nil
	case ports.TransferStatusFailed.String():
		return ports.TransferStatusFailed, nil
	default:
		return ports.TransferStatusPending, fmt.Errorf(
			"%w %q", ErrUnknownStatus, reply.Status,
		)
	}
}

func (p *provider) CancelTransfer(ctx context.Context, handle string) error {
	return p.client.Post(
		ctx, fmt.Sprintf("/v1/transfers/%s/cancel", url.PathEscape(handle)),
		nil, nil,
	)
}

func (p *provider) ReleaseHold(ctx context.Context, holdingId string) error {
	return p.client.Post(
		ctx, fmt.Sprintf("/v1/holds/%s/release", url.PathEscape(holdingId)),
		nil, nil,
	)
}
