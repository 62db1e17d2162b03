package httpbooking

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/bushboy/bookingswap-sub023/internal/core/ports"
	"github.com/bushboy/bookingswap-sub023/pkg/util"
	"github.com/shopspring/decimal"
)

// ErrMissingAddr is returned if the booking service address is not set.
var ErrMissingAddr = errors.New("missing booking service address")

type bookingReply struct {
	Id            string          `json:"id"`
	OwnerId       string          `json:"ownerId"`
	PayoutAccount string          `json:"payoutAccount"`
	Value         decimal.Decimal `json:"value"`
	Locked        bool            `json:"locked"`
}

type service struct {
	client *util.JSONClient
}

// NewService returns a client of the booking service listening at the
// given address.
func NewService(
	addr string, requestTimeout time.Duration,
) (ports.BookingService, error) {
	if len(addr) <= 0 {
		return nil, ErrMissingAddr
	}
	if _, err := url.Parse(addr); err != nil {
		return nil, fmt.Errorf("invalid booking service address: %w", err)
	}
	return &service{
		util.NewJSONClient("booking", addr, requestTimeout, nil),
	}, nil
}

func (s *service) GetBooking(
	ctx context.Context, bookingId string,
) (*ports.Booking, error) {
	var reply bookingReply
	if err := s.client.Get(
		ctx, "/v1/bookings/"+url.PathEscape(bookingId), &reply,
	); err != nil {
		if util.IsStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("booking %s %w", bookingId, domain.ErrNotFound)
		}
		return nil, err
	}

	return &ports.Booking{
		Id:            reply.Id,
		OwnerId:       reply.OwnerId,
		PayoutAccount: reply.PayoutAccount,
		Value:         reply.Value,
		Locked:        reply.Locked,
	}, nil
}

func (s *service) UnlockBooking(ctx context.Context, bookingId string) error {
	return s.client.Post(
		ctx, fmt.Sprintf("/v1/bookings/%s/unlock", url.PathEscape(bookingId)),
		nil, nil,
	)
}
