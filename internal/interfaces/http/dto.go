package httpinterface

import (
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/shopspring/decimal"
)

type listSwapRequest struct {
	BookingId string `json:"bookingId"`
	ExpiresAt string `json:"expiresAt"`
}

type proposalRequest struct {
	SourceSwapId string          `json:"sourceSwapId"`
	Amount       decimal.Decimal `json:"amount"`
	Account      string          `json:"account"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type subscribeRequest struct {
	Topic    string `json:"topic"`
	Endpoint string `json:"endpoint"`
	Secret   string `json:"secret"`
}

type subscribeReply struct {
	Id string `json:"id"`
}

type subscriptionReply struct {
	Id        string `json:"id"`
	Topic     string `json:"topic"`
	Endpoint  string `json:"endpoint"`
	IsSecured bool   `json:"isSecured"`
}

type swapReply struct {
	Id        string          `json:"id"`
	OwnerId   string          `json:"ownerId"`
	BookingId string          `json:"bookingId"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	ExpiresAt time.Time       `json:"expiresAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Proposals []proposalReply `json:"proposals,omitempty"`
}

type proposalReply struct {
	Id              string          `json:"id"`
	SwapId          string          `json:"swapId"`
	SourceSwapId    string          `json:"sourceSwapId,omitempty"`
	ProposerId      string          `json:"proposerId"`
	Amount          decimal.Decimal `json:"amount"`
	Status          string          `json:"status"`
	RejectionReason string          `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func toSwapReply(swap domain.Swap, proposals []domain.Proposal) swapReply {
	reply := swapReply{
		Id:        swap.Id,
		OwnerId:   swap.OwnerId,
		BookingId: swap.BookingId,
		Status:    swap.Status.String(),
		CreatedAt: swap.CreatedAt,
		ExpiresAt: swap.ExpiresAt,
		UpdatedAt: swap.UpdatedAt,
	}
	for _, p := range proposals {
		reply.Proposals = append(reply.Proposals, toProposalReply(p))
	}
	return reply
}

func toProposalReply(p domain.Proposal) proposalReply {
	return proposalReply{
		Id:              p.Id,
		SwapId:          p.SwapId,
		SourceSwapId:    p.SourceSwapId,
		ProposerId:      p.ProposerId,
		Amount:          p.Amount,
		Status:          p.Status.String(),
		RejectionReason: p.RejectionReason,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
