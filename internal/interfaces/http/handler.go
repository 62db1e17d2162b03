package httpinterface

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/application/settlement"
	"github.com/bushboy/bookingswap-sub023/internal/core/application/sweeper"
	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/bushboy/bookingswap-sub023/internal/core/ports"
	"github.com/go-chi/chi/v5"
)

// SettlementService is the set of settlement operations exposed over HTTP.
type SettlementService interface {
	ListSwap(
		ctx context.Context, ownerId, bookingId string, expiresAt time.Time,
	) (*domain.Swap, error)
	SubmitProposal(
		ctx context.Context, req settlement.ProposalRequest,
	) (*domain.Proposal, error)
	Accept(ctx context.Context, proposalId, actorId string) (settlement.Result, error)
	Reject(
		ctx context.Context, proposalId, actorId, reason string,
	) (settlement.Result, error)
	Withdraw(ctx context.Context, proposalId, actorId string) (settlement.Result, error)
	Cancel(ctx context.Context, swapId, actorId string) (settlement.Result, error)
	ManualRejectExpired(
		ctx context.Context, swapId, actorId string,
	) (settlement.Result, error)
	GetSwap(
		ctx context.Context, swapId string,
	) (*domain.Swap, []domain.Proposal, error)
}

// SweeperService reports the status of the expiration sweeper.
type SweeperService interface {
	Status() sweeper.Status
}

type handler struct {
	settlementSvc SettlementService
	sweeperSvc    SweeperService
	subscriptions ports.SubscriptionManager
}

func (h *handler) listSwap(w http.ResponseWriter, r *http.Request) {
	var req listSwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}
	expiresAt, err := time.Parse(time.RFC3339, req.ExpiresAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, errInvalidExpiration)
		return
	}

	swap, err := h.settlementSvc.ListSwap(
		r.Context(), actorFromContext(r.Context()), req.BookingId, expiresAt,
	)
	if err != nil {
		writeError(w, statusFromError(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, toSwapReply(*swap, nil))
}

func (h *handler) getSwap(w http.ResponseWriter, r *http.Request) {
	swap, proposals, err := h.settlementSvc.GetSwap(
		r.Context(), chi.URLParam(r, "id"),
	)
	if err != nil {
		writeError(w, statusFromError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, toSwapReply(*swap, proposals))
}

func (h *handler) submitProposal(w http.ResponseWriter, r *http.Request) {
	var req proposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}

	proposal, err := h.settlementSvc.SubmitProposal(
		r.Context(), settlement.ProposalRequest{
			SwapId:       chi.URLParam(r, "id"),
			ProposerId:   actorFromContext(r.Context()),
			SourceSwapId: req.SourceSwapId,
			Amount:       req.Amount,
			Account:      req.Account,
		},
	)
	if err != nil {
		writeError(w, statusFromError(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, toProposalReply(*proposal))
}

func (h *handler) accept(w http.ResponseWriter, r *http.Request) {
	result, err := h.settlementSvc.Accept(
		r.Context(), chi.URLParam(r, "id"), actorFromContext(r.Context()),
	)
	writeResult(w, result, err)
}

func (h *handler) reject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, errInvalidBody)
			return
		}
	}

	result, err := h.settlementSvc.Reject(
		r.Context(), chi.URLParam(r, "id"), actorFromContext(r.Context()),
		req.Reason,
	)
	writeResult(w, result, err)
}

func (h *handler) withdraw(w http.ResponseWriter, r *http.Request) {
	result, err := h.settlementSvc.Withdraw(
		r.Context(), chi.URLParam(r, "id"), actorFromContext(r.Context()),
	)
	writeResult(w, result, err)
}

func (h *handler) cancel(w http.ResponseWriter, r *http.Request) {
	result, err := h.settlementSvc.Cancel(
		r.Context(), chi.URLParam(r, "id"), actorFromContext(r.Context()),
	)
	writeResult(w, result, err)
}

func (h *handler) rejectExpired(w http.ResponseWriter, r *http.Request) {
	result, err := h.settlementSvc.ManualRejectExpired(
		r.Context(), chi.URLParam(r, "id"), actorFromContext(r.Context()),
	)
	writeResult(w, result, err)
}

func (h *handler) sweeperStatus(w http.ResponseWriter, r *http.Request) {
	status := h.sweeperSvc.Status()
	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

func (h *handler) subscribe(w http.ResponseWriter, r *http.Request) {
	if h.subscriptions == nil {
		writeError(w, http.StatusNotImplemented, errWebhooksDisabled)
		return
	}
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}

	id, err := h.subscriptions.Subscribe(req.Topic, req.Endpoint, req.Secret)
	if err != nil {
		writeError(w, statusFromError(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, subscribeReply{id})
}

func (h *handler) unsubscribe(w http.ResponseWriter, r *http.Request) {
	if h.subscriptions == nil {
		writeError(w, http.StatusNotImplemented, errWebhooksDisabled)
		return
	}
	if err := h.subscriptions.Unsubscribe(chi.URLParam(r, "id")); err != nil {
		writeError(w, statusFromError(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	if h.subscriptions == nil {
		writeError(w, http.StatusNotImplemented, errWebhooksDisabled)
		return
	}
	topic := r.URL.Query().Get("topic")
	if len(topic) <= 0 {
		topic = string(domain.TopicAll)
	}

	subs := h.subscriptions.ListSubscriptionsForTopic(topic)
	reply := make([]subscriptionReply, 0, len(subs))
	for _, s := range subs {
		reply = append(reply, subscriptionReply{
			Id:        s.Id(),
			Topic:     s.Topic(),
			Endpoint:  s.NotifyAt(),
			IsSecured: s.IsSecured(),
		})
	}
	writeJSON(w, http.StatusOK, reply)
}

// writeResult replies with the result of a settlement operation. Refused
// operations carry the result along with the error so that clients can tell
// conflicts and expirations apart from other failures.
func writeResult(w http.ResponseWriter, result settlement.Result, err error) {
	if err != nil {
		status := statusFromError(err)
		if status == http.StatusInternalServerError {
			writeError(w, status, err)
			return
		}
		writeJSON(w, status, settlementErrorReply{
			Error: err.Error(), Result: result,
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}
