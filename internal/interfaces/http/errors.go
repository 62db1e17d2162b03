package httpinterface

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bushboy/bookingswap-sub023/internal/core/application/settlement"
	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	webhookpubsub "github.com/bushboy/bookingswap-sub023/internal/infrastructure/pubsub/webhook"
	log "github.com/sirupsen/logrus"
)

var (
	errInvalidBody       = errors.New("invalid request body")
	errWebhooksDisabled  = errors.New("webhook notifier is not enabled")
	errInvalidExpiration = errors.New("invalid expiration time, must be RFC3339")
)

var badRequestErrors = []error{
	errInvalidBody,
	errInvalidExpiration,
	settlement.ErrMissingAccount,
	domain.ErrSwapMissingOwner,
	domain.ErrSwapMissingBooking,
	domain.ErrSwapInvalidDeadline,
	domain.ErrProposalMissingSwap,
	domain.ErrProposalMissingProposer,
	domain.ErrProposalInvalidAmount,
	domain.ErrProposalSameSwap,
	domain.ErrProposalEmptyOffer,
	domain.ErrProposalOwnSwap,
	webhookpubsub.ErrInvalidTopic,
	webhookpubsub.ErrInvalidEndpoint,
}

type errorReply struct {
	Error string `json:"error"`
}

// settlementErrorReply carries the outcome of a refused settlement along
// with the subject it refers to.
type settlementErrorReply struct {
	Error string `json:"error"`
	settlement.Result
}

func statusFromError(err error) int {
	for _, e := range badRequestErrors {
		if errors.Is(err, e) {
			return http.StatusBadRequest
		}
	}

	switch {
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, webhookpubsub.ErrSubscriptionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrAlreadyClosed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrExpired):
		return http.StatusGone
	case errors.Is(err, domain.ErrTransferFailed):
		return http.StatusBadGateway
	case errors.Is(err, settlement.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, errWebhooksDisabled):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("internal error")
		msg = "internal error"
	}
	writeJSON(w, status, errorReply{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint
	json.NewEncoder(w).Encode(v)
}
