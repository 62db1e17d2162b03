package settlement

import (
	"errors"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/bushboy/bookingswap-sub023/pkg/stats"
	log "github.com/sirupsen/logrus"
)

const (
	opAccept       = "accept"
	opReject       = "reject"
	opWithdraw     = "withdraw"
	opExpire       = "expire"
	opCancel       = "cancel"
	opManualReject = "manual_reject_expired"
	opListSwap     = "list_swap"
	opPropose      = "submit_proposal"
)

// ResultStatus is the outcome of a settlement operation as reported to the
// caller.
type ResultStatus string

const (
	ResultAccepted      ResultStatus = "accepted"
	ResultRejected      ResultStatus = "rejected"
	ResultWithdrawn     ResultStatus = "withdrawn"
	ResultExpired       ResultStatus = "expired"
	ResultCancelled     ResultStatus = "cancelled"
	ResultConflict      ResultStatus = "conflict"
	ResultAlreadyClosed ResultStatus = "already_closed"
)

func (s ResultStatus) String() string {
	return string(s)
}

type Result struct {
	Status     ResultStatus `json:"status"`
	SwapId     string       `json:"swapId,omitempty"`
	ProposalId string       `json:"proposalId,omitempty"`
}

func (s *Service) succeed(op string, result Result) Result {
	stats.SettlementsTotal.WithLabelValues(op, result.Status.String()).Inc()
	log.WithFields(log.Fields{
		"operation": op,
		"swap":      result.SwapId,
		"proposal":  result.ProposalId,
	}).Infof("settlement %s", result.Status)
	return result
}

func (s *Service) fail(op string, result Result, err error) (Result, error) {
	switch {
	case errors.Is(err, domain.ErrConflict):
		result.Status = ResultConflict
	case errors.Is(err, domain.ErrExpired):
		result.Status = ResultExpired
	}
	stats.SettlementsTotal.WithLabelValues(op, errorLabel(err)).Inc()

	logger := log.WithError(err).WithFields(log.Fields{
		"operation": op,
		"swap":      result.SwapId,
		"proposal":  result.ProposalId,
	})
	switch {
	case errors.Is(err, domain.ErrTransferFailed),
		errors.Is(err, domain.ErrEscrowInconsistent),
		errors.Is(err, ErrTimeout):
		logger.Warn("settlement rolled back")
	default:
		logger.Debug("settlement refused")
	}
	return result, err
}

func errorLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, domain.ErrExpired):
		return "expired_deadline"
	case errors.Is(err, domain.ErrConflict):
		return ResultConflict.String()
	case errors.Is(err, domain.ErrTransferFailed):
		return "transfer_failed"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	default:
		return "error"
	}
}
