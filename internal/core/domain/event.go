package domain

import "time"

// Topic identifies the kind of a settlement event.
type Topic string

const (
	TopicProposalAccepted  Topic = "proposal.accepted"
	TopicProposalRejected  Topic = "proposal.rejected"
	TopicProposalWithdrawn Topic = "proposal.withdrawn"
	TopicSwapExpired       Topic = "swap.expired"
	TopicSwapCancelled     Topic = "swap.cancelled"
	TopicSwapRejected      Topic = "swap.rejected"
	TopicAll               Topic = "*"
)

// Topics returns all the known settlement topics.
func Topics() []Topic {
	return []Topic{
		TopicProposalAccepted, TopicProposalRejected, TopicProposalWithdrawn,
		TopicSwapExpired, TopicSwapCancelled, TopicSwapRejected,
	}
}

// IsValid returns whether the topic is a known one.
func (t Topic) IsValid() bool {
	if t == TopicAll {
		return true
	}
	for _, topic := range Topics() {
		if t == topic {
			return true
		}
	}
	return false
}

// SettlementEvent is what the notification collaborator receives once a
// settlement is committed.
type SettlementEvent struct {
	Topic      Topic     `json:"topic"`
	SwapId     string    `json:"swapId"`
	ProposalId string    `json:"proposalId,omitempty"`
	Outcome    string    `json:"outcome"`
	Parties    []string  `json:"parties"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewSettlementEvent returns the event describing the given transition.
func NewSettlementEvent(t *Transition, now time.Time) SettlementEvent {
	event := SettlementEvent{
		SwapId:     t.Swap.Id,
		Outcome:    t.Outcome,
		Reason:     t.Reason,
		Parties:    []string{t.Swap.OwnerId},
		OccurredAt: now,
	}

	swapClosed := t.SwapChanged && t.Swap.IsTerminal() &&
		t.Swap.Status != SwapStatusAccepted
	switch {
	case t.Outcome == ProposalStatusAccepted.String():
		event.Topic = TopicProposalAccepted
	case t.Outcome == ProposalStatusWithdrawn.String():
		event.Topic = TopicProposalWithdrawn
	case t.Swap.Status == SwapStatusExpired && swapClosed:
		event.Topic = TopicSwapExpired
	case t.Swap.Status == SwapStatusCancelled && swapClosed:
		event.Topic = TopicSwapCancelled
	case swapClosed:
		event.Topic = TopicSwapRejected
	default:
		event.Topic = TopicProposalRejected
	}

	if target := t.Target(); target != nil && !swapClosed {
		event.ProposalId = target.Id
		if len(event.Reason) <= 0 {
			event.Reason = target.RejectionReason
		}
	}
	for _, p := range t.Proposals {
		event.Parties = append(event.Parties, p.ProposerId)
	}
	return event
}
