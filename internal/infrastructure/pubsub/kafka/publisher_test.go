package kafkapubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type writerMock struct {
	msgs   []kafka.Message
	closed bool
}

func (w *writerMock) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *writerMock) Close() error {
	w.closed = true
	return nil
}

func TestPublisher(t *testing.T) {
	w := &writerMock{}
	p := newPublisher(w)

	event := domain.SettlementEvent{
		Topic:      domain.TopicSwapExpired,
		SwapId:     "swap-1",
		Outcome:    "expired",
		Parties:    []string{"alice"},
		OccurredAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, p.Publish(context.Background(), event))
	require.NoError(t, p.Close())

	require.True(t, w.closed)
	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	require.Equal(t, "swapd.swap_expired", msg.Topic)
	require.Equal(t, []byte("swap-1"), msg.Key)
	require.Equal(t, event.OccurredAt, msg.Time)

	var decoded domain.SettlementEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	require.Equal(t, event, decoded)

	_, err := NewPublisher(nil)
	require.ErrorIs(t, err, ErrMissingBrokers)
}
