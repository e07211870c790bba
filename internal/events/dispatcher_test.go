package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_RunsEveryHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.Subscribe(EventTicketIssued, func(ctx context.Context, e Event) error {
		calls = append(calls, "first")
		return errors.New("mailer down")
	})
	d.Subscribe(EventTicketIssued, func(ctx context.Context, e Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventTicketRedeemed, func(ctx context.Context, e Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), New(EventTicketIssued, "acc-1", TicketIssuedPayload{Code: "T-1"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mailer down")
	assert.Contains(t, err.Error(), `ticket_issued for account "acc-1"`)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestDispatcher_StampsBareEvents(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got Event
	d.Subscribe(EventTicketRedeemed, func(ctx context.Context, e Event) error {
		got = e
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketRedeemed, AccountID: "acc-1"}))
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.Timestamp.IsZero())
	assert.Equal(t, "acc-1", got.AccountID)
}

func TestDispatcher_NoSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), New(EventTicketRedeemed, "", nil)))
}

func TestNew(t *testing.T) {
	e := New(EventActivationRequested, "acc-1", ActivationRequestedPayload{Email: "a@b.c"})
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())
	assert.Equal(t, EventActivationRequested, e.Type)
}
