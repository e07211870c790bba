package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventHandler reacts to an account or ticket lifecycle event, for example by
// sending the activation mail or a redemption notice.
type EventHandler func(context.Context, Event) error

// Dispatcher fans lifecycle events out to their handlers. Services publish
// after their transaction commits, so a failing handler never undoes an issue
// or a redemption.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// syncDispatcher runs handlers inline on the publishing goroutine. Slow
// handlers hand work to the notification worker instead of blocking here.
type syncDispatcher struct {
	mu       sync.RWMutex
	handlers map[EventType][]EventHandler
}

// NewInMemoryDispatcher returns the in-process dispatcher shared by the
// account and ledger services.
func NewInMemoryDispatcher() Dispatcher {
	return &syncDispatcher{handlers: make(map[EventType][]EventHandler)}
}

// Publish delivers the event to every handler subscribed to its type, in
// subscription order. Events built without New get an id and a timestamp.
// All handlers run; their failures come back joined and tagged with the
// event type and account.
func (d *syncDispatcher) Publish(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	d.mu.RLock()
	subscribed := append([]EventHandler(nil), d.handlers[event.Type]...)
	d.mu.RUnlock()

	var errs []error
	for _, handle := range subscribed {
		if err := handle(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("%s for account %q: %w", event.Type, event.AccountID, err))
		}
	}
	return errors.Join(errs...)
}

func (d *syncDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}
