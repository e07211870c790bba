package worker

import (
	"context"
	"sync"

	"github.com/spec-kit/event-ticketing/internal/service"
)

// Set bundles the background work started with the server.
type Set struct {
	Notifications *service.NotificationService
	Sweep         *SweepWorker
}

// Start registers notification handlers and launches the sweep loop. The
// returned function blocks until every goroutine has exited after ctx ends.
func Start(ctx context.Context, set Set) (wait func()) {
	if set.Notifications != nil {
		set.Notifications.RegisterHandlers()
	}

	var wg sync.WaitGroup
	if set.Sweep != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			set.Sweep.Run(ctx)
		}()
	}
	return wg.Wait
}
