package session

import (
	"context"
	"sync"
	"time"

	"github.com/seresheim/penquest-pkgs/internal/model"
)

// interactionQueue is an unbounded FIFO of pending interaction requests.
// Handlers push without blocking; the caller's loop pops with a timeout.
type interactionQueue struct {
	mu     sync.Mutex
	items  []model.Interaction
	signal chan struct{}
}

func newInteractionQueue() *interactionQueue {
	return &interactionQueue{signal: make(chan struct{}, 1)}
}

// push appends an interaction and wakes one waiting pop.
func (q *interactionQueue) push(in model.Interaction) {
	q.mu.Lock()
	q.items = append(q.items, in)
	q.mu.Unlock()
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// pop removes the oldest interaction, blocking until one is available, the
// timeout elapses, or ctx is done. A timeout of zero means no timeout.
func (q *interactionQueue) pop(ctx context.Context, timeout time.Duration) (model.Interaction, error) {
	var expire <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expire = t.C
	}
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			in := q.items[0]
			q.items = q.items[1:]
			if len(q.items) > 0 {
				// More queued; keep the signal set for the next pop.
				select {
				case q.signal <- struct{}{}:
				default:
				}
			}
			q.mu.Unlock()
			return in, nil
		}
		q.mu.Unlock()

		select {
		case <-q.signal:
		case <-expire:
			return 0, context.DeadlineExceeded
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}
