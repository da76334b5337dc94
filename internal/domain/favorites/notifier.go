// Package favorites coordinates live favorite-change notifications
// between the database listener and subscribed HTTP streams.
package favorites

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrWaiterRequired indicates a notifier cannot be constructed without a waiter.
var ErrWaiterRequired = errors.New("notifier waiter is required")

// Waiter blocks until the favorites of one user change.
type Waiter interface {
	WaitForChange(ctx context.Context, userUID string) error
}

// Notifier manages per-user subscriptions for favorite changes.
type Notifier interface {
	Subscribe(userUID string) (func(), <-chan struct{})
	StopAll()
}

// NotifierOptions configure the behaviour of the default notifier implementation.
type NotifierOptions struct {
	Waiter     Waiter
	WaitWindow time.Duration
	Backoff    time.Duration
}

// DefaultNotifier runs one listen loop per subscribed user and fans
// change signals out to every subscriber of that user.
type DefaultNotifier struct {
	waiter     Waiter
	waitWindow time.Duration
	backoff    time.Duration

	mu        sync.Mutex
	subs      map[string]map[chan struct{}]struct{}
	listeners map[string]context.CancelFunc
}

// NewNotifier constructs the default notifier implementation.
func NewNotifier(opts NotifierOptions) (*DefaultNotifier, error) {
	if opts.Waiter == nil {
		return nil, ErrWaiterRequired
	}

	waitWindow := opts.WaitWindow
	if waitWindow <= 0 {
		waitWindow = time.Minute
	}

	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = 250 * time.Millisecond
	}

	return &DefaultNotifier{
		waiter:     opts.Waiter,
		waitWindow: waitWindow,
		backoff:    backoff,
		subs:       make(map[string]map[chan struct{}]struct{}),
		listeners:  make(map[string]context.CancelFunc),
	}, nil
}

// Subscribe registers interest in userUID's favorites. The returned
// channel receives a (coalesced) signal per change; the returned func
// cancels the subscription and closes the channel.
func (n *DefaultNotifier) Subscribe(userUID string) (func(), <-chan struct{}) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.listeners[userUID]; !ok {
		ctx, cancel := context.WithCancel(context.Background())
		n.listeners[userUID] = cancel
		go n.listenLoop(ctx, userUID)
	}

	ch := make(chan struct{}, 1)
	if n.subs[userUID] == nil {
		n.subs[userUID] = make(map[chan struct{}]struct{})
	}
	n.subs[userUID][ch] = struct{}{}

	unsub := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		subscribers := n.subs[userUID]
		if subscribers == nil {
			return
		}

		if _, ok := subscribers[ch]; !ok {
			return
		}
		delete(subscribers, ch)
		drainAndClose(ch)
		if len(subscribers) == 0 {
			n.stopListener(userUID)
			delete(n.subs, userUID)
		}
	}

	return unsub, ch
}

// StopAll cancels every listener and closes every subscriber channel.
func (n *DefaultNotifier) StopAll() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for uid, cancel := range n.listeners {
		cancel()
		delete(n.listeners, uid)
	}
	for uid, subscribers := range n.subs {
		for ch := range subscribers {
			drainAndClose(ch)
		}
		delete(n.subs, uid)
	}
}

func (n *DefaultNotifier) stopListener(userUID string) {
	cancel, ok := n.listeners[userUID]
	if !ok {
		return
	}
	cancel()
	delete(n.listeners, userUID)
}

func (n *DefaultNotifier) listenLoop(ctx context.Context, userUID string) {
	for ctx.Err() == nil {
		waitCtx, cancel := context.WithTimeout(ctx, n.waitWindow)
		err := n.waiter.WaitForChange(waitCtx, userUID)
		cancel()

		n.broadcast(userUID)

		if err != nil && ctx.Err() == nil {
			timer := time.NewTimer(n.backoff)
			select {
			case <-ctx.Done():
				if !timer.Stop() {
					<-timer.C
				}
				return
			case <-timer.C:
			}
		}
	}
}

func (n *DefaultNotifier) broadcast(userUID string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for ch := range n.subs[userUID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// drainAndClose removes any buffered signals before closing the channel
// so receivers observe a closed channel immediately.
func drainAndClose(ch chan struct{}) {
	for {
		select {
		case <-ch:
		default:
			close(ch)
			return
		}
	}
}

var _ Notifier = (*DefaultNotifier)(nil)
