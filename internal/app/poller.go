package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"fysics/internal/domain"
	"fysics/internal/transport/rest"
)

// DefaultPollInterval matches the web client's session-status cadence
const DefaultPollInterval = 2 * time.Second

// StatusUpdate is one outcome of a session-status poll. Exactly one of
// Status, Gone, or Err is meaningful.
type StatusUpdate struct {
	Status *domain.SessionStatus
	Gone   bool   // the room 404'd: it no longer exists
	Err    string // transport failure; polling continues
}

// StatusPoller watches a room's lifecycle as a liveness fallback to the
// event channel. The channel is the authoritative phase source; the poll
// only catches cancellation and room disappearance when the channel is
// down or lagging. A 404 is emitted exactly once and stops the loop.
type StatusPoller struct {
	client   *rest.Client
	room     string
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger

	updates  chan StatusUpdate
	done     chan struct{}
	stopOnce sync.Once
}

// NewStatusPoller creates a poller for the given room. A nil clock means
// the real one; tests pass a fake.
func NewStatusPoller(client *rest.Client, room string, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) *StatusPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &StatusPoller{
		client:   client,
		room:     room,
		interval: interval,
		clock:    clock,
		logger:   logger,
		updates:  make(chan StatusUpdate, 8),
		done:     make(chan struct{}),
	}
}

// Updates delivers poll outcomes. Closed when the loop exits.
func (p *StatusPoller) Updates() <-chan StatusUpdate {
	return p.updates
}

// Stop tears the poller down. Idempotent; a poll response arriving after
// Stop is dropped, not delivered.
func (p *StatusPoller) Stop() {
	p.stopOnce.Do(func() {
		close(p.done)
	})
}

// Run polls immediately and then on every tick until the room goes away,
// Stop is called, or ctx is cancelled.
func (p *StatusPoller) Run(ctx context.Context) {
	defer close(p.updates)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	if done := p.poll(ctx); done {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.done:
			return
		case <-ticker.Chan():
			if done := p.poll(ctx); done {
				return
			}
		}
	}
}

// poll performs one status request and reports whether the loop should end
func (p *StatusPoller) poll(ctx context.Context) bool {
	res := p.client.SessionStatus(ctx, p.room)

	select {
	case <-ctx.Done():
		return true
	case <-p.done:
		// Stopped while the request was in flight; drop the stale response
		return true
	default:
	}

	switch {
	case res.Gone():
		p.logger.Info("room no longer exists", "room", p.room)
		p.deliver(StatusUpdate{Gone: true})
		return true
	case res.Status == 0:
		// Connectivity trouble is non-fatal; keep polling
		p.logger.Warn("status poll failed", "room", p.room, "error", res.Err)
		p.deliver(StatusUpdate{Err: res.Err})
		return false
	case !res.OK:
		p.logger.Warn("status poll rejected", "room", p.room, "status", res.Status)
		p.deliver(StatusUpdate{Err: res.Message()})
		return false
	}

	var status domain.SessionStatus
	if err := res.Decode(&status); err != nil {
		p.logger.Warn("malformed status payload", "room", p.room, "error", err)
		p.deliver(StatusUpdate{Err: err.Error()})
		return false
	}

	p.deliver(StatusUpdate{Status: &status})
	return false
}

func (p *StatusPoller) deliver(update StatusUpdate) {
	select {
	case p.updates <- update:
	case <-p.done:
	default:
		// Consumer is behind; stale snapshots are worthless anyway
	}
}
