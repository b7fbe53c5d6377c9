// Package broadcast fans ledger changes out to live observers.
//
// The Hub owns its subscriber set from a single goroutine fed by a command
// channel, so no locks guard it. Publish never blocks the caller; an observer
// that falls behind loses its oldest queued event, which is safe because every
// event carries the full tally.
package broadcast

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/vncsmyrnk/covervote/internal/core/domain"
	"github.com/vncsmyrnk/covervote/internal/logger"
	"github.com/vncsmyrnk/covervote/internal/metrics"
)

const (
	commandBuffer    = 1024
	subscriberBuffer = 16
)

// SnapshotFunc builds the initial event for a new subscriber.
type SnapshotFunc func() domain.TallyUpdate

type subscriber struct {
	ch chan domain.TallyUpdate
}

type command struct {
	subscribe   *subscriber
	unsubscribe *subscriber
	publish     *domain.TallyUpdate
}

type Hub struct {
	snapshot SnapshotFunc
	commands chan command
	done     chan struct{}
	logger   *zap.Logger
}

func NewHub(snapshot SnapshotFunc, l *zap.Logger) *Hub {
	return &Hub{
		snapshot: snapshot,
		commands: make(chan command, commandBuffer),
		done:     make(chan struct{}),
		logger:   logger.Resolve(l),
	}
}

// Run processes commands until ctx is cancelled, then closes every subscriber channel.
func (h *Hub) Run(ctx context.Context) {
	subs := make(map[*subscriber]struct{})
	defer func() {
		close(h.done)
		for sub := range subs {
			close(sub.ch)
		}
		h.drain()
		metrics.LiveSubscribers.Set(0)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-h.commands:
			switch {
			case cmd.subscribe != nil:
				subs[cmd.subscribe] = struct{}{}
				// registered before the snapshot is read: any vote committed later
				// has its publish queued behind this command
				h.deliver(cmd.subscribe, h.snapshot())
				metrics.LiveSubscribers.Set(float64(len(subs)))
				h.logger.Info("observer connected", zap.Int("observers", len(subs)))
			case cmd.unsubscribe != nil:
				if _, ok := subs[cmd.unsubscribe]; ok {
					delete(subs, cmd.unsubscribe)
					close(cmd.unsubscribe.ch)
					metrics.LiveSubscribers.Set(float64(len(subs)))
					h.logger.Info("observer disconnected", zap.Int("observers", len(subs)))
				}
			case cmd.publish != nil:
				for sub := range subs {
					h.deliver(sub, *cmd.publish)
				}
			}
		}
	}
}

// Subscribe registers an observer. The returned channel yields the initial
// snapshot first and is closed after cancel is called, ctx ends, or the hub stops.
func (h *Hub) Subscribe(ctx context.Context) (<-chan domain.TallyUpdate, func()) {
	sub := &subscriber{ch: make(chan domain.TallyUpdate, subscriberBuffer)}

	select {
	case <-h.done:
		close(sub.ch)
		return sub.ch, func() {}
	default:
	}

	select {
	case h.commands <- command{subscribe: sub}:
	case <-h.done:
		close(sub.ch)
		return sub.ch, func() {}
	case <-ctx.Done():
		close(sub.ch)
		return sub.ch, func() {}
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			select {
			case h.commands <- command{unsubscribe: sub}:
			case <-h.done:
			}
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-h.done:
		}
	}()

	return sub.ch, cancel
}

// Publish queues update for every subscriber without blocking. If the hub queue
// is full the update is dropped for everyone; the next event carries the full
// tally and supersedes it.
func (h *Hub) Publish(update domain.TallyUpdate) {
	select {
	case h.commands <- command{publish: &update}:
	default:
		metrics.LiveDropped.Inc()
		h.logger.Warn("live update dropped, hub queue full", zap.Int("total_votes", update.TotalVotes))
	}
}

// drain releases subscribers whose registration was still queued when the hub stopped.
func (h *Hub) drain() {
	for {
		select {
		case cmd := <-h.commands:
			if cmd.subscribe != nil {
				close(cmd.subscribe.ch)
			}
		default:
			return
		}
	}
}

func (h *Hub) deliver(sub *subscriber, update domain.TallyUpdate) {
	select {
	case sub.ch <- update:
		return
	default:
	}

	select {
	case <-sub.ch:
		metrics.LiveDropped.Inc()
	default:
	}

	select {
	case sub.ch <- update:
	default:
	}
}
