package app

import (
	"sync"

	"github.com/ayusman/kathak/internal/pipeline"
)

// Broadcaster fans frame results out to live viewers. Slow subscribers only
// ever see the latest result.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[chan pipeline.Result]struct{}
	latest pipeline.Result
	closed bool
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan pipeline.Result]struct{})}
}

// Subscribe returns a channel of results and a function to unsubscribe.
// The channel is closed on unsubscribe or when the broadcaster closes.
func (b *Broadcaster) Subscribe() (<-chan pipeline.Result, func()) {
	ch := make(chan pipeline.Result, 1)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[ch]; ok {
				delete(b.subs, ch)
				close(ch)
			}
		})
	}
}

// Publish delivers res to every subscriber without blocking.
func (b *Broadcaster) Publish(res pipeline.Result) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.latest = res

	for ch := range b.subs {
		select {
		case ch <- res:
		default:
			// Replace the stale result.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- res:
			default:
			}
		}
	}
}

// Latest returns the most recent result.
func (b *Broadcaster) Latest() pipeline.Result {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.latest
}

// Subscribers returns the number of live subscribers.
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close closes every subscriber channel.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		close(ch)
		delete(b.subs, ch)
	}
}
