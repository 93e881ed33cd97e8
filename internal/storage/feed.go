package storage

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Loader re-runs a query to produce a fresh snapshot.
type Loader[Q, T any] func(ctx context.Context, q Q) ([]T, error)

// Feed fans change notifications out to query subscriptions.
//
// Each subscription runs its own goroutine, so a slow callback never blocks a
// writer. Notifications that arrive while a snapshot is being delivered are
// coalesced into one reload.
type Feed[Q, T any] struct {
	load Loader[Q, T]

	mu   sync.Mutex
	subs map[*subscription[Q, T]]struct{}
}

type subscription[Q, T any] struct {
	query  Q
	fn     func([]T)
	wake   chan struct{}
	done   chan struct{}
	closed atomic.Bool
	once   sync.Once
}

// NewFeed creates a feed that reloads snapshots with load.
func NewFeed[Q, T any](load Loader[Q, T]) *Feed[Q, T] {
	return &Feed[Q, T]{
		load: load,
		subs: make(map[*subscription[Q, T]]struct{}),
	}
}

// Subscribe registers fn for q. The current snapshot is delivered right away.
func (f *Feed[Q, T]) Subscribe(q Q, fn func([]T)) (unsubscribe func()) {
	sub := &subscription[Q, T]{
		query: q,
		fn:    fn,
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}

	f.mu.Lock()
	f.subs[sub] = struct{}{}
	f.mu.Unlock()

	sub.wake <- struct{}{}
	go f.run(sub)

	return func() { f.remove(sub) }
}

// Notify schedules a reload for every subscription whose query is affected.
// A nil affected func matches all subscriptions.
func (f *Feed[Q, T]) Notify(affected func(Q) bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for sub := range f.subs {
		if affected != nil && !affected(sub.query) {
			continue
		}
		select {
		case sub.wake <- struct{}{}:
		default:
		}
	}
}

// Len returns the number of active subscriptions.
func (f *Feed[Q, T]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Close stops every subscription.
func (f *Feed[Q, T]) Close() {
	f.mu.Lock()
	subs := make([]*subscription[Q, T], 0, len(f.subs))
	for sub := range f.subs {
		subs = append(subs, sub)
	}
	f.mu.Unlock()

	for _, sub := range subs {
		f.remove(sub)
	}
}

func (f *Feed[Q, T]) remove(sub *subscription[Q, T]) {
	sub.once.Do(func() {
		sub.closed.Store(true)
		close(sub.done)
		f.mu.Lock()
		delete(f.subs, sub)
		f.mu.Unlock()
	})
}

func (f *Feed[Q, T]) run(sub *subscription[Q, T]) {
	for {
		select {
		case <-sub.done:
			return
		case <-sub.wake:
		}

		items, err := f.load(context.Background(), sub.query)
		if err != nil {
			slog.Error("Failed to reload subscription snapshot", "error", err)
			continue
		}
		if sub.closed.Load() {
			return
		}
		sub.fn(items)
	}
}
