package storage

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeSource struct {
	mu    sync.Mutex
	items map[string][]int
}

func (s *fakeSource) set(key string, items ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = items
}

func (s *fakeSource) load(_ context.Context, key string) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.items[key]...), nil
}

func receive(t *testing.T, ch <-chan []int) []int {
	t.Helper()
	select {
	case got := <-ch:
		return got
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestFeed_InitialSnapshotAndNotify(t *testing.T) {
	src := &fakeSource{items: map[string][]int{"a": {1}}}
	feed := NewFeed[string, int](src.load)
	defer feed.Close()

	ch := make(chan []int, 4)
	unsubscribe := feed.Subscribe("a", func(items []int) { ch <- items })
	defer unsubscribe()

	if got := receive(t, ch); len(got) != 1 || got[0] != 1 {
		t.Fatalf("initial snapshot = %v, want [1]", got)
	}

	src.set("a", 1, 2)
	feed.Notify(func(key string) bool { return key == "a" })
	if got := receive(t, ch); len(got) != 2 {
		t.Fatalf("snapshot after notify = %v, want [1 2]", got)
	}
}

func TestFeed_UnaffectedQueriesAreSkipped(t *testing.T) {
	src := &fakeSource{items: map[string][]int{}}
	feed := NewFeed[string, int](src.load)
	defer feed.Close()

	ch := make(chan []int, 4)
	unsubscribe := feed.Subscribe("b", func(items []int) { ch <- items })
	defer unsubscribe()
	receive(t, ch)

	feed.Notify(func(key string) bool { return key == "a" })
	select {
	case got := <-ch:
		t.Fatalf("unexpected snapshot for unaffected query: %v", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestFeed_Unsubscribe(t *testing.T) {
	src := &fakeSource{items: map[string][]int{}}
	feed := NewFeed[string, int](src.load)

	ch := make(chan []int, 4)
	unsubscribe := feed.Subscribe("a", func(items []int) { ch <- items })
	receive(t, ch)

	unsubscribe()
	unsubscribe() // idempotent
	if n := feed.Len(); n != 0 {
		t.Fatalf("Len() = %d after unsubscribe, want 0", n)
	}

	feed.Notify(nil)
	select {
	case got := <-ch:
		t.Fatalf("callback ran after unsubscribe: %v", got)
	case <-time.After(100 * time.Millisecond):
	}
}
