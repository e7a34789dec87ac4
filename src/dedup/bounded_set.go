package dedup

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type entry struct {
	key string
	at  time.Time
}

// BoundedSet is an in-memory Deduplicator holding at most Capacity keys.
// The oldest key is evicted first. Keys expire Window after they were last
// remembered; a zero Window never expires.
type BoundedSet struct {
	capacity int
	window   time.Duration
	now      func() time.Time

	mu    sync.Mutex
	order *list.List // front is newest
	index map[string]*list.Element
}

func NewBoundedSet(capacity int, window time.Duration) *BoundedSet {
	if capacity <= 0 {
		capacity = 1000
	}
	return &BoundedSet{
		capacity: capacity,
		window:   window,
		now:      time.Now,
		order:    list.New(),
		index:    make(map[string]*list.Element),
	}
}

// WithClock replaces the time source.
func (s *BoundedSet) WithClock(now func() time.Time) *BoundedSet {
	s.now = now
	return s
}

func (s *BoundedSet) Seen(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.liveLocked(key, s.now())
	return ok, nil
}

func (s *BoundedSet) Remember(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked(key, s.now())
	return nil
}

func (s *BoundedSet) Claim(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	_, seen := s.liveLocked(key, now)
	s.touchLocked(key, now)
	return !seen, nil
}

// Cleanup drops expired keys and returns how many were removed.
func (s *BoundedSet) Cleanup() int {
	if s.window <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for el := s.order.Back(); el != nil; {
		e := el.Value.(*entry)
		if now.Sub(e.at) < s.window {
			break
		}
		prev := el.Prev()
		s.order.Remove(el)
		delete(s.index, e.key)
		removed++
		el = prev
	}
	return removed
}

func (s *BoundedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

func (s *BoundedSet) liveLocked(key string, now time.Time) (*list.Element, bool) {
	el, ok := s.index[key]
	if !ok {
		return nil, false
	}
	if s.window > 0 && now.Sub(el.Value.(*entry).at) >= s.window {
		s.order.Remove(el)
		delete(s.index, key)
		return nil, false
	}
	return el, true
}

func (s *BoundedSet) touchLocked(key string, now time.Time) {
	if el, ok := s.index[key]; ok {
		el.Value.(*entry).at = now
		s.order.MoveToFront(el)
		return
	}
	s.index[key] = s.order.PushFront(&entry{key: key, at: now})
	for s.order.Len() > s.capacity {
		oldest := s.order.Back()
		s.order.Remove(oldest)
		delete(s.index, oldest.Value.(*entry).key)
	}
}
