// README: In-memory quote slot, used when no Redis is configured.
package pricing

import (
	"context"
	"sync"
	"time"
)

type memorySlot struct {
	issued  uint64
	current *Quote
	touched time.Time
}

// MemoryStore keeps quote slots in process. Idle slots are swept after ttl.
type MemoryStore struct {
	mu        sync.Mutex
	slots     map[string]*memorySlot
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		slots: make(map[string]*memorySlot),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *MemoryStore) NextSeq(_ context.Context, sessionID string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)
	slot, ok := s.slots[sessionID]
	if !ok {
		slot = &memorySlot{}
		s.slots[sessionID] = slot
	}
	slot.issued++
	slot.touched = now
	return slot.issued, nil
}

func (s *MemoryStore) Apply(_ context.Context, sessionID string, q Quote) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[sessionID]
	if !ok || slot.issued != q.Seq {
		return false, nil
	}
	slot.current = &q
	slot.touched = s.now()
	return true, nil
}

func (s *MemoryStore) Current(_ context.Context, sessionID string) (Quote, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[sessionID]
	if !ok || slot.current == nil {
		return Quote{}, false, nil
	}
	return *slot.current, true, nil
}

// sweep drops idle slots, at most once a minute. Caller holds mu.
func (s *MemoryStore) sweep(now time.Time) {
	if s.ttl <= 0 || now.Sub(s.lastSweep) < time.Minute {
		return
	}
	s.lastSweep = now
	for id, slot := range s.slots {
		if now.Sub(slot.touched) > s.ttl {
			delete(s.slots, id)
		}
	}
}
