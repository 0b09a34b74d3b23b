package ax

import (
	"sort"
	"sync"
)

// SyncAttributes guards an Attributes map with a mutex. The order key is
// unique per tree and fixes the lock order for multi-store transactions.
type SyncAttributes struct {
	mu    sync.Mutex
	attrs *Attributes
	order uint64
}

func newSyncAttributes(order uint64) *SyncAttributes {
	return &SyncAttributes{attrs: newAttributes(), order: order}
}

// With runs fn with the store locked. fn must not call back into this store
// through any locking method.
func (s *SyncAttributes) With(fn func(a *Attributes)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.attrs)
}

func (s *SyncAttributes) Get(attr Attribute) (Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attrs.Get(attr)
}

func (s *SyncAttributes) Set(attr Attribute, v Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attrs.Set(attr, v)
}

func (s *SyncAttributes) Remove(attr Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs.Remove(attr)
}

// GetMany reads all of attrs under one lock. Absent attributes are left out
// of the result.
func (s *SyncAttributes) GetMany(attrs []Attribute) map[Attribute]Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[Attribute]Value, len(attrs))
	for _, attr := range attrs {
		if v, ok := s.attrs.Get(attr); ok {
			out[attr] = v
		}
	}
	return out
}

func (s *SyncAttributes) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attrs.String()
}

// withAll locks every distinct store in ascending order, runs fn, and unlocks
// them. The same store may be passed more than once.
func withAll(stores []*SyncAttributes, fn func()) {
	uniq := make([]*SyncAttributes, 0, len(stores))
	for _, s := range stores {
		dup := false
		for _, u := range uniq {
			if u == s {
				dup = true
				break
			}
		}
		if !dup {
			uniq = append(uniq, s)
		}
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i].order < uniq[j].order })

	for _, s := range uniq {
		s.mu.Lock()
	}
	defer func() {
		for i := len(uniq) - 1; i >= 0; i-- {
			uniq[i].mu.Unlock()
		}
	}()
	fn()
}
