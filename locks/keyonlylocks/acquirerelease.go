// Package keyonlylocks provides non-blocking, all-or-nothing locks on string keys.
package keyonlylocks

import "sync"

type Store struct {
	m sync.Map // key -> struct{}
}

// TryAcquire takes every key or none. The release func is safe to defer.
func (s *Store) TryAcquire(keys ...string) (release func(), ok bool) {
	acquired, ok := AcquireLocks(&s.m, keys)
	if !ok {
		return func() {}, false
	}
	return func() { ReleaseLocks(&s.m, acquired) }, true
}

func (s *Store) Held(key string) bool {
	_, ok := s.m.Load(key)
	return ok
}

func AcquireLocks(lockStore *sync.Map, keys []string) ([]string, bool) {
	var acquired []string
	for _, key := range keys {
		if _, loaded := lockStore.LoadOrStore(key, struct{}{}); loaded {
			// rollback previously acquired locks
			ReleaseLocks(lockStore, acquired)
			return nil, false
		}
		acquired = append(acquired, key)
	}
	return acquired, true
}

// ReleaseLocks delete locks from the lockStore
// Wrap this in deferred calls to guarantee to be called even if panic occurs.
func ReleaseLocks(lockStore *sync.Map, keys []string) {
	for _, key := range keys {
		lockStore.Delete(key)
	}
}
