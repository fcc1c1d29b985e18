package revocation

import "sync"

// syncMap is a type-safe concurrent map guarded by an RWMutex.
// Lookups vastly outnumber revocations, which suits a read lock.
type syncMap[K comparable, V any] struct {
	m  map[K]V
	mu sync.RWMutex
}

func newSyncMap[K comparable, V any]() *syncMap[K, V] {
	return &syncMap[K, V]{m: make(map[K]V)}
}

// Load returns the value for key and whether it was present.
func (sm *syncMap[K, V]) Load(key K) (value V, ok bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	value, ok = sm.m[key]
	return
}

// StoreUnless sets the value for key unless an existing value satisfies keep.
// It reports whether the value was stored.
func (sm *syncMap[K, V]) StoreUnless(key K, value V, keep func(V) bool) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if old, ok := sm.m[key]; ok && keep(old) {
		return false
	}
	sm.m[key] = value
	return true
}

// DeleteFunc removes every entry for which del returns true and returns the count.
func (sm *syncMap[K, V]) DeleteFunc(del func(K, V) bool) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	n := 0
	for k, v := range sm.m {
		if del(k, v) {
			delete(sm.m, k)
			n++
		}
	}
	return n
}

// Len returns the number of entries.
func (sm *syncMap[K, V]) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.m)
}
