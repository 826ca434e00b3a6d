package usecase

import "sync"

// KeyedMutex provides per-key mutual exclusion. All ledger mutations
// for a given user are serialized through it so that an ingest-driven
// close and a user-driven cancel cannot race on wallet aggregates.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyedMutex creates a new KeyedMutex
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock acquires the mutex for the given key, creating it on first use.
// Entries live for the life of the process; the map is bounded by the
// number of distinct users seen.
func (km *KeyedMutex) Lock(key string) {
	km.get(key).Lock()
}

// Unlock releases the mutex for the given key
func (km *KeyedMutex) Unlock(key string) {
	km.get(key).Unlock()
}

func (km *KeyedMutex) get(key string) *sync.Mutex {
	km.mu.Lock()
	defer km.mu.Unlock()

	m, ok := km.locks[key]
	if !ok {
		m = &sync.Mutex{}
		km.locks[key] = m
	}
	return m
}
