// Package keylock provides a mutex per string key.
package keylock

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// KeyedMutex serializes work per key while letting distinct keys proceed in
// parallel. Entries are dropped once no goroutine holds or waits on them.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func New() *KeyedMutex {
	return &KeyedMutex{entries: make(map[string]*entry)}
}

// Lock blocks until key is free and returns the matching unlock func.
func (k *KeyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			k.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(k.entries, key)
			}
			k.mu.Unlock()
		})
	}
}

// Len reports how many keys are currently held or awaited.
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
