package ledger

import (
	"sync"

	"github.com/mcoot/rpsarena-go/internal/model"
)

// keyedMutex serializes operations per user without a global lock.
// Locks are reference-counted so the map does not grow unboundedly.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[model.UserID]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		locks: make(map[model.UserID]*userLock),
	}
}

// Lock acquires the lock for the given user, creating it on first use
func (k *keyedMutex) Lock(id model.UserID) {
	k.mu.Lock()
	l, ok := k.locks[id]
	if !ok {
		l = &userLock{}
		k.locks[id] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
}

// Unlock releases the lock for the given user, dropping it when unused
func (k *keyedMutex) Unlock(id model.UserID) {
	k.mu.Lock()
	l, ok := k.locks[id]
	if !ok {
		k.mu.Unlock()
		panic("unlock of unheld keyed mutex")
	}
	l.refs--
	if l.refs == 0 {
		delete(k.locks, id)
	}
	k.mu.Unlock()

	l.mu.Unlock()
}
