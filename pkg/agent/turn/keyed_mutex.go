package turn

import "sync"

// keyedMutex serializes work per thread id so all stages of a turn, and all
// turns of a thread, run strictly one at a time. Locks are reference counted
// and evicted once no holder or waiter remains, so the map stays bounded by
// the number of concurrently active threads.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*threadLock
}

type threadLock struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		locks: map[string]*threadLock{},
	}
}

func (k *keyedMutex) Lock(key string) {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &threadLock{}
		k.locks[key] = lock
	}
	lock.refs++
	k.mu.Unlock()
	lock.Lock()
}

func (k *keyedMutex) Unlock(key string) {
	k.mu.Lock()
	lock := k.locks[key]
	if lock == nil {
		k.mu.Unlock()
		return
	}
	lock.refs--
	if lock.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()
	lock.Unlock()
}
