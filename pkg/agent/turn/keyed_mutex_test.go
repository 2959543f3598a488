package turn

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

func TestKeyedMutexSerializesPerKey(t *testing.T) {
	km := newKeyedMutex()

	var active, maxActive int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("thread-1")
			defer km.Unlock("thread-1")

			now := atomic.AddInt32(&active, 1)
			if now > atomic.LoadInt32(&maxActive) {
				atomic.StoreInt32(&maxActive, now)
			}
			atomic.AddInt32(&active, -1)
		}()
	}
	wg.Wait()

	if maxActive != 1 {
		t.Fatalf("max concurrent holders for one key = %d, want 1", maxActive)
	}
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := newKeyedMutex()
	km.Lock("a")

	done := make(chan struct{})
	go func() {
		km.Lock("b")
		km.Unlock("b")
		close(done)
	}()

	<-done // must not deadlock: key "b" is independent of held key "a"
	km.Unlock("a")
}

func TestKeyedMutexEvictsIdleLocks(t *testing.T) {
	km := newKeyedMutex()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("thread-%d", n)
			for j := 0; j < 3; j++ {
				km.Lock(key)
				km.Unlock(key)
			}
		}(i)
	}
	wg.Wait()

	km.mu.Lock()
	defer km.mu.Unlock()
	if len(km.locks) != 0 {
		t.Fatalf("idle locks left in map = %d, want 0", len(km.locks))
	}
}
