package keylock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	k := New()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("s1")
			defer unlock()
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, k.Len())
}

func TestKeyedMutex_DistinctKeysDoNotBlock(t *testing.T) {
	k := New()
	unlockA := k.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := k.Lock("b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}

func TestKeyedMutex_UnlockIsIdempotent(t *testing.T) {
	k := New()
	unlock := k.Lock("x")
	unlock()
	unlock()
	assert.Equal(t, 0, k.Len())
}
