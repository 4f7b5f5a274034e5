package shared

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex(t *testing.T) {
	t.Run("serializes same key", func(t *testing.T) {
		km := NewKeyedMutex()
		counter := 0

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				km.Lock("k")
				counter++
				km.Unlock("k")
			}()
		}
		wg.Wait()

		assert.Equal(t, 50, counter)
	})

	t.Run("different keys do not block each other", func(t *testing.T) {
		km := NewKeyedMutex()
		km.Lock("a")

		done := make(chan struct{})
		go func() {
			km.Lock("b")
			km.Unlock("b")
			close(done)
		}()
		<-done

		km.Unlock("a")
	})

	t.Run("lock entries are reclaimed", func(t *testing.T) {
		km := NewKeyedMutex()
		km.Lock("k")
		km.Unlock("k")
		assert.Empty(t, km.locks)
	})
}
