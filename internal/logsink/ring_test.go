package logsink

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingDropsOldest(t *testing.T) {
	r := New(3)
	for i := 1; i <= 5; i++ {
		r.Emit(fmt.Sprintf("line %d", i))
	}
	assert.Equal(t, []string{"line 3", "line 4", "line 5"}, r.Lines())
	assert.Equal(t, 3, r.Len())
}

func TestRingBeforeFull(t *testing.T) {
	r := New(5)
	r.Emit("a")
	r.Emit("b")
	assert.Equal(t, []string{"a", "b"}, r.Lines())
	assert.Empty(t, New(2).Lines())
}

func TestRingWriteSplitsLines(t *testing.T) {
	r := New(10)
	n, err := r.Write([]byte("first\nsecond\nthi"))
	assert.NoError(t, err)
	assert.Equal(t, len("first\nsecond\nthi"), n)
	assert.Equal(t, []string{"first", "second"}, r.Lines())

	_, _ = r.Write([]byte("rd\r\n\n"))
	assert.Equal(t, []string{"first", "second", "third"}, r.Lines())
}

func TestRingConcurrentEmit(t *testing.T) {
	r := New(DefaultSize)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for k := 0; k < 50; k++ {
				r.Emit(fmt.Sprintf("%d-%d", i, k))
			}
		}(i)
	}
	wg.Wait()
	assert.Len(t, r.Lines(), DefaultSize)
}

func TestNewDefaultsSize(t *testing.T) {
	r := New(0)
	for i := 0; i < DefaultSize+1; i++ {
		r.Emit("x")
	}
	assert.Equal(t, DefaultSize, r.Len())
}
