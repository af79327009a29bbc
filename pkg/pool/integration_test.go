package pool

import (
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-concurrent/concurrent/internal/testutils"
	"github.com/go-concurrent/concurrent/pkg/hashmap"
	"github.com/go-concurrent/concurrent/pkg/queue"
)

func TestPoolFillsHashMap(t *testing.T) {
	p := New(&Config{Workers: 4})
	defer p.Close()

	m := hashmap.New[int, int]()
	futures := make([]*Future[bool], 500)
	for i := 0; i < 500; i++ {
		i := i
		futures[i] = Submit(p, func() (bool, error) {
			return m.Insert(i, i*10), nil
		})
	}

	for i, f := range futures {
		inserted, err := f.Wait()
		require.NoError(t, err)
		assert.True(t, inserted, "key %d", i)
	}

	assert.Equal(t, 500, m.Size())
	for i := 0; i < 500; i++ {
		v, ok := m.Get(i)
		require.True(t, ok, "key %d missing", i)
		require.Equal(t, i*10, v)
	}
}

func TestPoolFeedsQueue(t *testing.T) {
	p := New(&Config{Workers: 4})
	defer p.Close()

	results := queue.New[int]()
	for i := 0; i < 300; i++ {
		i := i
		Submit(p, func() (struct{}, error) {
			results.Enqueue(i * i)
			return struct{}{}, nil
		})
	}

	testutils.AssertCompletes(t, 10*time.Second, "Wait", p.Wait)

	seen := make(map[int]bool, 300)
	for {
		v, ok := results.Dequeue()
		if !ok {
			break
		}
		seen[v] = true
	}
	assert.Len(t, seen, 300)
	for i := 0; i < 300; i++ {
		assert.True(t, seen[i*i], "result %d missing", i*i)
	}
}

// Producers and consumers run as pool tasks: items flow through the
// queue into the map.
func TestQueueToHashMapPipeline(t *testing.T) {
	const (
		producers = 4
		consumers = 4
		perLane   = 250
		total     = producers * perLane
	)
	// Every lane needs a worker at once; consumers spin until the
	// producers are done.
	p := New(&Config{Workers: producers + consumers})
	defer p.Close()

	q := queue.New[int]()
	m := hashmap.New[int, int]()
	var moved atomic.Int64

	for lane := 0; lane < producers; lane++ {
		lane := lane
		Submit(p, func() (struct{}, error) {
			for i := 0; i < perLane; i++ {
				q.Enqueue(lane*perLane + i)
			}
			return struct{}{}, nil
		})
	}
	for c := 0; c < consumers; c++ {
		Submit(p, func() (struct{}, error) {
			for moved.Load() < total {
				v, ok := q.Dequeue()
				if !ok {
					runtime.Gosched()
					continue
				}
				m.Insert(v, v*2)
				moved.Add(1)
			}
			return struct{}{}, nil
		})
	}

	testutils.AssertCompletes(t, 30*time.Second, "Wait", p.Wait)

	assert.Equal(t, int64(total), moved.Load())
	assert.Equal(t, total, m.Size())
	assert.True(t, q.Empty())
	for k := 0; k < total; k++ {
		v, ok := m.Get(k)
		require.True(t, ok, "key %d missing", k)
		require.Equal(t, k*2, v)
	}
}
