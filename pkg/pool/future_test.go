package pool

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestFutureWaitContext(t *testing.T) {
	p := New(&Config{Workers: 1})
	defer p.Close()

	gate := make(chan struct{})
	f := Submit(p, func() (int, error) {
		<-gate
		return 42, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	v, err := f.WaitContext(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, v)

	// The task was unaffected by the abandoned wait.
	close(gate)
	v, err = f.Wait()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestFutureWaitContextResolved(t *testing.T) {
	p := New(&Config{Workers: 1})
	defer p.Close()

	f := Submit(p, func() (int, error) { return 9, nil })

	v, err := f.WaitContext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, v)
}

func TestFutureTryWait(t *testing.T) {
	p := New(&Config{Workers: 1})
	defer p.Close()

	gate := make(chan struct{})
	f := Submit(p, func() (string, error) {
		<-gate
		return "done", nil
	})

	_, _, ok := f.TryWait()
	assert.False(t, ok)

	close(gate)
	assert.Eventually(t, func() bool {
		_, _, ok := f.TryWait()
		return ok
	}, 5*time.Second, time.Millisecond)

	v, err, ok := f.TryWait()
	require.True(t, ok)
	require.NoError(t, err)
	assert.Equal(t, "done", v)
}

func TestFutureDoneChannel(t *testing.T) {
	p := New(&Config{Workers: 1})
	defer p.Close()

	f := Submit(p, func() (int, error) { return 3, nil })

	select {
	case <-f.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("future never resolved")
	}

	v, err := f.Wait()
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestFutureMultipleWaiters(t *testing.T) {
	p := New(&Config{Workers: 1})
	defer p.Close()

	gate := make(chan struct{})
	f := Submit(p, func() (int, error) {
		<-gate
		return 42, nil
	})

	var g errgroup.Group
	for i := 0; i < 5; i++ {
		g.Go(func() error {
			v, err := f.Wait()
			if err != nil {
				return err
			}
			if v != 42 {
				return errors.New("waiter observed a different result")
			}
			return nil
		})
	}

	close(gate)
	require.NoError(t, g.Wait())
}

func TestFutureResolvesOnce(t *testing.T) {
	f := newFuture[int]()

	f.resolve(1, nil)
	f.reject(errors.New("too late"))
	f.resolve(2, nil)

	v, err := f.Wait()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}
