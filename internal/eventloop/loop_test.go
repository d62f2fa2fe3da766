package eventloop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startLoop(t *testing.T) (*Loop, context.CancelFunc) {
	t.Helper()
	loop := New(16)
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	t.Cleanup(cancel)
	return loop, cancel
}

func TestLoop_RunsInPostingOrder(t *testing.T) {
	loop, _ := startLoop(t)

	var got []int
	for i := 0; i < 10; i++ {
		i := i
		loop.Post(func() { got = append(got, i) })
	}

	var snapshot []int
	require.NoError(t, loop.Call(context.Background(), func() {
		snapshot = append(snapshot, got...)
	}))
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, snapshot)
}

func TestLoop_SerializesConcurrentPosters(t *testing.T) {
	loop, _ := startLoop(t)

	// No mutex: the loop is the only goroutine touching counter
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loop.Post(func() { counter++ })
		}()
	}
	wg.Wait()

	var final int
	require.NoError(t, loop.Call(context.Background(), func() { final = counter }))
	require.Equal(t, 50, final)
}

func TestLoop_RecoversFromPanic(t *testing.T) {
	loop, _ := startLoop(t)

	loop.Post(func() { panic("boom") })

	ran := false
	require.NoError(t, loop.Call(context.Background(), func() { ran = true }))
	require.True(t, ran)
}

func TestLoop_CallAfterStop(t *testing.T) {
	loop, cancel := startLoop(t)
	cancel()

	select {
	case <-loop.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}

	err := loop.Call(context.Background(), func() {})
	require.ErrorIs(t, err, ErrStopped)

	// Post must not block once stopped, even with a full queue
	finished := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			loop.Post(func() {})
		}
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Post blocked after loop stopped")
	}
}

func TestLoop_CallHonoursContext(t *testing.T) {
	loop := New(1)
	// Not running: the closure is queued but never executed
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := loop.Call(ctx, func() {})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
