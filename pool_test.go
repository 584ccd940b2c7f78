package xlsxio

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunAllBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	tasks := make([]func() error, 32)
	for i := range tasks {
		tasks[i] = func() error {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inFlight.Add(-1)
			return nil
		}
	}
	require.NoError(t, runAll(context.Background(), 3, tasks))
	require.LessOrEqual(t, peak.Load(), int32(3))
	require.Zero(t, inFlight.Load())
}

func TestRunAllReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	var ran atomic.Int32
	tasks := []func() error{
		func() error { ran.Add(1); return boom },
	}
	for range 10 {
		tasks = append(tasks, func() error { ran.Add(1); return nil })
	}
	err := runAll(context.Background(), 1, tasks)
	require.ErrorIs(t, err, boom)
	// With one slot the failure is seen before most later tasks start.
	require.Less(t, ran.Load(), int32(len(tasks)))
}

func TestRunAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := runAll(ctx, 2, []func() error{func() error { return nil }})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunAllEmpty(t *testing.T) {
	require.NoError(t, runAll(context.Background(), 0, nil))
}

func TestRunAllStopsDispatchOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var ran atomic.Int32
	tasks := []func() error{func() error { ran.Add(1); cancel(); return nil }}
	for range 10 {
		tasks = append(tasks, func() error { ran.Add(1); return nil })
	}
	err := runAll(ctx, 1, tasks)
	require.ErrorIs(t, err, context.Canceled)
	require.Less(t, ran.Load(), int32(len(tasks)))
}
