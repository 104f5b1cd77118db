package splash_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-signin-client/splash"
	"github.com/stretchr/testify/require"
)

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestGate_OpensAfterDelay(t *testing.T) {
	var hides atomic.Int32
	g := splash.New(splash.Config{
		Delay: 20 * time.Millisecond,
		Hide:  func() { hides.Add(1) },
	})
	require.False(t, g.Ready())

	start := time.Now()
	g.Start(context.Background())
	g.Start(context.Background())
	require.False(t, g.Ready())

	require.NoError(t, g.Wait(waitCtx(t)))
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	require.True(t, g.Ready())

	g.Stop()
	require.True(t, g.Ready())
	require.NoError(t, g.Wait(waitCtx(t)))
	require.Equal(t, int32(1), hides.Load())
}

func TestGate_WaitsForPrepare(t *testing.T) {
	release := make(chan struct{})
	var hides atomic.Int32
	g := splash.New(splash.Config{
		Prepare: func(ctx context.Context) error {
			<-release
			return nil
		},
		Hide: func() { hides.Add(1) },
	})
	g.Start(context.Background())

	time.Sleep(20 * time.Millisecond)
	require.False(t, g.Ready())
	require.Zero(t, hides.Load())

	close(release)
	select {
	case <-g.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("gate never opened")
	}
	require.NoError(t, g.Wait(waitCtx(t)))
	require.Equal(t, int32(1), hides.Load())
}

func TestGate_PrepareFailureStillOpens(t *testing.T) {
	g := splash.New(splash.Config{
		Prepare: func(ctx context.Context) error { return errors.New("fonts missing") },
	})
	g.Start(context.Background())
	require.NoError(t, g.Wait(waitCtx(t)))
	require.True(t, g.Ready())
}

func TestGate_StopBeforeOpen(t *testing.T) {
	var hides atomic.Int32
	g := splash.New(splash.Config{
		Delay: time.Hour,
		Hide:  func() { hides.Add(1) },
	})
	g.Start(context.Background())
	g.Stop()
	g.Stop()

	require.ErrorIs(t, g.Wait(waitCtx(t)), splash.ErrStopped)
	require.False(t, g.Ready())
	require.Zero(t, hides.Load())
}

func TestGate_ParentContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g := splash.New(splash.Config{Delay: time.Hour})
	g.Start(ctx)
	cancel()

	require.ErrorIs(t, g.Wait(waitCtx(t)), splash.ErrStopped)
	require.False(t, g.Ready())
}

func TestGate_WaitContextDone(t *testing.T) {
	g := splash.New(splash.Config{Delay: time.Hour})
	g.Start(context.Background())
	defer g.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, g.Wait(ctx), context.DeadlineExceeded)
}
