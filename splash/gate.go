package splash

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ErrStopped is returned by Wait when the gate is stopped before it opens.
var ErrStopped = errors.New("splash gate stopped")

// Config describes when the gate opens. With both fields set the gate waits
// for Prepare to return and for Delay to elapse.
type Config struct {
	// Delay is how long the splash stays up at minimum.
	Delay time.Duration
	// Prepare runs once at start, e.g. to load resources. A failure is logged
	// and does not keep the gate closed.
	Prepare func(ctx context.Context) error
	// Hide dismisses the native splash. It runs exactly once, when the gate opens.
	Hide func()
}

// Gate holds the screen inert until it opens.
type Gate struct {
	cfg Config

	mu      sync.Mutex
	started bool
	halted  bool
	cancel  context.CancelFunc
	ready   chan struct{}
	stopped chan struct{}
}

func New(cfg Config) *Gate {
	return &Gate{
		cfg:     cfg,
		ready:   make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins the countdown. It returns immediately; use Wait or Done to
// observe the transition. Calling Start more than once has no effect.
func (g *Gate) Start(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.started {
		return
	}
	g.started = true

	ctx, cancel := context.WithCancel(ctx)
	g.cancel = cancel
	go g.run(ctx)
}

func (g *Gate) run(ctx context.Context) {
	timer := time.NewTimer(g.cfg.Delay)
	defer timer.Stop()

	if g.cfg.Prepare != nil {
		if err := g.cfg.Prepare(ctx); err != nil {
			log.Warn().Err(err).Msg("splash prepare failed")
		}
	}

	select {
	case <-timer.C:
		g.open()
	case <-ctx.Done():
		g.Stop()
	}
}

func (g *Gate) open() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.halted || g.Ready() {
		return
	}
	close(g.ready)
	if g.cfg.Hide != nil {
		g.cfg.Hide()
	}
	log.Debug().Msg("splash hidden")
}

// Stop cancels a pending countdown. A gate that is already open stays open.
func (g *Gate) Stop() {
	g.mu.Lock()
	if g.halted {
		g.mu.Unlock()
		return
	}
	g.halted = true
	cancel := g.cancel
	g.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	close(g.stopped)
}

// Ready reports whether the gate has opened.
func (g *Gate) Ready() bool {
	select {
	case <-g.ready:
		return true
	default:
		return false
	}
}

// Done is closed when the gate opens.
func (g *Gate) Done() <-chan struct{} {
	return g.ready
}

// Wait blocks until the gate opens, it is stopped or ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	select {
	case <-g.ready:
		return nil
	default:
	}
	select {
	case <-g.ready:
		return nil
	case <-g.stopped:
		if g.Ready() {
			return nil
		}
		return ErrStopped
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "[Gate.Wait]")
	}
}
