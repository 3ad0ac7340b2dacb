// Package lifecycle coordinates subsystem startup and graceful shutdown.
// Subsystems register startup hooks that run concurrently and shutdown hooks
// that block until Shutdown is called. Shutdown runs in two phases: drain
// hooks (request servers) run first, and resources that serve requests wait
// on Drained before releasing.
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ReadinessChecker reports whether all startup hooks have completed.
type ReadinessChecker interface {
	Ready() bool
}

// Coordinator tracks startup and shutdown hooks for the service.
type Coordinator struct {
	ctx        context.Context
	cancel     context.CancelFunc
	startupWg  sync.WaitGroup
	shutdownWg sync.WaitGroup
	ready      bool
	readyMu    sync.RWMutex

	drainMu   sync.Mutex
	drainFns  []func()
	drained   chan struct{}
	drainOnce sync.Once
}

// New creates a Coordinator with a fresh cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:     ctx,
		cancel:  cancel,
		drained: make(chan struct{}),
	}
}

// Context returns the coordinator context. It is cancelled when Shutdown is called.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup runs fn in its own goroutine and tracks it until WaitForStartup returns.
func (c *Coordinator) OnStartup(fn func()) {
	c.startupWg.Add(1)
	go func() {
		defer c.startupWg.Done()
		fn()
	}()
}

// OnDrain registers fn to run when Shutdown is called. Drain hooks run
// concurrently; Drained is closed once all of them return.
func (c *Coordinator) OnDrain(fn func()) {
	c.drainMu.Lock()
	defer c.drainMu.Unlock()
	c.drainFns = append(c.drainFns, fn)
}

// Drained is closed after Shutdown is called and every drain hook returned.
func (c *Coordinator) Drained() <-chan struct{} {
	return c.drained
}

// OnShutdown runs fn in its own goroutine. The hook is expected to block on
// Context().Done(), or Drained() when it backs request handling, before
// releasing its resources.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdownWg.Add(1)
	go func() {
		defer c.shutdownWg.Done()
		fn()
	}()
}

// WaitForStartup blocks until every startup hook has returned and marks the
// coordinator ready.
func (c *Coordinator) WaitForStartup() {
	c.startupWg.Wait()
	c.readyMu.Lock()
	c.ready = true
	c.readyMu.Unlock()
}

// Ready implements ReadinessChecker.
func (c *Coordinator) Ready() bool {
	c.readyMu.RLock()
	defer c.readyMu.RUnlock()
	return c.ready
}

// Shutdown cancels the coordinator context, runs the drain hooks and waits
// for drain and shutdown hooks to finish.
// It returns an error if the hooks do not complete within timeout.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()
	c.drainOnce.Do(c.drain)

	done := make(chan struct{})
	go func() {
		<-c.drained
		c.shutdownWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}

func (c *Coordinator) drain() {
	c.drainMu.Lock()
	fns := c.drainFns
	c.drainMu.Unlock()

	go func() {
		var wg sync.WaitGroup
		for _, fn := range fns {
			wg.Add(1)
			go func() {
				defer wg.Done()
				fn()
			}()
		}
		wg.Wait()
		close(c.drained)
	}()
}
