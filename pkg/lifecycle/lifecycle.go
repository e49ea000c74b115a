// Package lifecycle coordinates startup and shutdown hooks across the
// database, storage, API and the background pipeline.
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ReadinessChecker reports whether a subsystem is ready to serve traffic.
type ReadinessChecker interface {
	Ready() bool
}

// Coordinator runs startup hooks concurrently and holds shutdown hooks until
// its context is cancelled.
type Coordinator struct {
	ctx      context.Context
	cancel   context.CancelFunc
	startup  sync.WaitGroup
	shutdown sync.WaitGroup
	ready    atomic.Bool
}

func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{ctx: ctx, cancel: cancel}
}

// Context is cancelled when Shutdown begins. Long-running work such as the
// pipeline poll loop derives from it.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup runs fn immediately in its own goroutine. WaitForStartup blocks
// until every registered fn has returned.
func (c *Coordinator) OnStartup(fn func()) {
	c.startup.Go(fn)
}

// OnShutdown runs fn immediately in its own goroutine. fn must block on
// <-c.Context().Done() before releasing its resources.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdown.Go(fn)
}

func (c *Coordinator) Ready() bool {
	return c.ready.Load()
}

func (c *Coordinator) WaitForStartup() {
	c.startup.Wait()
	c.ready.Store(true)
}

// Shutdown cancels the context, marks the coordinator not ready and waits up to
// timeout for shutdown hooks to return.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.ready.Store(false)
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.shutdown.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return fmt.Errorf("shutdown hooks still running after %v", timeout)
	}
}
