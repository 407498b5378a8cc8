// Package lifecycle coordinates startup and shutdown of long-lived subsystems.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Hook is a named unit of startup or shutdown work.
// The context passed to startup hooks is cancelled when shutdown begins;
// shutdown hooks receive a context bounded by the shutdown timeout.
type Hook func(ctx context.Context) error

type namedHook struct {
	name string
	fn   Hook
}

// Coordinator runs startup hooks concurrently, records their failures,
// and runs shutdown hooks concurrently within a deadline.
type Coordinator struct {
	ctx    context.Context
	cancel context.CancelFunc

	startup sync.WaitGroup
	ready   atomic.Bool

	mu       sync.Mutex
	shutdown []namedHook
	failures map[string]error
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:      ctx,
		cancel:   cancel,
		failures: make(map[string]error),
	}
}

// Context returns the coordinator's context, cancelled when Shutdown is called.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup starts fn in its own goroutine. A returned error is recorded
// under name and reported by WaitForStartup and Failure.
func (c *Coordinator) OnStartup(name string, fn Hook) {
	c.startup.Go(func() {
		if err := fn(c.ctx); err != nil {
			c.mu.Lock()
			c.failures[name] = err
			c.mu.Unlock()
		}
	})
}

// OnShutdown registers fn to run when Shutdown is called.
func (c *Coordinator) OnShutdown(name string, fn Hook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shutdown = append(c.shutdown, namedHook{name: name, fn: fn})
}

// WaitForStartup blocks until every startup hook has returned and returns
// the joined startup failures. The coordinator is marked ready only when
// no hook failed.
func (c *Coordinator) WaitForStartup() error {
	c.startup.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	errs := make([]error, 0, len(c.failures))
	for name, err := range c.failures {
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	c.ready.Store(true)
	return nil
}

// Ready reports whether every startup hook completed without error.
func (c *Coordinator) Ready() bool {
	return c.ready.Load()
}

// Failure returns the error recorded by the named startup hook, if any.
func (c *Coordinator) Failure(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failures[name]
}

// Shutdown cancels the coordinator context and runs every shutdown hook
// concurrently. It returns an error if the hooks fail or exceed timeout.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	c.mu.Lock()
	hooks := append([]namedHook(nil), c.shutdown...)
	c.mu.Unlock()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, h := range hooks {
		wg.Go(func() {
			if err := h.fn(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", h.name, err))
				mu.Unlock()
			}
		})
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return errors.Join(errs...)
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}
