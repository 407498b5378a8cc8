package lifecycle_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/inspector/pkg/lifecycle"
)

func TestNotReadyBeforeStartup(t *testing.T) {
	lc := lifecycle.New()
	if lc.Ready() {
		t.Error("should not be ready before WaitForStartup")
	}
}

func TestStartupHooksExecute(t *testing.T) {
	lc := lifecycle.New()

	var count atomic.Int32
	for _, name := range []string{"database", "storage", "classifier"} {
		lc.OnStartup(name, func(context.Context) error {
			count.Add(1)
			return nil
		})
	}

	if err := lc.WaitForStartup(); err != nil {
		t.Fatalf("WaitForStartup: %v", err)
	}
	if got := count.Load(); got != 3 {
		t.Errorf("startup hooks: got %d, want 3", got)
	}
	if !lc.Ready() {
		t.Error("should be ready after WaitForStartup")
	}
}

func TestStartupFailureRecorded(t *testing.T) {
	lc := lifecycle.New()
	boom := errors.New("model load failed")

	lc.OnStartup("classifier", func(context.Context) error { return boom })
	lc.OnStartup("database", func(context.Context) error { return nil })

	err := lc.WaitForStartup()
	if !errors.Is(err, boom) {
		t.Fatalf("WaitForStartup error = %v, want %v", err, boom)
	}
	if lc.Ready() {
		t.Error("should not be ready when a startup hook failed")
	}
	if got := lc.Failure("classifier"); !errors.Is(got, boom) {
		t.Errorf("Failure(classifier) = %v, want %v", got, boom)
	}
	if got := lc.Failure("database"); got != nil {
		t.Errorf("Failure(database) = %v, want nil", got)
	}
}

func TestReadyAfterRepeatedWaitWithFailure(t *testing.T) {
	lc := lifecycle.New()
	lc.OnStartup("storage", func(context.Context) error {
		return errors.New("container not found")
	})

	for range 2 {
		if err := lc.WaitForStartup(); err == nil {
			t.Fatal("expected startup error")
		}
		if lc.Ready() {
			t.Fatal("failed startup reported ready")
		}
	}
}

func TestShutdownHooksExecute(t *testing.T) {
	lc := lifecycle.New()

	var cleaned atomic.Bool
	lc.OnShutdown("cache", func(context.Context) error {
		<-lc.Context().Done()
		cleaned.Store(true)
		return nil
	})

	lc.WaitForStartup()

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if !cleaned.Load() {
		t.Error("shutdown hook did not execute")
	}
}

func TestShutdownJoinsErrors(t *testing.T) {
	lc := lifecycle.New()
	boom := errors.New("close failed")

	lc.OnShutdown("storage", func(context.Context) error { return boom })
	lc.WaitForStartup()

	err := lc.Shutdown(5 * time.Second)
	if !errors.Is(err, boom) {
		t.Errorf("Shutdown error = %v, want %v", err, boom)
	}
}

func TestShutdownTimeout(t *testing.T) {
	lc := lifecycle.New()

	lc.OnShutdown("slow", func(context.Context) error {
		time.Sleep(500 * time.Millisecond)
		return nil
	})

	lc.WaitForStartup()

	if err := lc.Shutdown(50 * time.Millisecond); err == nil {
		t.Error("expected timeout error, got nil")
	}
}

func TestStartupContextCancelledOnShutdown(t *testing.T) {
	lc := lifecycle.New()

	lc.OnStartup("waiter", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	if err := lc.Shutdown(time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	if err := lc.WaitForStartup(); !errors.Is(err, context.Canceled) {
		t.Errorf("WaitForStartup error = %v, want context.Canceled", err)
	}
}
