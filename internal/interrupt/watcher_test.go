package interrupt_test

// Notes:
// - Signals are injected through Options.SigCh; the real SIGINT
//   disposition is never touched.
// - The clock is injected where the decision window matters, so the
//   only real waiting is the handful of milliseconds left on a nearly
//   expired window.

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexstich/go-dictation/internal/interrupt"
)

// syncBuffer guards a bytes.Buffer against concurrent writers (the
// listener goroutine and Decide both print to stderr).
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNoSignalKeeps(t *testing.T) {
	t.Parallel()

	w, ctx := interrupt.WatchWithOptions(context.Background(), interrupt.Options{})
	defer w.Close()

	if w.Interrupted() {
		t.Error("Interrupted() = true before any signal")
	}
	if got := w.Decide("unused prompt"); got != interrupt.Keep {
		t.Errorf("Decide() = %v, want Keep", got)
	}
	if ctx.Err() != nil {
		t.Errorf("context canceled without a signal: %v", ctx.Err())
	}
}

func TestFirstSignalCancelsContext(t *testing.T) {
	t.Parallel()

	sigCh := make(chan os.Signal, 2)
	w, ctx := interrupt.WatchWithOptions(context.Background(), interrupt.Options{SigCh: sigCh})
	defer w.Close()

	sigCh <- os.Interrupt

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not canceled after the first signal")
	}
	if !w.Interrupted() {
		t.Error("Interrupted() = false after a signal")
	}
}

func TestSecondSignalInsideWindowDiscards(t *testing.T) {
	t.Parallel()

	sigCh := make(chan os.Signal, 2)
	exitCh := make(chan int, 1)
	stderr := &syncBuffer{}
	base := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

	w, ctx := interrupt.WatchWithOptions(context.Background(), interrupt.Options{
		SigCh:  sigCh,
		Exit:   func(code int) { exitCh <- code },
		Now:    func() time.Time { return base },
		Stderr: stderr,
	})
	defer w.Close()

	sigCh <- os.Interrupt
	sigCh <- os.Interrupt

	select {
	case code := <-exitCh:
		if code != interrupt.ExitCode {
			t.Errorf("exit code = %d, want %d", code, interrupt.ExitCode)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("exit not requested after a double interrupt")
	}

	if ctx.Err() == nil {
		t.Error("context not canceled by the first of the two signals")
	}
	if got := w.Decide("unused prompt"); got != interrupt.Discard {
		t.Errorf("Decide() = %v, want Discard", got)
	}
	if !strings.Contains(stderr.String(), "Recording discarded") {
		t.Errorf("stderr = %q, missing discard message", stderr.String())
	}
}

func TestLateSecondSignalKeeps(t *testing.T) {
	t.Parallel()

	sigCh := make(chan os.Signal, 2)
	exitCh := make(chan int, 1)

	// First call stamps the interrupt; every later reading sits past
	// the decision window.
	var mu sync.Mutex
	calls := 0
	base := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return base
		}
		return base.Add(5 * time.Second)
	}

	w, _ := interrupt.WatchWithOptions(context.Background(), interrupt.Options{
		SigCh: sigCh,
		Exit:  func(code int) { exitCh <- code },
		Now:   now,
	})
	defer w.Close()

	sigCh <- os.Interrupt
	sigCh <- os.Interrupt

	// Give the listener time to process both signals.
	time.Sleep(50 * time.Millisecond)

	select {
	case code := <-exitCh:
		t.Fatalf("exit(%d) requested for a second signal outside the window", code)
	default:
	}
	if got := w.Decide("unused prompt"); got != interrupt.Keep {
		t.Errorf("Decide() = %v, want Keep for an expired window", got)
	}
}

func TestDecideWaitsOutTheWindow(t *testing.T) {
	t.Parallel()

	sigCh := make(chan os.Signal, 2)
	stderr := &syncBuffer{}

	// The clock reports the window as nearly elapsed, so Decide only
	// waits a few real milliseconds.
	var mu sync.Mutex
	calls := 0
	base := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return base
		}
		return base.Add(2*time.Second - 10*time.Millisecond)
	}

	w, ctx := interrupt.WatchWithOptions(context.Background(), interrupt.Options{
		SigCh:  sigCh,
		Now:    now,
		Stderr: stderr,
	})
	defer w.Close()

	sigCh <- os.Interrupt
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not canceled after the first signal")
	}

	if got := w.Decide("Press Ctrl+C again to discard..."); got != interrupt.Keep {
		t.Errorf("Decide() = %v, want Keep after the window expires", got)
	}
	if !strings.Contains(stderr.String(), "Press Ctrl+C again") {
		t.Errorf("stderr = %q, missing the prompt", stderr.String())
	}
}

func TestDecideReturnsDiscardOnSignalDuringWait(t *testing.T) {
	t.Parallel()

	sigCh := make(chan os.Signal, 2)
	exitCh := make(chan int, 1)
	stderr := &syncBuffer{}
	base := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

	w, ctx := interrupt.WatchWithOptions(context.Background(), interrupt.Options{
		SigCh:  sigCh,
		Exit:   func(code int) { exitCh <- code },
		Now:    func() time.Time { return base },
		Stderr: stderr,
	})
	defer w.Close()

	sigCh <- os.Interrupt
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not canceled after the first signal")
	}

	decided := make(chan interrupt.Decision, 1)
	go func() { decided <- w.Decide("Press Ctrl+C again to discard...") }()

	sigCh <- os.Interrupt

	select {
	case got := <-decided:
		if got != interrupt.Discard {
			t.Errorf("Decide() = %v, want Discard", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Decide() did not return after the second signal")
	}
	if code := <-exitCh; code != interrupt.ExitCode {
		t.Errorf("exit code = %d, want %d", code, interrupt.ExitCode)
	}
}

func TestCloseStopsListening(t *testing.T) {
	t.Parallel()

	sigCh := make(chan os.Signal, 2)
	w, ctx := interrupt.WatchWithOptions(context.Background(), interrupt.Options{SigCh: sigCh})

	w.Close()
	w.Close() // idempotent

	sigCh <- os.Interrupt
	time.Sleep(50 * time.Millisecond)

	if ctx.Err() != nil {
		t.Errorf("context canceled by a signal after Close: %v", ctx.Err())
	}
	if w.Interrupted() {
		t.Error("Interrupted() = true for a signal after Close")
	}
}

func TestParentCancelPropagates(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithCancel(context.Background())
	w, ctx := interrupt.WatchWithOptions(parent, interrupt.Options{})
	defer w.Close()

	cancel()

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("derived context did not follow the parent cancellation")
	}
	if w.Interrupted() {
		t.Error("Interrupted() = true without any signal")
	}
}
