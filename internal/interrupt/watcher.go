// Package interrupt implements the record command's Ctrl+C protocol.
// The first interrupt ends the capture gracefully and keeps the audio
// recorded so far; a second one within a short window discards the
// take and exits.
package interrupt

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Decision is the outcome of the post-interrupt window.
type Decision int

const (
	// Keep finalizes the recording with the audio captured so far.
	Keep Decision = iota
	// Discard throws the recording away.
	Discard
)

func (d Decision) String() string {
	switch d {
	case Keep:
		return "keep"
	case Discard:
		return "discard"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// ExitCode is the conventional status for a SIGINT exit (128 + 2).
const ExitCode = 130

// decisionWindow is how long after the first interrupt a second one
// still counts as a discard.
const decisionWindow = 2 * time.Second

const discardMessage = "\nAborted. Recording discarded."

// Watcher relays Ctrl+C to a recording session. The first signal
// cancels the derived context, which the capture supervisor treats as
// a graceful stop; a second signal inside the decision window closes
// the abort channel and exits the process.
type Watcher struct {
	mu      sync.Mutex
	firstAt time.Time
	signals int
	closed  bool

	cancel  context.CancelFunc
	aborted chan struct{}
	quit    chan struct{}

	now    func() time.Time
	exit   func(int)
	stderr io.Writer
}

// Options injects the watcher's process-level dependencies for tests.
type Options struct {
	// SigCh is the signal source. Nil disables the listener.
	SigCh <-chan os.Signal
	// Exit replaces os.Exit.
	Exit func(int)
	// Now replaces time.Now.
	Now func() time.Time
	// Stderr receives user-facing messages. Must tolerate concurrent
	// writes; os.Stderr does.
	Stderr io.Writer
}

// Watch subscribes to SIGINT/SIGTERM and returns the watcher plus a
// context canceled by the first interrupt.
func Watch(parent context.Context) (*Watcher, context.Context) {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	return WatchWithOptions(parent, Options{SigCh: sigCh})
}

// WatchWithOptions is Watch with injected dependencies.
func WatchWithOptions(parent context.Context, opts Options) (*Watcher, context.Context) {
	ctx, cancel := context.WithCancel(parent)

	w := &Watcher{
		cancel:  cancel,
		aborted: make(chan struct{}),
		quit:    make(chan struct{}),
		now:     opts.Now,
		exit:    opts.Exit,
		stderr:  opts.Stderr,
	}
	if w.now == nil {
		w.now = time.Now
	}
	if w.exit == nil {
		w.exit = os.Exit
	}
	if w.stderr == nil {
		w.stderr = os.Stderr
	}

	if opts.SigCh != nil {
		go w.listen(opts.SigCh)
	}
	return w, ctx
}

// listen consumes signals until the watcher is closed or a discard
// ends the process.
func (w *Watcher) listen(sigCh <-chan os.Signal) {
	for {
		select {
		case <-w.quit:
			return
		case _, ok := <-sigCh:
			if !ok || w.observe() == Discard {
				return
			}
		}
	}
}

// observe registers one interrupt and reports the running decision.
// It runs only on the listener goroutine, so the abort channel is
// closed at most once.
func (w *Watcher) observe() Decision {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return Keep
	}
	w.signals++
	first := w.signals == 1
	if first {
		w.firstAt = w.now()
	}
	inWindow := !first && w.now().Sub(w.firstAt) <= decisionWindow
	w.mu.Unlock()

	if first {
		w.cancel()
		return Keep
	}
	if !inWindow {
		// A late second press reads as impatience, not a discard.
		return Keep
	}

	close(w.aborted)
	fmt.Fprintln(w.stderr, discardMessage)
	w.exit(ExitCode)
	return Discard
}

// Interrupted reports whether at least one signal arrived.
func (w *Watcher) Interrupted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.signals > 0
}

// Decide blocks for the remainder of the decision window and reports
// whether the recording should be kept. The prompt is printed only
// when there is still time for the user to react.
func (w *Watcher) Decide(prompt string) Decision {
	w.mu.Lock()
	if w.signals == 0 {
		w.mu.Unlock()
		return Keep
	}
	remaining := decisionWindow - w.now().Sub(w.firstAt)
	w.mu.Unlock()

	select {
	case <-w.aborted:
		return Discard
	default:
	}
	if remaining <= 0 {
		return Keep
	}

	fmt.Fprintln(w.stderr, prompt)
	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-w.aborted:
		return Discard
	case <-timer.C:
		return Keep
	}
}

// Close restores the default signal disposition and stops the
// listener. Idempotent.
func (w *Watcher) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()

	signal.Reset(syscall.SIGINT, syscall.SIGTERM)
	close(w.quit)
}
