package ffmpeg

import (
	"bytes"
	"context"
	"os/exec"
	"sync"
)

// runOutputFn is the function type for running a command and capturing
// its diagnostic output.
type runOutputFn func(ctx context.Context, path string, args []string) (string, error)

// Executor runs short-lived FFmpeg commands and captures their stderr.
// FFmpeg writes diagnostic output (device lists, probe info, version
// banners) to stderr, not stdout.
type Executor struct {
	runOutput runOutputFn
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithRunOutput sets a custom runOutput function (for testing).
func WithRunOutput(fn runOutputFn) ExecutorOption {
	return func(e *Executor) { e.runOutput = fn }
}

// NewExecutor creates an Executor with the given options.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{runOutput: defaultRunOutput}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunOutput executes FFmpeg and returns its stderr text.
// The text is returned even when the command exits non-zero: FFmpeg
// reports success-shaped output on "failing" invocations such as
// -list_devices, which has no input to process and always exits 1.
func (e *Executor) RunOutput(ctx context.Context, ffmpegPath string, args []string) (string, error) {
	return e.runOutput(ctx, ffmpegPath, args)
}

// defaultRunOutput is the production implementation.
func defaultRunOutput(ctx context.Context, ffmpegPath string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stderr.String(), err
}

// ---------------------------------------------------------------------------
// Package-level facade
// ---------------------------------------------------------------------------

var (
	defaultExecutor     *Executor
	defaultExecutorOnce sync.Once
)

// getDefaultExecutor returns the lazily-initialized default executor.
func getDefaultExecutor() *Executor {
	defaultExecutorOnce.Do(func() {
		defaultExecutor = NewExecutor()
	})
	return defaultExecutor
}

// RunOutput executes FFmpeg with the default executor.
func RunOutput(ctx context.Context, ffmpegPath string, args []string) (string, error) {
	return getDefaultExecutor().RunOutput(ctx, ffmpegPath, args)
}
