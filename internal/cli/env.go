// Package cli implements the dictation commands on top of the capture,
// device, and diagnostics packages. Commands receive their dependencies
// through Env so tests can run them against fakes.
package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexstich/go-dictation/internal/capture"
	"github.com/alexstich/go-dictation/internal/config"
	"github.com/alexstich/go-dictation/internal/device"
	"github.com/alexstich/go-dictation/internal/diagnostics"
	"github.com/alexstich/go-dictation/internal/ffmpeg"
	"github.com/alexstich/go-dictation/internal/interrupt"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in
// isolation. All fields have production defaults via DefaultEnv(); tests
// override specific fields using the With* options.
//
// Env must not be nil when passed to command constructors.
type Env struct {
	// I/O and environment
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	Now    func() time.Time
	Logger zerolog.Logger

	// Factories for domain objects
	ConfigLoader       ConfigLoader
	DiagnosticsFactory DiagnosticsFactory
	DetectorFactory    DetectorFactory
	RecorderFactory    RecorderFactory

	// InterruptFactory creates the Ctrl+C watcher used by record.
	// Defaults to interrupt.Watch; tests inject a watcher with a fake
	// signal channel.
	InterruptFactory func(ctx context.Context) (*interrupt.Watcher, context.Context)
}

// ConfigLoader loads user configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// Diagnoser produces the pre-flight report consumed by the supervisor
// and the diagnose command.
type Diagnoser interface {
	Run(ctx context.Context) diagnostics.Report
}

// DiagnosticsFactory builds a Diagnoser, honoring an explicit FFmpeg
// path override from configuration ("" means resolve normally).
type DiagnosticsFactory interface {
	NewDiagnoser(ffmpegPath string) Diagnoser
}

// DeviceDetector enumerates audio input devices.
type DeviceDetector interface {
	Detect(ctx context.Context) []device.AudioDevice
}

// DetectorFactory builds a DeviceDetector with the same path-override
// semantics as DiagnosticsFactory.
type DetectorFactory interface {
	NewDetector(ffmpegPath string) DeviceDetector
}

// Recorder runs one capture session. *capture.Supervisor satisfies it.
type Recorder interface {
	Start(ctx context.Context, opts capture.Options) ([]byte, error)
	Stop()
}

// RecorderFactory builds a Recorder around a pre-flight Diagnoser.
type RecorderFactory interface {
	NewRecorder(diag Diagnoser, events capture.Events, logger zerolog.Logger) Recorder
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) { e.Stdout = w }
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) { e.Stderr = w }
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) { e.Getenv = fn }
}

// WithNow sets the time provider.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) { e.Now = fn }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) EnvOption {
	return func(e *Env) { e.Logger = l }
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) { e.ConfigLoader = l }
}

// WithDiagnosticsFactory sets the diagnostics factory.
func WithDiagnosticsFactory(f DiagnosticsFactory) EnvOption {
	return func(e *Env) { e.DiagnosticsFactory = f }
}

// WithDetectorFactory sets the device detector factory.
func WithDetectorFactory(f DetectorFactory) EnvOption {
	return func(e *Env) { e.DetectorFactory = f }
}

// WithRecorderFactory sets the recorder factory.
func WithRecorderFactory(f RecorderFactory) EnvOption {
	return func(e *Env) { e.RecorderFactory = f }
}

// WithInterruptFactory sets the Ctrl+C watcher factory.
func WithInterruptFactory(f func(ctx context.Context) (*interrupt.Watcher, context.Context)) EnvOption {
	return func(e *Env) { e.InterruptFactory = f }
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:             os.Stdout,
		Stderr:             os.Stderr,
		Getenv:             os.Getenv,
		Now:                time.Now,
		Logger:             zerolog.Nop(),
		ConfigLoader:       &defaultConfigLoader{},
		DiagnosticsFactory: &defaultDiagnosticsFactory{},
		DetectorFactory:    &defaultDetectorFactory{},
		RecorderFactory:    &defaultRecorderFactory{},
		InterruptFactory:   interrupt.Watch,
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// newLocator builds the binary locator, honoring an explicit path.
func newLocator(ffmpegPath string) *ffmpeg.Locator {
	if ffmpegPath != "" {
		return ffmpeg.NewLocator(ffmpeg.WithExplicitPath(ffmpegPath))
	}
	return ffmpeg.NewLocator()
}

// defaultDiagnosticsFactory wires the locator and enumerator probes.
type defaultDiagnosticsFactory struct{}

func (defaultDiagnosticsFactory) NewDiagnoser(ffmpegPath string) Diagnoser {
	locator := newLocator(ffmpegPath)
	enum := device.NewEnumerator(locator, ffmpeg.NewExecutor())
	return diagnostics.NewRunner(locator, enum)
}

// defaultDetectorFactory implements DetectorFactory using the device package.
type defaultDetectorFactory struct{}

func (defaultDetectorFactory) NewDetector(ffmpegPath string) DeviceDetector {
	return device.NewEnumerator(newLocator(ffmpegPath), ffmpeg.NewExecutor())
}

// defaultRecorderFactory implements RecorderFactory using the capture package.
type defaultRecorderFactory struct{}

func (defaultRecorderFactory) NewRecorder(diag Diagnoser, events capture.Events, logger zerolog.Logger) Recorder {
	return capture.NewSupervisor(diag, capture.WithEvents(events), capture.WithLogger(logger))
}

// Compile-time interface verification.
var (
	_ ConfigLoader       = (*defaultConfigLoader)(nil)
	_ DiagnosticsFactory = (*defaultDiagnosticsFactory)(nil)
	_ DetectorFactory    = (*defaultDetectorFactory)(nil)
	_ RecorderFactory    = (*defaultRecorderFactory)(nil)
)
