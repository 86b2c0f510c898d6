// Package device enumerates audio input devices through the FFmpeg
// binary's -list_devices diagnostic output.
package device

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/alexstich/go-dictation/internal/platform"
)

// AudioDevice is one capture input as announced by the platform tool.
// Immutable value; a fresh list is produced on every enumeration so OS
// device changes are picked up.
type AudioDevice struct {
	// ID is the platform-specific token FFmpeg's -i flag accepts,
	// e.g. ":1" (avfoundation) or audio="Microphone (...)" (dshow).
	ID string

	// Name is the human-readable device name.
	Name string

	// IsDefault marks the first device reported by the platform tool.
	IsDefault bool
}

// FallbackDeviceName is the display name of the synthetic device used
// when enumeration fails or parses nothing.
const FallbackDeviceName = "Default Audio Device"

// outputRunner runs FFmpeg and captures its stderr text.
type outputRunner interface {
	RunOutput(ctx context.Context, ffmpegPath string, args []string) (string, error)
}

// pathResolver locates the capture binary.
type pathResolver interface {
	Resolve() (string, error)
}

// FixedPath adapts an already-resolved binary path to the resolver seam.
type FixedPath string

// Resolve returns the fixed path.
func (p FixedPath) Resolve() (string, error) { return string(p), nil }

// Enumerator lists audio input devices through the FFmpeg binary.
type Enumerator struct {
	resolver pathResolver
	commands platform.Commands
	runner   outputRunner
	logger   zerolog.Logger
}

// EnumeratorOption configures an Enumerator.
type EnumeratorOption func(*Enumerator)

// WithRunner sets the FFmpeg output runner (for testing).
func WithRunner(r outputRunner) EnumeratorOption {
	return func(e *Enumerator) { e.runner = r }
}

// WithCommands overrides the platform command mapping (for testing
// other platforms' grammars on the host OS).
func WithCommands(c platform.Commands) EnumeratorOption {
	return func(e *Enumerator) { e.commands = c }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) EnumeratorOption {
	return func(e *Enumerator) { e.logger = l }
}

// NewEnumerator creates an Enumerator. The resolver locates the FFmpeg
// binary at detection time; use FixedPath when the path is known.
func NewEnumerator(resolver pathResolver, runner outputRunner, opts ...EnumeratorOption) *Enumerator {
	e := &Enumerator{
		resolver: resolver,
		commands: platform.Resolve(),
		runner:   runner,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Detect lists the audio input devices FFmpeg can see.
// It never fails: on resolution errors, spawn errors, empty output, or
// unparseable text it returns a single synthetic default entry so
// callers always have a usable device. Enumeration order defines
// priority; no re-sorting.
func (e *Enumerator) Detect(ctx context.Context) []AudioDevice {
	ffmpegPath, err := e.resolver.Resolve()
	if err != nil {
		e.logger.Warn().Err(err).Msg("cannot resolve capture binary, using fallback device")
		return e.fallback()
	}

	stderr, err := e.runner.RunOutput(ctx, ffmpegPath, e.commands.ListDeviceArgs())
	// FFmpeg's -list_devices has no input to process and exits non-zero
	// even on success; only an empty diagnostic stream is a real failure.
	if err != nil && stderr == "" {
		e.logger.Warn().Err(err).Msg("device listing produced no output, using fallback device")
		return e.fallback()
	}

	devices := parseDevices(e.commands.AudioInputFlag, stderr)
	if len(devices) == 0 {
		e.logger.Warn().Str("format", e.commands.AudioInputFlag).
			Msg("no devices parsed from listing, using fallback device")
		return e.fallback()
	}
	return devices
}

// fallback returns the synthetic default device list.
func (e *Enumerator) fallback() []AudioDevice {
	return []AudioDevice{{
		ID:        e.commands.DefaultDeviceID,
		Name:      FallbackDeviceName,
		IsDefault: true,
	}}
}

// Match reports whether any enumerated device matches the given
// identifier, by ID or by name.
func Match(devices []AudioDevice, id string) (AudioDevice, bool) {
	for _, d := range devices {
		if d.ID == id || d.Name == id {
			return d, true
		}
	}
	return AudioDevice{}, false
}

// Default returns the default device of an enumeration, falling back to
// the first entry. The slice is never empty by the Detect contract.
func Default(devices []AudioDevice) AudioDevice {
	for _, d := range devices {
		if d.IsDefault {
			return d
		}
	}
	return devices[0]
}
