// Package ffmpeg locates and runs the FFmpeg capture binary.
package ffmpeg

import (
	"context"
	"fmt"
	"runtime"
	"strings"
)

// Environment variable for a custom ffmpeg path.
const envFFmpegPath = "DICTATION_FFMPEG"

// binaryName is the base name searched on PATH.
const binaryName = "ffmpeg"

// minMajorVersion is the oldest FFmpeg major version with usable
// silencedetect output. Older versions are warned about, not rejected.
const minMajorVersion = 4

// Availability reports whether FFmpeg can be used and how it was found.
// It is a value, never an error: locating the binary runs during
// pre-flight diagnostics and must not abort an otherwise-recoverable
// capture attempt.
type Availability struct {
	Available bool
	Path      string
	Version   string
	Err       string // User-facing message when Available is false.
}

// Locator resolves the FFmpeg binary path.
type Locator struct {
	explicitPath string
	env          envProvider
	stat         fileStatter
	exec         *Executor
	goos         string
}

// LocatorOption configures a Locator.
type LocatorOption func(*Locator)

// WithExplicitPath sets a configured binary path that takes precedence
// over the environment variable and PATH search.
func WithExplicitPath(path string) LocatorOption {
	return func(l *Locator) { l.explicitPath = path }
}

// WithEnvProvider sets the environment provider implementation.
func WithEnvProvider(e envProvider) LocatorOption {
	return func(l *Locator) { l.env = e }
}

// WithFileStatter sets the file statter implementation.
func WithFileStatter(s fileStatter) LocatorOption {
	return func(l *Locator) { l.stat = s }
}

// WithExecutor sets the executor used for version probing.
func WithExecutor(e *Executor) LocatorOption {
	return func(l *Locator) { l.exec = e }
}

// WithGOOS sets the target OS (for testing install instructions).
func WithGOOS(goos string) LocatorOption {
	return func(l *Locator) { l.goos = goos }
}

// NewLocator creates a Locator with the given options.
func NewLocator(opts ...LocatorOption) *Locator {
	l := &Locator{
		env:  osEnvProvider{},
		stat: osFileStatter{},
		exec: getDefaultExecutor(),
		goos: runtime.GOOS,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Resolve finds ffmpeg using the following precedence:
//  1. Explicitly configured path (error if set but missing)
//  2. DICTATION_FFMPEG environment variable (error if set but missing)
//  3. System PATH
func (l *Locator) Resolve() (string, error) {
	if l.explicitPath != "" {
		if _, err := l.stat.Stat(l.explicitPath); err != nil {
			return "", fmt.Errorf("%w: configured path %q does not exist", ErrNotFound, l.explicitPath)
		}
		return l.explicitPath, nil
	}

	if envPath := l.env.Getenv(envFFmpegPath); envPath != "" {
		if _, err := l.stat.Stat(envPath); err != nil {
			return "", fmt.Errorf("%w: %s is set to %q but binary not found",
				ErrNotFound, envFFmpegPath, envPath)
		}
		return envPath, nil
	}

	if path, err := l.env.LookPath(binaryName); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%w: not on PATH\n\n%s", ErrNotFound, installInstructions(l.goos))
}

// CheckAvailability resolves the binary and probes its version.
// It never returns a Go error; a miss is reported through the
// Availability value so diagnostics can render it without aborting.
func (l *Locator) CheckAvailability(ctx context.Context) Availability {
	path, err := l.Resolve()
	if err != nil {
		return Availability{Available: false, Err: err.Error()}
	}

	avail := Availability{Available: true, Path: path}

	output, runErr := l.exec.RunOutput(ctx, path, []string{"-version"})
	if runErr != nil && output == "" {
		// The binary exists but cannot execute; treat as unavailable so
		// the supervisor refuses to spawn it for a real capture.
		return Availability{
			Available: false,
			Path:      path,
			Err:       fmt.Sprintf("%v: %q failed to run -version: %v", ErrNotExecutable, path, runErr),
		}
	}

	avail.Version = parseVersion(output)
	return avail
}

// parseVersion extracts the version token from an FFmpeg banner like
// "ffmpeg version 6.1.1 Copyright ..." or "ffmpeg version n6.1.1-...".
// Returns "" when the banner is unrecognizable; the caller tolerates it.
func parseVersion(output string) string {
	line, _, _ := strings.Cut(output, "\n")
	fields := strings.Fields(line)
	for i, f := range fields {
		if f == "version" && i+1 < len(fields) {
			return strings.TrimPrefix(fields[i+1], "n")
		}
	}
	return ""
}

// MajorVersion parses the leading major number out of a version token.
// Returns 0 when the token has no parseable major version.
func MajorVersion(version string) int {
	var major int
	if _, err := fmt.Sscanf(version, "%d", &major); err != nil {
		return 0
	}
	return major
}

// VersionSupported reports whether a parsed version meets the minimum.
// Unparseable versions are treated as supported; the capture attempt
// itself is the authoritative check.
func VersionSupported(version string) bool {
	major := MajorVersion(version)
	return major == 0 || major >= minMajorVersion
}

// installInstructions returns platform-specific install help.
func installInstructions(goos string) string {
	switch goos {
	case "darwin":
		return `To install FFmpeg:
  brew install ffmpeg

Or set DICTATION_FFMPEG to your ffmpeg binary.`
	case "linux":
		return `To install FFmpeg:
  Ubuntu/Debian: sudo apt install ffmpeg
  Fedora:        sudo dnf install ffmpeg
  Arch:          sudo pacman -S ffmpeg

Or set DICTATION_FFMPEG to your ffmpeg binary.`
	case "windows":
		return `To install FFmpeg:
  winget install ffmpeg

Or set DICTATION_FFMPEG to your ffmpeg.exe.`
	default:
		return `Download FFmpeg from https://ffmpeg.org/download.html
Or set DICTATION_FFMPEG to your ffmpeg binary.`
	}
}
