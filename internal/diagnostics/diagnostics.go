// Package diagnostics runs the pre-flight environment check: capture
// binary availability, input-device enumeration, and the platform
// command mapping, consolidated into one report.
package diagnostics

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/alexstich/go-dictation/internal/device"
	"github.com/alexstich/go-dictation/internal/ffmpeg"
	"github.com/alexstich/go-dictation/internal/platform"
)

// Report is the consolidated pre-flight check. Transient, recomputed on
// demand, never persisted.
type Report struct {
	Commands platform.Commands
	Binary   ffmpeg.Availability
	Devices  []device.AudioDevice
	Errors   []string
	Warnings []string
}

// OK returns true when no errors were found. Warnings do not block a
// capture attempt.
func (r Report) OK() bool {
	return len(r.Errors) == 0
}

// String renders the report as user-facing text.
func (r Report) String() string {
	var b strings.Builder

	status := "FAIL"
	detail := r.Binary.Err
	if r.Binary.Available {
		status = "OK"
		detail = r.Binary.Path
		if r.Binary.Version != "" {
			detail += " (version " + r.Binary.Version + ")"
		}
	}
	fmt.Fprintf(&b, "[%s] ffmpeg: %s\n", status, detail)

	fmt.Fprintf(&b, "[OK] platform: %s (-f %s, default device %s)\n",
		r.Commands.OS, r.Commands.AudioInputFlag, r.Commands.DefaultDeviceID)

	for _, d := range r.Devices {
		marker := " "
		if d.IsDefault {
			marker = "*"
		}
		fmt.Fprintf(&b, " %s %s\t%s\n", marker, d.ID, d.Name)
	}

	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "warning: %s\n", w)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "error: %s\n", e)
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// availabilityChecker probes the capture binary.
type availabilityChecker interface {
	CheckAvailability(ctx context.Context) ffmpeg.Availability
}

// deviceDetector enumerates audio input devices.
type deviceDetector interface {
	Detect(ctx context.Context) []device.AudioDevice
}

// Runner aggregates the individual probes.
type Runner struct {
	checker  availabilityChecker
	detector deviceDetector
	commands platform.Commands
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithCommands overrides the platform command mapping (for testing).
func WithCommands(c platform.Commands) RunnerOption {
	return func(r *Runner) { r.commands = c }
}

// NewRunner creates a diagnostics Runner from the binary checker and
// device detector probes.
func NewRunner(checker availabilityChecker, detector deviceDetector, opts ...RunnerOption) *Runner {
	r := &Runner{
		checker:  checker,
		detector: detector,
		commands: platform.Resolve(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the probes and merges their results.
// The binary check and device enumeration are independent and run
// concurrently. Run never fails; total subsystem failure still yields a
// complete report with the problems recorded in Errors and Warnings.
func (r *Runner) Run(ctx context.Context) Report {
	report := Report{Commands: r.commands}

	var g errgroup.Group
	g.Go(func() error {
		report.Binary = r.checker.CheckAvailability(ctx)
		return nil
	})
	g.Go(func() error {
		report.Devices = r.detector.Detect(ctx)
		return nil
	})
	// Probes report through their result values, never through errors.
	_ = g.Wait()

	if !report.Binary.Available {
		report.Errors = append(report.Errors, report.Binary.Err)
	}

	if r.commands.Fallback {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("no dedicated capture mapping for %s, using the PulseAudio defaults", r.commands.OS))
	}

	if syntheticOnly(report.Devices) {
		report.Warnings = append(report.Warnings,
			"no input devices detected; capture will try the platform default device")
	}

	return report
}

// syntheticOnly reports whether the device list is just the enumerator's
// fallback entry, meaning nothing was actually detected.
func syntheticOnly(devices []device.AudioDevice) bool {
	return len(devices) == 1 && devices[0].Name == device.FallbackDeviceName
}
