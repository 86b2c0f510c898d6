package cli_test

// Shared fakes for CLI command tests. Every factory records what it was
// asked to build so tests can assert on the wiring, not just the output.

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexstich/go-dictation/internal/capture"
	"github.com/alexstich/go-dictation/internal/cli"
	"github.com/alexstich/go-dictation/internal/config"
	"github.com/alexstich/go-dictation/internal/device"
	"github.com/alexstich/go-dictation/internal/diagnostics"
	"github.com/alexstich/go-dictation/internal/ffmpeg"
	"github.com/alexstich/go-dictation/internal/interrupt"
	"github.com/alexstich/go-dictation/internal/platform"
)

// fakeConfigLoader returns a fixed config.
type fakeConfigLoader struct {
	cfg config.Config
	err error
}

func (f fakeConfigLoader) Load() (config.Config, error) { return f.cfg, f.err }

// fakeDiagnoser returns a fixed report.
type fakeDiagnoser struct {
	report diagnostics.Report
}

func (f fakeDiagnoser) Run(context.Context) diagnostics.Report { return f.report }

// fakeDiagFactory records the FFmpeg paths it was asked about.
type fakeDiagFactory struct {
	mu     sync.Mutex
	report diagnostics.Report
	paths  []string
}

func (f *fakeDiagFactory) NewDiagnoser(ffmpegPath string) cli.Diagnoser {
	f.mu.Lock()
	f.paths = append(f.paths, ffmpegPath)
	f.mu.Unlock()
	return fakeDiagnoser{report: f.report}
}

func (f *fakeDiagFactory) requestedPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

// fakeDetector returns a fixed device list.
type fakeDetector struct {
	devices []device.AudioDevice
}

func (f fakeDetector) Detect(context.Context) []device.AudioDevice { return f.devices }

// fakeDetectorFactory records the FFmpeg paths it was asked about.
type fakeDetectorFactory struct {
	devices []device.AudioDevice
	paths   []string
}

func (f *fakeDetectorFactory) NewDetector(ffmpegPath string) cli.DeviceDetector {
	f.paths = append(f.paths, ffmpegPath)
	return fakeDetector{devices: f.devices}
}

// fakeRecorder scripts successive Start results: each entry in errs is
// consumed by one call; once exhausted, Start succeeds with data.
type fakeRecorder struct {
	mu     sync.Mutex
	data   []byte
	errs   []error
	block  bool // wait for ctx cancellation before returning data
	starts int
	opts   []capture.Options
	events capture.Events
	stops  int
}

func (r *fakeRecorder) Start(ctx context.Context, opts capture.Options) ([]byte, error) {
	r.mu.Lock()
	r.starts++
	r.opts = append(r.opts, opts)
	var err error
	if len(r.errs) > 0 {
		err = r.errs[0]
		r.errs = r.errs[1:]
	}
	events := r.events
	block := r.block
	r.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if events.OnRecordingStart != nil {
		events.OnRecordingStart()
	}
	if block {
		<-ctx.Done()
		// Let the signal listener process a possible second Ctrl+C
		// before the command inspects the handler.
		time.Sleep(50 * time.Millisecond)
	}
	return r.data, nil
}

func (r *fakeRecorder) Stop() {
	r.mu.Lock()
	r.stops++
	r.mu.Unlock()
}

func (r *fakeRecorder) startCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.starts
}

func (r *fakeRecorder) recordedOpts() []capture.Options {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]capture.Options(nil), r.opts...)
}

// fakeRecorderFactory hands out one recorder and wires events into it.
type fakeRecorderFactory struct {
	rec *fakeRecorder
}

func (f *fakeRecorderFactory) NewRecorder(diag cli.Diagnoser, events capture.Events, logger zerolog.Logger) cli.Recorder {
	f.rec.mu.Lock()
	f.rec.events = events
	f.rec.mu.Unlock()
	return f.rec
}

// healthyReport is a passing diagnostics report for command tests.
func healthyReport() diagnostics.Report {
	return diagnostics.Report{
		Commands: platform.Commands{OS: "darwin", AudioInputFlag: "avfoundation", DefaultDeviceID: ":0"},
		Binary:   ffmpeg.Availability{Available: true, Path: "/usr/bin/ffmpeg", Version: "6.1.1"},
		Devices: []device.AudioDevice{
			{ID: ":0", Name: "MacBook Pro Microphone", IsDefault: true},
			{ID: ":1", Name: "External USB Microphone"},
		},
	}
}

// quietInterruptFactory builds watchers with no signal listener.
func quietInterruptFactory(ctx context.Context) (*interrupt.Watcher, context.Context) {
	return interrupt.WatchWithOptions(ctx, interrupt.Options{})
}

// newTestEnv builds an Env wired to buffers and fakes. Additional
// options override the test defaults.
func newTestEnv(t *testing.T, opts ...cli.EnvOption) (*cli.Env, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	base := []cli.EnvOption{
		cli.WithStdout(&stdout),
		cli.WithStderr(&stderr),
		cli.WithGetenv(func(string) string { return "" }),
		cli.WithNow(func() time.Time { return time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC) }),
		cli.WithConfigLoader(fakeConfigLoader{}),
		cli.WithDiagnosticsFactory(&fakeDiagFactory{report: healthyReport()}),
		cli.WithInterruptFactory(quietInterruptFactory),
	}
	env := cli.NewEnv(append(base, opts...)...)
	return env, &stdout, &stderr
}
