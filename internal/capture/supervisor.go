// Package capture owns the lifecycle of the FFmpeg capture subprocess:
// spawning, duration and silence stop policies, graceful termination,
// and materializing the captured bytes from the temporary output file.
package capture

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexstich/go-dictation/internal/device"
	"github.com/alexstich/go-dictation/internal/diagnostics"
)

// State is the supervisor's lifecycle phase. At most one session exists
// per supervisor; every public entry point checks the state before
// acting, so a double start or a timer racing an explicit stop resolves
// to a first-one-wins transition and a no-op for the loser. A failed
// attempt reports through OnError and lands back in idle; there is no
// resting failed state.
type State string

const (
	StateIdle      State = "idle"
	StateStarting  State = "starting"
	StateRecording State = "recording"
	StateStopping  State = "stopping"
)

// stopReason records what ended a session, for logging.
type stopReason string

const (
	reasonManual      stopReason = "manual"
	reasonMaxDuration stopReason = "max-duration"
	reasonSilence     stopReason = "silence"
	reasonCanceled    stopReason = "canceled"
)

// Events are the public notifications of one capture session. Each
// fires at most once per session; nil callbacks are skipped. Exactly
// one of OnRecordingStart/OnError fires per Start attempt, and exactly
// one of OnRecordingStop/OnError per started session.
type Events struct {
	OnRecordingStart func()
	OnRecordingStop  func(data []byte)
	OnError          func(err error)
}

// preflightRunner produces the pre-capture diagnostics report.
type preflightRunner interface {
	Run(ctx context.Context) diagnostics.Report
}

// Default supervision timings.
const (
	// defaultStartGrace is the window after spawn in which an exit is
	// treated as a spawn failure rather than a capture.
	defaultStartGrace = 200 * time.Millisecond

	// defaultStopGrace is how long a graceful quit may take before the
	// process is killed. FFmpeg needs a moment to finalize the container.
	defaultStopGrace = 5 * time.Second
)

// maxStderrTail bounds the retained diagnostic lines used in error text.
const maxStderrTail = 40

// Supervisor manages one capture subprocess at a time.
type Supervisor struct {
	mu      sync.Mutex
	state   State
	session *session

	// sessDone is closed when the active Start call unwinds; Stop waits
	// on it. pendingStop records a stop requested while the process was
	// still inside the confirmation window.
	sessDone      chan struct{}
	pendingStop   bool
	pendingReason stopReason

	diag   preflightRunner
	runner processRunner
	events Events
	logger zerolog.Logger

	startGrace time.Duration
	stopGrace  time.Duration
}

// session is the per-capture state, owned exclusively by the supervisor.
// Mutable fields are guarded by the supervisor mutex.
type session struct {
	opts      Options
	tempPath  string
	startedAt time.Time
	proc      runningProcess
	tail      *tailBuffer

	maxTimer      *time.Timer
	killTimer     *time.Timer
	stopRequested bool
	reason        stopReason
	finalized     bool
}

// SupervisorOption configures a Supervisor.
type SupervisorOption func(*Supervisor)

// WithProcessRunner sets the subprocess runner (for testing).
func WithProcessRunner(r processRunner) SupervisorOption {
	return func(s *Supervisor) { s.runner = r }
}

// WithEvents sets the session event callbacks.
func WithEvents(e Events) SupervisorOption {
	return func(s *Supervisor) { s.events = e }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) SupervisorOption {
	return func(s *Supervisor) { s.logger = l }
}

// WithStartGrace sets the spawn confirmation window.
func WithStartGrace(d time.Duration) SupervisorOption {
	return func(s *Supervisor) { s.startGrace = d }
}

// WithStopGrace sets the graceful-quit to kill escalation period.
func WithStopGrace(d time.Duration) SupervisorOption {
	return func(s *Supervisor) { s.stopGrace = d }
}

// NewSupervisor creates a Supervisor using the given pre-flight runner.
func NewSupervisor(diag preflightRunner, opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		state:      StateIdle,
		diag:       diag,
		runner:     osProcessRunner{},
		logger:     zerolog.Nop(),
		startGrace: defaultStartGrace,
		stopGrace:  defaultStopGrace,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle phase.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start records one capture session and returns the captured bytes.
// It blocks until the session reaches a terminal condition: an explicit
// Stop, the max-duration or silence policy firing, context cancellation,
// or a process failure. A second Start while a session is active fails
// fast with ErrAlreadyRecording and emits no events.
func (s *Supervisor) Start(ctx context.Context, opts Options) ([]byte, error) {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return nil, ErrAlreadyRecording
	}
	s.state = StateStarting
	s.pendingStop = false
	done := make(chan struct{})
	s.sessDone = done
	s.mu.Unlock()

	data, err := s.run(ctx, opts.withDefaults())

	s.mu.Lock()
	s.state = StateIdle
	s.session = nil
	s.sessDone = nil
	s.mu.Unlock()
	close(done)

	return data, err
}

// Stop ends the active session gracefully and waits for it to finish.
// A stop during the confirmation window is honored as soon as the
// process is confirmed. Idempotent: calling it while idle is a no-op.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	sess := s.session
	done := s.sessDone
	switch s.state {
	case StateRecording:
		s.mu.Unlock()
		s.beginStop(sess, reasonManual)
	case StateStarting:
		s.pendingStop = true
		s.pendingReason = reasonManual
		s.mu.Unlock()
	case StateStopping:
		s.mu.Unlock()
	default:
		s.mu.Unlock()
		return
	}
	<-done
}

// run executes one session from pre-flight through finalization.
func (s *Supervisor) run(ctx context.Context, opts Options) ([]byte, error) {
	report := s.diag.Run(ctx)
	if !report.Binary.Available {
		return nil, s.fail(fmt.Errorf("%w: %s", ErrBinaryUnavailable, report.Binary.Err))
	}

	ffmpegPath := opts.FFmpegPath
	if ffmpegPath == "" {
		ffmpegPath = report.Binary.Path
	}

	deviceID := s.resolveDevice(report, opts.Device)

	tmp, err := os.CreateTemp("", "dictation-*.wav")
	if err != nil {
		return nil, s.fail(fmt.Errorf("create temp output: %w", err))
	}
	tempPath := tmp.Name()
	// FFmpeg rewrites the file itself; -y overwrites the placeholder.
	_ = tmp.Close()

	sess := &session{
		opts:      opts,
		tempPath:  tempPath,
		startedAt: time.Now(),
		tail:      newTailBuffer(maxStderrTail),
	}

	args := buildCaptureArgs(report.Commands, deviceID, opts, tempPath)
	s.logger.Debug().Str("ffmpeg", ffmpegPath).Strs("args", args).Msg("spawning capture process")

	proc, err := s.runner.Start(ffmpegPath, args, func(line string) {
		s.onDiagnosticLine(sess, line)
	})
	if err != nil {
		s.removeTemp(tempPath)
		return nil, s.fail(fmt.Errorf("%w: %v", ErrSpawnFailed, err))
	}

	s.mu.Lock()
	sess.proc = proc
	s.session = sess
	s.mu.Unlock()

	// Confirmation window: an exit this early is a bad device, a denied
	// permission, or a broken binary, not a recording. Cancellation here
	// is a stop request; the session is confirmed and stopped gracefully
	// so the bytes written so far survive.
	select {
	case exitErr := <-proc.Done():
		s.removeTemp(tempPath)
		return nil, s.fail(spawnExitError(exitErr, sess.tail))
	case <-ctx.Done():
		s.mu.Lock()
		s.pendingStop = true
		s.pendingReason = reasonCanceled
		s.mu.Unlock()
	case <-time.After(s.startGrace):
	}

	s.mu.Lock()
	s.state = StateRecording
	pendingStop := s.pendingStop
	pendingReason := s.pendingReason
	sess.maxTimer = time.AfterFunc(opts.MaxDuration, func() {
		s.beginStop(sess, reasonMaxDuration)
	})
	s.mu.Unlock()

	s.logger.Info().Str("device", deviceID).Dur("max_duration", opts.MaxDuration).
		Bool("silence_detection", opts.SilenceDetection).Msg("recording started")
	s.emitStart()

	if pendingStop {
		s.beginStop(sess, pendingReason)
	}

	var exitErr error
	select {
	case exitErr = <-proc.Done():
	case <-ctx.Done():
		s.beginStop(sess, reasonCanceled)
		exitErr = <-proc.Done()
	}

	return s.finalize(sess, exitErr)
}

// beginStop performs the recording → stopping transition. The first
// caller to observe the recording state wins; timer callbacks, silence
// events, and explicit stops that lose the race are no-ops. Timers are
// cleared inside the same critical section so no second trigger fires.
func (s *Supervisor) beginStop(sess *session, reason stopReason) {
	s.mu.Lock()
	if s.session != sess || s.state != StateRecording {
		s.mu.Unlock()
		return
	}
	s.state = StateStopping
	sess.stopRequested = true
	sess.reason = reason
	if sess.maxTimer != nil {
		sess.maxTimer.Stop()
	}
	s.mu.Unlock()

	s.logger.Info().Str("reason", string(reason)).Msg("stopping capture")

	if err := sess.proc.Quit(); err != nil {
		s.logger.Warn().Err(err).Msg("graceful quit failed, killing process")
		_ = sess.proc.Kill()
		return
	}

	s.mu.Lock()
	if !sess.finalized {
		sess.killTimer = time.AfterFunc(s.stopGrace, func() {
			s.mu.Lock()
			stillRunning := !sess.finalized
			s.mu.Unlock()
			if stillRunning {
				s.logger.Warn().Dur("grace", s.stopGrace).Msg("capture process ignored quit, killing")
				_ = sess.proc.Kill()
			}
		})
	}
	s.mu.Unlock()
}

// finalize turns the process exit into a result: captured bytes on
// success, a classified error otherwise. The temp file is removed on
// every path.
func (s *Supervisor) finalize(sess *session, exitErr error) ([]byte, error) {
	s.mu.Lock()
	sess.finalized = true
	if sess.maxTimer != nil {
		sess.maxTimer.Stop()
	}
	if sess.killTimer != nil {
		sess.killTimer.Stop()
	}
	stopRequested := sess.stopRequested
	s.state = StateStopping
	s.mu.Unlock()

	// A requested stop often exits non-zero (interrupted stream); the
	// output file is the arbiter then. An unrequested non-zero exit is
	// a hard failure.
	if exitErr != nil && !stopRequested {
		s.removeTemp(sess.tempPath)
		return nil, s.fail(fmt.Errorf("%w: %v\n%s", ErrCaptureFailed, exitErr, sess.tail.String()))
	}

	data, err := os.ReadFile(sess.tempPath)
	s.removeTemp(sess.tempPath)
	if err != nil {
		return nil, s.fail(fmt.Errorf("%w: reading output: %v", ErrCaptureFailed, err))
	}
	if len(data) == 0 {
		return nil, s.fail(fmt.Errorf("%w\n%s", ErrEmptyCapture, sess.tail.String()))
	}

	s.logger.Info().Int("bytes", len(data)).
		Dur("duration", time.Since(sess.startedAt)).
		Str("reason", string(sess.reason)).Msg("recording finished")
	s.emitStop(data)
	return data, nil
}

// onDiagnosticLine watches the capture process's stderr. A
// silencedetect silence_start event means the configured span of
// continuous silence has already elapsed, so it triggers the stop.
func (s *Supervisor) onDiagnosticLine(sess *session, line string) {
	sess.tail.add(line)
	if sess.opts.SilenceDetection && strings.Contains(line, "silence_start") {
		s.beginStop(sess, reasonSilence)
	}
}

// resolveDevice maps the requested device selector onto an enumerated
// device ID. Auto selects the default; an unmatched explicit value logs
// a warning and falls back to the default rather than failing.
func (s *Supervisor) resolveDevice(report diagnostics.Report, requested string) string {
	if requested != DeviceAuto && requested != "" {
		if d, ok := device.Match(report.Devices, requested); ok {
			return report.Commands.FormatDeviceID(d.ID)
		}
		s.logger.Warn().Str("device", requested).
			Msg("requested device not found, falling back to default")
	}

	if len(report.Devices) == 0 {
		return report.Commands.FormatDeviceID(report.Commands.DefaultDeviceID)
	}
	return report.Commands.FormatDeviceID(device.Default(report.Devices).ID)
}

// fail logs and emits the session error. Every failing path funnels
// through here so OnError fires exactly once per attempt.
func (s *Supervisor) fail(err error) error {
	s.logger.Error().Err(err).Msg("capture failed")
	if s.events.OnError != nil {
		s.events.OnError(err)
	}
	return err
}

func (s *Supervisor) emitStart() {
	if s.events.OnRecordingStart != nil {
		s.events.OnRecordingStart()
	}
}

func (s *Supervisor) emitStop(data []byte) {
	if s.events.OnRecordingStop != nil {
		s.events.OnRecordingStop(data)
	}
}

// removeTemp deletes the session's temporary file. Cleanup failures are
// swallowed deliberately: they must never mask the primary error, and a
// missing file means there is nothing left to clean.
func (s *Supervisor) removeTemp(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn().Err(err).Str("path", path).Msg("temp file cleanup failed")
	}
}

// spawnExitError shapes an immediate-exit failure message.
func spawnExitError(exitErr error, tail *tailBuffer) error {
	if exitErr == nil {
		return fmt.Errorf("%w: process exited immediately\n%s", ErrSpawnFailed, tail.String())
	}
	return fmt.Errorf("%w: %v\n%s", ErrSpawnFailed, exitErr, tail.String())
}

// tailBuffer retains the last N diagnostic lines for error reporting.
type tailBuffer struct {
	mu    sync.Mutex
	lines []string
	max   int
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (t *tailBuffer) add(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > t.max {
		t.lines = t.lines[len(t.lines)-t.max:]
	}
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.lines, "\n")
}
