package capture

// Export internal functions for testing.
// This file is only compiled during tests (suffix _test.go).

// ProcessRunner exports processRunner interface for testing.
type ProcessRunner = processRunner

// RunningProcess exports runningProcess interface for testing.
type RunningProcess = runningProcess

// BuildCaptureArgs exports buildCaptureArgs for testing.
var BuildCaptureArgs = buildCaptureArgs

// SilenceFilter exports silenceFilter for testing.
var SilenceFilter = silenceFilter

// WithDefaults exports Options.withDefaults for testing.
func WithDefaults(o Options) Options { return o.withDefaults() }

// ScanDiagnosticLines exports scanDiagnosticLines for testing.
var ScanDiagnosticLines = scanDiagnosticLines
