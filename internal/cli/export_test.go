package cli

// Export internal functions for testing.
// This file is only compiled during tests (suffix _test.go).

// DefaultRecordingFilename exports defaultRecordingFilename for testing.
var DefaultRecordingFilename = defaultRecordingFilename
