package ffmpeg

// Export internal functions for testing.
// This file is only compiled during tests (suffix _test.go).

// EnvProvider exports envProvider interface for testing.
type EnvProvider = envProvider

// FileStatter exports fileStatter interface for testing.
type FileStatter = fileStatter

// ParseVersion exports parseVersion for testing.
var ParseVersion = parseVersion

// InstallInstructions exports installInstructions for testing.
var InstallInstructions = installInstructions
