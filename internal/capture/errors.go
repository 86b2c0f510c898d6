package capture

import "errors"

// ErrAlreadyRecording is returned synchronously when Start is called
// while a session is active. Distinguishable from run-time capture
// failures so callers do not present it as transient or retryable.
var ErrAlreadyRecording = errors.New("recording already in progress")

// ErrBinaryUnavailable indicates the pre-flight check found no usable
// FFmpeg binary; nothing was spawned.
var ErrBinaryUnavailable = errors.New("ffmpeg is not available")

// ErrSpawnFailed indicates the capture process could not be started or
// died immediately after starting.
var ErrSpawnFailed = errors.New("capture process failed to start")

// ErrCaptureFailed indicates the capture process exited abnormally
// without a stop having been requested.
var ErrCaptureFailed = errors.New("capture process failed")

// ErrEmptyCapture indicates the process exited cleanly but produced a
// zero-byte output file.
var ErrEmptyCapture = errors.New("capture produced no audio data")
