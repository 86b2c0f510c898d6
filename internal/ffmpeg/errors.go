package ffmpeg

import "errors"

// ErrNotFound indicates the FFmpeg binary could not be located.
var ErrNotFound = errors.New("ffmpeg not found")

// ErrNotExecutable indicates a configured FFmpeg path exists but cannot run.
var ErrNotExecutable = errors.New("ffmpeg binary is not executable")
