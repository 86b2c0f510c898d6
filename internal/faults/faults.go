// Package faults classifies capture failures into user-facing kinds and
// provides the retry policy callers wrap around recording attempts. The
// supervisor never retries on its own; classification decides which
// failures are worth another attempt and which message the user sees.
//
// Callers check retryability with faults.RetryableError(err) or classify
// explicitly with faults.Classify(err).
package faults

import (
	"context"
	"errors"
	"strings"

	"github.com/alexstich/go-dictation/internal/capture"
	"github.com/alexstich/go-dictation/internal/ffmpeg"
)

// Kind buckets a raw failure for retryability and messaging.
type Kind string

const (
	// KindMicAccess is a busy, vanished, or unreadable input device.
	KindMicAccess Kind = "mic-access"

	// KindPermission is a denied OS-level capture permission.
	KindPermission Kind = "permission"

	// KindCompatibility is an unsupported format, codec, or platform.
	KindCompatibility Kind = "compatibility"

	// KindNetwork is a transport failure reaching a remote collaborator.
	KindNetwork Kind = "network"

	// KindTranscription is a failure reported by the transcription layer.
	KindTranscription Kind = "transcription"

	// KindConfiguration is a bad setting, missing binary, or misuse.
	KindConfiguration Kind = "configuration"

	// KindUnknown is everything the classifier cannot place.
	KindUnknown Kind = "unknown"
)

// Classify maps an error onto a Kind. Sentinels are matched first, then
// message heuristics catch FFmpeg stderr text carried inside the error.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	switch {
	case errors.Is(err, capture.ErrAlreadyRecording),
		errors.Is(err, capture.ErrBinaryUnavailable),
		errors.Is(err, ffmpeg.ErrNotFound),
		errors.Is(err, ffmpeg.ErrNotExecutable):
		return KindConfiguration

	case errors.Is(err, capture.ErrSpawnFailed),
		errors.Is(err, capture.ErrCaptureFailed),
		errors.Is(err, capture.ErrEmptyCapture):
		// Usually a busy or vanished input device, but the attached
		// stderr tail can name a more specific cause.
		if k := classifyMessage(err.Error()); k != KindUnknown {
			return k
		}
		return KindMicAccess

	case errors.Is(err, context.DeadlineExceeded):
		return KindNetwork
	}

	return classifyMessage(err.Error())
}

// classifyMessage applies keyword heuristics to a failure message.
// Permission markers are checked before device markers because denied
// device opens mention the device too.
func classifyMessage(msg string) Kind {
	m := strings.ToLower(msg)

	switch {
	case containsAny(m,
		"permission denied",
		"operation not permitted",
		"access denied",
		"not authorized",
		"access to the camera or microphone"):
		return KindPermission

	case containsAny(m,
		"microphone",
		"audio device",
		"no such device",
		"device or resource busy",
		"input/output error",
		"cannot open audio"):
		return KindMicAccess

	case containsAny(m,
		"unsupported",
		"unknown encoder",
		"unknown decoder",
		"invalid sample",
		"incompatible"):
		return KindCompatibility

	case containsAny(m,
		"connection refused",
		"connection reset",
		"no such host",
		"network is unreachable",
		"timed out",
		"timeout"):
		return KindNetwork

	case containsAny(m, "transcription", "transcribe"):
		return KindTranscription

	case containsAny(m,
		"configuration",
		"invalid option",
		"unrecognized option",
		"api key"):
		return KindConfiguration
	}

	return KindUnknown
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// Retryable reports whether another attempt can plausibly succeed for
// errors of this kind. Device hiccups and transport failures clear up on
// their own; permissions, configuration, and compatibility do not.
func Retryable(k Kind) bool {
	return k == KindMicAccess || k == KindNetwork
}

// RetryableError is the shouldRetry predicate for RetryWithBackoff.
func RetryableError(err error) bool {
	return Retryable(Classify(err))
}
