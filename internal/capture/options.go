package capture

import (
	"fmt"
	"strconv"
	"time"

	"github.com/alexstich/go-dictation/internal/platform"
)

// DeviceAuto selects the platform's default input device.
const DeviceAuto = "auto"

// Recording defaults. Voice capture wants small mono PCM at 16kHz; the
// transcription consumers downstream expect nothing fancier.
const (
	DefaultSampleRate         = 16000
	DefaultChannels           = 1
	DefaultCodec              = "pcm_s16le"
	DefaultMaxDuration        = 5 * time.Minute
	DefaultSilenceDuration    = 2 * time.Second
	DefaultSilenceThresholdDB = -30
)

// Options configures one capture session. All fields are optional; the
// supervisor applies defaults. Options are copied at Start time, so
// mutating a shared Options value after a session has started does not
// affect that session.
type Options struct {
	// SampleRate in Hz.
	SampleRate int

	// Channels is the channel count.
	Channels int

	// Codec is the FFmpeg audio codec name for the output file.
	Codec string

	// Device selects the input device: "auto" (or empty) for the
	// platform default, otherwise a device ID or name from enumeration.
	Device string

	// FFmpegPath overrides the located capture binary.
	FFmpegPath string

	// MaxDuration is the hard cap after which the capture is stopped.
	MaxDuration time.Duration

	// SilenceDetection enables the silence-based auto-stop policy.
	SilenceDetection bool

	// SilenceDuration is the span of continuous sub-threshold signal
	// that triggers an auto-stop.
	SilenceDuration time.Duration

	// SilenceThresholdDB is the amplitude threshold in dBFS. Values are
	// negative; a positive value is treated as its negation.
	SilenceThresholdDB int
}

// withDefaults fills unset fields.
func (o Options) withDefaults() Options {
	if o.SampleRate <= 0 {
		o.SampleRate = DefaultSampleRate
	}
	if o.Channels <= 0 {
		o.Channels = DefaultChannels
	}
	if o.Codec == "" {
		o.Codec = DefaultCodec
	}
	if o.Device == "" {
		o.Device = DeviceAuto
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = DefaultMaxDuration
	}
	if o.SilenceDuration <= 0 {
		o.SilenceDuration = DefaultSilenceDuration
	}
	if o.SilenceThresholdDB == 0 {
		o.SilenceThresholdDB = DefaultSilenceThresholdDB
	}
	if o.SilenceThresholdDB > 0 {
		o.SilenceThresholdDB = -o.SilenceThresholdDB
	}
	return o
}

// buildCaptureArgs constructs the FFmpeg argument vector for one
// session: input format and device, encoding parameters, the optional
// silencedetect filter, and the overwrite flag ahead of the output path.
func buildCaptureArgs(cmds platform.Commands, deviceID string, opts Options, outputPath string) []string {
	args := []string{
		"-f", cmds.AudioInputFlag,
		"-i", deviceID,
		"-ar", strconv.Itoa(opts.SampleRate),
		"-ac", strconv.Itoa(opts.Channels),
		"-acodec", opts.Codec,
	}
	if opts.SilenceDetection {
		args = append(args, "-af", silenceFilter(opts))
	}
	return append(args, "-y", outputPath)
}

// silenceFilter renders the silencedetect filter expression. The filter owns
// the rolling window: it reports silence_start only after the signal
// has stayed under the threshold for the full duration, and activity
// above threshold restarts its measurement.
func silenceFilter(opts Options) string {
	return fmt.Sprintf("silencedetect=noise=%ddB:d=%s",
		opts.SilenceThresholdDB,
		strconv.FormatFloat(opts.SilenceDuration.Seconds(), 'f', -1, 64))
}
