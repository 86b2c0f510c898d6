package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexstich/go-dictation/internal/capture"
	"github.com/alexstich/go-dictation/internal/config"
	"github.com/alexstich/go-dictation/internal/faults"
	"github.com/alexstich/go-dictation/internal/format"
	"github.com/alexstich/go-dictation/internal/interrupt"
)

// recordOptions holds the validated options for the record command.
type recordOptions struct {
	capture capture.Options
	output  string
}

// RecordCmd creates the record command.
// The env parameter provides injectable dependencies for testing.
func RecordCmd(env *Env) *cobra.Command {
	var (
		deviceID         string
		maxDurationStr   string
		silence          bool
		silenceDurStr    string
		silenceThreshold int
		output           string
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record microphone audio to a WAV file",
		Long: `Record microphone audio to a 16 kHz mono PCM WAV file.

Recording stops at the max duration, on detected silence (--silence),
or on Ctrl+C. A single Ctrl+C keeps the audio captured so far; pressing
it twice within two seconds discards the recording.

Flags override the corresponding config keys; unset values fall back to
configuration and then to the built-in defaults.`,
		Example: `  dictation record -o note.wav
  dictation record --device "External USB Microphone" --max-duration 2m
  dictation record --silence --silence-duration 3s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.ConfigLoader.Load()
			if err != nil {
				fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
			}
			opts := cfg.CaptureOptions()

			if cmd.Flags().Changed("device") {
				opts.Device = deviceID
			}
			if cmd.Flags().Changed("max-duration") {
				d, err := time.ParseDuration(maxDurationStr)
				if err != nil || d <= 0 {
					return fmt.Errorf("invalid max-duration %q: %w (use format like 30s, 2m)", maxDurationStr, ErrInvalidDuration)
				}
				opts.MaxDuration = d
			}
			if cmd.Flags().Changed("silence") {
				opts.SilenceDetection = silence
			}
			if cmd.Flags().Changed("silence-duration") {
				d, err := time.ParseDuration(silenceDurStr)
				if err != nil || d <= 0 {
					return fmt.Errorf("invalid silence-duration %q: %w", silenceDurStr, ErrInvalidDuration)
				}
				opts.SilenceDetection = true
				opts.SilenceDuration = d
			}
			if cmd.Flags().Changed("silence-threshold") {
				opts.SilenceDetection = true
				opts.SilenceThresholdDB = silenceThreshold
			}

			return runRecord(cmd.Context(), env, recordOptions{capture: opts, output: output})
		},
	}

	// Flags.
	cmd.Flags().StringVar(&deviceID, "device", "", "Audio input device ID or name (default: system default)")
	cmd.Flags().StringVar(&maxDurationStr, "max-duration", "", "Stop after this duration (e.g., 30s, 2m; default 5m)")
	cmd.Flags().BoolVar(&silence, "silence", false, "Stop automatically after a span of silence")
	cmd.Flags().StringVar(&silenceDurStr, "silence-duration", "", "Silence span that triggers the stop (default 2s)")
	cmd.Flags().IntVar(&silenceThreshold, "silence-threshold", 0, "Silence threshold in dB (default -30)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output WAV path (default: dictation_<timestamp>.wav)")

	return cmd
}

// runRecord executes one recording with the given options.
func runRecord(ctx context.Context, env *Env, opts recordOptions) error {
	output := opts.output
	if output == "" {
		output = defaultRecordingFilename(env.Now)
	}
	output = config.ExpandPath(output)

	if _, err := os.Stat(output); err == nil {
		return fmt.Errorf("%w: %s", ErrOutputExists, output)
	}

	// First Ctrl+C cancels hctx, which stops the capture gracefully and
	// keeps the bytes. A second one within the window discards the take.
	w, hctx := env.InterruptFactory(ctx)
	defer w.Close()

	diag := env.DiagnosticsFactory.NewDiagnoser(opts.capture.FFmpegPath)
	events := capture.Events{
		OnRecordingStart: func() {
			fmt.Fprintln(env.Stderr, "Recording... (press Ctrl+C to stop)")
		},
	}
	rec := env.RecorderFactory.NewRecorder(diag, events, env.Logger)

	started := env.Now()
	data, err := faults.RetryWithBackoff(hctx, faults.DefaultRetryConfig(),
		func() ([]byte, error) { return rec.Start(hctx, opts.capture) },
		faults.RetryableError,
	)
	if err != nil {
		return fmt.Errorf("recording failed (%s): %w", faults.Classify(err), err)
	}
	elapsed := env.Now().Sub(started)

	if w.Interrupted() {
		if w.Decide("Stopping. Press Ctrl+C again to discard the recording...") == interrupt.Discard {
			fmt.Fprintln(env.Stderr, "Recording discarded.")
			return nil
		}
	}

	if err := os.WriteFile(output, data, 0o600); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	fmt.Fprintf(env.Stderr, "Recording complete: %s (%s, %s)\n",
		output, format.Size(int64(len(data))), format.Duration(elapsed))
	return nil
}

// defaultRecordingFilename generates a default output filename with timestamp.
// Format: dictation_20260823_143052.wav
func defaultRecordingFilename(now func() time.Time) string {
	return fmt.Sprintf("dictation_%s.wav", now().Format("20060102_150405"))
}
