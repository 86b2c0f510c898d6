package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexstich/go-dictation/internal/device"
)

// DevicesCmd creates the devices command.
// Lists available audio input devices for use with --device.
func DevicesCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List available audio input devices",
		Long: `List available audio input devices detected by FFmpeg.

Use the device ID or name with --device in the record command.
The default device is marked with *.`,
		Example: `  dictation devices
  dictation record --device "MacBook Pro Microphone"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListDevices(cmd.Context(), env)
		},
	}
}

// runListDevices enumerates and prints audio input devices.
func runListDevices(ctx context.Context, env *Env) error {
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
	}

	detector := env.DetectorFactory.NewDetector(cfg.FFmpegPath)
	devices := detector.Detect(ctx)

	if len(devices) == 1 && devices[0].Name == device.FallbackDeviceName {
		fmt.Fprintln(env.Stderr, "No devices detected; showing the platform default.")
	}

	for _, d := range devices {
		marker := " "
		if d.IsDefault {
			marker = "*"
		}
		fmt.Fprintf(env.Stdout, "%s %s\t%s\n", marker, d.ID, d.Name)
	}
	return nil
}
