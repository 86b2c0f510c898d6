package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// DiagnoseCmd creates the diagnose command.
// Runs the pre-flight environment check and renders the report.
func DiagnoseCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "diagnose",
		Short: "Check the capture environment",
		Long: `Check the capture environment: FFmpeg availability and version,
the platform capture mapping, and the detected input devices.

Exits non-zero when a problem would prevent recording.`,
		Example: `  dictation diagnose`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagnose(cmd.Context(), env)
		},
	}
}

// runDiagnose prints the diagnostics report and fails on errors.
func runDiagnose(ctx context.Context, env *Env) error {
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
	}

	report := env.DiagnosticsFactory.NewDiagnoser(cfg.FFmpegPath).Run(ctx)
	fmt.Fprintln(env.Stdout, report.String())

	if !report.OK() {
		return ErrDiagnosticsFailed
	}
	return nil
}
