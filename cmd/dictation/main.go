package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alexstich/go-dictation/internal/capture"
	"github.com/alexstich/go-dictation/internal/cli"
	"github.com/alexstich/go-dictation/internal/ffmpeg"
	"github.com/alexstich/go-dictation/internal/logging"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitUsage      = 2
	ExitSetup      = 3
	ExitValidation = 4
	ExitCapture    = 5
	ExitInterrupt  = 130
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// Context with signal cancellation.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Create the CLI environment with production defaults.
	env := cli.NewEnv(cli.WithLogger(logging.New()))

	// Root command.
	rootCmd := &cobra.Command{
		Use:     "dictation",
		Short:   "Capture microphone audio for voice dictation",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Subcommands.
	rootCmd.AddCommand(cli.RecordCmd(env))
	rootCmd.AddCommand(cli.DevicesCmd(env))
	rootCmd.AddCommand(cli.DiagnoseCmd(env))
	rootCmd.AddCommand(cli.ConfigCmd(env))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors to exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Context cancellation means the user interrupted the command.
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Usage errors (ExitUsage = 2): Cobra flag/arg parsing errors.
	// Cobra doesn't expose typed errors, so we check for known error
	// message patterns. These are stable across Cobra versions.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	// Setup errors (ExitSetup = 3): the environment cannot capture.
	if errors.Is(err, ffmpeg.ErrNotFound) || errors.Is(err, ffmpeg.ErrNotExecutable) ||
		errors.Is(err, capture.ErrBinaryUnavailable) || errors.Is(err, cli.ErrDiagnosticsFailed) {
		return ExitSetup
	}

	// Validation errors (ExitValidation = 4).
	if errors.Is(err, cli.ErrInvalidDuration) || errors.Is(err, cli.ErrOutputExists) {
		return ExitValidation
	}

	// Capture errors (ExitCapture = 5).
	if errors.Is(err, capture.ErrSpawnFailed) || errors.Is(err, capture.ErrCaptureFailed) ||
		errors.Is(err, capture.ErrEmptyCapture) || errors.Is(err, capture.ErrAlreadyRecording) {
		return ExitCapture
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate
// Cobra usage errors.
var cobraUsageErrorPatterns = []string{
	"required flag",             // Missing required flag
	"unknown flag",              // Flag doesn't exist
	"unknown shorthand",         // Short flag doesn't exist
	"unknown command",           // Subcommand doesn't exist
	"flag needs an argument",    // Flag provided without value
	"invalid argument",          // Invalid flag value type
	"if any flags in the group", // Mutually exclusive flag violation
	"accepts ",                  // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",         // Too few arguments
	"requires at most",          // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
