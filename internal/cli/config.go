package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexstich/go-dictation/internal/config"
)

// envFallbacks maps config keys to their environment variable fallbacks.
var envFallbacks = map[string]string{
	config.KeyDevice:      config.EnvDevice,
	config.KeyFFmpegPath:  config.EnvFFmpegPath,
	config.KeyMaxDuration: config.EnvMaxDuration,
}

// ConfigCmd creates the config command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage persistent configuration settings.

Configuration is stored in ~/.config/go-dictation/config.
Some settings can also be supplied via environment variables.

Supported settings:
  device                 Audio input device ID or name (env: DICTATION_DEVICE)
  ffmpeg-path            Explicit FFmpeg binary path (env: DICTATION_FFMPEG)
  max-duration           Recording duration cap (env: DICTATION_MAX_DURATION)
  silence                Stop on detected silence (true/false)
  silence-duration       Silence span that triggers the stop
  silence-threshold-db   Silence threshold in dB`,
		Example: `  dictation config set device "External USB Microphone"
  dictation config get max-duration
  dictation config list`,
	}

	cmd.AddCommand(configSetCmd(env))
	cmd.AddCommand(configGetCmd(env))
	cmd.AddCommand(configListCmd(env))

	return cmd
}

// configSetCmd creates the "config set" subcommand.
func configSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Example: `  dictation config set device :1
  dictation config set max-duration 2m`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(env, args[0], args[1])
		},
	}
}

// configGetCmd creates the "config get" subcommand.
func configGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value.

Prints the value to stdout, or nothing if not set.`,
		Example: `  dictation config get device`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(env, args[0])
		},
	}
}

// configListCmd creates the "config list" subcommand.
func configListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `List all configuration values.

Shows both values from the config file and environment variable fallbacks.`,
		Example: `  dictation config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(env)
		},
	}
}

// runConfigSet handles the "config set" command.
func runConfigSet(env *Env, key, value string) error {
	if !config.ValidKey(key) {
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(config.Keys(), ", "))
	}

	// Store the expanded binary path so later loads need no shell context.
	if key == config.KeyFFmpegPath {
		value = config.ExpandPath(value)
	}

	if err := config.Save(key, value); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, value)
	return nil
}

// runConfigGet handles the "config get" command.
func runConfigGet(env *Env, key string) error {
	if !config.ValidKey(key) {
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(config.Keys(), ", "))
	}

	value, err := config.Get(key)
	if err != nil {
		return err
	}

	// Environment variable fallback.
	if value == "" {
		if envVar, ok := envFallbacks[key]; ok {
			value = env.Getenv(envVar)
		}
	}

	if value != "" {
		fmt.Fprintln(env.Stdout, value)
	}

	return nil
}

// runConfigList handles the "config list" command.
func runConfigList(env *Env) error {
	data, err := config.List()
	if err != nil {
		return err
	}

	// Add environment fallbacks for completeness.
	for key, envVar := range envFallbacks {
		if _, ok := data[key]; ok {
			continue
		}
		if envVal := env.Getenv(envVar); envVal != "" {
			data[key] = envVal + " (from env)"
		}
	}

	if len(data) == 0 {
		fmt.Fprintln(env.Stdout, "No configuration set.")
		fmt.Fprintln(env.Stdout, "\nAvailable settings:")
		for _, key := range config.Keys() {
			fmt.Fprintf(env.Stdout, "  %s\n", key)
		}
		return nil
	}

	for _, key := range config.Keys() {
		if value, ok := data[key]; ok {
			fmt.Fprintf(env.Stdout, "%s=%s\n", key, value)
		}
	}

	return nil
}
