// Package config loads and persists user settings from the key=value
// file at ~/.config/go-dictation/config, with environment fallbacks for
// the settings that matter when no file exists.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/alexstich/go-dictation/internal/capture"
)

// Config keys.
const (
	KeyDevice             = "device"
	KeyFFmpegPath         = "ffmpeg-path"
	KeyMaxDuration        = "max-duration"
	KeySilence            = "silence"
	KeySilenceDuration    = "silence-duration"
	KeySilenceThresholdDB = "silence-threshold-db"
)

// Environment variable fallbacks, consulted when the config file does
// not set the key.
const (
	EnvDevice      = "DICTATION_DEVICE"
	EnvFFmpegPath  = "DICTATION_FFMPEG"
	EnvMaxDuration = "DICTATION_MAX_DURATION"
)

// knownKeys guards `config set` against typos.
var knownKeys = []string{
	KeyDevice,
	KeyFFmpegPath,
	KeyMaxDuration,
	KeySilence,
	KeySilenceDuration,
	KeySilenceThresholdDB,
}

// Keys returns the recognized config keys, sorted.
func Keys() []string {
	keys := slices.Clone(knownKeys)
	slices.Sort(keys)
	return keys
}

// ValidKey reports whether key is a recognized config key.
func ValidKey(key string) bool {
	return slices.Contains(knownKeys, key)
}

// Config holds user configuration. Zero values mean "not configured";
// the capture layer applies its own defaults on top.
type Config struct {
	Device             string
	FFmpegPath         string
	MaxDuration        time.Duration
	Silence            bool
	SilenceDuration    time.Duration
	SilenceThresholdDB int
}

// CaptureOptions maps the configuration onto recording options. Unset
// fields stay zero so withDefaults fills them.
func (c Config) CaptureOptions() capture.Options {
	return capture.Options{
		Device:             c.Device,
		FFmpegPath:         ExpandPath(c.FFmpegPath),
		MaxDuration:        c.MaxDuration,
		SilenceDetection:   c.Silence,
		SilenceDuration:    c.SilenceDuration,
		SilenceThresholdDB: c.SilenceThresholdDB,
	}
}

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/go-dictation.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "go-dictation"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "go-dictation"), nil
}

// path returns the full path to the config file.
func path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config"), nil
}

// Load reads the configuration file and environment variables.
// Precedence: config file values, then environment variable fallbacks.
// A missing file is not an error; a malformed value is.
func Load() (Config, error) {
	var cfg Config

	p, err := path()
	if err != nil {
		return cfg, err
	}

	data, err := parseFile(p)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		data = make(map[string]string)
	}

	cfg.Device = data[KeyDevice]
	cfg.FFmpegPath = data[KeyFFmpegPath]

	if cfg.Device == "" {
		cfg.Device = os.Getenv(EnvDevice)
	}
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = os.Getenv(EnvFFmpegPath)
	}

	maxDuration := data[KeyMaxDuration]
	if maxDuration == "" {
		maxDuration = os.Getenv(EnvMaxDuration)
	}
	if maxDuration != "" {
		d, err := parseDuration(maxDuration)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %w", KeyMaxDuration, err)
		}
		cfg.MaxDuration = d
	}

	if v := data[KeySilence]; v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %q is not a boolean", KeySilence, v)
		}
		cfg.Silence = b
	}

	if v := data[KeySilenceDuration]; v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %w", KeySilenceDuration, err)
		}
		cfg.SilenceDuration = d
	}

	if v := data[KeySilenceThresholdDB]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %q is not an integer", KeySilenceThresholdDB, v)
		}
		cfg.SilenceThresholdDB = n
	}

	return cfg, nil
}

// parseDuration accepts Go duration syntax ("90s", "5m") and, for
// compatibility with plain settings files, a bare number of seconds.
func parseDuration(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("duration %q is negative", s)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("duration %q is neither seconds nor a duration string", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("duration %q is negative", s)
	}
	return d, nil
}

// parseFile reads a key=value config file.
// Format: one key=value per line, # comments, empty lines ignored.
func parseFile(p string) (map[string]string, error) {
	f, err := os.Open(p) // #nosec G304 -- config path is constructed from home dir
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse key=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid syntax at line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		data[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return data, nil
}

// Save writes a single key=value to the config file.
// Creates the config directory and file if they don't exist.
// Preserves existing key=value pairs but discards comments.
func Save(key, value string) error {
	if !ValidKey(key) {
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys(), ", "))
	}

	p, err := path()
	if err != nil {
		return err
	}

	// Ensure config directory exists.
	d := filepath.Dir(p)
	if err := os.MkdirAll(d, 0750); err != nil { // #nosec G301 -- user config dir
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	// Read existing config (if any).
	existing, _ := parseFile(p)
	if existing == nil {
		existing = make(map[string]string)
	}

	// Update value.
	existing[key] = value

	// Write back.
	return writeFile(p, existing)
}

// writeFile writes the config map to a file, keys sorted for stable diffs.
func writeFile(p string, data map[string]string) error {
	// #nosec G302 G304 -- config file with standard permissions, path from home dir
	f, err := os.OpenFile(p, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		if _, err := fmt.Fprintf(f, "%s=%s\n", key, data[key]); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	return nil
}

// Get reads a single value from the config file.
// Returns empty string if the key doesn't exist.
func Get(key string) (string, error) {
	p, err := path()
	if err != nil {
		return "", err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	return data[key], nil
}

// List returns all config values as a map.
func List() (map[string]string, error) {
	p, err := path()
	if err != nil {
		return nil, err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}

	return data, nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[2:])
	}
	return p
}

// Dir returns the configuration directory path (exported for testing).
func Dir() (string, error) {
	return dir()
}

// ParseFile reads a key=value config file (exported for testing).
func ParseFile(p string) (map[string]string, error) {
	return parseFile(p)
}
