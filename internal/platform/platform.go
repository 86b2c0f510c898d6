// Package platform maps the host operating system to the FFmpeg capture
// flags and device tokens it expects. Pure functions, no I/O.
package platform

import (
	"runtime"
	"strings"
)

// Commands describes how to address FFmpeg's audio capture on one OS.
type Commands struct {
	// OS is the GOOS value the mapping was resolved for.
	OS string

	// AudioInputFlag is the FFmpeg input format (-f) for microphone capture:
	// avfoundation on macOS, dshow on Windows, pulse elsewhere.
	AudioInputFlag string

	// DefaultDeviceID is the device token used when no device is configured.
	DefaultDeviceID string

	// Fallback is true when the OS had no dedicated mapping and the
	// PulseAudio branch was used. Callers surface this as a warning.
	Fallback bool
}

// Resolve returns the capture command mapping for the current OS.
func Resolve() Commands {
	return resolve(runtime.GOOS)
}

// resolve maps a GOOS value to its capture commands.
// Unknown systems fall back to the Linux/PulseAudio branch; the caller
// reports the fallback as a warning rather than an error.
func resolve(goos string) Commands {
	switch goos {
	case "darwin":
		return Commands{
			OS:              goos,
			AudioInputFlag:  "avfoundation",
			DefaultDeviceID: ":0",
		}
	case "windows":
		return Commands{
			OS:              goos,
			AudioInputFlag:  "dshow",
			DefaultDeviceID: "audio=default",
		}
	case "linux":
		return Commands{
			OS:              goos,
			AudioInputFlag:  "pulse",
			DefaultDeviceID: "default",
		}
	default:
		return Commands{
			OS:              goos,
			AudioInputFlag:  "pulse",
			DefaultDeviceID: "default",
			Fallback:        true,
		}
	}
}

// ListDeviceArgs returns the FFmpeg arguments that make the binary dump
// its input-device list to stderr.
func (c Commands) ListDeviceArgs() []string {
	switch c.AudioInputFlag {
	case "avfoundation":
		// macOS: -i "" triggers the listing, devices land on stderr.
		return []string{"-f", "avfoundation", "-list_devices", "true", "-i", ""}
	case "dshow":
		return []string{"-f", "dshow", "-list_devices", "true", "-i", "dummy"}
	default:
		// PulseAudio has no -list_devices; probing the default source
		// still prints the available sources to stderr on failure.
		return []string{"-f", "pulse", "-list_devices", "true", "-i", "default"}
	}
}

// FormatDeviceID normalizes a user-supplied device identifier into the
// form FFmpeg's -i argument expects on this platform.
func (c Commands) FormatDeviceID(id string) string {
	switch c.AudioInputFlag {
	case "avfoundation":
		// Audio-only input is ":index" or ":DeviceName".
		if strings.HasPrefix(id, ":") {
			return id
		}
		return ":" + id
	case "dshow":
		if strings.HasPrefix(id, "audio=") {
			return id
		}
		return "audio=" + id
	default:
		return id
	}
}
