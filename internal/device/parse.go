package device

import (
	"regexp"
	"strings"
)

// Section markers in FFmpeg -list_devices stderr output.
const (
	avfAudioMarker  = "AVFoundation audio devices:"
	avfVideoMarker  = "AVFoundation video devices:"
	dshowAudioMark  = "DirectShow audio devices"
	dshowVideoMark  = "DirectShow video devices"
	dshowAltNameTag = "Alternative name"
)

// indevPattern matches one device line emitted by an FFmpeg input
// device: "[AVFoundation indev @ 0x7f8a1c] [1] MacBook Pro Microphone".
var indevPattern = regexp.MustCompile(`^\[[^\]]*indev[^\]]*\]\s*\[(\d+)\]\s*(.+)$`)

// quotedNamePattern matches a quoted device name on a dshow line.
var quotedNamePattern = regexp.MustCompile(`"([^"]+)"`)

// dshowSuffixPattern matches the suffix listing format used by some
// FFmpeg builds: "Microphone (Realtek)" (audio).
var dshowSuffixPattern = regexp.MustCompile(`"([^"]+)"\s+\(audio\)`)

// parseDevices applies the grammar for the given input format.
// Returns nil when nothing parses; the enumerator substitutes the
// synthetic default.
func parseDevices(format, stderr string) []AudioDevice {
	switch format {
	case "avfoundation":
		return parseAVFoundation(stderr)
	case "dshow":
		return parseDShow(stderr)
	default:
		return parseBracketList(stderr)
	}
}

// parseAVFoundation parses macOS avfoundation device listings.
// Only the audio section is considered. Example stderr:
//
//	[AVFoundation indev @ 0x...] AVFoundation video devices:
//	[AVFoundation indev @ 0x...] [0] FaceTime HD Camera
//	[AVFoundation indev @ 0x...] AVFoundation audio devices:
//	[AVFoundation indev @ 0x...] [0] MacBook Pro Microphone
//	[AVFoundation indev @ 0x...] [1] External USB Microphone
//
// Produced IDs are ":<index>"; the first entry is the default.
func parseAVFoundation(stderr string) []AudioDevice {
	var devices []AudioDevice
	inAudioSection := false

	for _, line := range strings.Split(stderr, "\n") {
		if strings.Contains(line, avfAudioMarker) {
			inAudioSection = true
			continue
		}
		if strings.Contains(line, avfVideoMarker) {
			inAudioSection = false
			continue
		}
		if !inAudioSection {
			continue
		}
		if m := indevPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			devices = append(devices, AudioDevice{
				ID:        ":" + m[1],
				Name:      strings.TrimSpace(m[2]),
				IsDefault: len(devices) == 0,
			})
		}
	}
	return devices
}

// parseDShow parses Windows dshow device listings.
// Two output formats exist depending on the FFmpeg build: section
// headers grouping devices under "DirectShow audio devices", and a
// suffix format tagging each quoted name with "(audio)". Produced IDs
// keep the quotes: audio="<name>".
func parseDShow(stderr string) []AudioDevice {
	var names []string
	if strings.Contains(stderr, dshowAudioMark) {
		names = parseDShowSections(stderr)
	} else {
		names = parseDShowSuffixes(stderr)
	}

	devices := make([]AudioDevice, 0, len(names))
	for i, name := range names {
		devices = append(devices, AudioDevice{
			ID:        `audio="` + name + `"`,
			Name:      name,
			IsDefault: i == 0,
		})
	}
	return devices
}

// parseDShowSections extracts audio device names from the
// section-header format used by older FFmpeg builds.
func parseDShowSections(stderr string) []string {
	var names []string
	inAudioSection := false

	for _, line := range strings.Split(stderr, "\n") {
		if strings.Contains(line, dshowAudioMark) {
			inAudioSection = true
			continue
		}
		if strings.Contains(line, dshowVideoMark) {
			inAudioSection = false
			continue
		}
		if !inAudioSection || strings.Contains(line, dshowAltNameTag) {
			continue
		}
		if m := quotedNamePattern.FindStringSubmatch(line); m != nil {
			names = append(names, m[1])
		}
	}
	return names
}

// parseDShowSuffixes extracts audio device names from the per-line
// "(audio)" suffix format used by gyan.dev and some static builds.
func parseDShowSuffixes(stderr string) []string {
	var names []string
	for _, line := range strings.Split(stderr, "\n") {
		if strings.Contains(line, dshowAltNameTag) {
			continue
		}
		if m := dshowSuffixPattern.FindStringSubmatch(line); m != nil {
			names = append(names, m[1])
		}
	}
	return names
}

// parseBracketList parses the generic numbered-bracket grammar on Linux
// and other systems. PulseAudio accepts a bare numeric source index as
// the -i argument, so the index digits become the ID.
func parseBracketList(stderr string) []AudioDevice {
	var devices []AudioDevice
	for _, line := range strings.Split(stderr, "\n") {
		if m := indevPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			devices = append(devices, AudioDevice{
				ID:        m[1],
				Name:      strings.TrimSpace(m[2]),
				IsDefault: len(devices) == 0,
			})
		}
	}
	return devices
}
