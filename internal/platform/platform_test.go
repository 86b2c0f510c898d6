package platform_test

// Notes:
// - resolve() is tested for every OS branch via the ResolveFor export.
// - Resolve() itself only re-dispatches on runtime.GOOS, so the host test
//   checks membership in the known mappings rather than one fixed value.

import (
	"strings"
	"testing"

	"github.com/alexstich/go-dictation/internal/platform"
)

func TestResolveForKnownSystems(t *testing.T) {
	t.Parallel()

	tests := []struct {
		goos         string
		wantFlag     string
		wantDevice   string
		wantFallback bool
	}{
		{goos: "darwin", wantFlag: "avfoundation", wantDevice: ":0"},
		{goos: "windows", wantFlag: "dshow", wantDevice: "audio=default"},
		{goos: "linux", wantFlag: "pulse", wantDevice: "default"},
		{goos: "freebsd", wantFlag: "pulse", wantDevice: "default", wantFallback: true},
		{goos: "plan9", wantFlag: "pulse", wantDevice: "default", wantFallback: true},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			t.Parallel()

			got := platform.ResolveFor(tt.goos)
			if got.OS != tt.goos {
				t.Errorf("OS = %q, want %q", got.OS, tt.goos)
			}
			if got.AudioInputFlag != tt.wantFlag {
				t.Errorf("AudioInputFlag = %q, want %q", got.AudioInputFlag, tt.wantFlag)
			}
			if got.DefaultDeviceID != tt.wantDevice {
				t.Errorf("DefaultDeviceID = %q, want %q", got.DefaultDeviceID, tt.wantDevice)
			}
			if got.Fallback != tt.wantFallback {
				t.Errorf("Fallback = %v, want %v", got.Fallback, tt.wantFallback)
			}
		})
	}
}

func TestResolveCurrentOS(t *testing.T) {
	t.Parallel()

	got := platform.Resolve()
	if got.AudioInputFlag == "" {
		t.Fatal("Resolve() returned empty AudioInputFlag")
	}

	valid := []string{"avfoundation", "dshow", "pulse"}
	found := false
	for _, v := range valid {
		if got.AudioInputFlag == v {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("AudioInputFlag = %q, want one of %v", got.AudioInputFlag, valid)
	}
}

func TestListDeviceArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		goos string
		want string // substring that must appear in the joined args
	}{
		{goos: "darwin", want: "avfoundation"},
		{goos: "windows", want: "dshow"},
		{goos: "linux", want: "pulse"},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			t.Parallel()

			args := platform.ResolveFor(tt.goos).ListDeviceArgs()
			if len(args) == 0 {
				t.Fatal("ListDeviceArgs() returned no arguments")
			}
			joined := strings.Join(args, " ")
			if !strings.Contains(joined, tt.want) {
				t.Errorf("ListDeviceArgs() = %q, want substring %q", joined, tt.want)
			}
			if !strings.Contains(joined, "-list_devices") {
				t.Errorf("ListDeviceArgs() = %q, missing -list_devices", joined)
			}
		})
	}
}

func TestFormatDeviceID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		goos string
		id   string
		want string
	}{
		{name: "darwin index gets colon prefix", goos: "darwin", id: "1", want: ":1"},
		{name: "darwin keeps existing colon", goos: "darwin", id: ":0", want: ":0"},
		{name: "darwin device name", goos: "darwin", id: "MacBook Pro Microphone", want: ":MacBook Pro Microphone"},
		{name: "windows gets audio prefix", goos: "windows", id: "Microphone (Realtek)", want: "audio=Microphone (Realtek)"},
		{name: "windows keeps existing prefix", goos: "windows", id: "audio=Mic", want: "audio=Mic"},
		{name: "linux passes through", goos: "linux", id: "alsa_input.usb", want: "alsa_input.usb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := platform.ResolveFor(tt.goos).FormatDeviceID(tt.id)
			if got != tt.want {
				t.Errorf("FormatDeviceID(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}
