package device_test

// Notes:
// - Parsers are pure functions tested with literal FFmpeg stderr samples,
//   not live process output.
// - Fixtures reproduce real avfoundation/dshow listing shapes, including
//   the video sections that must be ignored.

import (
	"testing"

	"github.com/alexstich/go-dictation/internal/device"
)

const avfTwoDevices = `[AVFoundation indev @ 0x7f8a1c008000] AVFoundation video devices:
[AVFoundation indev @ 0x7f8a1c008000] [0] FaceTime HD Camera
[AVFoundation indev @ 0x7f8a1c008000] AVFoundation audio devices:
[AVFoundation indev @ 0x7f8a1c008000] [0] MacBook Pro Microphone
[AVFoundation indev @ 0x7f8a1c008000] [1] External USB Microphone
: Input/output error`

const dshowSectionFormat = `[dshow @ 000001e9a2c3f4c0] DirectShow video devices (some may be both video and audio devices)
[dshow @ 000001e9a2c3f4c0]  "Integrated Camera"
[dshow @ 000001e9a2c3f4c0]     Alternative name "@device_pnp_\\?\usb#vid_04f2"
[dshow @ 000001e9a2c3f4c0] DirectShow audio devices
[dshow @ 000001e9a2c3f4c0]  "Microphone (Realtek High Definition Audio)"
[dshow @ 000001e9a2c3f4c0]     Alternative name "@device_cm_{33D9A762}"
[dshow @ 000001e9a2c3f4c0]  "Headset Microphone (Plantronics)"
dummy: Immediate exit requested`

const dshowSuffixFormat = `[dshow @ 000001e9a2c3f4c0] "HD User Facing" (video)
[dshow @ 000001e9a2c3f4c0] "Microphone (Realtek High Definition Audio)" (audio)
[dshow @ 000001e9a2c3f4c0]     Alternative name "@device_cm_{33D9A762}" (audio)
[dshow @ 000001e9a2c3f4c0] "Stereo Mix (Realtek)" (audio)
dummy: Immediate exit requested`

func TestParseAVFoundation(t *testing.T) {
	t.Parallel()

	t.Run("two devices with indexed ids", func(t *testing.T) {
		t.Parallel()

		got := device.ParseAVFoundation(avfTwoDevices)
		if len(got) != 2 {
			t.Fatalf("parsed %d devices, want 2: %+v", len(got), got)
		}
		if got[0].ID != ":0" || got[1].ID != ":1" {
			t.Errorf("ids = %q, %q, want :0, :1", got[0].ID, got[1].ID)
		}
		if got[0].Name != "MacBook Pro Microphone" {
			t.Errorf("first name = %q", got[0].Name)
		}
		if !got[0].IsDefault {
			t.Error("first device not marked default")
		}
		if got[1].IsDefault {
			t.Error("second device wrongly marked default")
		}
	})

	t.Run("video devices are ignored", func(t *testing.T) {
		t.Parallel()

		for _, d := range device.ParseAVFoundation(avfTwoDevices) {
			if d.Name == "FaceTime HD Camera" {
				t.Fatal("video device leaked into audio list")
			}
		}
	})

	t.Run("empty text parses to nothing", func(t *testing.T) {
		t.Parallel()

		if got := device.ParseAVFoundation(""); len(got) != 0 {
			t.Errorf("parsed %d devices from empty text", len(got))
		}
	})
}

func TestParseDShow(t *testing.T) {
	t.Parallel()

	t.Run("section format keeps quotes in ids", func(t *testing.T) {
		t.Parallel()

		got := device.ParseDShow(dshowSectionFormat)
		if len(got) != 2 {
			t.Fatalf("parsed %d devices, want 2: %+v", len(got), got)
		}
		want := `audio="Microphone (Realtek High Definition Audio)"`
		if got[0].ID != want {
			t.Errorf("id = %q, want %q", got[0].ID, want)
		}
		if !got[0].IsDefault || got[1].IsDefault {
			t.Errorf("default flags = %v, %v, want true, false", got[0].IsDefault, got[1].IsDefault)
		}
	})

	t.Run("suffix format skips alternative names and video", func(t *testing.T) {
		t.Parallel()

		got := device.ParseDShow(dshowSuffixFormat)
		if len(got) != 2 {
			t.Fatalf("parsed %d devices, want 2: %+v", len(got), got)
		}
		if got[0].Name != "Microphone (Realtek High Definition Audio)" {
			t.Errorf("first name = %q", got[0].Name)
		}
		if got[1].Name != "Stereo Mix (Realtek)" {
			t.Errorf("second name = %q", got[1].Name)
		}
	})

	t.Run("camera-only listing parses to nothing", func(t *testing.T) {
		t.Parallel()

		text := `[dshow @ 0x1] "HD User Facing" (video)`
		if got := device.ParseDShow(text); len(got) != 0 {
			t.Errorf("parsed %d devices, want 0", len(got))
		}
	})
}

func TestParseBracketList(t *testing.T) {
	t.Parallel()

	t.Run("numbered entries become index ids", func(t *testing.T) {
		t.Parallel()

		text := `[pulse indev @ 0x55d3f0] [0] Built-in Audio Analog Stereo
[pulse indev @ 0x55d3f0] [1] USB Audio Device`
		got := device.ParseBracketList(text)
		if len(got) != 2 {
			t.Fatalf("parsed %d devices, want 2: %+v", len(got), got)
		}
		if got[0].ID != "0" || got[1].ID != "1" {
			t.Errorf("ids = %q, %q, want 0, 1", got[0].ID, got[1].ID)
		}
		if !got[0].IsDefault {
			t.Error("first device not marked default")
		}
	})

	t.Run("unrelated stderr parses to nothing", func(t *testing.T) {
		t.Parallel()

		text := "default: Input/output error\nconnect failed: Connection refused"
		if got := device.ParseBracketList(text); len(got) != 0 {
			t.Errorf("parsed %d devices, want 0", len(got))
		}
	})
}
