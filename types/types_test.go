package types

import (
	"testing"
)

func TestStreamKindString(t *testing.T) {
	tests := []struct {
		kind     StreamKind
		expected string
	}{
		{KindMuxed, "muxed"},
		{KindAudio, "audio"},
		{KindVideo, "video"},
		{StreamKind(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}

func TestStreamDescriptor(t *testing.T) {
	d := StreamDescriptor{
		Itag:          22,
		URL:           "https://example.com/videoplayback?itag=22",
		Kind:          KindMuxed,
		ContentLength: 50000000,
		Bitrate:       1000000,
		Resolution:    Resolution{Width: 1280, Height: 720},
		Framerate:     30,
		QualityLabel:  "720p",
	}

	if d.Itag != 22 {
		t.Errorf("Expected Itag 22, got %d", d.Itag)
	}
	if d.Kind != KindMuxed {
		t.Errorf("Expected KindMuxed, got %v", d.Kind)
	}
	if d.Resolution.Width != 1280 || d.Resolution.Height != 720 {
		t.Errorf("Expected 1280x720, got %dx%d", d.Resolution.Width, d.Resolution.Height)
	}
}

func TestStreamDescriptorZeroValues(t *testing.T) {
	d := StreamDescriptor{}

	if d.Itag != 0 {
		t.Errorf("Expected Itag 0, got %d", d.Itag)
	}
	if d.URL != "" {
		t.Errorf("Expected empty URL, got '%s'", d.URL)
	}
	if d.Kind != KindMuxed {
		t.Errorf("Expected zero kind to be KindMuxed, got %v", d.Kind)
	}
	if d.ContentLength != 0 {
		t.Errorf("Expected ContentLength 0, got %d", d.ContentLength)
	}
}

func TestClosedCaptionTrackInfo(t *testing.T) {
	track := ClosedCaptionTrackInfo{
		URL:             "https://example.com/timedtext?lang=en",
		LanguageCode:    "en",
		LanguageName:    "English (auto-generated)",
		IsAutoGenerated: true,
	}

	if track.LanguageCode != "en" {
		t.Errorf("Expected LanguageCode 'en', got '%s'", track.LanguageCode)
	}
	if !track.IsAutoGenerated {
		t.Error("Expected IsAutoGenerated true")
	}
}
