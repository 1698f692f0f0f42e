package captions

import (
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

const playerResponseJSON = `{
  "captions": {
    "playerCaptionsTracklistRenderer": {
      "captionTracks": [
        {
          "baseUrl": "https://www.youtube.com/api/timedtext?v=dQw4w9WgXcQ&lang=en&fmt=vtt",
          "name": {"simpleText": "English"},
          "vssId": ".en",
          "languageCode": "en"
        },
        {
          "baseUrl": "https://www.youtube.com/api/timedtext?v=dQw4w9WgXcQ&lang=de&kind=asr",
          "name": {"simpleText": "German (auto-generated)"},
          "vssId": "a.de",
          "languageCode": "de"
        }
      ]
    }
  }
}`

func TestExtract(t *testing.T) {
	tracks, err := Extract(gjson.Parse(playerResponseJSON))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("Expected 2 tracks, got %d", len(tracks))
	}

	en := tracks[0]
	if en.LanguageCode != "en" || en.LanguageName != "English" {
		t.Errorf("Unexpected first track: %+v", en)
	}
	if en.IsAutoGenerated {
		t.Error("Expected manual track for .en vssId")
	}
	if !strings.Contains(en.URL, "fmt=srv3") {
		t.Errorf("Expected fmt forced to srv3, got %s", en.URL)
	}

	de := tracks[1]
	if !de.IsAutoGenerated {
		t.Error("Expected a.de vssId to mark auto-generated track")
	}
	if de.LanguageName != "German (auto-generated)" {
		t.Errorf("Unexpected name: %s", de.LanguageName)
	}
}

func TestExtractNoCaptions(t *testing.T) {
	tracks, err := Extract(gjson.Parse(`{"videoDetails":{"videoId":"dQw4w9WgXcQ"}}`))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if tracks != nil {
		t.Errorf("Expected no tracks, got %+v", tracks)
	}
}

func TestExtractMissingURL(t *testing.T) {
	raw := `{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"languageCode":"en"}]}}}`
	_, err := Extract(gjson.Parse(raw))
	if err == nil {
		t.Fatal("Expected error for track without baseUrl")
	}
}
