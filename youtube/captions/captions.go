// Package captions extracts closed caption track listings from the player
// response blob of a video info response.
package captions

import (
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/ytget/ytstream/errs"
	"github.com/ytget/ytstream/types"
)

const (
	tracksPath = "captions.playerCaptionsTracklistRenderer.captionTracks"

	// Caption payloads are always requested in the srv3 transcript format.
	captionFormat = "srv3"

	autoGeneratedPrefix = "a."
)

// Extract lists the caption tracks advertised by a player response. A video
// without captions yields an empty list, not an error.
func Extract(playerResponse gjson.Result) ([]types.ClosedCaptionTrackInfo, error) {
	tracks := playerResponse.Get(tracksPath)
	if !tracks.Exists() {
		return nil, nil
	}

	var out []types.ClosedCaptionTrackInfo
	var parseErr error
	tracks.ForEach(func(_, track gjson.Result) bool {
		baseURL := track.Get("baseUrl").String()
		if baseURL == "" {
			parseErr = errs.NewParseError("caption track url")
			return false
		}
		trackURL, err := withCaptionFormat(baseURL)
		if err != nil {
			parseErr = err
			return false
		}

		out = append(out, types.ClosedCaptionTrackInfo{
			URL:             trackURL,
			LanguageCode:    track.Get("languageCode").String(),
			LanguageName:    track.Get("name.simpleText").String(),
			IsAutoGenerated: strings.HasPrefix(track.Get("vssId").String(), autoGeneratedPrefix),
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return out, nil
}

// withCaptionFormat forces the transcript format parameter on a track URL.
func withCaptionFormat(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", errs.NewParseError("caption track url", err)
	}
	q := u.Query()
	q.Set("fmt", captionFormat)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
