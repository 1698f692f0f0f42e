// Package videoinfo fetches and validates raw video metadata from the
// get_video_info endpoint.
package videoinfo

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/ytget/ytstream/client"
	"github.com/ytget/ytstream/errs"
	"github.com/ytget/ytstream/internal/logger"
	"github.com/ytget/ytstream/types"
)

const (
	ytBase        = "https://www.youtube.com"
	videoInfoPath = "/get_video_info"
	embedPagePath = "/embed/%s?hl=en"
	watchEURL     = "https://youtube.googleapis.com/v/%s"

	elEmbedded   = "embedded"
	elDetailPage = "detailpage"

	keyVideoID   = "video_id"
	keyErrorCode = "errorcode"
	keyReason    = "reason"
)

var (
	jsURLRe = regexp.MustCompile(`"jsUrl":"([^"]+)"`)
	stsRe   = regexp.MustCompile(`"sts":\s*(\d+)`)
)

var log = logger.WithComponent(logger.ComponentVideoInfo)

// VideoInfo is the raw key/value blob returned by the info endpoint, plus
// the nested player_response metadata. Read-only after construction.
type VideoInfo struct {
	values         url.Values
	playerResponse gjson.Result
}

// Get returns the raw value for key, or "" when absent.
func (v *VideoInfo) Get(key string) string {
	return v.values.Get(key)
}

// Has reports whether the raw blob carries key.
func (v *VideoInfo) Has(key string) bool {
	_, ok := v.values[key]
	return ok
}

// PlayerResponse returns the parsed player_response blob.
func (v *VideoInfo) PlayerResponse() gjson.Result {
	return v.playerResponse
}

// Metadata extracts the basic video metadata fields.
func (v *VideoInfo) Metadata() types.VideoMetadata {
	duration, _ := strconv.Atoi(v.Get("length_seconds"))
	return types.VideoMetadata{
		ID:       v.Get(keyVideoID),
		Title:    v.Get("title"),
		Author:   v.Get("author"),
		Duration: duration,
	}
}

// Parse builds a VideoInfo from a raw query-encoded info response body.
func Parse(body []byte) (*VideoInfo, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, errs.NewParseError("video info response", err)
	}
	return &VideoInfo{
		values:         values,
		playerResponse: gjson.Parse(values.Get("player_response")),
	}, nil
}

// PlayerContext identifies the player script version active for a video.
type PlayerContext struct {
	SourceURL string
	STS       string
}

// Resolver fetches video info with the two-phase fallback policy.
type Resolver struct {
	httpClient *client.Client
	baseURL    string
}

// NewResolver creates a video info resolver using the given HTTP client.
func NewResolver(httpClient *client.Client) *Resolver {
	return &Resolver{httpClient: httpClient, baseURL: ytBase}
}

type attemptState int

const (
	attemptEmbedded attemptState = iota
	attemptDetailPage
	accept
)

// Resolve fetches raw video info for videoID. sts is the script timestamp of
// the active player; pass "" when stream data is not needed.
//
// The protocol is a two-state fallback: the embedded context is tried first,
// and the detail page context only when sts was supplied and the embedded
// response reported a non-zero native error code. Failures carry the native
// code and reason of the last attempt; transport errors propagate unchanged.
func (r *Resolver) Resolve(ctx context.Context, videoID, sts string) (*VideoInfo, error) {
	state := attemptEmbedded
	var info *VideoInfo

	for {
		switch state {
		case attemptEmbedded:
			v, err := r.fetch(ctx, videoID, elEmbedded, sts)
			if err != nil {
				return nil, err
			}
			if v.Get(keyVideoID) == "" {
				return nil, unavailable(videoID, v)
			}
			if sts != "" && nativeErrorCode(v) != 0 {
				state = attemptDetailPage
				continue
			}
			info = v
			state = accept

		case attemptDetailPage:
			log.Debug("embedded attempt rejected, retrying", map[string]any{"video_id": videoID, "el": elDetailPage})
			v, err := r.fetch(ctx, videoID, elDetailPage, sts)
			if err != nil {
				return nil, err
			}
			if nativeErrorCode(v) != 0 {
				return nil, unavailable(videoID, v)
			}
			info = v
			state = accept

		case accept:
			return info, nil
		}
	}
}

// GetPlayerContext scrapes the embed page for the player script URL and the
// script timestamp required to resolve protected streams.
func (r *Resolver) GetPlayerContext(ctx context.Context, videoID string) (*PlayerContext, error) {
	body, err := r.httpClient.GetBody(ctx, r.baseURL+fmt.Sprintf(embedPagePath, videoID))
	if err != nil {
		return nil, err
	}

	jsMatch := jsURLRe.FindSubmatch(body)
	if jsMatch == nil {
		return nil, errs.NewParseError("player script url")
	}
	scriptURL := strings.ReplaceAll(string(jsMatch[1]), `\/`, `/`)
	if !strings.HasPrefix(scriptURL, "http") {
		scriptURL = r.baseURL + scriptURL
	}

	stsMatch := stsRe.FindSubmatch(body)
	if stsMatch == nil {
		return nil, errs.NewParseError("player script timestamp")
	}

	return &PlayerContext{SourceURL: scriptURL, STS: string(stsMatch[1])}, nil
}

func (r *Resolver) fetch(ctx context.Context, videoID, el, sts string) (*VideoInfo, error) {
	q := url.Values{}
	q.Set("video_id", videoID)
	q.Set("el", el)
	q.Set("eurl", fmt.Sprintf(watchEURL, videoID))
	q.Set("hl", "en")
	if sts != "" {
		q.Set("sts", sts)
	}

	body, err := r.httpClient.GetBody(ctx, r.baseURL+videoInfoPath+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return Parse(body)
}

func nativeErrorCode(v *VideoInfo) int {
	code, _ := strconv.Atoi(v.Get(keyErrorCode))
	return code
}

func unavailable(videoID string, v *VideoInfo) error {
	return &errs.VideoUnavailableError{
		VideoID: videoID,
		Code:    nativeErrorCode(v),
		Reason:  v.Get(keyReason),
	}
}
