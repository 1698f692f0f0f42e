// Package streams normalizes the raw stream encodings of a video info
// response into descriptor sets, deciphering protected signatures and
// probing muxed entries for liveness.
package streams

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/ytget/ytstream/client"
	"github.com/ytget/ytstream/errs"
	"github.com/ytget/ytstream/internal/logger"
	"github.com/ytget/ytstream/types"
	"github.com/ytget/ytstream/youtube/cipher"
	"github.com/ytget/ytstream/youtube/videoinfo"
)

const (
	keyPurchaseGate = "ypc_vid"
	keyMuxedList    = "url_encoded_fmt_stream_map"
	keyAdaptiveList = "adaptive_fmts"
	keyDashManifest = "dashmpd"
	keyLivePlaylist = "hlsvp"

	defaultSigParam = "signature"
	audioTypeMarker = "audio"
)

var log = logger.WithComponent(logger.ComponentStreams)

// Resolver turns a raw video info blob into a MediaStreamInfoSet.
type Resolver struct {
	httpClient     *client.Client
	ciphers        *cipher.SourceCache
	knownItagsOnly bool
}

// NewResolver creates a stream resolver using the given HTTP client and
// cipher cache.
func NewResolver(httpClient *client.Client, ciphers *cipher.SourceCache) *Resolver {
	return &Resolver{httpClient: httpClient, ciphers: ciphers}
}

// WithKnownItagsOnly discards descriptors whose itag is not in the known
// format tables. Off by default.
func (r *Resolver) WithKnownItagsOnly(enabled bool) *Resolver {
	r.knownItagsOnly = enabled
	return r
}

// streamMaps partitions descriptors by kind with last-write-wins per itag.
type streamMaps struct {
	muxed map[int]types.StreamDescriptor
	audio map[int]types.StreamDescriptor
	video map[int]types.StreamDescriptor
}

func newStreamMaps() *streamMaps {
	return &streamMaps{
		muxed: make(map[int]types.StreamDescriptor),
		audio: make(map[int]types.StreamDescriptor),
		video: make(map[int]types.StreamDescriptor),
	}
}

func (m *streamMaps) put(d types.StreamDescriptor) {
	switch d.Kind {
	case types.KindMuxed:
		m.muxed[d.Itag] = d
	case types.KindAudio:
		m.audio[d.Itag] = d
	case types.KindVideo:
		m.video[d.Itag] = d
	}
}

// Resolve builds the full stream set for a video. scriptURL identifies the
// player script used to decipher protected signatures.
//
// The purchase gate is checked before any stream parsing: a preview marker in
// the info blob fails the whole resolution with VideoRequiresPurchase.
func (r *Resolver) Resolve(ctx context.Context, videoID string, info *videoinfo.VideoInfo, scriptURL string) (*types.MediaStreamInfoSet, error) {
	if info.Has(keyPurchaseGate) {
		return nil, &errs.VideoRequiresPurchaseError{
			VideoID:        videoID,
			PreviewVideoID: info.Get(keyPurchaseGate),
		}
	}

	maps := newStreamMaps()
	if err := r.parseMuxed(ctx, info.Get(keyMuxedList), scriptURL, maps); err != nil {
		return nil, err
	}
	if err := r.parseAdaptive(ctx, info.Get(keyAdaptiveList), scriptURL, maps); err != nil {
		return nil, err
	}
	if manifestURL := info.Get(keyDashManifest); manifestURL != "" {
		if err := r.parseDash(ctx, manifestURL, scriptURL, maps); err != nil {
			return nil, err
		}
	}

	set := &types.MediaStreamInfoSet{
		Muxed:           sortedByQuality(maps.muxed),
		Audio:           sortedByBitrate(maps.audio),
		Video:           sortedByQuality(maps.video),
		LivePlaylistURL: info.Get(keyLivePlaylist),
	}
	log.Debug("streams resolved", map[string]any{
		"video_id": videoID,
		"muxed":    len(set.Muxed),
		"audio":    len(set.Audio),
		"video":    len(set.Video),
	})
	return set, nil
}

// parseMuxed handles the comma-separated muxed list. Muxed entries do not
// self-describe content length, so each final URL is probed with HEAD: gone
// streams (404/410) are skipped silently, any other non-success status is an
// error, and a success response without Content-Length is a parse failure.
func (r *Resolver) parseMuxed(ctx context.Context, raw, scriptURL string, maps *streamMaps) error {
	for _, entry := range splitEntries(raw) {
		values, err := url.ParseQuery(entry)
		if err != nil {
			return errs.NewParseError("muxed stream entry", err)
		}
		itag, err := strconv.Atoi(values.Get("itag"))
		if err != nil {
			return errs.NewParseError("muxed stream itag", err)
		}
		if r.knownItagsOnly && !isKnownItag(itag) {
			continue
		}

		finalURL, err := r.finalizeURL(ctx, values, scriptURL)
		if err != nil {
			return err
		}

		resp, err := r.httpClient.Head(ctx, finalURL)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
			log.Debug("muxed stream gone, skipping", map[string]any{"itag": itag, "status": resp.StatusCode})
			continue
		}
		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			return fmt.Errorf("probe itag %d: unexpected status %d", itag, resp.StatusCode)
		}
		if resp.ContentLength < 0 {
			return errs.NewParseError(fmt.Sprintf("content length for itag %d", itag))
		}

		resolution, label := resolutionFor(itag)
		maps.put(types.StreamDescriptor{
			Itag:          itag,
			URL:           finalURL,
			Kind:          types.KindMuxed,
			ContentLength: resp.ContentLength,
			Resolution:    resolution,
			QualityLabel:  label,
		})
	}
	return nil
}

// parseAdaptive handles the comma-separated adaptive list. Entries carry
// content length and bitrate inline; the type field routes audio entries.
func (r *Resolver) parseAdaptive(ctx context.Context, raw, scriptURL string, maps *streamMaps) error {
	for _, entry := range splitEntries(raw) {
		values, err := url.ParseQuery(entry)
		if err != nil {
			return errs.NewParseError("adaptive stream entry", err)
		}
		itag, err := strconv.Atoi(values.Get("itag"))
		if err != nil {
			return errs.NewParseError("adaptive stream itag", err)
		}
		if r.knownItagsOnly && !isKnownItag(itag) {
			continue
		}

		finalURL, err := r.finalizeURL(ctx, values, scriptURL)
		if err != nil {
			return err
		}

		contentLength, _ := strconv.ParseInt(values.Get("clen"), 10, 64)
		bitrate, _ := strconv.ParseInt(values.Get("bitrate"), 10, 64)
		d := types.StreamDescriptor{
			Itag:          itag,
			URL:           finalURL,
			ContentLength: contentLength,
			Bitrate:       bitrate,
		}

		if strings.Contains(values.Get("type"), audioTypeMarker) {
			d.Kind = types.KindAudio
		} else {
			d.Kind = types.KindVideo
			d.Resolution, err = parseSize(values.Get("size"), itag)
			if err != nil {
				return err
			}
			d.Framerate, _ = strconv.Atoi(values.Get("fps"))
			d.QualityLabel = values.Get("quality_label")
		}
		maps.put(d)
	}
	return nil
}

// finalizeURL builds the usable stream URL from a list entry, deciphering
// the signature when one is present and splicing it in under the parameter
// the entry names (default "signature").
func (r *Resolver) finalizeURL(ctx context.Context, values url.Values, scriptURL string) (string, error) {
	rawURL := values.Get("url")
	if rawURL == "" {
		return "", errs.NewParseError("stream url")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errs.NewParseError("stream url", err)
	}
	q := u.Query()

	if sig := values.Get("s"); sig != "" {
		deciphered, err := r.ciphers.Decipher(ctx, scriptURL, sig)
		if err != nil {
			return "", err
		}
		param := values.Get("sp")
		if param == "" {
			param = defaultSigParam
		}
		q.Set(param, deciphered)
	}

	// Throttling countermeasures, best effort.
	if nval := q.Get("n"); nval != "" {
		if nout, err := r.ciphers.DecipherN(ctx, scriptURL, nval); err == nil && nout != "" {
			q.Set("n", nout)
		}
	}
	if q.Get("ratebypass") == "" {
		q.Set("ratebypass", "yes")
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}

func splitEntries(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// parseSize parses a WxH size field, falling back to the itag table when the
// field is absent. A present but malformed field is a parse failure.
func parseSize(size string, itag int) (types.Resolution, error) {
	if size == "" {
		res, _ := resolutionFor(itag)
		return res, nil
	}
	w, h, ok := strings.Cut(size, "x")
	if !ok {
		return types.Resolution{}, errs.NewParseError(fmt.Sprintf("resolution %q for itag %d", size, itag))
	}
	width, werr := strconv.Atoi(w)
	height, herr := strconv.Atoi(h)
	if werr != nil || herr != nil {
		return types.Resolution{}, errs.NewParseError(fmt.Sprintf("resolution %q for itag %d", size, itag))
	}
	return types.Resolution{Width: width, Height: height}, nil
}

func sortedByQuality(m map[int]types.StreamDescriptor) []types.StreamDescriptor {
	out := collect(m)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Resolution.Height != out[j].Resolution.Height {
			return out[i].Resolution.Height > out[j].Resolution.Height
		}
		if out[i].Bitrate != out[j].Bitrate {
			return out[i].Bitrate > out[j].Bitrate
		}
		return out[i].Itag < out[j].Itag
	})
	return out
}

func sortedByBitrate(m map[int]types.StreamDescriptor) []types.StreamDescriptor {
	out := collect(m)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bitrate != out[j].Bitrate {
			return out[i].Bitrate > out[j].Bitrate
		}
		return out[i].Itag < out[j].Itag
	})
	return out
}

func collect(m map[int]types.StreamDescriptor) []types.StreamDescriptor {
	out := make([]types.StreamDescriptor, 0, len(m))
	for _, d := range m {
		out = append(out, d)
	}
	return out
}
