package streams

import (
	"context"
	"encoding/xml"
	"regexp"
	"strconv"
	"strings"

	"github.com/ytget/ytstream/errs"
	"github.com/ytget/ytstream/types"
)

const segmentedMarker = "sq/"

var (
	dashSigRe  = regexp.MustCompile(`/s/([^/]+)/`)
	dashClenRe = regexp.MustCompile(`clen[/=](\d+)`)
)

// DASH manifest shapes. Namespaces are ignored; only the elements read below
// matter.
type dashManifest struct {
	XMLName xml.Name     `xml:"MPD"`
	Periods []dashPeriod `xml:"Period"`
}

type dashPeriod struct {
	AdaptationSets []dashAdaptationSet `xml:"AdaptationSet"`
}

type dashAdaptationSet struct {
	Representations []dashRepresentation `xml:"Representation"`
}

type dashRepresentation struct {
	ID          string             `xml:"id,attr"`
	Bandwidth   int64              `xml:"bandwidth,attr"`
	Width       int                `xml:"width,attr"`
	Height      int                `xml:"height,attr"`
	FrameRate   string             `xml:"frameRate,attr"`
	BaseURL     string             `xml:"BaseURL"`
	AudioConfig []struct{}         `xml:"AudioChannelConfiguration"`
	ListInit    dashInitialization `xml:"SegmentList>Initialization"`
	BaseInit    dashInitialization `xml:"SegmentBase>Initialization"`
}

type dashInitialization struct {
	SourceURL string `xml:"sourceURL,attr"`
}

// segmented reports whether the representation is delivered per segment and
// therefore has no single static URL.
func (rep *dashRepresentation) segmented() bool {
	return strings.Contains(rep.ListInit.SourceURL, segmentedMarker) ||
		strings.Contains(rep.BaseInit.SourceURL, segmentedMarker)
}

// parseDash fetches the DASH manifest and folds its representations into the
// stream maps. The manifest URL itself may embed an enciphered signature as a
// /s/<sig>/ path segment, which is deciphered and spliced back as
// /signature/<sig>/ before the fetch.
func (r *Resolver) parseDash(ctx context.Context, manifestURL, scriptURL string, maps *streamMaps) error {
	resolved, err := r.resolveDashURL(ctx, manifestURL, scriptURL)
	if err != nil {
		return err
	}
	body, err := r.httpClient.GetBody(ctx, resolved)
	if err != nil {
		return err
	}

	var manifest dashManifest
	if err := xml.Unmarshal(body, &manifest); err != nil {
		return errs.NewParseError("dash manifest", err)
	}

	for _, period := range manifest.Periods {
		for _, set := range period.AdaptationSets {
			for _, rep := range set.Representations {
				if rep.segmented() {
					continue
				}
				itag, err := strconv.Atoi(rep.ID)
				if err != nil {
					return errs.NewParseError("dash representation id")
				}
				if r.knownItagsOnly && !isKnownItag(itag) {
					continue
				}

				d := types.StreamDescriptor{
					Itag:          itag,
					URL:           rep.BaseURL,
					ContentLength: dashContentLength(rep.BaseURL),
					Bitrate:       rep.Bandwidth,
				}
				if len(rep.AudioConfig) > 0 {
					d.Kind = types.KindAudio
				} else {
					d.Kind = types.KindVideo
					d.Resolution = types.Resolution{Width: rep.Width, Height: rep.Height}
					d.Framerate, _ = strconv.Atoi(rep.FrameRate)
				}
				maps.put(d)
			}
		}
	}
	return nil
}

func (r *Resolver) resolveDashURL(ctx context.Context, manifestURL, scriptURL string) (string, error) {
	m := dashSigRe.FindStringSubmatch(manifestURL)
	if m == nil {
		return manifestURL, nil
	}
	deciphered, err := r.ciphers.Decipher(ctx, scriptURL, m[1])
	if err != nil {
		return "", err
	}
	return strings.Replace(manifestURL, m[0], "/signature/"+deciphered+"/", 1), nil
}

// dashContentLength recovers the stream size from the clen marker embedded
// in the representation URL. Zero when absent.
func dashContentLength(repURL string) int64 {
	m := dashClenRe.FindStringSubmatch(repURL)
	if m == nil {
		return 0
	}
	n, _ := strconv.ParseInt(m[1], 10, 64)
	return n
}
