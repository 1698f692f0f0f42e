package streams

import (
	"fmt"

	"github.com/ytget/ytstream/types"
)

// videoProfile carries the static quality attributes of a video-bearing itag.
// Entries from the muxed list do not self-describe resolution, so it is
// recovered from this table.
type videoProfile struct {
	Height int
}

// videoItags maps muxed and video-only itags to their nominal vertical
// resolution.
var videoItags = map[int]videoProfile{
	// muxed
	5:   {Height: 240},
	6:   {Height: 270},
	17:  {Height: 144},
	18:  {Height: 360},
	22:  {Height: 720},
	34:  {Height: 360},
	35:  {Height: 480},
	36:  {Height: 240},
	37:  {Height: 1080},
	38:  {Height: 3072},
	43:  {Height: 360},
	44:  {Height: 480},
	45:  {Height: 720},
	46:  {Height: 1080},
	59:  {Height: 480},
	78:  {Height: 480},
	82:  {Height: 360},
	83:  {Height: 480},
	84:  {Height: 720},
	85:  {Height: 1080},
	91:  {Height: 144},
	92:  {Height: 240},
	93:  {Height: 360},
	94:  {Height: 480},
	95:  {Height: 720},
	96:  {Height: 1080},
	// video-only
	133: {Height: 240},
	134: {Height: 360},
	135: {Height: 480},
	136: {Height: 720},
	137: {Height: 1080},
	138: {Height: 4320},
	160: {Height: 144},
	242: {Height: 240},
	243: {Height: 360},
	244: {Height: 480},
	247: {Height: 720},
	248: {Height: 1080},
	264: {Height: 1440},
	266: {Height: 2160},
	271: {Height: 1440},
	272: {Height: 4320},
	278: {Height: 144},
	298: {Height: 720},
	299: {Height: 1080},
	302: {Height: 720},
	303: {Height: 1080},
	308: {Height: 1440},
	313: {Height: 2160},
	315: {Height: 2160},
}

// audioItags is the set of known audio-only itags.
var audioItags = map[int]struct{}{
	139: {}, 140: {}, 141: {},
	171: {}, 172: {},
	249: {}, 250: {}, 251: {},
}

func isKnownItag(itag int) bool {
	if _, ok := videoItags[itag]; ok {
		return true
	}
	_, ok := audioItags[itag]
	return ok
}

// resolutionFor returns the nominal resolution and quality label for a
// video-bearing itag, assuming a 16:9 frame. Unknown itags yield zero values.
func resolutionFor(itag int) (types.Resolution, string) {
	p, ok := videoItags[itag]
	if !ok {
		return types.Resolution{}, ""
	}
	return types.Resolution{Width: p.Height * 16 / 9, Height: p.Height}, fmt.Sprintf("%dp", p.Height)
}
