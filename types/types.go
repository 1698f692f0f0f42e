package types

// StreamKind partitions stream descriptors by payload.
type StreamKind int

const (
	// KindMuxed is a single stream carrying both audio and video.
	KindMuxed StreamKind = iota
	// KindAudio is an audio-only stream.
	KindAudio
	// KindVideo is a video-only stream.
	KindVideo
)

func (k StreamKind) String() string {
	switch k {
	case KindMuxed:
		return "muxed"
	case KindAudio:
		return "audio"
	case KindVideo:
		return "video"
	}
	return "unknown"
}

// Resolution is a video frame size in pixels.
type Resolution struct {
	Width  int
	Height int
}

// StreamDescriptor describes a single downloadable media stream. Itag
// uniquely identifies an encoding within its kind.
type StreamDescriptor struct {
	Itag          int
	URL           string
	Kind          StreamKind
	ContentLength int64
	Bitrate       int64
	Resolution    Resolution
	Framerate     int
	QualityLabel  string
}

// MediaStreamInfoSet holds all resolved streams for a video, each kind sorted
// descending by its quality metric (muxed/video: resolution-derived quality,
// audio: bitrate).
type MediaStreamInfoSet struct {
	Muxed           []StreamDescriptor
	Audio           []StreamDescriptor
	Video           []StreamDescriptor
	LivePlaylistURL string
}

// ClosedCaptionTrackInfo describes a caption track location.
type ClosedCaptionTrackInfo struct {
	URL             string
	LanguageCode    string
	LanguageName    string
	IsAutoGenerated bool
}

// VideoMetadata holds the basic metadata of a resolved video.
type VideoMetadata struct {
	ID       string
	Title    string
	Author   string
	Duration int
}
