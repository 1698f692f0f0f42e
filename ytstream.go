// Package ytstream resolves YouTube video metadata, media stream descriptors,
// and caption tracks, deciphering protected stream signatures along the way.
//
// Basic usage:
//
//	c := ytstream.New()
//	set, err := c.ResolveMediaStreams(ctx, "dQw4w9WgXcQ")
//	if err != nil {
//		// handle
//	}
//	for _, s := range set.Muxed {
//		fmt.Println(s.Itag, s.QualityLabel, s.URL)
//	}
package ytstream

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ytget/ytstream/client"
	"github.com/ytget/ytstream/downloader"
	"github.com/ytget/ytstream/errs"
	"github.com/ytget/ytstream/internal/sanitize"
	"github.com/ytget/ytstream/internal/validate"
	"github.com/ytget/ytstream/types"
	"github.com/ytget/ytstream/youtube/captions"
	"github.com/ytget/ytstream/youtube/cipher"
	"github.com/ytget/ytstream/youtube/streams"
	"github.com/ytget/ytstream/youtube/videoinfo"
)

// Progress describes current progress of an ongoing download.
type Progress = downloader.Progress

// Client is the high-level entry point. A zero-configured client from New is
// ready to use; chainable setters adjust behavior before the first call.
//
// The client owns a compiled-cipher cache keyed by player script URL, so
// resolving many videos reuses cipher compilation across calls. Discard the
// cache by discarding the client.
type Client struct {
	httpClient   *client.Client
	info         *videoinfo.Resolver
	ciphers      *cipher.SourceCache
	streams      *streams.Resolver
	dl           *downloader.Downloader
	progressFunc func(Progress)
	rateLimitBps int64
}

// New creates a client with default HTTP settings.
func New() *Client {
	c := &Client{}
	c.rewire(client.New())
	return c
}

func (c *Client) rewire(httpClient *client.Client) {
	c.httpClient = httpClient
	c.info = videoinfo.NewResolver(httpClient)
	c.ciphers = cipher.NewSourceCache(httpClient)
	c.streams = streams.NewResolver(httpClient, c.ciphers)
	c.dl = downloader.New(httpClient)
}

// WithClientConfig replaces the HTTP client configuration (timeout, retries,
// user agent, proxy). Resets the cipher cache.
func (c *Client) WithClientConfig(cfg client.Config) *Client {
	c.rewire(client.NewWith(cfg))
	return c
}

// WithScriptFallback enables JavaScript execution of the player's decipher
// routine when structural cipher compilation fails. Off by default.
func (c *Client) WithScriptFallback(enabled bool) *Client {
	c.ciphers.WithScriptFallback(enabled)
	return c
}

// WithKnownItagsOnly discards stream descriptors whose itag is not in the
// known format tables. Off by default.
func (c *Client) WithKnownItagsOnly(enabled bool) *Client {
	c.streams.WithKnownItagsOnly(enabled)
	return c
}

// WithProgress registers a callback receiving download progress updates.
func (c *Client) WithProgress(f func(Progress)) *Client {
	c.progressFunc = f
	return c
}

// WithRateLimit caps download speed in bytes per second. Zero disables the cap.
func (c *Client) WithRateLimit(bps int64) *Client {
	c.rateLimitBps = bps
	return c
}

// ResolveVideoInfo fetches the raw video info blob for a video without
// requesting stream data.
func (c *Client) ResolveVideoInfo(ctx context.Context, videoID string) (*videoinfo.VideoInfo, error) {
	if !validate.IsValidVideoID(videoID) {
		return nil, errs.ErrInvalidVideoID
	}
	return c.info.Resolve(ctx, videoID, "")
}

// ResolveMediaStreams resolves the full set of muxed, audio, and video
// stream descriptors for a video, deciphering protected signatures.
func (c *Client) ResolveMediaStreams(ctx context.Context, videoID string) (*types.MediaStreamInfoSet, error) {
	if !validate.IsValidVideoID(videoID) {
		return nil, errs.ErrInvalidVideoID
	}
	pc, err := c.info.GetPlayerContext(ctx, videoID)
	if err != nil {
		return nil, err
	}
	info, err := c.info.Resolve(ctx, videoID, pc.STS)
	if err != nil {
		return nil, err
	}
	return c.streams.Resolve(ctx, videoID, info, pc.SourceURL)
}

// ResolveCaptionTracks lists the closed caption tracks available for a video.
// Videos without captions yield an empty list.
func (c *Client) ResolveCaptionTracks(ctx context.Context, videoID string) ([]types.ClosedCaptionTrackInfo, error) {
	if !validate.IsValidVideoID(videoID) {
		return nil, errs.ErrInvalidVideoID
	}
	info, err := c.info.Resolve(ctx, videoID, "")
	if err != nil {
		return nil, err
	}
	return captions.Extract(info.PlayerResponse())
}

// Download resolves the video's streams and saves the best muxed stream to
// outputPath. When outputPath is a directory or empty, the file name is
// derived from the video title and quality label.
func (c *Client) Download(ctx context.Context, videoID, outputPath string) error {
	if !validate.IsValidVideoID(videoID) {
		return errs.ErrInvalidVideoID
	}
	pc, err := c.info.GetPlayerContext(ctx, videoID)
	if err != nil {
		return err
	}
	info, err := c.info.Resolve(ctx, videoID, pc.STS)
	if err != nil {
		return err
	}
	set, err := c.streams.Resolve(ctx, videoID, info, pc.SourceURL)
	if err != nil {
		return err
	}
	if len(set.Muxed) == 0 {
		return fmt.Errorf("video %s: no muxed streams available", videoID)
	}
	best := set.Muxed[0]

	if outputPath == "" || isDir(outputPath) {
		name := sanitize.StreamFilename(info.Metadata().Title, best.QualityLabel, "mp4")
		outputPath = filepath.Join(outputPath, name)
	}

	d := c.dl.WithRateLimit(c.rateLimitBps)
	if c.progressFunc != nil {
		d = d.WithProgress(c.progressFunc)
	}
	return d.Download(ctx, best, outputPath)
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
