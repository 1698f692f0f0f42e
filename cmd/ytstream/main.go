package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ytget/ytstream"
	"github.com/ytget/ytstream/client"
	"github.com/ytget/ytstream/internal/validate"
)

func main() {
	var (
		flagMode       string
		flagOutput     string
		flagNoProgress bool
		flagTimeout    time.Duration
		flagRetries    int
		flagUA         string
		flagProxy      string
		flagRateLimit  string
		flagKnownItags bool
		flagFallback   bool
	)

	flag.StringVar(&flagMode, "mode", "download", "Operation: info, streams, captions, or download")
	flag.StringVar(&flagOutput, "output", "", "Output path (file or directory). Empty derives from title")
	flag.BoolVar(&flagNoProgress, "no-progress", false, "Disable progress output")
	flag.DurationVar(&flagTimeout, "http-timeout", 30*time.Second, "HTTP timeout (e.g., 30s, 1m)")
	flag.IntVar(&flagRetries, "retries", 3, "HTTP retries for transient errors")
	flag.StringVar(&flagUA, "ua", "", "Override User-Agent header")
	flag.StringVar(&flagProxy, "proxy", "", "Proxy URL (http/https/socks)")
	flag.StringVar(&flagRateLimit, "rate-limit", "", "Download rate limit (e.g., 2MiB/s, 500KiB/s)")
	flag.BoolVar(&flagKnownItags, "known-itags", false, "Discard streams with unrecognized itags")
	flag.BoolVar(&flagFallback, "script-fallback", false, "Execute the player script when cipher compilation fails")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <video_url_or_id>\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
	}

	flag.Parse()
	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(2)
	}

	videoID, err := parseVideoID(strings.TrimSpace(args[0]))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid input: %v\n", err)
		os.Exit(2)
	}

	c := ytstream.New().
		WithClientConfig(client.Config{Timeout: flagTimeout, Retries: flagRetries, UserAgent: flagUA, ProxyURL: flagProxy}).
		WithKnownItagsOnly(flagKnownItags).
		WithScriptFallback(flagFallback)
	if bps := parseRate(flagRateLimit); bps > 0 {
		c = c.WithRateLimit(bps)
	}

	ctx := context.Background()
	switch flagMode {
	case "info":
		err = printInfo(ctx, c, videoID)
	case "streams":
		err = printStreams(ctx, c, videoID)
	case "captions":
		err = printCaptions(ctx, c, videoID)
	case "download":
		if !flagNoProgress {
			c = c.WithProgress(func(p ytstream.Progress) {
				if p.TotalSize > 0 {
					_, _ = fmt.Fprintf(os.Stdout, "Downloaded %.1f%%\r", p.Percent)
				}
			})
		}
		if err = c.Download(ctx, videoID, flagOutput); err == nil {
			_, _ = fmt.Fprintln(os.Stdout, "\nDone")
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown mode: %s\n", flagMode)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printInfo(ctx context.Context, c *ytstream.Client, videoID string) error {
	info, err := c.ResolveVideoInfo(ctx, videoID)
	if err != nil {
		return err
	}
	meta := info.Metadata()
	fmt.Printf("ID:       %s\n", meta.ID)
	fmt.Printf("Title:    %s\n", meta.Title)
	fmt.Printf("Author:   %s\n", meta.Author)
	fmt.Printf("Duration: %ds\n", meta.Duration)
	return nil
}

func printStreams(ctx context.Context, c *ytstream.Client, videoID string) error {
	set, err := c.ResolveMediaStreams(ctx, videoID)
	if err != nil {
		return err
	}
	for _, s := range set.Muxed {
		fmt.Printf("muxed  itag=%-3d %-8s %d bytes\n", s.Itag, s.QualityLabel, s.ContentLength)
	}
	for _, s := range set.Video {
		fmt.Printf("video  itag=%-3d %-8s %d bps\n", s.Itag, s.QualityLabel, s.Bitrate)
	}
	for _, s := range set.Audio {
		fmt.Printf("audio  itag=%-3d %d bps\n", s.Itag, s.Bitrate)
	}
	if set.LivePlaylistURL != "" {
		fmt.Printf("live   %s\n", set.LivePlaylistURL)
	}
	return nil
}

func printCaptions(ctx context.Context, c *ytstream.Client, videoID string) error {
	tracks, err := c.ResolveCaptionTracks(ctx, videoID)
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		fmt.Println("No caption tracks")
		return nil
	}
	for _, tr := range tracks {
		kind := "manual"
		if tr.IsAutoGenerated {
			kind = "auto"
		}
		fmt.Printf("%-6s %-8s %s\n", kind, tr.LanguageCode, tr.LanguageName)
	}
	return nil
}

// parseVideoID accepts a raw video ID, a watch URL, or a short youtu.be URL.
func parseVideoID(input string) (string, error) {
	if validate.IsValidVideoID(input) {
		return input, nil
	}
	u, err := url.Parse(input)
	if err != nil {
		return "", err
	}
	if id := u.Query().Get("v"); validate.IsValidVideoID(id) {
		return id, nil
	}
	if strings.HasSuffix(u.Host, "youtu.be") {
		if id := strings.Trim(u.Path, "/"); validate.IsValidVideoID(id) {
			return id, nil
		}
	}
	if strings.Contains(u.Path, "/embed/") {
		parts := strings.Split(u.Path, "/")
		if id := parts[len(parts)-1]; validate.IsValidVideoID(id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("video id not found in %q", input)
}

// parseRate parses strings like "2MiB/s", "500KiB/s" into bytes per second.
func parseRate(s string) int64 {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return 0
	}
	s = strings.TrimSpace(strings.TrimSuffix(s, "/S"))
	mul := int64(1)
	for _, suf := range []struct {
		name string
		mul  int64
	}{
		{"KIB", 1024}, {"MIB", 1024 * 1024}, {"GIB", 1024 * 1024 * 1024},
		{"KB", 1000}, {"MB", 1000 * 1000}, {"GB", 1000 * 1000 * 1000},
	} {
		if strings.HasSuffix(s, suf.name) {
			mul = suf.mul
			s = strings.TrimSpace(strings.TrimSuffix(s, suf.name))
			break
		}
	}
	var val float64
	if _, err := fmt.Sscanf(s, "%f", &val); err != nil || val <= 0 {
		return 0
	}
	return int64(val * float64(mul))
}
