// Package downloader saves resolved media streams to disk with chunked
// ranged requests, resume support, and optional rate limiting.
package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ytget/ytstream/client"
	"github.com/ytget/ytstream/internal/logger"
	"github.com/ytget/ytstream/types"
)

const (
	defaultChunkSizeBytes = 1 << 20
	defaultMaxRetries     = 3
	temporaryFileSuffix   = ".tmp"
	copyBufferSizeBytes   = 32 * 1024
	initialBackoff        = 200 * time.Millisecond
	maxBackoff            = 3 * time.Second

	headerRange        = "Range"
	headerContentRange = "Content-Range"
)

var log = logger.WithComponent(logger.ComponentDownloader)

// Progress reports download state to the progress callback.
type Progress struct {
	TotalSize      int64
	DownloadedSize int64
	Percent        float64
}

// Downloader fetches a stream in bounded chunks, resuming from a partial
// temporary file when one exists.
type Downloader struct {
	httpClient   *client.Client
	progressFn   func(Progress)
	chunkSize    int64
	maxRetries   int
	rateLimitBps int64
}

// New creates a downloader with default chunk size and retries.
func New(httpClient *client.Client) *Downloader {
	return &Downloader{
		httpClient: httpClient,
		chunkSize:  defaultChunkSizeBytes,
		maxRetries: defaultMaxRetries,
	}
}

// WithProgress sets a callback invoked as bytes arrive.
func (d *Downloader) WithProgress(fn func(Progress)) *Downloader {
	d.progressFn = fn
	return d
}

// WithChunkSize overrides the per-request chunk size.
func (d *Downloader) WithChunkSize(size int64) *Downloader {
	if size > 0 {
		d.chunkSize = size
	}
	return d
}

// WithRateLimit caps download speed in bytes per second. Zero disables the cap.
func (d *Downloader) WithRateLimit(bps int64) *Downloader {
	d.rateLimitBps = bps
	return d
}

// Download saves a resolved stream to outputPath. The stream's content
// length, when known, bounds the chunk loop; otherwise the total is probed
// with a ranged request. A partial .tmp file from an earlier run is resumed.
func (d *Downloader) Download(ctx context.Context, stream types.StreamDescriptor, outputPath string) error {
	tmpPath := outputPath + temporaryFileSuffix
	outFile, downloaded, err := openOutput(tmpPath)
	if err != nil {
		return err
	}
	defer func() { _ = outFile.Close() }()
	if downloaded > 0 {
		log.Info("resuming partial download", map[string]any{"path": tmpPath, "bytes": downloaded})
	}

	totalSize := stream.ContentLength
	if totalSize <= 0 {
		totalSize, err = d.probeTotalSize(ctx, stream.URL)
		if err != nil {
			log.Warn("total size unknown, downloading unbounded", map[string]any{"error": err.Error()})
			totalSize = 0
		}
	}
	log.Debug("download started", map[string]any{"itag": stream.Itag, "total": totalSize})

	for totalSize == 0 || downloaded < totalSize {
		end := downloaded + d.chunkSize - 1
		if totalSize > 0 && end >= totalSize {
			end = totalSize - 1
		}

		resp, err := d.fetchChunk(ctx, stream.URL, downloaded, end)
		if err != nil {
			return fmt.Errorf("download chunk at %d: %w", downloaded, err)
		}

		n, err := d.copyChunk(outFile, resp.Body, &downloaded, totalSize)
		_ = resp.Body.Close()
		if err != nil {
			return err
		}
		// A short chunk from an unbounded download means the stream ended.
		if totalSize == 0 && n < d.chunkSize {
			break
		}
	}

	if downloaded == 0 {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("empty download: 0 bytes written")
	}
	return os.Rename(tmpPath, outputPath)
}

func openOutput(tmpPath string) (*os.File, int64, error) {
	if _, err := os.Stat(tmpPath); err == nil {
		f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, 0, fmt.Errorf("open partial file: %w", err)
		}
		fi, err := f.Stat()
		if err != nil {
			_ = f.Close()
			return nil, 0, err
		}
		return f, fi.Size(), nil
	}
	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, 0, fmt.Errorf("create output file: %w", err)
	}
	return f, 0, nil
}

// probeTotalSize issues a two-byte ranged GET and reads the total from the
// Content-Range header, falling back to Content-Length.
func (d *Downloader) probeTotalSize(ctx context.Context, url string) (int64, error) {
	resp, err := d.fetchChunk(ctx, url, 0, 1)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if cr := resp.Header.Get(headerContentRange); cr != "" {
		if i := strings.LastIndex(cr, "/"); i >= 0 {
			if v, err := strconv.ParseInt(cr[i+1:], 10, 64); err == nil {
				return v, nil
			}
		}
	}
	if v := resp.ContentLength; v > 2 {
		return v, nil
	}
	return 0, fmt.Errorf("cannot determine total size")
}

// fetchChunk requests one byte range with retry and backoff for transient
// failures.
func (d *Downloader) fetchChunk(ctx context.Context, url string, start, end int64) (*http.Response, error) {
	var lastErr error
	backoff := initialBackoff
	for attempt := 0; attempt < d.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", d.httpClient.UserAgent)
		req.Header.Set("Accept-Encoding", "identity")
		req.Header.Set(headerRange, fmt.Sprintf("bytes=%d-%d", start, end))

		resp, err := d.httpClient.HTTPClient.Do(req)
		if err == nil && resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusBadRequest {
			return resp, nil
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("HTTP status %d", resp.StatusCode)
			_ = resp.Body.Close()
		}
		log.Debug("chunk request failed, retrying", map[string]any{"attempt": attempt + 1, "error": lastErr.Error()})

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	return nil, lastErr
}

func (d *Downloader) copyChunk(dst io.Writer, src io.Reader, downloaded *int64, totalSize int64) (int64, error) {
	buf := make([]byte, copyBufferSizeBytes)
	var written int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return written, fmt.Errorf("write chunk: %w", werr)
			}
			written += int64(n)
			*downloaded += int64(n)
			d.reportProgress(*downloaded, totalSize)
			d.sleepForRate(int64(n))
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, fmt.Errorf("read chunk: %w", rerr)
		}
	}
}

func (d *Downloader) reportProgress(downloaded, totalSize int64) {
	if d.progressFn == nil {
		return
	}
	p := Progress{TotalSize: totalSize, DownloadedSize: downloaded}
	if totalSize > 0 {
		p.Percent = float64(downloaded) / float64(totalSize) * 100
	}
	d.progressFn(p)
}

// sleepForRate pauses long enough that written bytes fit the configured rate.
func (d *Downloader) sleepForRate(written int64) {
	if d.rateLimitBps <= 0 || written <= 0 {
		return
	}
	if dur := time.Duration(int64(time.Second) * written / d.rateLimitBps); dur > 0 {
		time.Sleep(dur)
	}
}
