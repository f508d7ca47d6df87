// Package fetch downloads the compressed wiktextract dump to local disk.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultURL is the full English wiktextract dump published by kaikki.org.
const DefaultURL = "https://kaikki.org/dictionary/raw-wiktextract-data.jsonl.gz"

const (
	defaultChunkBytes = 1 << 20
	defaultTimeout    = 60 * time.Second
)

// Options configure a Fetcher. Timeout bounds the dial and the response
// headers, not the whole body: the dump runs to tens of gigabytes and a
// healthy transfer outlives any whole-request deadline.
type Options struct {
	URL       string
	ChunkSize int
	Timeout   time.Duration
	Force     bool
}

// Fetcher downloads a file to a local path, skipping the transfer when
// the file is already present.
type Fetcher struct {
	opts   Options
	client *http.Client

	// OnProgress, when set, is called after each chunk with the bytes
	// written so far and the expected total, 0 when the server did not
	// say.
	OnProgress func(written, total int64)
}

// New returns a Fetcher, filling unset options with defaults.
func New(opts Options) *Fetcher {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkBytes
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Fetcher{
		opts: opts,
		client: &http.Client{
			Transport: &http.Transport{
				DialContext:           (&net.Dialer{Timeout: opts.Timeout}).DialContext,
				ResponseHeaderTimeout: opts.Timeout,
			},
		},
	}
}

// Ensure downloads the dump to path unless it already exists (or Force
// is set). It reports whether a download happened.
func (f *Fetcher) Ensure(ctx context.Context, path string) (bool, error) {
	if !f.opts.Force {
		if _, err := os.Stat(path); err == nil {
			log.Debugf("dump already present at %s", path)
			return false, nil
		} else if !os.IsNotExist(err) {
			return false, err
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("create output directory: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.opts.URL, nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}

	log.Debugf("fetching %s", f.opts.URL)
	resp, err := f.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("fetch %s: %w", f.opts.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("fetch %s: unexpected status %s", f.opts.URL, resp.Status)
	}

	if err := f.copyBody(path, resp); err != nil {
		// A partial file left behind would satisfy the exists check on
		// the next run.
		os.Remove(path)
		return false, err
	}
	return true, nil
}

func (f *Fetcher) copyBody(path string, resp *http.Response) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}

	buf := make([]byte, f.opts.ChunkSize)
	var written int64
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				out.Close()
				return fmt.Errorf("write %s: %w", path, werr)
			}
			written += int64(n)
			if f.OnProgress != nil {
				f.OnProgress(written, total)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			out.Close()
			return fmt.Errorf("read body: %w", err)
		}
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
