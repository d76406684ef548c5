// Package fetch retrieves the remote document with a single bounded GET.
package fetch

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/revden/webdeck/internal/content"
	"github.com/revden/webdeck/internal/logging"
)

var log = logging.New("fetch")

const (
	// DefaultTimeout bounds the whole request including the body read.
	DefaultTimeout = 15 * time.Second
	// DefaultMaxBody is the largest body accepted. Larger bodies fail the fetch.
	DefaultMaxBody = 32 << 20
)

// Fetcher performs one GET per call. It never retries and never touches the cache.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	maxBody   int64
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMaxBody overrides DefaultMaxBody. Non-positive values are ignored.
func WithMaxBody(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBody = n
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// WithHTTPClient replaces the underlying client. Its own Timeout is left alone;
// the fetch timeout is enforced through the request context.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{},
		timeout:   DefaultTimeout,
		maxBody:   DefaultMaxBody,
		userAgent: "webdeck",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Timeout returns the effective request timeout.
func (f *Fetcher) Timeout() time.Duration {
	return f.timeout
}

// Fetch GETs url and returns the body decoded to UTF-8. Failures are one of
// ErrTimeout, *StatusError or *TransportError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (content.Blob, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return content.Blob{}, &TransportError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return content.Blob{}, classify(ctx, url, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warnf("GET %s: status %d after %s", url, resp.StatusCode, time.Since(start).Round(time.Millisecond))
		return content.Blob{}, &StatusError{URL: url, Code: resp.StatusCode}
	}

	if resp.ContentLength > f.maxBody {
		log.Warnf("GET %s: declared length %d exceeds %d", url, resp.ContentLength, f.maxBody)
		return content.Blob{}, &TransportError{URL: url, Err: fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)}
	}

	body, err := f.readBody(resp)
	if err != nil {
		return content.Blob{}, classify(ctx, url, err)
	}

	log.Infof("GET %s: %d bytes in %s", url, len(body), time.Since(start).Round(time.Millisecond))
	return content.FromBytes(body), nil
}

func (f *Fetcher) readBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	case "deflate":
		zr, err := zlib.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("deflate reader: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	raw, err := io.ReadAll(io.LimitReader(r, f.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(raw)) > f.maxBody {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, f.maxBody)
	}

	contentType := resp.Header.Get("Content-Type")
	utf8Reader, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		log.Debugf("no charset decoder for %q, using raw bytes: %v", contentType, err)
		return raw, nil
	}
	decoded, err := io.ReadAll(utf8Reader)
	if err != nil {
		log.Debugf("charset decode failed, using raw bytes: %v", err)
		return raw, nil
	}
	return decoded, nil
}

func classify(ctx context.Context, url string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("GET %s: %w", url, ErrTimeout)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("GET %s: %w", url, ErrTimeout)
	}
	return &TransportError{URL: url, Err: err}
}
