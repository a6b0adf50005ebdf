// Package feed reads the JSON import feeds from disk or over HTTP.
package feed

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"zoover/internal/adapters/observability"
)

var (
	ErrNotFound   = errors.New("feed: not found")
	ErrNotAnArray = errors.New("feed: top-level value is not a JSON array")
)

type Loader struct {
	hc *http.Client
	rl *rate.Limiter
}

// New returns a Loader; rps throttles remote fetches only.
func New(rps int, timeout time.Duration) *Loader {
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Loader{
		hc: &http.Client{Timeout: timeout},
		rl: rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// Load returns the elements of the JSON array at location, undecoded.
// location is a file path or an http(s) URL.
func (l *Loader) Load(ctx context.Context, location string) ([]json.RawMessage, error) {
	rc, err := l.open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	br := bufio.NewReader(rc)
	if err := expectArray(br); err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	var out []json.RawMessage
	if err := json.NewDecoder(br).DecodeContext(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", location, err)
	}
	return out, nil
}

// expectArray peeks past leading whitespace and checks for '['.
func expectArray(br *bufio.Reader) error {
	for {
		b, err := br.Peek(1)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return ErrNotAnArray
			}
			return err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			_, _ = br.ReadByte()
		case '[':
			return nil
		default:
			return ErrNotAnArray
		}
	}
}

func (l *Loader) open(ctx context.Context, location string) (io.ReadCloser, error) {
	if u, err := url.Parse(location); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return l.get(ctx, location)
	}
	f, err := os.Open(location)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", location, ErrNotFound)
	}
	return f, err
}

// get performs a single rate-limited GET and returns the open body on 200.
// Failures are reported, never retried.
func (l *Loader) get(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	if err := l.rl.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "zoover-importer/1.0")

	endpoint := endpointLabel(rawURL)
	start := time.Now()
	resp, err := l.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("feed", endpoint, 0, time.Since(start))
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	observability.ObserveExternal("feed", endpoint, resp.StatusCode, time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK:
		return resp.Body, nil
	case http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", rawURL, ErrNotFound)
	default:
		// read a small error body for diagnostics
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
}

// endpointLabel keeps metric cardinality to host+path.
func endpointLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "invalid"
	}
	return u.Host + u.Path
}
