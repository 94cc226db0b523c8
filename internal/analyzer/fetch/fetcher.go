package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// 固定浏览器 UA，公众号页面对默认 Go UA 返回验证页
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	defaultTimeout  = 5 * time.Second
	politenessDelay = 200 * time.Millisecond

	// 上限防止异常页面拖垮内存；正常文章页远小于此
	maxBodyBytes = 10 << 20
)

// Error is the typed failure for one fetch attempt: transport error, timeout
// or non-2xx status. There are no retries; the caller downgrades the item.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Fetcher issues single-attempt GETs against classified article URLs. One
// Fetcher (and its pooled client) is shared by all fetches of an analysis.
type Fetcher struct {
	client *http.Client
	delay  time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// WithDelay overrides the politeness delay applied before each request.
func WithDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.delay = d
	}
}

// New creates a Fetcher with a connection-pooling client.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        8,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		delay: politenessDelay,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs one GET and returns the raw markup. Any failure comes back
// as *Error with the URL preserved.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, &Error{URL: url, Err: ctx.Err()}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &Error{URL: url, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	return body, nil
}
