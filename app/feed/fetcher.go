package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

const (
	DefaultTimeout      = 9 * time.Second
	DefaultMaxBodyBytes = 5 << 20
	DefaultUserAgent    = "Trifecta/1.0 (+headline aggregator; liberal/libertarian/conservative panels)"

	acceptHeader = "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5"
)

type FetcherInterface interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

var _ FetcherInterface = (*Fetcher)(nil)

type Fetcher struct {
	httpClient   *http.Client
	userAgent    string
	timeout      time.Duration
	maxBodyBytes int64
}

func NewFetcher(httpClient *http.Client, userAgent string, timeout time.Duration, maxBodyBytes int64) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     30 * time.Second,
			},
		}
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}

	return &Fetcher{
		httpClient:   httpClient,
		userAgent:    userAgent,
		timeout:      timeout,
		maxBodyBytes: maxBodyBytes,
	}
}

// Fetch downloads url and returns its body as UTF-8. Only the fetcher's own
// timeout aborts the request; cancellation of ctx is ignored.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, f.classify(timeoutCtx, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(f.decodeBody(io.LimitReader(resp.Body, f.maxBodyBytes), resp.Header.Get("Content-Type")))
	if err != nil {
		return nil, f.classify(timeoutCtx, url, err)
	}

	return data, nil
}

func (f *Fetcher) classify(ctx context.Context, url string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{URL: url, Timeout: f.timeout}
	}
	return &FetchError{URL: url, Err: err}
}

// decodeBody transcodes bodies declared in a non-UTF-8 charset.
func (f *Fetcher) decodeBody(body io.Reader, contentType string) io.Reader {
	if contentType == "" {
		return body
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return body
	}

	charset := strings.ToLower(strings.TrimSpace(params["charset"]))
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return body
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		slog.Debug("Unknown response charset, reading body as is", "charset", charset)
		return body
	}

	return transform.NewReader(body, enc.NewDecoder())
}
