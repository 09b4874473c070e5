// Package fetch retrieves remote resources: source pages and images.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"h2docx/config"
)

// ErrTooLarge is returned when resource exceeds configured size limit.
var ErrTooLarge = errors.New("resource exceeds size limit")

// StatusError reports unsuccessful HTTP response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected response for %s: %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// temporary responses are retried, anything else from the server is final.
func (e *StatusError) temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Client performs GET requests with bounded retries. It is safe for
// concurrent use.
type Client struct {
	attempts  int
	backoff   time.Duration
	maxSize   int64
	userAgent string
	client    *http.Client
	log       *zap.Logger
}

// New creates client from configuration.
func New(cfg *config.FetchConfig, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		attempts:  max(cfg.Attempts, 1),
		backoff:   cfg.Backoff,
		maxSize:   cfg.MaxSize,
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: cfg.Timeout},
		log:       log.Named("fetch"),
	}
}

// Get returns body of the resource. Transport failures and temporary server
// errors are retried, waiting between attempts. Oversized resources and
// permanent errors are not.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	for attempt := 1; attempt <= c.attempts; attempt++ {
		var data []byte
		if data, err = c.do(req); err == nil {
			return data, nil
		}
		if !retriable(err) || ctx.Err() != nil {
			break
		}
		c.log.Debug("Fetch failed", zap.String("url", url), zap.Int("attempt", attempt), zap.Error(err))
		if attempt == c.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("unable to fetch %s: %w", url, ctx.Err())
		case <-time.After(c.backoff):
		}
	}
	return nil, fmt.Errorf("unable to fetch %s: %w", url, err)
}

func retriable(err error) bool {
	if errors.Is(err, ErrTooLarge) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.temporary()
	}
	return true
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: req.URL.String(), Code: resp.StatusCode}
	}
	if c.maxSize > 0 && resp.ContentLength > c.maxSize {
		return nil, fmt.Errorf("%w: advertised %d bytes", ErrTooLarge, resp.ContentLength)
	}

	body := io.Reader(resp.Body)
	if c.maxSize > 0 {
		body = io.LimitReader(resp.Body, c.maxSize+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if c.maxSize > 0 && int64(len(data)) > c.maxSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, c.maxSize)
	}
	return data, nil
}
