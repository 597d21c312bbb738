// Package httpclient is the HTTP plumbing shared by metadata sources and hosting clients:
// a DNS-caching transport and a JSON client that retries with exponential backoff.
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/cenk/backoff"
	"github.com/rs/dnscache"
	logger "github.com/sirupsen/logrus"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 4
	dnsRefreshPeriod  = 5 * time.Minute
	userAgent         = "pbot (+https://github.com/rios0rios0/pbot)"
)

// ErrNotFound is returned for 404 responses.
var ErrNotFound = errors.New("resource not found")

var (
	resolverOnce sync.Once
	resolver     *dnscache.Resolver
)

// HTTPError is a non-success response.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// IsNotFound reports whether the error is a 404.
func (e *HTTPError) IsNotFound() bool { return e.StatusCode == http.StatusNotFound }

func (e *HTTPError) Unwrap() error {
	if e.IsNotFound() {
		return ErrNotFound
	}
	return nil
}

func (e *HTTPError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

func sharedResolver() *dnscache.Resolver {
	resolverOnce.Do(func() {
		resolver = &dnscache.Resolver{}
		go func() {
			ticker := time.NewTicker(dnsRefreshPeriod)
			defer ticker.Stop()
			for range ticker.C {
				resolver.Refresh(true)
			}
		}()
	})
	return resolver
}

// NewHTTPClient returns an *http.Client whose dialer resolves hosts through a shared DNS cache.
func NewHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   defaultTimeout,
		KeepAlive: defaultTimeout,
	}
	cache := sharedResolver()

	return &http.Client{
		Timeout: defaultTimeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				host, port, err := net.SplitHostPort(addr)
				if err != nil {
					return nil, err
				}
				ips, err := cache.LookupHost(ctx, host)
				if err != nil {
					return nil, err
				}
				var lastErr error
				for _, ip := range ips {
					conn, dialErr := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
					if dialErr == nil {
						return conn, nil
					}
					lastErr = dialErr
				}
				return nil, fmt.Errorf("failed to dial any resolved IP for %s: %w", host, lastErr)
			},
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: time.Second,
		},
	}
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.http = client }
}

// WithMaxRetries sets how many times a retryable failure is retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithBackOff sets the policy used between retries.
func WithBackOff(factory func() backoff.BackOff) Option {
	return func(c *Client) { c.newBackOff = factory }
}

// Client fetches JSON documents, retrying rate limits, server errors and network failures.
type Client struct {
	http       *http.Client
	maxRetries int
	newBackOff func() backoff.BackOff
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		maxRetries: defaultMaxRetries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 10 * time.Second
			b.Multiplier = 2.0
			return b
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = NewHTTPClient()
	}
	return c
}

// GetJSON fetches url and decodes its JSON body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	policy := backoff.WithMaxRetries(c.newBackOff(), uint64(c.maxRetries))
	policy.Reset()

	for {
		err := c.getJSON(ctx, url, v)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}

		wait := policy.NextBackOff()
		if wait == backoff.Stop {
			return err
		}
		logger.Debugf("[http] Retrying %s in %s: %v", url, wait, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}

	if decodeErr := json.NewDecoder(resp.Body).Decode(v); decodeErr != nil {
		return fmt.Errorf("decoding %s: %w", url, decodeErr)
	}
	return nil
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.retryable()
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
