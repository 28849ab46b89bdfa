package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/andybalholm/brotli"
)

const (
	DefaultUserAgent  = "history4feed"
	DefaultMaxRetries = 3
	DefaultRetrySleep = time.Second

	DefaultProxyEndpoint = "https://api.scrapfly.io/scrape"
	ProxyKeyEnv          = "SCRAPFLY_APIKEY"

	// Origin countries the proxy is allowed to route through.
	proxyCountries = "us,ca,mx,gb,fr,de,au,at,be,hr,cz,dk,ee,fi,ie,se,es,pt,nl"
)

// Session issues retrying GET requests. 4xx and 5xx responses are retried up
// to MaxRetries; once retries are exhausted the last response is returned
// as-is so the caller can inspect it.
type Session struct {
	UserAgent  string
	MaxRetries int
	RetrySleep time.Duration

	// ProxyEndpoint and ProxyKeyEnv are overridable for tests.
	ProxyEndpoint string
	ProxyKeyEnv   string

	client *http.Client
}

// NewSession creates a session. With followRedirects false, redirects are
// returned to the caller instead of being followed.
func NewSession(userAgent string, followRedirects bool) *Session {
	client := &http.Client{Timeout: 60 * time.Second}
	if !followRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Session{
		UserAgent:     userAgent,
		MaxRetries:    DefaultMaxRetries,
		RetrySleep:    DefaultRetrySleep,
		ProxyEndpoint: DefaultProxyEndpoint,
		ProxyKeyEnv:   ProxyKeyEnv,
		client:        client,
	}
}

// Get performs a GET with retries on 4xx/5xx. It returns the final status
// code and body; exhausted retries are not an error.
func (s *Session) Get(ctx context.Context, rawURL string) (int, []byte, error) {
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", s.UserAgent)

		resp, err := s.client.Do(req)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to fetch `%s`: %w", rawURL, err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return resp.StatusCode, nil, fmt.Errorf("failed to read response body for `%s`: %w", rawURL, err)
		}

		if resp.StatusCode != http.StatusOK {
			slog.Info("HTTP status code", "status", resp.StatusCode, "url", rawURL)
		}

		if resp.StatusCode/100 == 4 || resp.StatusCode/100 == 5 {
			if attempt < s.MaxRetries {
				slog.Info("Waiting before retrying", "url", rawURL, "sleep", s.RetrySleep.String())
				if err := sleep(ctx, s.RetrySleep); err != nil {
					return resp.StatusCode, body, err
				}
				continue
			}
			slog.Warn("Maximum retries reached, returning last response", "url", rawURL)
		}

		return resp.StatusCode, body, nil
	}
}

// Fetch retrieves the body of a URL. When a proxy API key is present in the
// environment, the request is routed through the proxy endpoint and the JSON
// envelope is unwrapped; otherwise the URL is fetched directly and the body
// is opportunistically Brotli-decompressed, since wayback servers sometimes
// return br-encoded payloads without the matching Content-Encoding header.
func (s *Session) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if key := os.Getenv(s.ProxyKeyEnv); key != "" {
		return s.fetchViaProxy(ctx, key, rawURL)
	}

	slog.Info("Fetching", "url", rawURL)
	status, body, err := s.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &TransportError{URL: rawURL, StatusCode: status, Reason: http.StatusText(status)}
	}

	if decoded, err := io.ReadAll(brotli.NewReader(bytes.NewReader(body))); err == nil && len(decoded) > 0 {
		return decoded, nil
	}
	return body, nil
}

type proxyEnvelope struct {
	Result struct {
		StatusCode int    `json:"status_code"`
		Status     string `json:"status"`
		Content    string `json:"content"`
	} `json:"result"`
}

func (s *Session) fetchViaProxy(ctx context.Context, key, target string) ([]byte, error) {
	slog.Info("Fetching via proxy", "url", target)

	endpoint, err := url.Parse(s.ProxyEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse proxy endpoint: %w", err)
	}
	q := endpoint.Query()
	q.Set("key", key)
	q.Set("url", target)
	q.Set("country", proxyCountries)
	endpoint.RawQuery = q.Encode()

	_, body, err := s.Get(ctx, endpoint.String())
	if err != nil {
		return nil, err
	}

	var envelope proxyEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &TransportError{URL: target, Reason: fmt.Sprintf("malformed proxy response: %v", err)}
	}

	result := envelope.Result
	switch {
	case result.StatusCode > 399:
		return nil, &TransportError{URL: target, StatusCode: result.StatusCode, Reason: result.Status}
	case result.StatusCode > 299:
		return nil, &RedirectError{URL: target, StatusCode: result.StatusCode, Reason: result.Status}
	}

	return []byte(result.Content), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
