package fetcher

import "fmt"

// TransportError reports a GET that exhausted its retries with a non-2xx
// status, or a proxy response with status above 399.
type TransportError struct {
	URL        string
	StatusCode int
	Reason     string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("GET request failed for `%s`, status: %d, reason: %s", e.URL, e.StatusCode, e.Reason)
}

// RedirectError reports a proxy response in the 300-399 range, which is
// surfaced separately so callers can distinguish moved targets from failures.
type RedirectError struct {
	URL        string
	StatusCode int
	Reason     string
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("GET for `%s` redirected, status: %d, reason: %s", e.URL, e.StatusCode, e.Reason)
}
