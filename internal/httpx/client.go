// Package httpx builds the HTTP client shared by outbound integrations.
package httpx

import (
	"net/http"
	"time"
)

const DefaultTimeout = 90 * time.Second

// TimeoutFor returns the configured timeout, or DefaultTimeout when unset.
func TimeoutFor(timeoutSeconds int) time.Duration {
	if timeoutSeconds > 0 {
		return time.Duration(timeoutSeconds) * time.Second
	}
	return DefaultTimeout
}

// New returns a client whose requests are bounded by the given timeout.
func New(timeoutSeconds int) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 8
	transport.ResponseHeaderTimeout = TimeoutFor(timeoutSeconds)
	return &http.Client{
		Timeout:   TimeoutFor(timeoutSeconds),
		Transport: transport,
	}
}
