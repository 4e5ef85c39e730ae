// Package http builds the outbound HTTP clients used by the quote provider adapters.
package http

import (
	"net"
	"net/http"
	"time"
)

// DefaultUserAgent is sent when the caller does not set one. Some free quote endpoints
// reject requests that carry Go's default agent.
const DefaultUserAgent = "portfolio-backend/1.0"

// NewHTTPClient returns a client with an overall request timeout and bounded dial and
// TLS handshake times. http.DefaultClient has no timeout, so adapters never use it.
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: &userAgentTransport{next: t, agent: DefaultUserAgent}}
}

// userAgentTransport fills in the User-Agent header on requests that lack one.
type userAgentTransport struct {
	next  http.RoundTripper
	agent string
}

func (u *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return u.next.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", u.agent)
	return u.next.RoundTrip(r)
}
