package httpclient

import (
	"net/http"
	"time"
)

// sharedTransport is reused by the OpenAI and answer clients so their calls
// draw from one keep-alive pool.
var sharedTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        32,
	MaxIdleConnsPerHost: 16,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
	ForceAttemptHTTP2:   true,
}

// NewPooledClient creates an http.Client bounded by timeout that shares the pooled transport.
func NewPooledClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: sharedTransport,
	}
}
