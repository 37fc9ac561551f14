// Package network provides the pre-configured HTTP client shared by the
// controller channel and the lifecycle reporter.
package network

import (
	"net/http"
	"time"
)

// Client is the singleton HTTP client shared across the application.
// Its timeouts leave headroom over the longest configurable long-poll window.
var Client = &http.Client{
	Timeout:   2 * time.Minute,
	Transport: newTransport(),
}

// newTransport initializes a tuned http.Transport with pool parameters sized
// for a handful of concurrent requests against a single controller host.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 10
	t.MaxIdleConnsPerHost = 10
	t.IdleConnTimeout = 90 * time.Second
	t.ResponseHeaderTimeout = 90 * time.Second
	t.ExpectContinueTimeout = 5 * time.Second
	return t
}
