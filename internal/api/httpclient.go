// internal/api/httpclient.go
package api

import (
	"net"
	"net/http"
	"time"
)

// DefaultTimeout bounds a whole request, including reading the response body
const DefaultTimeout = 120 * time.Second

// newHTTPClient builds the shared client. A zero timeout disables the overall
// deadline; dial and TLS limits always apply. Requests are never retried.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
		},
	}
}
