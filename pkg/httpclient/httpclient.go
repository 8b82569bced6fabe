// pkg/httpclient/httpclient.go

package httpclient

import (
	"context"
	"net"
	"net/http"
	"time"
)

// New builds the HTTP client used for all outbound calls. Certificate
// verification is always on; timeout is the only safety net against hangs
// since probing never retries.
func New(timeout time.Duration, caCertFile string) (*http.Client, error) {
	tlsCfg, err := SecureTLSConfig(caCertFile)
	if err != nil {
		return nil, err
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: tlsCfg,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
		},
	}, nil
}

// AuthenticatedGet issues a basic-auth GET bound to ctx.
func AuthenticatedGet(ctx context.Context, client *http.Client, url, identity, secret string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(identity, secret)
	req.Header.Set("Accept", "application/json, text/html")
	return client.Do(req)
}
