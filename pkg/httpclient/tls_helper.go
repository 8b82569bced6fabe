// pkg/httpclient/tls_helper.go

package httpclient

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// SecureTLSConfig creates a TLS configuration with certificate validation on.
// A custom CA bundle can be supplied for internal issuers; there is no
// insecure override.
func SecureTLSConfig(caCertPath string) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}

	if caCertPath != "" {
		caCert, err := os.ReadFile(caCertPath)
		if err != nil {
			return nil, fmt.Errorf("read CA certificate from %s: %w", caCertPath, err)
		}

		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("parse CA certificate from %s", caCertPath)
		}
		tlsConfig.RootCAs = caCertPool
	}

	return tlsConfig, nil
}
