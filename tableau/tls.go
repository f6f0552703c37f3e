package tableau

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// TLSOptions controls certificate verification for the REST client.
type TLSOptions struct {
	// InsecureSkipVerify accepts any server certificate.
	InsecureSkipVerify bool
	// CACertFile is an optional PEM bundle trusted in addition to the
	// system roots.
	CACertFile string
}

// TLSConfig builds the client TLS configuration. TLS 1.2 is the minimum.
func (o TLSOptions) TLSConfig() (*tls.Config, error) {
	cfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: o.InsecureSkipVerify, //nolint:gosec // opt-in via --insecure
	}
	if o.CACertFile == "" {
		return cfg, nil
	}

	pem, err := os.ReadFile(o.CACertFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate from %s: %w", o.CACertFile, err)
	}
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("failed to parse CA certificate from %s", o.CACertFile)
	}
	cfg.RootCAs = pool
	return cfg, nil
}
