package tableau

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HttpRequestDoer performs HTTP requests.
//
// The standard http.Client implements this interface.
type HttpRequestDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// LoggingHTTPClient wraps an HTTP client and logs every exchange at debug
// level. Header values are never logged since they carry the session token.
type LoggingHTTPClient struct {
	client HttpRequestDoer
	logger *zap.Logger
}

// NewLoggingHTTPClient wraps doer. A nil logger disables logging.
func NewLoggingHTTPClient(doer HttpRequestDoer, logger *zap.Logger) *LoggingHTTPClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingHTTPClient{client: doer, logger: logger}
}

// Do executes the request and logs method, path, status and duration.
func (c *LoggingHTTPClient) Do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.client.Do(req)
	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		c.logger.Debug("request failed", append(fields, zap.Error(err))...)
		return resp, err
	}
	c.logger.Debug("request completed", append(fields, zap.Int("status", resp.StatusCode))...)
	return resp, nil
}

// newHTTPClient builds the transport used when no doer is supplied.
func newHTTPClient(tlsOpts TLSOptions, timeout time.Duration) (*http.Client, error) {
	tlsConfig, err := tlsOpts.TLSConfig()
	if err != nil {
		return nil, err
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}
