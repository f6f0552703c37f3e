// Package tableau is a small client for the Tableau Server REST API. It
// covers the calls needed to refresh extracts: server version negotiation,
// personal access token sign-in and sign-out, filtered listing of workbooks
// and datasources, and the refresh endpoints.
package tableau

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"
)

// RequestEditorFn is the function signature for the RequestEditor callback function
type RequestEditorFn func(ctx context.Context, req *http.Request) error

// Client talks to one Tableau Server.
type Client struct {
	// Server is the base URL, always with a trailing slash.
	Server string
	// APIVersion is the REST API version used in request paths. Empty
	// until UseServerVersion or WithAPIVersion sets it.
	APIVersion string

	Client         HttpRequestDoer
	RequestEditors []RequestEditorFn

	tls     TLSOptions
	timeout time.Duration
	logger  *zap.Logger
}

// ClientOption allows setting custom parameters during construction
type ClientOption func(*Client) error

// NewClient creates a client for the server at server.
func NewClient(server string, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(server) == "" {
		return nil, errors.New("server URL is empty")
	}
	c := &Client{Server: server, logger: zap.NewNop()}
	for _, o := range opts {
		if err := o(c); err != nil {
			return nil, err
		}
	}
	if !strings.HasSuffix(c.Server, "/") {
		c.Server += "/"
	}
	if c.Client == nil {
		httpClient, err := newHTTPClient(c.tls, c.timeout)
		if err != nil {
			return nil, err
		}
		c.Client = httpClient
	}
	c.Client = NewLoggingHTTPClient(c.Client, c.logger)
	return c, nil
}

// WithHTTPClient allows overriding the default Doer.
func WithHTTPClient(doer HttpRequestDoer) ClientOption {
	return func(c *Client) error {
		c.Client = doer
		return nil
	}
}

// WithTLS sets certificate verification options for the default transport.
func WithTLS(opts TLSOptions) ClientOption {
	return func(c *Client) error {
		c.tls = opts
		return nil
	}
}

// WithTimeout bounds every request made with the default transport.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) error {
		c.timeout = timeout
		return nil
	}
}

// WithAPIVersion pins the REST API version and skips negotiation.
func WithAPIVersion(v string) ClientOption {
	return func(c *Client) error {
		c.APIVersion = v
		return nil
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// WithRequestEditorFn adds a request editor applied to every request.
func WithRequestEditorFn(fn RequestEditorFn) ClientOption {
	return func(c *Client) error {
		c.RequestEditors = append(c.RequestEditors, fn)
		return nil
	}
}

// ServerInfo is the answer of the serverinfo endpoint.
type ServerInfo struct {
	ProductVersion string
	Build          string
	RestAPIVersion string
}

// GetServerInfo queries the server version using the probe API version.
func (c *Client) GetServerInfo(ctx context.Context) (*ServerInfo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, probeAPIVersion, "/serverinfo", nil, nil)
	if err != nil {
		return nil, err
	}
	var resp serverInfoResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &ServerInfo{
		ProductVersion: resp.ServerInfo.ProductVersion.Value,
		Build:          resp.ServerInfo.ProductVersion.Build,
		RestAPIVersion: resp.ServerInfo.RestAPIVersion,
	}, nil
}

// UseServerVersion negotiates the REST API version with the server and
// uses it for subsequent calls. Servers without /serverinfo are treated as
// the legacy version.
func (c *Client) UseServerVersion(ctx context.Context) (string, error) {
	info, err := c.GetServerInfo(ctx)
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound:
		c.APIVersion = legacyAPIVersion
	case err != nil:
		return "", fmt.Errorf("failed to determine server version: %w", err)
	case info.RestAPIVersion == "":
		return "", errors.New("failed to determine server version: empty restApiVersion")
	default:
		c.APIVersion = info.RestAPIVersion
	}
	c.logger.Debug("using REST API version", zap.String("version", c.APIVersion))
	return c.APIVersion, nil
}

// newRequest builds a request for /api/{version}{operationPath}. Path
// segments must already be escaped with pathParam.
func (c *Client) newRequest(ctx context.Context, method, apiVersion, operationPath string, query url.Values, body any) (*http.Request, error) {
	if apiVersion == "" {
		return nil, errors.New("REST API version is not set")
	}
	versionParam, err := pathParam("version", apiVersion)
	if err != nil {
		return nil, err
	}
	serverURL, err := url.Parse(c.Server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", c.Server, err)
	}
	queryURL, err := serverURL.Parse("./api/" + versionParam + operationPath)
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		queryURL.RawQuery = query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, queryURL.String(), bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, editor := range c.RequestEditors {
		if err := editor(ctx, req); err != nil {
			return nil, err
		}
	}
	return req, nil
}

// do sends req and decodes a JSON answer into out when out is non-nil.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(req, resp.StatusCode, body)
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", req.URL.Path, err)
	}
	return nil
}

func pathParam(name string, value string) (string, error) {
	p, err := runtime.StyleParamWithLocation("simple", false, name, runtime.ParamLocationPath, value)
	if err != nil {
		return "", fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return p, nil
}

// addQueryParam encodes a form-style query parameter into values.
func addQueryParam(values url.Values, name string, value any) error {
	queryFrag, err := runtime.StyleParamWithLocation("form", true, name, runtime.ParamLocationQuery, value)
	if err != nil {
		return fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	parsed, err := url.ParseQuery(queryFrag)
	if err != nil {
		return err
	}
	for k, v := range parsed {
		for _, v2 := range v {
			values.Add(k, v2)
		}
	}
	return nil
}
