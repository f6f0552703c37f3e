package tableau

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type countingDoer struct {
	calls int
	next  HttpRequestDoer
}

func (d *countingDoer) Do(req *http.Request) (*http.Response, error) {
	d.calls++
	return d.next.Do(req)
}

func TestLoggingHTTPClient(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer ts.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	doer := &countingDoer{next: http.DefaultClient}
	c, err := NewClient(ts.URL, WithHTTPClient(doer), WithLogger(zap.New(core)), WithAPIVersion("3.19"))
	require.NoError(t, err)

	session := &Session{client: c, Token: "super-secret-token", SiteID: "site", APIVersion: "3.19"}
	err = session.SignOut(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTeapot, apiErr.StatusCode)
	assert.Equal(t, 1, doer.calls)

	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "/api/3.19/auth/signout", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
	for _, entry := range logs.All() {
		for _, v := range entry.ContextMap() {
			if s, ok := v.(string); ok {
				assert.False(t, strings.Contains(s, "super-secret-token"))
			}
		}
	}
}

func TestNewHTTPClient(t *testing.T) {
	client, err := newHTTPClient(TLSOptions{InsecureSkipVerify: true}, 30*time.Second)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, client.Timeout)
	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.True(t, transport.TLSClientConfig.InsecureSkipVerify)
	assert.Equal(t, uint16(tls.VersionTLS12), transport.TLSClientConfig.MinVersion)
}

func TestWithTimeout(t *testing.T) {
	c, err := NewClient("https://tableau.example.com", WithTimeout(5*time.Second))
	require.NoError(t, err)

	logging, ok := c.Client.(*LoggingHTTPClient)
	require.True(t, ok)
	httpClient, ok := logging.client.(*http.Client)
	require.True(t, ok)
	assert.Equal(t, 5*time.Second, httpClient.Timeout)
}
