package tableau_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabrefresh/tabrefresh/tableau"
	"github.com/tabrefresh/tabrefresh/tableau/tableautest"
)

func auth(srv *tableautest.Server) tableau.PersonalAccessTokenAuth {
	return tableau.PersonalAccessTokenAuth{TokenName: srv.TokenName, TokenValue: srv.TokenValue, SiteURL: srv.SiteURL}
}

func TestNewClient(t *testing.T) {
	t.Run("rejects empty server", func(t *testing.T) {
		_, err := tableau.NewClient("  ")
		assert.Error(t, err)
	})

	t.Run("adds trailing slash", func(t *testing.T) {
		c, err := tableau.NewClient("https://tableau.example.com")
		require.NoError(t, err)
		assert.Equal(t, "https://tableau.example.com/", c.Server)
	})

	t.Run("missing CA file fails", func(t *testing.T) {
		_, err := tableau.NewClient("https://tableau.example.com", tableau.WithTLS(tableau.TLSOptions{CACertFile: "/does/not/exist.pem"}))
		assert.Error(t, err)
	})
}

func TestUseServerVersion(t *testing.T) {
	t.Run("uses restApiVersion", func(t *testing.T) {
		srv := tableautest.NewServer(t)
		c, err := tableau.NewClient(srv.URL)
		require.NoError(t, err)

		v, err := c.UseServerVersion(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "3.19", v)
		assert.Equal(t, "3.19", c.APIVersion)
		assert.Equal(t, []string{"GET /api/2.4/serverinfo"}, srv.Requests())
	})

	t.Run("falls back to legacy version on 404", func(t *testing.T) {
		srv := tableautest.NewServer(t)
		srv.RestAPIVersion = ""
		c, err := tableau.NewClient(srv.URL)
		require.NoError(t, err)

		v, err := c.UseServerVersion(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "2.3", v)
	})

	t.Run("server error is reported", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = fmt.Fprint(w, "upstream down")
		}))
		defer ts.Close()
		c, err := tableau.NewClient(ts.URL)
		require.NoError(t, err)

		_, err = c.UseServerVersion(context.Background())
		var apiErr *tableau.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
		assert.Contains(t, err.Error(), "upstream down")
	})
}

func TestServerURLWithPathPrefix(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"serverInfo":{"restApiVersion":"3.21"}}`)
	}))
	defer ts.Close()

	c, err := tableau.NewClient(ts.URL + "/tableau")
	require.NoError(t, err)
	_, err = c.UseServerVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/tableau/api/2.4/serverinfo", gotPath)
}

func TestSignIn(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		srv := tableautest.NewServer(t)
		srv.SiteURL = "finance"
		c, err := tableau.NewClient(srv.URL, tableau.WithAPIVersion("3.19"))
		require.NoError(t, err)

		s, err := c.SignIn(context.Background(), auth(srv))
		require.NoError(t, err)
		assert.Equal(t, "session-token", s.Token)
		assert.Equal(t, "site-luid", s.SiteID)
		assert.Equal(t, "finance", s.SiteContentURL)
		assert.Equal(t, "user-luid", s.UserID)
	})

	t.Run("rejected token", func(t *testing.T) {
		srv := tableautest.NewServer(t)
		c, err := tableau.NewClient(srv.URL, tableau.WithAPIVersion("3.19"))
		require.NoError(t, err)

		bad := auth(srv)
		bad.TokenValue = "wrong"
		_, err = c.SignIn(context.Background(), bad)
		require.Error(t, err)
		assert.ErrorIs(t, err, tableau.ErrAuthentication)
		assert.Contains(t, err.Error(), "Signin Error")
		assert.Contains(t, err.Error(), "401001")
	})

	t.Run("api version too old for tokens", func(t *testing.T) {
		srv := tableautest.NewServer(t)
		c, err := tableau.NewClient(srv.URL, tableau.WithAPIVersion("3.5"))
		require.NoError(t, err)

		_, err = c.SignIn(context.Background(), auth(srv))
		assert.ErrorIs(t, err, tableau.ErrUnsupportedVersion)
		assert.Empty(t, srv.Requests())
	})
}

func TestWithSession(t *testing.T) {
	t.Run("signs out after success", func(t *testing.T) {
		srv := tableautest.NewServer(t)
		c, err := tableau.NewClient(srv.URL, tableau.WithAPIVersion("3.19"))
		require.NoError(t, err)

		called := false
		err = c.WithSession(context.Background(), auth(srv), func(ctx context.Context, s *tableau.Session) error {
			called = true
			assert.Equal(t, "session-token", s.Token)
			return nil
		})
		require.NoError(t, err)
		assert.True(t, called)
		assert.Equal(t, 1, srv.SignOuts())
	})

	t.Run("signs out after failure", func(t *testing.T) {
		srv := tableautest.NewServer(t)
		c, err := tableau.NewClient(srv.URL, tableau.WithAPIVersion("3.19"))
		require.NoError(t, err)

		boom := errors.New("boom")
		err = c.WithSession(context.Background(), auth(srv), func(ctx context.Context, s *tableau.Session) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, srv.SignOuts())
	})

	t.Run("signs out after panic", func(t *testing.T) {
		srv := tableautest.NewServer(t)
		c, err := tableau.NewClient(srv.URL, tableau.WithAPIVersion("3.19"))
		require.NoError(t, err)

		assert.Panics(t, func() {
			_ = c.WithSession(context.Background(), auth(srv), func(ctx context.Context, s *tableau.Session) error {
				panic("kaboom")
			})
		})
		assert.Equal(t, 1, srv.SignOuts())
	})

	t.Run("sign-out failure does not replace result", func(t *testing.T) {
		srv := tableautest.NewServer(t)
		srv.SignOutStatus = http.StatusInternalServerError
		c, err := tableau.NewClient(srv.URL, tableau.WithAPIVersion("3.19"))
		require.NoError(t, err)

		err = c.WithSession(context.Background(), auth(srv), func(ctx context.Context, s *tableau.Session) error {
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, srv.SignOuts())
	})

	t.Run("failed sign-in never runs fn", func(t *testing.T) {
		srv := tableautest.NewServer(t)
		c, err := tableau.NewClient(srv.URL, tableau.WithAPIVersion("3.19"))
		require.NoError(t, err)

		bad := auth(srv)
		bad.TokenName = "someone-else"
		err = c.WithSession(context.Background(), bad, func(ctx context.Context, s *tableau.Session) error {
			t.Fatal("fn must not run")
			return nil
		})
		assert.ErrorIs(t, err, tableau.ErrAuthentication)
		assert.Equal(t, 0, srv.SignOuts())
	})
}

func TestRequestEditor(t *testing.T) {
	srv := tableautest.NewServer(t)
	var seen []string
	c, err := tableau.NewClient(srv.URL, tableau.WithRequestEditorFn(func(ctx context.Context, req *http.Request) error {
		seen = append(seen, req.Header.Get("User-Agent"))
		return nil
	}))
	require.NoError(t, err)

	_, err = c.UseServerVersion(context.Background())
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Contains(t, seen[0], "tabrefresh/")
}
