package tableau_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabrefresh/tabrefresh/tableau"
	"github.com/tabrefresh/tabrefresh/tableau/tableautest"
)

func signedIn(t *testing.T, srv *tableautest.Server) *tableau.Session {
	t.Helper()
	c, err := tableau.NewClient(srv.URL, tableau.WithAPIVersion("3.19"))
	require.NoError(t, err)
	s, err := c.SignIn(context.Background(), auth(srv))
	require.NoError(t, err)
	return s
}

func TestListByName(t *testing.T) {
	srv := tableautest.NewServer(t)
	srv.Workbooks = []tableau.Content{
		{ID: "wb-1", Name: "Report", ProjectID: "p-a", ProjectName: "A", UpdatedAt: "2026-01-02T03:04:05Z"},
		{ID: "wb-2", Name: "Other", ProjectID: "p-a", ProjectName: "A"},
		{ID: "wb-3", Name: "Report", ProjectID: "p-b", ProjectName: "B"},
		{ID: "wb-4", Name: "report", ProjectID: "p-b", ProjectName: "B"},
	}
	s := signedIn(t, srv)

	items, err := s.ListByName(context.Background(), tableau.Workbook, "Report")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, tableau.Content{
		Kind:        tableau.Workbook,
		ID:          "wb-1",
		Name:        "Report",
		ProjectID:   "p-a",
		ProjectName: "A",
		UpdatedAt:   "2026-01-02T03:04:05Z",
	}, items[0])
	assert.Equal(t, "wb-3", items[1].ID)
	assert.Equal(t, 1, srv.CountRequests("GET /api/3.19/sites/site-luid/workbooks"))
}

func TestListByNameEmpty(t *testing.T) {
	srv := tableautest.NewServer(t)
	s := signedIn(t, srv)

	items, err := s.ListByName(context.Background(), tableau.Datasource, "Nonexistent")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListByNameWalksPages(t *testing.T) {
	srv := tableautest.NewServer(t)
	for i := 0; i < 2*tableau.DefaultPageSize+5; i++ {
		srv.Datasources = append(srv.Datasources, tableau.Content{
			ID: fmt.Sprintf("ds-%03d", i), Name: "Sales", ProjectName: "Finance",
		})
	}
	s := signedIn(t, srv)

	items, err := s.ListByName(context.Background(), tableau.Datasource, "Sales")
	require.NoError(t, err)
	require.Len(t, items, 2*tableau.DefaultPageSize+5)
	assert.Equal(t, "ds-000", items[0].ID)
	assert.Equal(t, "ds-204", items[len(items)-1].ID)
	assert.Equal(t, 3, srv.CountRequests("/datasources"))
}

func TestListByNameQuery(t *testing.T) {
	var filter, pageSize, pageNumber, token string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/api/3.19/auth/signin" {
			_, _ = fmt.Fprint(w, `{"credentials":{"site":{"id":"site","contentUrl":""},"user":{"id":"u"},"token":"tok"}}`)
			return
		}
		q := r.URL.Query()
		filter, pageSize, pageNumber = q.Get("filter"), q.Get("pageSize"), q.Get("pageNumber")
		token = r.Header.Get("X-Tableau-Auth")
		_, _ = fmt.Fprint(w, `{"pagination":{"pageNumber":"1","pageSize":"100","totalAvailable":"0"},"workbooks":{"workbook":[]}}`)
	}))
	defer ts.Close()

	c, err := tableau.NewClient(ts.URL, tableau.WithAPIVersion("3.19"))
	require.NoError(t, err)
	s, err := c.SignIn(context.Background(), tableau.PersonalAccessTokenAuth{TokenName: "ci", TokenValue: "x"})
	require.NoError(t, err)

	_, err = s.ListByName(context.Background(), tableau.Workbook, "Q4 Sales: EMEA")
	require.NoError(t, err)
	assert.Equal(t, "name:eq:Q4 Sales: EMEA", filter)
	assert.Equal(t, "100", pageSize)
	assert.Equal(t, "1", pageNumber)
	assert.Equal(t, "tok", token)
}

func TestRefresh(t *testing.T) {
	t.Run("workbook", func(t *testing.T) {
		srv := tableautest.NewServer(t)
		srv.Workbooks = []tableau.Content{{ID: "wb-1", Name: "Quarterly", ProjectName: "Finance"}}
		s := signedIn(t, srv)

		job, err := s.Refresh(context.Background(), tableau.Workbook, "wb-1")
		require.NoError(t, err)
		assert.Equal(t, "job-1", job.ID)
		assert.Equal(t, "RefreshExtract", job.Type)
		assert.Equal(t, "Asynchronous", job.Mode)
		assert.Equal(t, []string{"wb-1"}, srv.Refreshed())
		assert.Equal(t, 1, srv.CountRequests("POST /api/3.19/sites/site-luid/workbooks/wb-1/refresh"))
	})

	t.Run("datasource", func(t *testing.T) {
		srv := tableautest.NewServer(t)
		srv.Datasources = []tableau.Content{{ID: "ds-1", Name: "Sales", ProjectName: "Finance"}}
		s := signedIn(t, srv)

		job, err := s.Refresh(context.Background(), tableau.Datasource, "ds-1")
		require.NoError(t, err)
		assert.Equal(t, "job-1", job.ID)
		assert.Equal(t, 1, srv.CountRequests("/datasources/ds-1/refresh"))
	})

	t.Run("forbidden", func(t *testing.T) {
		srv := tableautest.NewServer(t)
		srv.Workbooks = []tableau.Content{{ID: "wb-1", Name: "Quarterly", ProjectName: "Finance"}}
		srv.RefreshStatus = http.StatusForbidden
		s := signedIn(t, srv)

		_, err := s.Refresh(context.Background(), tableau.Workbook, "wb-1")
		var apiErr *tableau.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
		assert.Equal(t, "403004", apiErr.Code)
		assert.NotErrorIs(t, err, tableau.ErrAuthentication)
	})

	t.Run("unknown content type", func(t *testing.T) {
		srv := tableautest.NewServer(t)
		s := signedIn(t, srv)

		_, err := s.Refresh(context.Background(), tableau.ContentType("flow"), "f-1")
		assert.Error(t, err)
	})
}
