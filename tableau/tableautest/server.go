// Package tableautest provides an in-memory Tableau REST API for tests.
package tableautest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/tabrefresh/tabrefresh/tableau"
)

// Server is a fake Tableau Server. Exported fields may be changed before
// the first request; recorded fields are read through accessors.
type Server struct {
	*httptest.Server

	// RestAPIVersion is reported by /serverinfo. Empty means the endpoint
	// answers 404, like servers older than 10.1.
	RestAPIVersion string
	TokenName      string
	TokenValue     string
	SiteURL        string
	SiteID         string
	Token          string

	Workbooks   []tableau.Content
	Datasources []tableau.Content

	// RefreshStatus, when non-zero, makes refresh calls fail with it.
	RefreshStatus int
	// SignOutStatus, when non-zero, makes sign-out fail with it.
	SignOutStatus int

	mu        sync.Mutex
	requests  []string
	refreshed []string
	signOuts  int
	jobs      int
}

// NewServer starts a fake server accepting token "ci"/"s3cret" on the
// default site. It is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		RestAPIVersion: "3.19",
		TokenName:      "ci",
		TokenValue:     "s3cret",
		SiteID:         "site-luid",
		Token:          "session-token",
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/{version}/serverinfo", s.serverInfo)
	mux.HandleFunc("POST /api/{version}/auth/signin", s.signIn)
	mux.HandleFunc("POST /api/{version}/auth/signout", s.signOut)
	mux.HandleFunc("GET /api/{version}/sites/{site}/{collection}", s.list)
	mux.HandleFunc("POST /api/{version}/sites/{site}/{collection}/{id}/refresh", s.refresh)
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

// Requests returns "METHOD path" for every request received.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// CountRequests counts requests whose "METHOD path" contains substr.
func (s *Server) CountRequests(substr string) int {
	n := 0
	for _, r := range s.Requests() {
		if strings.Contains(r, substr) {
			n++
		}
	}
	return n
}

// Refreshed returns the ids whose refresh was requested.
func (s *Server) Refreshed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.refreshed...)
}

// SignOuts returns the number of sign-out calls.
func (s *Server) SignOuts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signOuts
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, summary, detail string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"code": code, "summary": summary, "detail": detail},
	})
}

func (s *Server) authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("X-Tableau-Auth") != s.Token || r.PathValue("site") != "" && r.PathValue("site") != s.SiteID {
		writeError(w, http.StatusUnauthorized, "401002", "Unauthorized Access", "Invalid authentication credentials were provided.")
		return false
	}
	return true
}

func (s *Server) serverInfo(w http.ResponseWriter, r *http.Request) {
	if s.RestAPIVersion == "" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"serverInfo": map[string]any{
			"productVersion": map[string]string{"value": "2023.3.0", "build": "20233.23.1017.0948"},
			"restApiVersion": s.RestAPIVersion,
		},
	})
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Credentials struct {
			Name   string `json:"personalAccessTokenName"`
			Secret string `json:"personalAccessTokenSecret"`
			Site   struct {
				ContentURL string `json:"contentUrl"`
			} `json:"site"`
		} `json:"credentials"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "400000", "Bad Request", err.Error())
		return
	}
	c := body.Credentials
	if c.Name != s.TokenName || c.Secret != s.TokenValue || c.Site.ContentURL != s.SiteURL {
		writeError(w, http.StatusUnauthorized, "401001", "Signin Error", "Error signing in to Tableau Server")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"credentials": map[string]any{
			"site":  map[string]string{"id": s.SiteID, "contentUrl": s.SiteURL},
			"user":  map[string]string{"id": "user-luid"},
			"token": s.Token,
		},
	})
}

func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.signOuts++
	s.mu.Unlock()
	if s.SignOutStatus != 0 {
		writeError(w, s.SignOutStatus, "500000", "Internal Server Error", "sign-out failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) collection(name string) ([]tableau.Content, string, bool) {
	switch name {
	case "workbooks":
		return s.Workbooks, "workbook", true
	case "datasources":
		return s.Datasources, "datasource", true
	}
	return nil, "", false
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}
	items, singular, ok := s.collection(r.PathValue("collection"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	var matched []map[string]any
	if filter := q.Get("filter"); filter != "" {
		name, ok := strings.CutPrefix(filter, "name:eq:")
		if !ok {
			writeError(w, http.StatusBadRequest, "400065", "Bad Request", "unsupported filter "+filter)
			return
		}
		for _, item := range items {
			if item.Name == name {
				matched = append(matched, wireItem(item))
			}
		}
	} else {
		for _, item := range items {
			matched = append(matched, wireItem(item))
		}
	}

	pageSize := atoiDefault(q.Get("pageSize"), 100)
	pageNumber := atoiDefault(q.Get("pageNumber"), 1)
	start := min((pageNumber-1)*pageSize, len(matched))
	end := min(start+pageSize, len(matched))

	writeJSON(w, http.StatusOK, map[string]any{
		"pagination": map[string]string{
			"pageNumber":     strconv.Itoa(pageNumber),
			"pageSize":       strconv.Itoa(pageSize),
			"totalAvailable": strconv.Itoa(len(matched)),
		},
		singular + "s": map[string]any{singular: nonNil(matched[start:end])},
	})
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}
	items, _, ok := s.collection(r.PathValue("collection"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	id := r.PathValue("id")
	found := false
	for _, item := range items {
		if item.ID == id {
			found = true
			break
		}
	}
	if !found {
		writeError(w, http.StatusNotFound, "404006", "Resource Not Found", "content "+id+" could not be found")
		return
	}
	if s.RefreshStatus != 0 {
		writeError(w, s.RefreshStatus, "403004", "Forbidden", "extract refresh is not allowed")
		return
	}

	s.mu.Lock()
	s.refreshed = append(s.refreshed, id)
	s.jobs++
	jobID := fmt.Sprintf("job-%d", s.jobs)
	s.mu.Unlock()

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job": map[string]string{
			"id":        jobID,
			"mode":      "Asynchronous",
			"type":      "RefreshExtract",
			"createdAt": "2026-10-17T10:00:00Z",
		},
	})
}

func wireItem(c tableau.Content) map[string]any {
	return map[string]any{
		"id":         c.ID,
		"name":       c.Name,
		"contentUrl": c.ContentURL,
		"updatedAt":  c.UpdatedAt,
		"project":    map[string]string{"id": c.ProjectID, "name": c.ProjectName},
	}
}

func nonNil(items []map[string]any) []map[string]any {
	if items == nil {
		return []map[string]any{}
	}
	return items
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
