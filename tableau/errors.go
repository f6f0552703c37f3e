package tableau

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const patDocURL = "https://help.tableau.com/current/server/en-us/security_personal_access_tokens.htm"

var (
	// ErrAuthentication is wrapped by errors returned when the server
	// rejects the credentials.
	ErrAuthentication = errors.New("authentication failed")
	// ErrNameNotFound means no content at all matched the requested name.
	ErrNameNotFound = errors.New("no content found with the requested name")
	// ErrProjectNotFound means content matched the name but none lived in
	// the requested project.
	ErrProjectNotFound = errors.New("no content found in the requested project")
	// ErrUnsupportedVersion is returned when the server REST API is too old.
	ErrUnsupportedVersion = errors.New("unsupported REST API version")
)

// APIError is a non-2xx answer from the REST API.
type APIError struct {
	StatusCode int
	Code       string
	Summary    string
	Detail     string
	Method     string
	Path       string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
	if e.Code != "" {
		msg += fmt.Sprintf(" (code %s)", e.Code)
	}
	switch {
	case e.Summary != "" && e.Detail != "":
		msg += fmt.Sprintf(": %s: %s", e.Summary, e.Detail)
	case e.Summary != "":
		msg += ": " + e.Summary
	case e.Detail != "":
		msg += ": " + e.Detail
	}
	if e.StatusCode == http.StatusUnauthorized {
		msg += "\nFor more information on personal access tokens, visit: " + patDocURL
	}
	return msg
}

// Unwrap lets errors.Is(err, ErrAuthentication) match 401 answers.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrAuthentication
	}
	return nil
}

func newAPIError(req *http.Request, status int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		Method:     req.Method,
		Path:       req.URL.Path,
	}
	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err == nil && (payload.Error.Code != "" || payload.Error.Summary != "") {
		apiErr.Code = payload.Error.Code
		apiErr.Summary = payload.Error.Summary
		apiErr.Detail = payload.Error.Detail
		return apiErr
	}
	apiErr.Detail = strings.TrimSpace(string(body))
	return apiErr
}

// NotFoundError reports which lookup predicate failed.
type NotFoundError struct {
	Kind    ContentType
	Name    string
	Project string
	// ByProject is set when the name matched but the project did not.
	ByProject bool
}

func (e *NotFoundError) Error() string {
	if e.ByProject {
		return fmt.Sprintf("no %s found in project %s with the name %s", e.Kind, e.Project, e.Name)
	}
	return fmt.Sprintf("no %s found with the name %s", e.Kind, e.Name)
}

func (e *NotFoundError) Unwrap() error {
	if e.ByProject {
		return ErrProjectNotFound
	}
	return ErrNameNotFound
}
