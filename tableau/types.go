package tableau

import "strconv"

// ContentType is the kind of refreshable content on a site.
type ContentType string

const (
	Workbook   ContentType = "workbook"
	Datasource ContentType = "datasource"
)

// ContentTypes lists every refreshable content type in flag order.
var ContentTypes = []ContentType{Workbook, Datasource}

// ParseContentType accepts "workbook" or "datasource".
func ParseContentType(s string) (ContentType, bool) {
	for _, ct := range ContentTypes {
		if string(ct) == s {
			return ct, true
		}
	}
	return "", false
}

// Plural returns the REST collection name, e.g. "workbooks".
func (c ContentType) Plural() string {
	return string(c) + "s"
}

// Content is a workbook or datasource as seen by the locator.
type Content struct {
	Kind        ContentType `json:"kind" yaml:"kind"`
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	ContentURL  string      `json:"contentUrl,omitempty" yaml:"contentUrl,omitempty"`
	ProjectID   string      `json:"projectId" yaml:"projectId"`
	ProjectName string      `json:"projectName" yaml:"projectName"`
	UpdatedAt   string      `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// Job is the asynchronous job created by a refresh request.
type Job struct {
	ID        string `json:"id" yaml:"id"`
	Mode      string `json:"mode,omitempty" yaml:"mode,omitempty"`
	Type      string `json:"type,omitempty" yaml:"type,omitempty"`
	CreatedAt string `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

// PersonalAccessTokenAuth holds the credentials used to sign in.
type PersonalAccessTokenAuth struct {
	TokenName  string
	TokenValue string
	SiteURL    string
}

// Wire formats of the REST API (JSON flavour).

type siteRef struct {
	ID         string `json:"id,omitempty"`
	ContentURL string `json:"contentUrl"`
}

type userRef struct {
	ID string `json:"id"`
}

type signInCredentials struct {
	PersonalAccessTokenName   string   `json:"personalAccessTokenName"`
	PersonalAccessTokenSecret string   `json:"personalAccessTokenSecret"`
	Site                      siteRef  `json:"site"`
	User                      *userRef `json:"user,omitempty"`
	Token                     string   `json:"token,omitempty"`
}

type signInRequest struct {
	Credentials signInCredentials `json:"credentials"`
}

type signInResponse struct {
	Credentials struct {
		Site  siteRef `json:"site"`
		User  userRef `json:"user"`
		Token string  `json:"token"`
	} `json:"credentials"`
}

type serverInfoResponse struct {
	ServerInfo struct {
		ProductVersion struct {
			Value string `json:"value"`
			Build string `json:"build"`
		} `json:"productVersion"`
		RestAPIVersion string `json:"restApiVersion"`
	} `json:"serverInfo"`
}

// pagination values arrive as strings.
type pagination struct {
	PageNumber     string `json:"pageNumber"`
	PageSize       string `json:"pageSize"`
	TotalAvailable string `json:"totalAvailable"`
}

// total returns totalAvailable, or false when the server omitted it.
func (p pagination) total() (int, bool) {
	n, err := strconv.Atoi(p.TotalAvailable)
	if err != nil {
		return 0, false
	}
	return n, true
}

type projectRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type contentItem struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	ContentURL string     `json:"contentUrl"`
	UpdatedAt  string     `json:"updatedAt"`
	Project    projectRef `json:"project"`
}

type listResponse struct {
	Pagination pagination `json:"pagination"`
	Workbooks  *struct {
		Workbook []contentItem `json:"workbook"`
	} `json:"workbooks,omitempty"`
	Datasources *struct {
		Datasource []contentItem `json:"datasource"`
	} `json:"datasources,omitempty"`
}

func (r listResponse) items() []contentItem {
	switch {
	case r.Workbooks != nil:
		return r.Workbooks.Workbook
	case r.Datasources != nil:
		return r.Datasources.Datasource
	}
	return nil
}

type jobResponse struct {
	Job Job `json:"job"`
}

type errorResponse struct {
	Error struct {
		Summary string `json:"summary"`
		Detail  string `json:"detail"`
		Code    string `json:"code"`
	} `json:"error"`
}
