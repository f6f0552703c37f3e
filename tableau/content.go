package tableau

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// DefaultPageSize is the number of items requested per page.
const DefaultPageSize = 100

// maxPages guards against a server that never reports its total.
const maxPages = 1000

// Catalog is what the extract refresher needs from a signed-in session.
type Catalog interface {
	// ListByName returns every item of kind whose name equals name, in
	// server order.
	ListByName(ctx context.Context, kind ContentType, name string) ([]Content, error)
	// Refresh asks the server to refresh the extract of one item.
	Refresh(ctx context.Context, kind ContentType, id string) (*Job, error)
}

var _ Catalog = (*Session)(nil)

// ListByName queries the site with the server-side filter name:eq:<name>
// and walks every page.
func (s *Session) ListByName(ctx context.Context, kind ContentType, name string) ([]Content, error) {
	collection, err := s.collectionPath(kind)
	if err != nil {
		return nil, err
	}

	var all []Content
	for page := 1; page <= maxPages; page++ {
		query := url.Values{}
		if err := addQueryParam(query, "filter", "name:eq:"+name); err != nil {
			return nil, err
		}
		if err := addQueryParam(query, "pageSize", DefaultPageSize); err != nil {
			return nil, err
		}
		if err := addQueryParam(query, "pageNumber", page); err != nil {
			return nil, err
		}

		req, err := s.newRequest(ctx, http.MethodGet, collection, query, nil)
		if err != nil {
			return nil, err
		}
		var resp listResponse
		if err := s.client.do(req, &resp); err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", kind.Plural(), err)
		}

		items := resp.items()
		for _, item := range items {
			all = append(all, Content{
				Kind:        kind,
				ID:          item.ID,
				Name:        item.Name,
				ContentURL:  item.ContentURL,
				ProjectID:   item.Project.ID,
				ProjectName: item.Project.Name,
				UpdatedAt:   item.UpdatedAt,
			})
		}
		if len(items) == 0 {
			break
		}
		if total, ok := resp.Pagination.total(); ok && len(all) >= total {
			break
		}
	}
	return all, nil
}

// Refresh starts an extract refresh. The server answers with the queued
// job; its completion is not observed.
func (s *Session) Refresh(ctx context.Context, kind ContentType, id string) (*Job, error) {
	collection, err := s.collectionPath(kind)
	if err != nil {
		return nil, err
	}
	idParam, err := pathParam("id", id)
	if err != nil {
		return nil, err
	}
	req, err := s.newRequest(ctx, http.MethodPost, collection+"/"+idParam+"/refresh", nil, struct{}{})
	if err != nil {
		return nil, err
	}
	var resp jobResponse
	if err := s.client.do(req, &resp); err != nil {
		return nil, fmt.Errorf("failed to refresh %s %s: %w", kind, id, err)
	}
	return &resp.Job, nil
}

func (s *Session) collectionPath(kind ContentType) (string, error) {
	if _, ok := ParseContentType(string(kind)); !ok {
		return "", fmt.Errorf("unsupported content type %q", kind)
	}
	siteParam, err := pathParam("siteId", s.SiteID)
	if err != nil {
		return "", err
	}
	return "/sites/" + siteParam + "/" + kind.Plural(), nil
}
