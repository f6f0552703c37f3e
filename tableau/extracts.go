package tableau

import (
	"context"
	"fmt"
	"strings"
)

// Target names the content whose extract should be refreshed.
type Target struct {
	Kind    ContentType
	Name    string
	Project string
}

// Match is the result of locating a target.
type Match struct {
	Content Content
	// Candidates is the number of items in the project with the same
	// name. Only the first one is used.
	Candidates int
}

// ExtractRefresher locates content by name and project and triggers
// extract refreshes through a Catalog.
type ExtractRefresher struct {
	catalog Catalog
}

// NewExtractRefresher creates a refresher backed by catalog.
func NewExtractRefresher(catalog Catalog) *ExtractRefresher {
	return &ExtractRefresher{catalog: catalog}
}

// Locate finds the target. The server filters by exact name; the project
// is then matched case-insensitively and the first match in server order
// wins.
func (r *ExtractRefresher) Locate(ctx context.Context, target Target) (*Match, error) {
	items, err := r.catalog.ListByName(ctx, target.Kind, target.Name)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, &NotFoundError{Kind: target.Kind, Name: target.Name, Project: target.Project}
	}

	inProject := FilterByProject(items, target.Project)
	if len(inProject) == 0 {
		return nil, &NotFoundError{Kind: target.Kind, Name: target.Name, Project: target.Project, ByProject: true}
	}
	return &Match{Content: inProject[0], Candidates: len(inProject)}, nil
}

// Trigger requests the refresh of already located content.
func (r *ExtractRefresher) Trigger(ctx context.Context, content Content) (*Job, error) {
	job, err := r.catalog.Refresh(ctx, content.Kind, content.ID)
	if err != nil {
		return nil, err
	}
	if job == nil || job.ID == "" {
		return nil, fmt.Errorf("refresh of %s %s returned no job id", content.Kind, content.ID)
	}
	return job, nil
}

// FilterByProject keeps the items whose project name equals project,
// ignoring case, preserving order.
func FilterByProject(items []Content, project string) []Content {
	var out []Content
	for _, item := range items {
		if strings.EqualFold(item.ProjectName, project) {
			out = append(out, item)
		}
	}
	return out
}
