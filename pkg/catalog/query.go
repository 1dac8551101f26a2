package catalog

import (
	"strings"

	"github.com/gnana997/docgen/pkg/doclet"
)

// ComponentSearchResult holds a component match with the reason it matched.
type ComponentSearchResult struct {
	Component   *Component
	MatchReason string
}

// QueryService provides read-only query methods over a loaded catalog.
type QueryService struct {
	Catalog *Catalog
	Index   *CatalogIndex
}

// NewQueryService creates a QueryService from a validated catalog and its index.
func NewQueryService(cat *Catalog, idx *CatalogIndex) *QueryService {
	return &QueryService{Catalog: cat, Index: idx}
}

// LoadAndQuery loads a catalog from file and returns a ready-to-use QueryService.
func LoadAndQuery(path string) (*QueryService, error) {
	cat, idx, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	return NewQueryService(cat, idx), nil
}

// ListSources returns the ids of all files with components.
func (q *QueryService) ListSources() []string {
	return q.Index.Sources
}

// ListComponents returns components filtered by source and/or keyword.
// Both filters are optional (pass "" to skip) and combine with AND logic.
// The keyword matches case-insensitively against display name and description.
func (q *QueryService) ListComponents(source, keyword string) []Component {
	var candidates []*Component

	if source != "" {
		candidates = q.Index.ComponentsBySource[source]
	} else {
		candidates = make([]*Component, 0, len(q.Catalog.Components))
		for i := range q.Catalog.Components {
			candidates = append(candidates, &q.Catalog.Components[i])
		}
	}

	keyword = strings.ToLower(keyword)
	result := make([]Component, 0)

	for _, comp := range candidates {
		if keyword != "" &&
			!strings.Contains(strings.ToLower(comp.DisplayName), keyword) &&
			!strings.Contains(strings.ToLower(comp.Description), keyword) {
			continue
		}
		result = append(result, *comp)
	}

	return result
}

// GetComponent looks up a component by node id, then by display name.
// When several files define the same name, source picks one of them; with
// an empty source the first is returned.
func (q *QueryService) GetComponent(name, source string) (*Component, bool) {
	if comp, ok := q.Index.ComponentByID[name]; ok {
		return comp, true
	}
	for _, comp := range q.Index.ComponentsByName[name] {
		if source == "" || comp.Source == source {
			return comp, true
		}
	}
	return nil, false
}

// SearchComponents performs a case-insensitive search across display
// names, descriptions, prop names and doclet values.
// Returns matching components with the reason for the match.
func (q *QueryService) SearchComponents(query string) []ComponentSearchResult {
	query = strings.ToLower(query)
	if query == "" {
		return nil
	}

	var results []ComponentSearchResult
	for i := range q.Catalog.Components {
		comp := &q.Catalog.Components[i]
		if reason, ok := matchReason(comp, query); ok {
			results = append(results, ComponentSearchResult{Component: comp, MatchReason: reason})
		}
	}
	return results
}

func matchReason(comp *Component, query string) (string, bool) {
	if strings.Contains(strings.ToLower(comp.DisplayName), query) {
		return "name", true
	}
	if strings.Contains(strings.ToLower(comp.Description), query) {
		return "description", true
	}
	for _, prop := range comp.Props {
		if strings.Contains(strings.ToLower(prop.Name), query) {
			return "prop:" + prop.Name, true
		}
	}
	if d, ok := matchDoclet(comp.Doclets, query); ok {
		return "doclet:" + d.Tag, true
	}
	return "", false
}

func matchDoclet(doclets []doclet.Doclet, query string) (doclet.Doclet, bool) {
	for _, d := range doclets {
		if strings.Contains(strings.ToLower(d.Value), query) {
			return d, true
		}
	}
	return doclet.Doclet{}, false
}
