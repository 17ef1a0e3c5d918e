package metadata

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// ComponentSearchResult holds a component match with the reason it matched.
type ComponentSearchResult struct {
	Component   *ComponentMetadata
	MatchReason string
}

// QueryService provides read-only query methods over a loaded Set.
type QueryService struct {
	Set   *Set
	Index *Index
}

// NewQueryService creates a QueryService from a validated set and its index.
func NewQueryService(set *Set, idx *Index) *QueryService {
	return &QueryService{Set: set, Index: idx}
}

// ListComponents returns components whose display name or description text
// contains keyword (case-insensitive). Pass "" to list everything.
func (q *QueryService) ListComponents(keyword string) []*ComponentMetadata {
	keyword = strings.ToLower(keyword)
	result := make([]*ComponentMetadata, 0, len(q.Set.Components))

	for i := range q.Set.Components {
		comp := &q.Set.Components[i]
		if keyword != "" &&
			!strings.Contains(strings.ToLower(comp.DisplayName), keyword) &&
			!strings.Contains(strings.ToLower(descriptionText(comp.Description)), keyword) {
			continue
		}
		result = append(result, comp)
	}

	return result
}

// GetComponent looks up a component by display name, falling back to a
// case-insensitive match. The bool indicates whether it was found.
func (q *QueryService) GetComponent(name string) (*ComponentMetadata, bool) {
	if comp, ok := q.Index.ComponentByName[name]; ok {
		return comp, true
	}
	if comp, ok := q.Index.ComponentByFoldedName[strings.ToLower(name)]; ok {
		return comp, true
	}
	return nil, false
}

// SearchComponents performs a case-insensitive search across component names,
// descriptions, and prop names.
// Returns matching components with the reason for the match. When nothing
// contains query, display names are fuzzy matched best first with reason
// "fuzzy".
func (q *QueryService) SearchComponents(query string) []ComponentSearchResult {
	query = strings.ToLower(query)
	if query == "" {
		return nil
	}

	var results []ComponentSearchResult
	for i := range q.Set.Components {
		comp := &q.Set.Components[i]

		if strings.Contains(strings.ToLower(comp.DisplayName), query) {
			results = append(results, ComponentSearchResult{Component: comp, MatchReason: "name"})
			continue
		}

		if strings.Contains(strings.ToLower(descriptionText(comp.Description)), query) {
			results = append(results, ComponentSearchResult{Component: comp, MatchReason: "description"})
			continue
		}

		for _, prop := range comp.Props {
			if strings.Contains(strings.ToLower(prop.Name), query) {
				results = append(results, ComponentSearchResult{Component: comp, MatchReason: "prop:" + prop.Name})
				break
			}
		}
	}

	if len(results) == 0 {
		results = q.fuzzyNames(query)
	}
	return results
}

func (q *QueryService) fuzzyNames(query string) []ComponentSearchResult {
	names := make([]string, len(q.Set.Components))
	for i, comp := range q.Set.Components {
		names[i] = comp.DisplayName
	}

	var results []ComponentSearchResult
	for _, m := range fuzzy.Find(query, names) {
		results = append(results, ComponentSearchResult{Component: &q.Set.Components[m.Index], MatchReason: "fuzzy"})
	}
	return results
}

func descriptionText(d *Description) string {
	if d == nil {
		return ""
	}
	return d.Text
}
