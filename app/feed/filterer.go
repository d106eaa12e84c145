package feed

import (
	"strings"
)

var FilterFields = map[string]bool{
	"title": true,
	"link":  true,
}

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run drops the items rejected by any of the source's filters.
func (f *Filterer) Run(items []RawItem, filters []SourceFilter) []RawItem {
	if len(filters) == 0 {
		return items
	}

	kept := make([]RawItem, 0, len(items))
	for _, item := range items {
		if f.isFiltered(item, filters) {
			continue
		}
		kept = append(kept, item)
	}

	return kept
}

func (f *Filterer) isFiltered(item RawItem, filters []SourceFilter) bool {
	for _, filter := range filters {
		value := f.getFieldValue(item, filter.Field)

		for _, exclude := range filter.Excludes {
			if f.matchesFilter(value, exclude) {
				return true
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if f.matchesFilter(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true
			}
		}
	}

	return false
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func (f *Filterer) getFieldValue(item RawItem, field string) string {
	switch field {
	case "title":
		return item.Title
	case "link":
		return item.URL
	default:
		return ""
	}
}
