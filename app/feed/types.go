package feed

import (
	"time"
)

// Source is one configured upstream feed.
type Source struct {
	Name    string         `yaml:"name"`
	URL     string         `yaml:"url"`
	Filters []SourceFilter `yaml:"filters"`
}

type SourceFilter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// RawItem is a single headline extracted from a feed document.
type RawItem struct {
	Title         string
	URL           string
	RawDate       string
	PublishedAt   *time.Time
	PublishedDate string // YYYY-MM-DD prefix of PublishedAt, empty when unknown
}

// SourcedItem is a RawItem tagged with the name of the source it came from.
type SourcedItem struct {
	RawItem
	SourceName string
}

// Published returns the publication instant, or the zero time when unknown.
func (i RawItem) Published() time.Time {
	if i.PublishedAt == nil {
		return time.Time{}
	}
	return *i.PublishedAt
}
