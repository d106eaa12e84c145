package feed

import (
	"fmt"
	"time"

	"github.com/gorilla/feeds"
)

type Format string

const (
	FormatRSS  Format = "rss"
	FormatAtom Format = "atom"
	FormatJSON Format = "json"
)

// ParseFormat maps a query value to a Format; empty means RSS.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatRSS:
		return FormatRSS, nil
	case FormatAtom, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported feed format: %q", s)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatAtom:
		return "application/atom+xml; charset=utf-8"
	case FormatJSON:
		return "application/feed+json; charset=utf-8"
	default:
		return "application/rss+xml; charset=utf-8"
	}
}

// Export is a ranked headline list to be re-published as a feed document.
type Export struct {
	Title       string
	Link        string
	Description string
	Updated     time.Time
	Items       []ExportItem
}

type ExportItem struct {
	ID          string
	Title       string
	URL         string
	SourceName  string
	PublishedAt *time.Time
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Run(export Export, format Format) (string, error) {
	out := &feeds.Feed{
		Title:       export.Title,
		Link:        &feeds.Link{Href: export.Link},
		Description: export.Description,
		Id:          export.Link,
		Created:     export.Updated,
		Updated:     export.Updated,
	}

	out.Items = make([]*feeds.Item, 0, len(export.Items))
	for _, item := range export.Items {
		entry := &feeds.Item{
			Id:          item.ID,
			Title:       item.Title,
			Link:        &feeds.Link{Href: item.URL},
			Description: item.Title,
		}
		if item.SourceName != "" {
			entry.Author = &feeds.Author{Name: item.SourceName}
		}
		if item.PublishedAt != nil {
			entry.Created = *item.PublishedAt
		}
		out.Items = append(out.Items, entry)
	}

	var (
		doc string
		err error
	)
	switch format {
	case FormatAtom:
		doc, err = out.ToAtom()
	case FormatJSON:
		doc, err = out.ToJSON()
	default:
		doc, err = out.ToRss()
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate %s feed: %w", format, err)
	}

	return doc, nil
}
