package feed

import (
	"bytes"
	"cmp"
	"log/slog"

	"github.com/mmcdole/gofeed"
)

// GofeedParser parses with a full feed parser. It rejects documents the
// pattern Parser tolerates, and understands RSS 1.0 and JSON Feed.
type GofeedParser struct {
	gofeedParser *gofeed.Parser
}

func NewGofeedParser() *GofeedParser {
	return &GofeedParser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *GofeedParser) Run(data []byte) []RawItem {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		slog.Debug("Feed document rejected by parser", "error", err)
		return []RawItem{}
	}

	items := make([]RawItem, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}

		published := item.PublishedParsed
		if published == nil {
			published = item.UpdatedParsed
		}
		if published != nil {
			utc := published.UTC()
			published = &utc
		}

		link := item.Link
		if link == "" && len(item.Links) > 0 {
			link = item.Links[0]
		}

		normalized := RawItem{
			Title:         CleanText(item.Title),
			URL:           CleanText(link),
			RawDate:       cmp.Or(item.Published, item.Updated),
			PublishedAt:   published,
			PublishedDate: CalendarDate(published),
		}
		if normalized.Title == "" || normalized.URL == "" {
			continue
		}
		items = append(items, normalized)
	}

	return items
}
