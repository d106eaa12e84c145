package tasks

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/trifecta/app/feed"
)

// FetchFeedTask downloads and parses one source. Items is only meaningful
// once Execute has returned nil.
type FetchFeedTask struct {
	Task
	Source   feed.Source
	Items    []feed.RawItem
	fetcher  feed.FetcherInterface
	parser   feed.ParserInterface
	filterer *feed.Filterer
}

func NewFetchFeedTask(source feed.Source, fetcher feed.FetcherInterface, parser feed.ParserInterface, filterer *feed.Filterer) *FetchFeedTask {
	return &FetchFeedTask{
		Task:     NewTask(TaskTypeFetchFeed, source.Name),
		Source:   source,
		fetcher:  fetcher,
		parser:   parser,
		filterer: filterer,
	}
}

func (t *FetchFeedTask) Execute(ctx context.Context) error {
	data, err := t.fetcher.Fetch(ctx, t.Source.URL)
	if err != nil {
		return err
	}

	items := t.parser.Run(data)
	total := len(items)
	if t.filterer != nil {
		items = t.filterer.Run(items, t.Source.Filters)
	}
	t.Items = items

	slog.Debug("Task completed",
		"type", "FetchedFeed",
		"feed", t.FeedName,
		"url", t.Source.URL,
		"duration", t.GetDuration(),
		"total", total,
		"filtered", total-len(items))

	return nil
}
