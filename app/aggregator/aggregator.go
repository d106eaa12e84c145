package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/trifecta/app/feed"
	"github.com/lysyi3m/trifecta/app/tasks"
	"github.com/lysyi3m/trifecta/app/topics"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

const (
	DefaultItemsPerPanel = 10
	PanelsPerTopic       = 3

	PlaceholderTitle  = "No story available (feed error or empty feed)"
	PlaceholderURL    = "#"
	PlaceholderSource = "Trifecta"
)

var (
	// ErrConfiguration marks failures caused by missing or unusable topic
	// configuration. No partial payload accompanies it.
	ErrConfiguration = errors.New("configuration error")
	// ErrUnexpected marks any other failure while building a topic.
	ErrUnexpected = errors.New("unexpected error while building topic")
)

// DefinitionSource resolves topic keys to definitions.
type DefinitionSource interface {
	GetConfig(topicKey string) (*topics.Definition, error)
}

type Options struct {
	ItemsPerPanel int
	PadPanels     bool
	Workers       int // concurrent fetches per panel, zero for one per source
}

type Aggregator struct {
	fetcher       feed.FetcherInterface
	parser        feed.ParserInterface
	filterer      *feed.Filterer
	runner        tasks.TaskRunnerInterface
	itemsPerPanel int
	padPanels     bool
	now           func() time.Time
}

func New(fetcher feed.FetcherInterface, parser feed.ParserInterface, opts Options) *Aggregator {
	itemsPerPanel := opts.ItemsPerPanel
	if itemsPerPanel <= 0 {
		itemsPerPanel = DefaultItemsPerPanel
	}

	return &Aggregator{
		fetcher:       fetcher,
		parser:        parser,
		filterer:      feed.NewFilterer(),
		runner:        tasks.NewPool(opts.Workers),
		itemsPerPanel: itemsPerPanel,
		padPanels:     opts.PadPanels,
		now:           time.Now,
	}
}

func (a *Aggregator) ItemsPerPanel() int {
	return a.itemsPerPanel
}

// BuildHome resolves every requested topic and builds them concurrently.
// Any missing definition fails the whole payload.
func (a *Aggregator) BuildHome(ctx context.Context, defs DefinitionSource, topicKeys []string) (*Payload, error) {
	if len(topicKeys) == 0 {
		return nil, oops.In("aggregator").Wrapf(ErrConfiguration, "no topics requested")
	}

	resolved := make([]*topics.Definition, 0, len(topicKeys))
	for _, key := range topicKeys {
		def, err := defs.GetConfig(key)
		if err != nil {
			return nil, oops.In("aggregator").With("topic", key).Wrapf(fmt.Errorf("%w: %w", ErrConfiguration, err), "failed to resolve topic")
		}
		resolved = append(resolved, def)
	}

	return a.BuildPayload(ctx, resolved...)
}

// BuildPayload builds the given topics concurrently and wraps them with meta.
func (a *Aggregator) BuildPayload(ctx context.Context, defs ...*topics.Definition) (*Payload, error) {
	generatedAt := a.timestamp()

	built := make([]Topic, len(defs))
	errs := make([]error, len(defs))

	var wg sync.WaitGroup
	for i, def := range defs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			topic, err := a.BuildTopic(ctx, def)
			if err != nil {
				errs[i] = err
				return
			}
			built[i] = *topic
		}()
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return &Payload{
		Meta: Meta{
			GeneratedAt: generatedAt,
			Limits: Limits{
				ItemsPerPanel:  a.itemsPerPanel,
				PanelsPerTopic: PanelsPerTopic,
			},
		},
		Topics: built,
	}, nil
}

// BuildTopic fetches every source of def and assembles its three panels.
// Source failures only shrink the pool of real items.
func (a *Aggregator) BuildTopic(ctx context.Context, def *topics.Definition) (*Topic, error) {
	if def == nil {
		return nil, oops.In("aggregator").Wrapf(ErrConfiguration, "topic definition is missing")
	}

	topic := &Topic{
		TopicKey:  def.Key,
		Title:     def.Title,
		Category:  def.Category,
		UpdatedAt: a.timestamp(),
		Panels:    make([]Panel, len(topics.Viewpoints)),
	}

	errs := make([]error, len(topics.Viewpoints))

	var wg sync.WaitGroup
	for i, viewpoint := range topics.Viewpoints {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = oops.In("aggregator").With("topic", def.Key, "viewpoint", viewpoint).Recover(func() {
				topic.Panels[i] = a.buildPanel(ctx, def.Key, viewpoint, def.Sources(viewpoint))
			})
		}()
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("%w: topic %q: %w", ErrUnexpected, def.Key, err)
	}

	return topic, nil
}

func (a *Aggregator) buildPanel(ctx context.Context, topicKey string, viewpoint topics.Viewpoint, sources []feed.Source) Panel {
	prefix := fmt.Sprintf("%s-%s", topicKey, viewpoint)

	ranked := Dedupe(a.collect(ctx, topicKey, viewpoint, sources))
	SortByRecency(ranked)
	if len(ranked) > a.itemsPerPanel {
		ranked = ranked[:a.itemsPerPanel]
	}

	items := lo.Map(ranked, func(item feed.SourcedItem, i int) Item {
		out := Item{
			ID:          itemID(prefix, item.URL, i+1),
			Title:       item.Title,
			URL:         item.URL,
			Source:      ItemSource{Name: item.SourceName},
			PublishedAt: item.PublishedDate,
		}
		if item.PublishedAt != nil {
			out.PublishedAtISO = feed.FormatISO(*item.PublishedAt)
		}
		return out
	})

	if a.padPanels {
		for position := len(items) + 1; position <= a.itemsPerPanel; position++ {
			items = append(items, Item{
				ID:          placeholderID(prefix, position),
				Title:       PlaceholderTitle,
				URL:         PlaceholderURL,
				Source:      ItemSource{Name: PlaceholderSource},
				Placeholder: true,
			})
		}
	}

	slog.Debug("Panel built", "topic", topicKey, "viewpoint", viewpoint, "sources", len(sources), "real_items", len(ranked), "items", len(items))

	return Panel{Viewpoint: viewpoint, Items: items}
}

// collect fetches all sources concurrently and merges their items in
// configured source order, whatever order the fetches finish in.
func (a *Aggregator) collect(ctx context.Context, topicKey string, viewpoint topics.Viewpoint, sources []feed.Source) []feed.SourcedItem {
	fetchTasks := lo.Map(sources, func(source feed.Source, _ int) *tasks.FetchFeedTask {
		return tasks.NewFetchFeedTask(source, a.fetcher, a.parser, a.filterer)
	})

	batch := lo.Map(fetchTasks, func(t *tasks.FetchFeedTask, _ int) tasks.TaskInterface {
		return t
	})
	errs := a.runner.RunAll(ctx, batch)

	var merged []feed.SourcedItem
	for i, t := range fetchTasks {
		if errs[i] != nil {
			slog.Warn("Source failed, skipping",
				"topic", topicKey,
				"viewpoint", viewpoint,
				"source", t.Source.Name,
				"url", t.Source.URL,
				"error", errs[i])
			continue
		}

		for _, item := range t.Items {
			merged = append(merged, feed.SourcedItem{RawItem: item, SourceName: t.Source.Name})
		}
	}

	return merged
}

func (a *Aggregator) timestamp() time.Time {
	return a.now().UTC().Truncate(time.Millisecond)
}
