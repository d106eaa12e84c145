package api

import (
	"context"

	"github.com/lysyi3m/trifecta/app/aggregator"
	"github.com/lysyi3m/trifecta/app/feed"
	"github.com/lysyi3m/trifecta/app/topics"
)

type AggregatorInterface interface {
	BuildHome(ctx context.Context, defs aggregator.DefinitionSource, topicKeys []string) (*aggregator.Payload, error)
	BuildPayload(ctx context.Context, defs ...*topics.Definition) (*aggregator.Payload, error)
}

type GeneratorInterface interface {
	Run(export feed.Export, format feed.Format) (string, error)
}

var (
	_ AggregatorInterface = (*aggregator.Aggregator)(nil)
	_ GeneratorInterface  = (*feed.Generator)(nil)
)

type Handler struct {
	aggregator  AggregatorInterface
	configCache *topics.ConfigCache
	generator   GeneratorInterface
	homeTopics  []string
	webDir      string
	version     string
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Path    string `json:"path,omitempty"`
}
