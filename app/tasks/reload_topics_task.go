package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/trifecta/app/topics"
)

// ReloadTopicsTask re-reads the topics directory so edited definitions take
// effect without a restart.
type ReloadTopicsTask struct {
	Task
	configCache *topics.ConfigCache
}

func NewReloadTopicsTask(configCache *topics.ConfigCache) *ReloadTopicsTask {
	return &ReloadTopicsTask{
		Task:        NewTask(TaskTypeReloadTopics, "topics"),
		configCache: configCache,
	}
}

func (t *ReloadTopicsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	before := t.configCache.GetConfigCount()
	if err := t.configCache.Run(); err != nil {
		return fmt.Errorf("failed to reload topics, keeping previous definitions: %w", err)
	}

	slog.Debug("Task completed",
		"type", "ReloadTopics",
		"duration", t.GetDuration(),
		"before", before,
		"after", t.configCache.GetConfigCount())

	return nil
}
