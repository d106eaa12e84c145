package topics

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/lysyi3m/trifecta/app/feed"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

var ErrNotFound = errors.New("topic definition not found")

var configExtensions = []string{".yml", ".yaml"}

type ConfigCache struct {
	topicsDir string
	cache     map[string]*Definition
	mu        sync.RWMutex
}

func NewConfigCache(topicsDir string) *ConfigCache {
	return &ConfigCache{
		topicsDir: topicsDir,
		cache:     make(map[string]*Definition),
	}
}

// Run (re)loads every topic file of the directory. The cache is replaced as a
// whole, so topics whose file was removed disappear; on error the previous
// cache stays in place.
func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.topicsDir); os.IsNotExist(err) {
		return nil
	}

	entries, err := os.ReadDir(cc.topicsDir)
	if err != nil {
		return fmt.Errorf("failed to read topics directory: %w", err)
	}

	loaded := make(map[string]*Definition)
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || !slices.Contains(configExtensions, ext) {
			continue
		}

		topicKey := strings.TrimSuffix(entry.Name(), ext)
		if _, dup := loaded[topicKey]; dup {
			slog.Warn("Duplicate topic file ignored", "topic", topicKey, "file", entry.Name())
			continue
		}

		def, err := cc.loadFile(topicKey, filepath.Join(cc.topicsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("error loading %s: %w", entry.Name(), err)
		}
		loaded[topicKey] = def

		slog.Debug("Topic loaded", "topic", topicKey,
			"liberal", len(def.Panels.Liberal),
			"libertarian", len(def.Panels.Libertarian),
			"conservative", len(def.Panels.Conservative))
	}

	cc.mu.Lock()
	cc.cache = loaded
	cc.mu.Unlock()

	return nil
}

// LoadConfig reads a single topic file and adds it to the cache.
func (cc *ConfigCache) LoadConfig(topicKey string) (*Definition, error) {
	configFile, err := cc.getConfigFilePath(topicKey)
	if err != nil {
		return nil, err
	}

	def, err := cc.loadFile(topicKey, configFile)
	if err != nil {
		return nil, err
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[def.Key] = def

	return def, nil
}

func (cc *ConfigCache) loadFile(topicKey, configFile string) (*Definition, error) {
	def, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	def.Key = topicKey

	if err := cc.validateConfig(def); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	return def, nil
}

func (cc *ConfigCache) GetConfig(topicKey string) (*Definition, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	def, ok := cc.cache[topicKey]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, topicKey)
	}
	return def, nil
}

// GetConfigs returns all definitions ordered by position, then key.
func (cc *ConfigCache) GetConfigs() []*Definition {
	cc.mu.RLock()
	defs := lo.Values(cc.cache)
	cc.mu.RUnlock()

	slices.SortFunc(defs, func(a, b *Definition) int {
		if a.Position != b.Position {
			return a.Position - b.Position
		}
		return strings.Compare(a.Key, b.Key)
	})
	return defs
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) parseConfig(configFile string) (*Definition, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	def.Title = strings.TrimSpace(def.Title)
	def.Category = strings.TrimSpace(def.Category)
	if def.Category == "" {
		def.Category = def.Title
	}

	return &def, nil
}

func (cc *ConfigCache) validateConfig(def *Definition) error {
	if def == nil {
		return fmt.Errorf("definition is nil")
	}

	if def.Key == "" {
		return fmt.Errorf("topic key is required")
	}
	if def.Title == "" {
		return fmt.Errorf("title is required")
	}

	for _, v := range Viewpoints {
		for i, source := range def.Sources(v) {
			if strings.TrimSpace(source.Name) == "" {
				return fmt.Errorf("%s source at index %d: name is required", v, i)
			}

			u, err := url.Parse(source.URL)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return fmt.Errorf("%s source %q: url must be an absolute http(s) URL", v, source.Name)
			}

			for j, filter := range source.Filters {
				if !feed.FilterFields[filter.Field] {
					return fmt.Errorf("%s source %q: invalid filter field at index %d: %s", v, source.Name, j, filter.Field)
				}
				if len(filter.Includes) == 0 && len(filter.Excludes) == 0 {
					return fmt.Errorf("%s source %q: filter at index %d must have at least one include or exclude rule", v, source.Name, j)
				}
			}
		}
	}

	return nil
}

func (cc *ConfigCache) getConfigFilePath(topicKey string) (string, error) {
	for _, ext := range configExtensions {
		path := filepath.Join(cc.topicsDir, topicKey+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: no config file for %q in %s", ErrNotFound, topicKey, cc.topicsDir)
}
