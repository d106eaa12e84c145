package cfg

import "time"

type Cfg struct {
	// HTTP server
	Port   string
	WebDir string

	// Topics
	TopicsDir      string
	HomeTopics     []string
	ItemsPerPanel  int
	PadPanels      bool
	ReloadInterval time.Duration

	// Fetching
	FetchTimeout     time.Duration
	FetchConcurrency int
	MaxBodyBytes     int64
	Parser           string

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
