package cfg

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/samber/lo"
)

// Version is set at build time via -ldflags
var Version = "dev"

const (
	ParserPattern = "pattern"
	ParserGofeed  = "gofeed"
)

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// HTTP server
	Port   string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WebDir string `long:"web-dir" env:"WEB_DIR" description:"Directory with the static frontend to serve at / (optional)"`

	// Topics
	TopicsDir     string `long:"topics-dir" env:"TOPICS_DIR" default:"./topics" description:"Directory containing topic configuration files"`
	HomeTopics    string `long:"home-topics" env:"HOME_TOPICS" default:"top-stories,politics" description:"Comma-separated topic keys served by the home endpoint"`
	ItemsPerPanel int    `long:"items-per-panel" env:"ITEMS_PER_PANEL" default:"10" description:"Number of headlines in every panel"`
	PadPanels     string `long:"pad-panels" env:"PAD_PANELS" default:"true" description:"Fill short panels with placeholder items (true/false)"`
	ReloadTopics  int    `long:"topics-reload-interval" env:"TOPICS_RELOAD_INTERVAL" default:"0" description:"Seconds between topic directory reloads (0 = load once at startup)"`

	// Fetching
	FetchTimeout     int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"9" description:"Per-feed fetch timeout in seconds"`
	FetchConcurrency int    `long:"fetch-concurrency" env:"FETCH_CONCURRENCY" default:"0" description:"Concurrent fetches per panel (0 = one per source)"`
	MaxBodyBytes     int64  `long:"max-body-bytes" env:"MAX_BODY_BYTES" default:"5242880" description:"Maximum feed response size in bytes"`
	Parser           string `long:"parser" env:"FEED_PARSER" default:"pattern" choice:"pattern" choice:"gofeed" description:"Feed parser implementation"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Trifecta/1.0 (+headline aggregator)" description:"User agent string for feed requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses command-line flags and environment variables. It returns
// nil, nil when help was requested.
func Load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	padPanels, err := strconv.ParseBool(strings.TrimSpace(raw.PadPanels))
	if err != nil {
		return nil, fmt.Errorf("invalid pad-panels value: %w", err)
	}

	cfg := &Cfg{
		Port:             raw.Port,
		WebDir:           raw.WebDir,
		TopicsDir:        raw.TopicsDir,
		HomeTopics:       ParseTopicKeys(raw.HomeTopics),
		ItemsPerPanel:    raw.ItemsPerPanel,
		PadPanels:        padPanels,
		ReloadInterval:   secondsToDuration(raw.ReloadTopics),
		FetchTimeout:     secondsToDuration(raw.FetchTimeout),
		FetchConcurrency: raw.FetchConcurrency,
		MaxBodyBytes:     raw.MaxBodyBytes,
		Parser:           raw.Parser,
		UserAgent:        raw.UserAgent,
		Debug:            raw.Debug,
		Version:          GetVersion(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Cfg) Validate() error {
	if c.ItemsPerPanel < 1 {
		return fmt.Errorf("items-per-panel must be at least 1")
	}
	if c.ReloadInterval < 0 {
		return fmt.Errorf("topics-reload-interval must be non-negative")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch-timeout must be positive")
	}
	if c.FetchConcurrency < 0 {
		return fmt.Errorf("fetch-concurrency must be non-negative")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max-body-bytes must be positive")
	}
	if c.Parser != ParserPattern && c.Parser != ParserGofeed {
		return fmt.Errorf("unknown parser %q", c.Parser)
	}
	if len(c.HomeTopics) == 0 {
		return fmt.Errorf("home-topics must name at least one topic")
	}
	return nil
}

// ParseTopicKeys splits a comma-separated list, dropping blanks and repeats.
func ParseTopicKeys(s string) []string {
	keys := lo.FilterMap(strings.Split(s, ","), func(part string, _ int) (string, bool) {
		part = strings.TrimSpace(part)
		return part, part != ""
	})
	return lo.Uniq(keys)
}
