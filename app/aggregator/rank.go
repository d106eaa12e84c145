package aggregator

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/lysyi3m/trifecta/app/feed"
	"github.com/samber/lo"
)

const maxSlugLength = 40

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]+`)

// Dedupe keeps the first item of every URL and drops items without one.
func Dedupe(items []feed.SourcedItem) []feed.SourcedItem {
	withURL := lo.Filter(items, func(item feed.SourcedItem, _ int) bool {
		return item.URL != ""
	})
	return lo.UniqBy(withURL, func(item feed.SourcedItem) string {
		return item.URL
	})
}

// SortByRecency orders items newest first. Items without a publication
// instant count as oldest and keep their relative order.
func SortByRecency(items []feed.SourcedItem) {
	slices.SortStableFunc(items, func(a, b feed.SourcedItem) int {
		return b.Published().Compare(a.Published())
	})
}

// Slug turns a URL into a short hyphenated fragment usable inside an id.
func Slug(url string) string {
	slug := nonAlphanumeric.ReplaceAllString(url, "-")
	if len(slug) > maxSlugLength {
		slug = slug[:maxSlugLength]
	}
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "item"
	}
	return slug
}

func itemID(prefix, url string, position int) string {
	return fmt.Sprintf("%s-%s-%d", prefix, Slug(url), position)
}

func placeholderID(prefix string, position int) string {
	return fmt.Sprintf("%s-placeholder-%d", prefix, position)
}
