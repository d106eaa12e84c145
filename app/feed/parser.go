package feed

import (
	"regexp"
	"strings"
)

type ParserInterface interface {
	Run(data []byte) []RawItem
}

var (
	_ ParserInterface = (*Parser)(nil)
	_ ParserInterface = (*GofeedParser)(nil)
)

var (
	rssItemPattern   = regexp.MustCompile(`(?is)<item(?:\s[^>]*)?>(.*?)</item>`)
	atomEntryPattern = regexp.MustCompile(`(?is)<entry(?:\s[^>]*)?>(.*?)</entry>`)

	// <link>text</link>, never a self-closing <link .../>
	linkTextPattern = regexp.MustCompile(`(?is)<link(?:\s+[^>]*[^/>])?\s*>(.*?)</link>`)
	linkTagPattern  = regexp.MustCompile(`(?is)<(?:[\w-]+:)?link(\s[^>]*)?>`)
	attrPattern     = regexp.MustCompile(`(?s)([A-Za-z_][\w:.-]*)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
)

var tagPatterns = map[string]*regexp.Regexp{}

func init() {
	for _, tag := range []string{"title", "pubDate", "dc:date", "updated", "published"} {
		tagPatterns[tag] = regexp.MustCompile(`(?is)<` + regexp.QuoteMeta(tag) + `(?:\s[^>]*)?>(.*?)</` + regexp.QuoteMeta(tag) + `>`)
	}
}

// Parser extracts headlines from RSS 2.0 and Atom documents by scanning for
// the handful of tags it needs. It does not validate the document, so broken
// outer markup around well-formed items still yields results.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Run returns the RSS items of data, or its Atom entries when there are no
// RSS items. Unparseable input yields an empty slice.
func (p *Parser) Run(data []byte) []RawItem {
	doc := string(data)

	if items := p.parseRSS(doc); len(items) > 0 {
		return items
	}
	return p.parseAtom(doc)
}

func (p *Parser) parseRSS(doc string) []RawItem {
	blocks := rssItemPattern.FindAllStringSubmatch(doc, -1)
	items := make([]RawItem, 0, len(blocks))

	for _, block := range blocks {
		body := block[1]

		link := ""
		if m := linkTextPattern.FindStringSubmatch(body); m != nil {
			link = CleanText(m[1])
		}
		if link == "" {
			for _, attrs := range linkTags(body) {
				if href := attrs["href"]; href != "" {
					link = href
					break
				}
			}
		}

		raw := tagText(body, "pubDate")
		if raw == "" {
			raw = tagText(body, "dc:date")
		}

		if item, ok := newRawItem(tagText(body, "title"), link, raw); ok {
			items = append(items, item)
		}
	}

	return items
}

func (p *Parser) parseAtom(doc string) []RawItem {
	blocks := atomEntryPattern.FindAllStringSubmatch(doc, -1)
	items := make([]RawItem, 0, len(blocks))

	for _, block := range blocks {
		body := block[1]

		raw := tagText(body, "updated")
		if raw == "" {
			raw = tagText(body, "published")
		}

		if item, ok := newRawItem(tagText(body, "title"), atomLink(body), raw); ok {
			items = append(items, item)
		}
	}

	return items
}

// atomLink prefers rel="alternate" and otherwise takes the first link with
// an href.
func atomLink(body string) string {
	first := ""
	for _, attrs := range linkTags(body) {
		href := attrs["href"]
		if href == "" {
			continue
		}
		if strings.EqualFold(attrs["rel"], "alternate") {
			return href
		}
		if first == "" {
			first = href
		}
	}
	return first
}

func newRawItem(title, link, rawDate string) (RawItem, bool) {
	title = strings.TrimSpace(title)
	link = strings.TrimSpace(link)
	if title == "" || link == "" {
		return RawItem{}, false
	}

	published := ParseDate(rawDate)
	return RawItem{
		Title:         title,
		URL:           link,
		RawDate:       rawDate,
		PublishedAt:   published,
		PublishedDate: CalendarDate(published),
	}, true
}

func tagText(body, tag string) string {
	m := tagPatterns[tag].FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return CleanText(m[1])
}

// linkTags returns the attributes of every <link> tag in body, in order.
// Attribute names are lower-cased; values are entity-decoded.
func linkTags(body string) []map[string]string {
	tags := linkTagPattern.FindAllStringSubmatch(body, -1)
	result := make([]map[string]string, 0, len(tags))

	for _, tag := range tags {
		attrs := make(map[string]string)
		for _, attr := range attrPattern.FindAllStringSubmatch(tag[1], -1) {
			value := attr[2]
			if value == "" {
				value = attr[3]
			}
			attrs[strings.ToLower(attr[1])] = strings.TrimSpace(DecodeEntities(value))
		}
		result = append(result, attrs)
	}

	return result
}
