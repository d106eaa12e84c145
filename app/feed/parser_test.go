package feed

import (
	"reflect"
	"testing"
	"time"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
  <channel>
    <title>Example News</title>
    <link>https://example.com/</link>
    <item>
      <title><![CDATA[Markets rally &amp; bonds slip]]></title>
      <link>https://example.com/markets?id=1&amp;ref=rss</link>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Senate passes budget</title>
      <link>https://example.com/budget</link>
      <dc:date>2023-07-02T08:30:00Z</dc:date>
    </item>
    <item>
      <link>https://example.com/untitled</link>
    </item>
    <item>
      <title>Attribute-only link</title>
      <link href="https://example.com/attr"/>
    </item>
    <item>
      <title>No date at all</title>
      <link>https://example.com/undated</link>
    </item>
  </channel>
</rss>`

const atomFixture = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example Atom</title>
  <link rel="self" href="https://example.org/feed.xml"/>
  <entry>
    <title type="html">Court rules on &quot;fair use&quot;</title>
    <link rel="self" href="https://example.org/entries/1.xml"/>
    <link rel="alternate" type="text/html" href="https://example.org/court"/>
    <updated>2023-07-03T12:00:00+02:00</updated>
  </entry>
  <entry>
    <title>Only a bare link</title>
    <link href="https://example.org/bare"/>
    <published>2023-07-01T00:00:00Z</published>
  </entry>
  <entry>
    <title>No link</title>
  </entry>
</feed>`

func TestParserRSS(t *testing.T) {
	items := NewParser().Run([]byte(rssFixture))

	if len(items) != 4 {
		t.Fatalf("Expected 4 items, got %d: %+v", len(items), items)
	}

	first := items[0]
	if first.Title != "Markets rally & bonds slip" {
		t.Errorf("Expected decoded CDATA title, got %q", first.Title)
	}
	if first.URL != "https://example.com/markets?id=1&ref=rss" {
		t.Errorf("Expected decoded link, got %q", first.URL)
	}
	if first.RawDate != "Mon, 03 Jul 2023 10:00:00 GMT" {
		t.Errorf("Unexpected raw date %q", first.RawDate)
	}
	if first.PublishedAt == nil || !first.PublishedAt.Equal(time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected published time %v", first.PublishedAt)
	}
	if first.PublishedDate != "2023-07-03" {
		t.Errorf("Expected published date '2023-07-03', got %q", first.PublishedDate)
	}

	if items[1].PublishedDate != "2023-07-02" {
		t.Errorf("Expected dc:date fallback, got %q", items[1].PublishedDate)
	}

	if items[2].URL != "https://example.com/attr" {
		t.Errorf("Expected href fallback, got %q", items[2].URL)
	}

	undated := items[3]
	if undated.PublishedAt != nil || undated.PublishedDate != "" || undated.RawDate != "" {
		t.Errorf("Expected no date, got %+v", undated)
	}
}

func TestParserAtom(t *testing.T) {
	items := NewParser().Run([]byte(atomFixture))

	if len(items) != 2 {
		t.Fatalf("Expected 2 entries, got %d: %+v", len(items), items)
	}

	if items[0].URL != "https://example.org/court" {
		t.Errorf("Expected alternate link, got %q", items[0].URL)
	}
	if items[0].Title != `Court rules on "fair use"` {
		t.Errorf("Unexpected title %q", items[0].Title)
	}
	if items[0].PublishedAt == nil || !items[0].PublishedAt.Equal(time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected updated time %v", items[0].PublishedAt)
	}

	if items[1].URL != "https://example.org/bare" {
		t.Errorf("Expected first link, got %q", items[1].URL)
	}
	if items[1].PublishedDate != "2023-07-01" {
		t.Errorf("Expected published fallback, got %q", items[1].PublishedDate)
	}
}

func TestParserRSSNamespacedLink(t *testing.T) {
	doc := `<rss xmlns:atom="http://www.w3.org/2005/Atom"><channel>
  <item>
    <title>Only an atom link</title>
    <atom:link rel="alternate" href="https://example.com/atom-only"/>
  </item>
</channel></rss>`

	items := NewParser().Run([]byte(doc))
	if len(items) != 1 || items[0].URL != "https://example.com/atom-only" {
		t.Errorf("Expected the atom:link href, got %+v", items)
	}
}

func TestParserPrefersRSSOverAtom(t *testing.T) {
	doc := `<rss><channel>
  <item><title>RSS story</title><link>https://example.com/rss</link></item>
  <entry><title>Atom story</title><link href="https://example.com/atom"/></entry>
</channel></rss>`

	items := NewParser().Run([]byte(doc))
	if len(items) != 1 || items[0].URL != "https://example.com/rss" {
		t.Errorf("Expected only the RSS item, got %+v", items)
	}
}

func TestParserToleratesBrokenMarkup(t *testing.T) {
	tests := []struct {
		name  string
		input string
		count int
	}{
		{"empty", "", 0},
		{"not xml", "this is not a feed", 0},
		{"html page", "<html><body><h1>Oops</h1></body></html>", 0},
		{"unclosed channel", "<rss><channel><item><title>A</title><link>https://a.example/1</link></item>", 1},
		{"upper case tags", "<RSS><ITEM><TITLE>Loud</TITLE><LINK>https://a.example/2</LINK></ITEM></RSS>", 1},
		{"item attributes", `<item rdf:about="x"><title>T</title><link>https://a.example/3</link></item>`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := NewParser().Run([]byte(tt.input))
			if items == nil {
				t.Fatal("Expected a non-nil slice")
			}
			if len(items) != tt.count {
				t.Errorf("Expected %d items, got %d: %+v", tt.count, len(items), items)
			}
		})
	}
}

func TestParserIsDeterministic(t *testing.T) {
	parser := NewParser()

	first := parser.Run([]byte(rssFixture))
	second := parser.Run([]byte(rssFixture))

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical results, got %+v and %+v", first, second)
	}
}

func TestGofeedParser(t *testing.T) {
	doc := `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Example</title>
  <item>
    <title>Markets rally &amp; bonds slip</title>
    <link>https://example.com/markets</link>
    <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Senate passes budget</title>
    <link>https://example.com/budget</link>
  </item>
</channel></rss>`

	items := NewGofeedParser().Run([]byte(doc))

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d: %+v", len(items), items)
	}
	if items[0].Title != "Markets rally & bonds slip" {
		t.Errorf("Unexpected title %q", items[0].Title)
	}
	if items[0].URL != "https://example.com/markets" {
		t.Errorf("Unexpected link %q", items[0].URL)
	}
	if items[0].PublishedDate != "2023-07-03" {
		t.Errorf("Expected published date '2023-07-03', got %q", items[0].PublishedDate)
	}
	if items[1].PublishedAt != nil {
		t.Errorf("Expected no date, got %v", items[1].PublishedAt)
	}

	if got := NewGofeedParser().Run([]byte("definitely not a feed")); len(got) != 0 {
		t.Errorf("Expected no items for invalid input, got %+v", got)
	}
}
