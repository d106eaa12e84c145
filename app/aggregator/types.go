package aggregator

import (
	"time"

	"github.com/lysyi3m/trifecta/app/topics"
)

type ItemSource struct {
	Name string `json:"name"`
}

type Item struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	URL            string     `json:"url"`
	Source         ItemSource `json:"source"`
	PublishedAt    string     `json:"publishedAt"`              // YYYY-MM-DD or empty
	PublishedAtISO string     `json:"publishedAtISO,omitempty"` // full instant when known
	Placeholder    bool       `json:"-"`
}

type Panel struct {
	Viewpoint topics.Viewpoint `json:"viewpoint"`
	Items     []Item           `json:"items"`
}

type Topic struct {
	TopicKey  string    `json:"topicKey"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	UpdatedAt time.Time `json:"updatedAt"`
	Panels    []Panel   `json:"panels"`
}

// Panel returns the panel of a viewpoint, or nil.
func (t *Topic) Panel(v topics.Viewpoint) *Panel {
	for i := range t.Panels {
		if t.Panels[i].Viewpoint == v {
			return &t.Panels[i]
		}
	}
	return nil
}

type Limits struct {
	ItemsPerPanel  int `json:"itemsPerPanel"`
	PanelsPerTopic int `json:"panelsPerTopic"`
}

type Meta struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Limits      Limits    `json:"limits"`
}

type Payload struct {
	Meta   Meta    `json:"meta"`
	Topics []Topic `json:"topics"`
}
