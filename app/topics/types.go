package topics

import (
	"fmt"

	"github.com/lysyi3m/trifecta/app/feed"
)

type Viewpoint string

const (
	Liberal      Viewpoint = "liberal"
	Libertarian  Viewpoint = "libertarian"
	Conservative Viewpoint = "conservative"
)

// Viewpoints lists the panels of every topic in display order.
var Viewpoints = []Viewpoint{Liberal, Libertarian, Conservative}

func ParseViewpoint(s string) (Viewpoint, error) {
	for _, v := range Viewpoints {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown viewpoint: %q", s)
}

// Definition describes one topic: its metadata and the ordered sources of
// each viewpoint.
type Definition struct {
	Key      string `yaml:"-"` // Derived from filename
	Title    string `yaml:"title"`
	Category string `yaml:"category"`
	Position int    `yaml:"position"`
	Panels   Panels `yaml:"panels"`
}

type Panels struct {
	Liberal      []feed.Source `yaml:"liberal"`
	Libertarian  []feed.Source `yaml:"libertarian"`
	Conservative []feed.Source `yaml:"conservative"`
}

// Sources returns the configured sources of a viewpoint.
func (d *Definition) Sources(v Viewpoint) []feed.Source {
	switch v {
	case Liberal:
		return d.Panels.Liberal
	case Libertarian:
		return d.Panels.Libertarian
	case Conservative:
		return d.Panels.Conservative
	default:
		return nil
	}
}
