package annotate

import "slices"

// Scale is an ordered set of difficulty ratings for one dataset variant.
type Scale struct {
	Name    string   `json:"name" yaml:"name"`
	Levels  []string `json:"levels" yaml:"levels"`
	Default string   `json:"default,omitempty" yaml:"default"`
}

// Contains reports whether v is on the scale. A scale without levels
// accepts anything.
func (s Scale) Contains(v string) bool {
	if len(s.Levels) == 0 {
		return true
	}
	return slices.Contains(s.Levels, v)
}

// Initial is the rating a form starts on: the record's own value when it is
// on the scale, else the configured default, else the lowest level.
func (s Scale) Initial(current string) string {
	if current != "" && slices.Contains(s.Levels, current) {
		return current
	}
	if s.Default != "" {
		return s.Default
	}
	if len(s.Levels) > 0 {
		return s.Levels[0]
	}
	return ""
}
