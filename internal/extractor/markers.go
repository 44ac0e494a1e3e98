package extractor

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Markers is the full selector set in a form that can live in a file, so
// markup changes on the host page can be followed without a rebuild.
type Markers struct {
	Containers  []string `yaml:"containers"`
	Link        string   `yaml:"link"`
	ProfilePath string   `yaml:"profile_path"`
	Insights    string   `yaml:"insights"`
	Name        []string `yaml:"name"`
	Headline    []string `yaml:"headline"`
	Location    []string `yaml:"location"`
}

// DefaultMarkers returns the built-in selector set.
func DefaultMarkers() Markers {
	return Markers{
		Containers:  DefaultContainerSelectors,
		Link:        DefaultLinkSelector,
		ProfilePath: DefaultProfilePathMarker,
		Insights:    DefaultInsightSelector,
		Name:        DefaultNameSelectors,
		Headline:    DefaultHeadlineSelectors,
		Location:    DefaultLocationSelectors,
	}
}

// LoadMarkers reads a YAML selector set. Keys left out keep their defaults.
func LoadMarkers(r io.Reader) (Markers, error) {
	m := DefaultMarkers()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return Markers{}, fmt.Errorf("decode markers: %w", err)
	}
	if err := m.Validate(); err != nil {
		return Markers{}, err
	}
	return m, nil
}

// Validate requires the two markers a record cannot be found without.
func (m Markers) Validate() error {
	if len(m.Containers) == 0 {
		return errors.New("markers: at least one container selector is required")
	}
	if m.ProfilePath == "" {
		return errors.New("markers: profile_path is required")
	}
	return nil
}

// WithMarkers replaces every selector with those in m.
func WithMarkers(m Markers) Option {
	return func(e *Extractor) {
		e.containers = m.Containers
		e.link = ProfileLinkMatcher{Selector: m.Link, PathMarker: m.ProfilePath, Exclude: m.Insights}
		e.name = Text(m.Name...)
		e.headline = Text(m.Headline...)
		e.location = Text(m.Location...)
	}
}
