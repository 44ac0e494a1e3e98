// Package extractor maps a search results snapshot to profile records.
//
// Each of the four fields is resolved by its own FieldMatcher, so markers
// can be swapped without touching the collection loop. Only the profile link
// is required: a card without one yields no record, every other missing
// field becomes its placeholder.
package extractor

import (
	"io"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/profile-collector/internal/entity"
)

// Extractor is safe for concurrent use; it holds no per-snapshot state.
type Extractor struct {
	containers []string
	link       FieldMatcher
	name       FieldMatcher
	headline   FieldMatcher
	location   FieldMatcher
}

// Option customises an Extractor.
type Option func(*Extractor)

// WithContainers replaces the result container selectors.
func WithContainers(selectors ...string) Option {
	return func(e *Extractor) { e.containers = selectors }
}

// WithLinkMatcher replaces how the profile URL is found in a container.
func WithLinkMatcher(m FieldMatcher) Option { return func(e *Extractor) { e.link = m } }

// WithNameMatcher replaces how the display name is found.
func WithNameMatcher(m FieldMatcher) Option { return func(e *Extractor) { e.name = m } }

// WithHeadlineMatcher replaces how the headline is found.
func WithHeadlineMatcher(m FieldMatcher) Option { return func(e *Extractor) { e.headline = m } }

// WithLocationMatcher replaces how the location is found.
func WithLocationMatcher(m FieldMatcher) Option { return func(e *Extractor) { e.location = m } }

// New returns an Extractor using the default markers, adjusted by opts.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		containers: DefaultContainerSelectors,
		link:       ProfileLink(DefaultProfilePathMarker),
		name:       Text(DefaultNameSelectors...),
		headline:   Text(DefaultHeadlineSelectors...),
		location:   Text(DefaultLocationSelectors...),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ParseSnapshot parses rendered HTML into a snapshot rooted at base.
func ParseSnapshot(r io.Reader, base *url.URL) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	doc.Url = base
	return doc, nil
}

// Extract returns one record per result container that has a profile link,
// in document order. It does not modify doc. A snapshot without containers
// yields an empty slice.
func (e *Extractor) Extract(doc *goquery.Document) []entity.ProfileRecord {
	records := []entity.ProfileRecord{}
	if doc == nil || e.link == nil {
		return records
	}
	e.findContainers(doc.Selection).Each(func(_ int, s *goquery.Selection) {
		card := Card{Selection: s, Base: doc.Url}
		link, ok := e.link.Match(card)
		if !ok || link == "" {
			return
		}
		records = append(records, entity.ProfileRecord{
			URL:      link,
			Name:     resolve(e.name, card, entity.UnknownName),
			Headline: resolve(e.headline, card, entity.NoHeadline),
			Location: resolve(e.location, card, entity.UnknownLocation),
		})
	})
	return records
}

func (e *Extractor) findContainers(root *goquery.Selection) *goquery.Selection {
	found := root.Slice(0, 0)
	for _, sel := range e.containers {
		found = root.Find(sel)
		if found.Length() == 0 {
			continue
		}
		// A card markup sometimes repeats the container marker on an inner
		// wrapper; keep only the outermost.
		return found.FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.ParentsFiltered(sel).Length() == 0
		})
	}
	return found
}

func resolve(m FieldMatcher, c Card, placeholder string) string {
	if m == nil {
		return placeholder
	}
	if v, ok := m.Match(c); ok && v != "" {
		return v
	}
	return placeholder
}
