package extractor

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/profile-collector/pkg/utils"
)

// Card is one result container together with the URL its snapshot was
// taken from, used to resolve relative links.
type Card struct {
	*goquery.Selection
	Base *url.URL
}

// FieldMatcher resolves one field of a result card. ok is false when the
// field is absent; matchers never see or affect the other fields.
type FieldMatcher interface {
	Match(c Card) (value string, ok bool)
}

// MatcherFunc adapts a plain function to FieldMatcher.
type MatcherFunc func(c Card) (string, bool)

func (f MatcherFunc) Match(c Card) (string, bool) { return f(c) }

// TextMatcher returns the rendered text of the first descendant, in selector
// order, whose text is non-empty.
type TextMatcher struct {
	Selectors []string
}

// Text builds a TextMatcher over the given fallback selectors.
func Text(selectors ...string) TextMatcher {
	return TextMatcher{Selectors: selectors}
}

func (m TextMatcher) Match(c Card) (string, bool) {
	if c.Selection == nil {
		return "", false
	}
	var text string
	for _, sel := range m.Selectors {
		c.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text = renderedText(s)
			return text == ""
		})
		if text != "" {
			return text, true
		}
	}
	return "", false
}

// ProfileLinkMatcher returns the canonical absolute URL of the first anchor
// whose target contains PathMarker. Anchors inside Exclude blocks, and
// relative targets that cannot be resolved, are passed over.
type ProfileLinkMatcher struct {
	Selector   string
	PathMarker string
	Exclude    string
}

// ProfileLink builds a ProfileLinkMatcher with the default anchor and
// insight selectors.
func ProfileLink(pathMarker string) ProfileLinkMatcher {
	return ProfileLinkMatcher{
		Selector:   DefaultLinkSelector,
		PathMarker: pathMarker,
		Exclude:    DefaultInsightSelector,
	}
}

func (m ProfileLinkMatcher) Match(c Card) (string, bool) {
	if c.Selection == nil {
		return "", false
	}
	selector := m.Selector
	if selector == "" {
		selector = DefaultLinkSelector
	}
	var found string
	c.Find(selector).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if m.Exclude != "" && a.Closest(m.Exclude).Length() > 0 {
			return true
		}
		href, ok := a.Attr("href")
		if !ok || !strings.Contains(href, m.PathMarker) {
			return true
		}
		u, err := utils.CanonicalProfileURL(c.Base, href)
		if err != nil || !strings.Contains(u, m.PathMarker) {
			return true
		}
		found = u
		return false
	})
	return found, found != ""
}
