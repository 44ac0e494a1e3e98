package extractor

// Default structural markers for a people-search results page. These follow
// the page's class names and will need updating when its markup changes.
var (
	// Result containers, most specific first. The first selector that
	// matches anything defines the container set for a snapshot.
	DefaultContainerSelectors = []string{
		".reusable-search__result-container",
		"[data-chameleon-result-urn]",
		`[data-view-name="search-entity-result-universal-template"]`,
		".entity-result",
		"ul.reusable-search__entity-result-list > li",
	}

	DefaultLinkSelector = "a[href]"

	// Marks a link target as a profile page.
	DefaultProfilePathMarker = "/in/"

	// Blocks whose links point at other people (mutual connections etc.).
	DefaultInsightSelector = ".entity-result__insights, .reusable-search-simple-insight"

	DefaultNameSelectors = []string{
		`.entity-result__title-text span[aria-hidden="true"]`,
		".entity-result__title-text a",
		".artdeco-entity-lockup__title span",
		`.app-aware-link span[aria-hidden="true"]`,
	}

	DefaultHeadlineSelectors = []string{
		".entity-result__primary-subtitle",
		".artdeco-entity-lockup__subtitle",
	}

	DefaultLocationSelectors = []string{
		".entity-result__secondary-subtitle",
		".artdeco-entity-lockup__caption",
	}
)
