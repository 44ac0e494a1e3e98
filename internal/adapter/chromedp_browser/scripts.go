package chromedp_browser

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/user/profile-collector/internal/repository"
)

// actionTimeout bounds a single snapshot or trigger.
const actionTimeout = 30 * time.Second

const (
	outcomeScrolled = "scrolled"
	outcomeClicked  = "clicked"
	outcomePaged    = "paged"
	outcomeNone     = "none"
)

const resultsSelector = `main .search-results-container, ` +
	`main ul.reusable-search__entity-result-list, ` +
	`main [data-view-name="search-entity-result-universal-template"], ` +
	`main [data-chameleon-result-urn], ` +
	`.reusable-search__result-container`

// nextButtonSelectors are tried in order; the first enabled match is clicked.
var nextButtonSelectors = []string{
	`button[aria-label='Next']`,
	`a[aria-label='Next']`,
	`.artdeco-pagination__button--next`,
	`.artdeco-pagination__button.artdeco-pagination__button--next`,
	`[data-test-pagination-page-btn='next']`,
	`.artdeco-pagination__button--next:not(.artdeco-button--disabled)`,
	`li.artdeco-pagination__indicator--number.active + li a`,
}

// scrollStep scrolls to the bottom. At the bottom already, it clicks an
// enabled "show more results" button instead, and falls through when
// there is none.
const scrollStep = `{
  const root = document.scrollingElement || document.documentElement;
  const atBottom = window.innerHeight + window.scrollY >= root.scrollHeight - 2;
  if (!atBottom) {
    window.scrollTo(0, root.scrollHeight);
    return "` + outcomeScrolled + `";
  }
  const btn = Array.from(document.querySelectorAll("button")).find(b =>
    !b.disabled && /show more results/i.test((b.textContent || "").trim()));
  if (btn) {
    btn.scrollIntoView({block: "center"});
    btn.click();
    return "` + outcomeClicked + `";
  }
}`

// nextPageStepFormat takes the JSON encoded selector list.
const nextPageStepFormat = `{
  const enabled = e => !e.disabled && e.getAttribute("aria-disabled") !== "true" &&
    !e.classList.contains("artdeco-button--disabled");
  for (const sel of %s) {
    const el = Array.from(document.querySelectorAll(sel)).find(enabled);
    if (el) {
      el.scrollIntoView({block: "center"});
      el.click();
      return "` + outcomePaged + `";
    }
  }
}`

var (
	nextPageStep = buildNextPageStep(nextButtonSelectors)

	scrollScript             = buildScript(scrollStep)
	nextPageScript           = buildScript(nextPageStep)
	scrollThenNextPageScript = buildScript(scrollStep, nextPageStep)
)

func buildNextPageStep(selectors []string) string {
	list, err := json.Marshal(selectors)
	if err != nil {
		panic(fmt.Sprintf("encode next button selectors: %v", err))
	}
	return fmt.Sprintf(nextPageStepFormat, list)
}

// buildScript runs steps in order until one returns an outcome.
func buildScript(steps ...string) string {
	var b strings.Builder
	b.WriteString("(() => {\n")
	for _, step := range steps {
		b.WriteString(step)
		b.WriteString("\n")
	}
	b.WriteString(`return "` + outcomeNone + `";` + "\n})()")
	return b.String()
}

func scriptFor(mode TriggerMode) string {
	switch mode {
	case ModeScroll:
		return scrollScript
	case ModeNextPage:
		return nextPageScript
	default:
		return scrollThenNextPageScript
	}
}

// outcomeError maps a script outcome to the LoadMore result.
func outcomeError(outcome string) error {
	switch outcome {
	case outcomeScrolled, outcomeClicked, outcomePaged:
		return nil
	case outcomeNone:
		return repository.ErrNoMoreContent
	default:
		return fmt.Errorf("unexpected trigger outcome %q", outcome)
	}
}
