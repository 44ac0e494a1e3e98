package repository

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// BrowserRepository opens search result pages in a real browser.
type BrowserRepository interface {
	// Open navigates a fresh tab to searchURL and waits for it to be ready.
	Open(ctx context.Context, searchURL string) (PageSession, error)
}

// PageSession is one open results page. It is used by a single run.
type PageSession interface {
	// Snapshot returns the currently rendered document. doc.Url is the
	// page's location at the time of the snapshot.
	Snapshot(ctx context.Context) (*goquery.Document, error)
	// LoadMore asks the page for more results. It returns ErrNoMoreContent
	// when the page offers no way to load more.
	LoadMore(ctx context.Context) error
	// Close releases the tab.
	Close()
}
