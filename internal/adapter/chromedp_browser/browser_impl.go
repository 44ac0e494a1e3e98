package chromedp_browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/user/profile-collector/internal/extractor"
	"github.com/user/profile-collector/internal/repository"
	"go.uber.org/zap"
)

// TriggerMode selects how LoadMore asks the page for more results.
type TriggerMode string

const (
	// ModeScroll scrolls to the bottom, falling back to the "show more
	// results" button once the page is already at the bottom.
	ModeScroll TriggerMode = "scroll"
	// ModeNextPage clicks the pagination control.
	ModeNextPage TriggerMode = "next_page"
	// ModeScrollThenNextPage works each page like ModeScroll and clicks the
	// pagination control once the page has nothing more to show.
	ModeScrollThenNextPage TriggerMode = "scroll_then_next_page"
)

// resultsWait bounds the best-effort wait for a results container after
// navigation.
const resultsWait = 10 * time.Second

// Options configure the shared browser.
type Options struct {
	Headless bool
	ExecPath string
	// UserAgents are handed out to tabs in turn. Empty keeps the browser's own.
	UserAgents      []string
	PageLoadTimeout time.Duration
	Mode            TriggerMode
}

// Browser owns one browser process. Each Open gets its own tab, so runs
// never share page state.
type Browser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	opts        Options
	agents      *userAgentRotator
	logger      *zap.Logger
}

// NewBrowser starts the browser process and returns it ready for Open.
func NewBrowser(opts Options, logger *zap.Logger) (*Browser, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Mode == "" {
		opts.Mode = ModeScrollThenNextPage
	}
	if opts.PageLoadTimeout <= 0 {
		opts.PageLoadTimeout = 60 * time.Second
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	sugar := logger.Sugar()
	browserCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(sugar.Debugf),
		chromedp.WithErrorf(sugar.Errorf),
	)
	// An empty Run starts the process.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &Browser{
		ctx:         browserCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
		opts:        opts,
		agents:      newUserAgentRotator(opts.UserAgents),
		logger:      logger,
	}, nil
}

// Close shuts the browser process down.
func (b *Browser) Close() {
	b.cancel()
	b.allocCancel()
}

// Open creates a tab, navigates it to searchURL and waits for the body. It
// then waits up to resultsWait for a results container; a page without one
// is still returned, since an empty result list is a valid outcome.
func (b *Browser) Open(ctx context.Context, searchURL string) (repository.PageSession, error) {
	tabCtx, tabCancel := chromedp.NewContext(b.ctx)
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}
	s := &session{tabCtx: tabCtx, tabCancel: tabCancel, mode: b.opts.Mode, logger: b.logger.With(zap.String("search_url", searchURL))}

	var actions []chromedp.Action
	if ua := b.agents.next(); ua != "" {
		actions = append(actions, emulation.SetUserAgentOverride(ua))
	}
	actions = append(actions,
		chromedp.Navigate(searchURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	err := s.run(ctx, b.opts.PageLoadTimeout, actions...)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to load %s: %w", searchURL, err)
	}

	if err := s.run(ctx, resultsWait, chromedp.WaitVisible(resultsSelector, chromedp.ByQuery)); err != nil {
		if ctx.Err() != nil {
			s.Close()
			return nil, ctx.Err()
		}
		s.logger.Debug("No results container became visible", zap.Error(err))
	}
	return s, nil
}

type session struct {
	tabCtx    context.Context
	tabCancel context.CancelFunc
	mode      TriggerMode
	logger    *zap.Logger
}

// run executes actions on the tab, aborting when ctx is done or timeout
// elapses. Only the tab context closes the tab; derived contexts just stop
// the actions.
func (s *session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.tabCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (s *session) Snapshot(ctx context.Context) (*goquery.Document, error) {
	var (
		outer    string
		location string
	)
	err := s.run(ctx, actionTimeout,
		chromedp.OuterHTML("html", &outer, chromedp.ByQuery),
		chromedp.Location(&location),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}
	base, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("invalid page location %q: %w", location, err)
	}
	return extractor.ParseSnapshot(strings.NewReader(outer), base)
}

func (s *session) LoadMore(ctx context.Context) error {
	var outcome string
	err := s.run(ctx, actionTimeout,
		chromedp.Evaluate(scriptFor(s.mode), &outcome, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithReturnByValue(true).WithAwaitPromise(true).WithSilent(true)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to trigger more results: %w", err)
	}

	s.logger.Debug("Load more triggered", zap.String("mode", string(s.mode)), zap.String("outcome", outcome))
	return outcomeError(outcome)
}

func (s *session) Close() {
	s.tabCancel()
}
