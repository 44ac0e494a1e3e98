package usecase

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/profile-collector/internal/entity"
	"github.com/user/profile-collector/internal/repository"
)

type fakeQueue struct {
	mu      sync.Mutex
	items   []string
	pushErr error
}

func (q *fakeQueue) Push(_ context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pushErr != nil {
		return q.pushErr
	}
	q.items = append(q.items, id)
	return nil
}

func (q *fakeQueue) Pop(context.Context) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return "", repository.ErrQueueEmpty
	}
	id := q.items[0]
	q.items = q.items[1:]
	return id, nil
}

func (q *fakeQueue) Size(context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.items)), nil
}

type fakeVisited struct {
	mu   sync.Mutex
	urls map[string]time.Duration
}

func newFakeVisited() *fakeVisited { return &fakeVisited{urls: map[string]time.Duration{}} }

func (v *fakeVisited) MarkVisited(_ context.Context, u string, expiry time.Duration) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.urls[u] = expiry
	return nil
}

func (v *fakeVisited) IsVisited(_ context.Context, u string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.urls[u]
	return ok, nil
}

func (v *fakeVisited) RemoveVisited(_ context.Context, u string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.urls, u)
	return nil
}

type fakeRuns struct {
	mu   sync.Mutex
	runs map[string]*entity.CollectionRun
}

func newFakeRuns() *fakeRuns { return &fakeRuns{runs: map[string]*entity.CollectionRun{}} }

func (r *fakeRuns) Create(_ context.Context, run *entity.CollectionRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *run
	r.runs[run.ID] = &cp
	return nil
}

func (r *fakeRuns) FindByID(_ context.Context, id string) (*entity.CollectionRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *run
	return &cp, nil
}

func (r *fakeRuns) MarkRunning(_ context.Context, id string) error {
	return r.update(id, func(run *entity.CollectionRun) {
		now := time.Now()
		run.Status = entity.RunRunning
		run.StartedAt = &now
	})
}

func (r *fakeRuns) MarkCompleted(_ context.Context, id string, s entity.RunSummary) error {
	return r.update(id, func(run *entity.CollectionRun) { finish(run, entity.RunCompleted, s, "") })
}

func (r *fakeRuns) MarkFailed(_ context.Context, id string, s entity.RunSummary, reason string) error {
	return r.update(id, func(run *entity.CollectionRun) { finish(run, entity.RunFailed, s, reason) })
}

func (r *fakeRuns) update(id string, fn func(*entity.CollectionRun)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(run)
	return nil
}

func finish(run *entity.CollectionRun, status entity.RunStatus, s entity.RunSummary, reason string) {
	now := time.Now()
	run.Status = status
	run.StopReason = s.StopReason
	run.Passes = s.Passes
	run.RecordCount = s.RecordCount
	run.TriggerFailures = s.TriggerFailures
	run.FailureReason = reason
	run.FinishedAt = &now
}

type fakeProfiles struct {
	mu      sync.Mutex
	byRun   map[string][]entity.ProfileRecord
	saveErr error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{byRun: map[string][]entity.ProfileRecord{}}
}

func (p *fakeProfiles) SaveBatch(_ context.Context, runID string, records []entity.ProfileRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.saveErr != nil {
		return p.saveErr
	}
	p.byRun[runID] = append([]entity.ProfileRecord(nil), records...)
	return nil
}

func (p *fakeProfiles) FindByRun(_ context.Context, runID string) ([]entity.ProfileRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]entity.ProfileRecord{}, p.byRun[runID]...), nil
}

// fakeBrowser serves pages whose HTML grows by one chunk per LoadMore.
type fakeBrowser struct {
	chunks  []string
	openErr error
	opened  []string
	closed  int
	onLoad  func(call int)
}

func (b *fakeBrowser) Open(_ context.Context, searchURL string) (repository.PageSession, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	b.opened = append(b.opened, searchURL)
	base, err := url.Parse(searchURL)
	if err != nil {
		return nil, err
	}
	return &fakeSession{browser: b, base: base, shown: 1}, nil
}

type fakeSession struct {
	browser *fakeBrowser
	base    *url.URL
	shown   int
	loads   int
}

func (s *fakeSession) Snapshot(context.Context) (*goquery.Document, error) {
	n := min(s.shown, len(s.browser.chunks))
	body := "<html><body><ul>" + strings.Join(s.browser.chunks[:n], "") + "</ul></body></html>"
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	doc.Url = s.base
	return doc, nil
}

func (s *fakeSession) LoadMore(context.Context) error {
	s.loads++
	if s.browser.onLoad != nil {
		s.browser.onLoad(s.loads)
	}
	if s.shown >= len(s.browser.chunks) {
		return repository.ErrNoMoreContent
	}
	s.shown++
	return nil
}

func (s *fakeSession) Close() { s.browser.closed++ }

func resultCard(slug, name string) string {
	return `<li class="reusable-search__result-container"><div class="entity-result">` +
		`<a href="/in/` + slug + `?miniProfileUrn=abc"><span class="entity-result__title-text">` +
		`<span aria-hidden="true">` + name + `</span></span></a>` +
		`<div class="entity-result__primary-subtitle">Engineer</div></div></li>`
}

var errBoom = errors.New("boom")
