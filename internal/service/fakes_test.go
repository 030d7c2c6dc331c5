package service

import (
	"context"
	"errors"
	"sync"

	"smart-search-be/internal/dto"
	"smart-search-be/internal/entity"
	"smart-search-be/internal/repository/contract"
	"smart-search-be/internal/repository/specification"
	"smart-search-be/internal/repository/unitofwork"
	"smart-search-be/pkg/events"
	"smart-search-be/pkg/preference"
	"smart-search-be/pkg/summarize"
	"smart-search-be/pkg/websearch"
)

type fakeSearcher struct {
	mu      sync.Mutex
	urls    []string
	err     error
	queries []string
}

func (f *fakeSearcher) Name() string { return "tavily" }

func (f *fakeSearcher) Search(_ context.Context, q string) (*websearch.Result, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	results := make([]interface{}, 0, len(f.urls))
	for _, u := range f.urls {
		results = append(results, map[string]interface{}{"url": u, "title": "t"})
	}
	return &websearch.Result{Raw: map[string]interface{}{"results": results}, LatencyMs: 42}, nil
}

type fakePage struct {
	content string
	err     error
}

type fakeFetcher struct {
	pages map[string]fakePage
}

func (f *fakeFetcher) FetchText(_ context.Context, url string) (string, error) {
	p, ok := f.pages[url]
	if !ok {
		return "", errors.New("not found")
	}
	return p.content, p.err
}

type fakeRewriter struct {
	out string
	err error
}

func (f *fakeRewriter) Rewrite(_ context.Context, _ string, _ preference.Preferences) (string, error) {
	return f.out, f.err
}

type fakeSummarizer struct {
	mu     sync.Mutex
	out    string
	err    error
	inputs []string
	opts   []summarize.Options
}

func (f *fakeSummarizer) Summarize(_ context.Context, text string, opts summarize.Options) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, text)
	f.opts = append(f.opts, opts)
	return f.out, f.err
}

type recordingSink struct {
	mu     sync.Mutex
	events []dto.SearchEvent
}

func (s *recordingSink) Emit(_ context.Context, ev dto.SearchEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.Event
	}
	return out
}

func (s *recordingSink) count(name string) int {
	n := 0
	for _, ev := range s.names() {
		if ev == name {
			n++
		}
	}
	return n
}

type fakePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *fakePublisher) Publish(_ context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

type fakeEventPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *fakeEventPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *fakeEventPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

// fakeStore is an in-memory stand-in for the database behind the unit of work.
type fakeStore struct {
	mu      sync.Mutex
	turns   []*entity.SearchTurn
	logs    []*entity.McpLog
	failing bool
}

func (s *fakeStore) NewUnitOfWork(context.Context) unitofwork.UnitOfWork { return &fakeUow{store: s} }

type fakeUow struct{ store *fakeStore }

func (u *fakeUow) Begin(context.Context) error { return nil }
func (u *fakeUow) Commit() error { return nil }
func (u *fakeUow) Rollback() error { return nil }

func (u *fakeUow) SearchTurnRepository() contract.SearchTurnRepository {
	return &fakeTurnRepo{store: u.store}
}

func (u *fakeUow) McpLogRepository() contract.McpLogRepository {
	return &fakeLogRepo{store: u.store}
}

type fakeTurnRepo struct{ store *fakeStore }

func (r *fakeTurnRepo) Create(_ context.Context, turn *entity.SearchTurn) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failing {
		return errors.New("db down")
	}
	r.store.turns = append(r.store.turns, turn)
	return nil
}

func (r *fakeTurnRepo) FindOne(context.Context, ...specification.Specification) (*entity.SearchTurn, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if len(r.store.turns) == 0 {
		return nil, nil
	}
	return r.store.turns[0], nil
}

func (r *fakeTurnRepo) FindAll(context.Context, ...specification.Specification) ([]*entity.SearchTurn, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return append([]*entity.SearchTurn{}, r.store.turns...), nil
}

func (r *fakeTurnRepo) Count(context.Context, ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.turns)), nil
}

type fakeLogRepo struct{ store *fakeStore }

func (r *fakeLogRepo) Create(_ context.Context, l *entity.McpLog) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failing {
		return errors.New("db down")
	}
	r.store.logs = append(r.store.logs, l)
	return nil
}

func (r *fakeLogRepo) FindAll(context.Context, ...specification.Specification) ([]*entity.McpLog, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return append([]*entity.McpLog{}, r.store.logs...), nil
}

func (r *fakeLogRepo) Count(context.Context, ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.logs)), nil
}
