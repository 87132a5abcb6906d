package task

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// fakeReports records which reports were generated. Fn hooks override the
// default success behavior.
type fakeReports struct {
	mu    sync.Mutex
	calls []Kind

	AccountsFn  func(ctx context.Context) error
	YearlyFn    func(ctx context.Context) error
	StatementFn func(ctx context.Context) error
}

func (f *fakeReports) record(ctx context.Context, kind Kind, fn func(context.Context) error) error {
	f.mu.Lock()
	f.calls = append(f.calls, kind)
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return nil
}

func (f *fakeReports) GenerateAccounts(ctx context.Context) error {
	return f.record(ctx, KindAccounts, f.AccountsFn)
}

func (f *fakeReports) GenerateYearly(ctx context.Context) error {
	return f.record(ctx, KindYearly, f.YearlyFn)
}

func (f *fakeReports) GenerateFinancialStatement(ctx context.Context) error {
	return f.record(ctx, KindFinancialStatement, f.StatementFn)
}

func (f *fakeReports) Calls() []Kind {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Kind(nil), f.calls...)
}

type published struct {
	Kind  Kind
	Msg   Message
	Delay time.Duration
}

// recordingPublisher captures publishes instead of delivering them.
type recordingPublisher struct {
	mu   sync.Mutex
	sent []published
	Err  error
}

func (p *recordingPublisher) Publish(_ context.Context, kind Kind, msg Message, delay time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.sent = append(p.sent, published{Kind: kind, Msg: msg, Delay: delay})
	return nil
}

func (p *recordingPublisher) Sent() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.sent...)
}

// stubStore wraps a MemoryStore; a non-nil Fn replaces the matching method.
type stubStore struct {
	*MemoryStore

	CreateFn     func(ctx context.Context, kind Kind) (*Task, error)
	GetFn        func(ctx context.Context, id int64) (*Task, error)
	TransitionFn func(ctx context.Context, id int64, from, to State, patch Metadata) (*Task, error)
	LatestFn     func(ctx context.Context, kind Kind) (*Task, error)
}

func newStubStore() *stubStore {
	return &stubStore{MemoryStore: NewMemoryStore()}
}

func (s *stubStore) Create(ctx context.Context, kind Kind) (*Task, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, kind)
	}
	return s.MemoryStore.Create(ctx, kind)
}

func (s *stubStore) Get(ctx context.Context, id int64) (*Task, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, id)
	}
	return s.MemoryStore.Get(ctx, id)
}

func (s *stubStore) Transition(ctx context.Context, id int64, from, to State, patch Metadata) (*Task, error) {
	if s.TransitionFn != nil {
		return s.TransitionFn(ctx, id, from, to, patch)
	}
	return s.MemoryStore.Transition(ctx, id, from, to, patch)
}

func (s *stubStore) LatestByKind(ctx context.Context, kind Kind) (*Task, error) {
	if s.LatestFn != nil {
		return s.LatestFn(ctx, kind)
	}
	return s.MemoryStore.LatestByKind(ctx, kind)
}

// fixedClock returns times that advance by step on every call.
func fixedClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(step)
		return t
	}
}
