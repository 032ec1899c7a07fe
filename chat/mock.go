package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/datachat/core"
)

var (
	_ core.ChatSession = (*MockSession)(nil)
	_ core.ChatFactory = (*MockFactory)(nil)
)

// MockSession is a lightweight in-memory ChatSession useful for tests &
// examples. Responses are scripted per session: a one-shot result, an
// ordered fragment list and optional failures.
type MockSession struct {
	// Result is returned by Query. When nil a generic text result echoing
	// the query is produced.
	Result *core.AnalysisResult
	// QueryErr fails Query when set.
	QueryErr error
	// Fragments are emitted by QueryStream in order.
	Fragments []string
	// StreamErr is sent after the fragments when set.
	StreamErr error
	// Pace, when non-nil, is received from before each fragment emission,
	// letting tests interleave merges with other session activity.
	Pace <-chan struct{}

	mu      sync.Mutex
	queries []string
}

// Query implements core.ChatSession; returns the scripted result.
func (m *MockSession) Query(ctx context.Context, query string, task core.Task) (*core.AnalysisResult, error) {
	m.record(query)
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	if m.Result != nil {
		return m.Result, nil
	}
	return &core.AnalysisResult{Kind: core.KindText, Text: fmt.Sprintf("Mock response to: %s", query)}, nil
}

// QueryStream implements core.ChatSession; emits scripted fragment chunks
// then the optional scripted error.
func (m *MockSession) QueryStream(ctx context.Context, query string, task core.Task) (<-chan string, <-chan error) {
	m.record(query)

	frags := make(chan string, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(frags)
		defer close(errCh)
		for _, f := range m.Fragments {
			if m.Pace != nil {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case <-m.Pace:
				}
			}
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case frags <- f:
			}
		}
		if m.StreamErr != nil {
			errCh <- m.StreamErr
		}
	}()

	return frags, errCh
}

// Queries returns the queries seen so far, in order.
func (m *MockSession) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.queries))
	copy(out, m.queries)
	return out
}

func (m *MockSession) record(query string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
}

// MockFactory is a scripted core.ChatFactory handing out a fixed session.
type MockFactory struct {
	// Session is returned by New. A fresh MockSession is allocated when nil.
	Session core.ChatSession
	// Err fails New when set.
	Err error

	mu      sync.Mutex
	lastRaw string
	calls   int
}

// New implements core.ChatFactory.
func (f *MockFactory) New(ctx context.Context, rawContent string) (core.ChatSession, error) {
	f.mu.Lock()
	f.lastRaw = rawContent
	f.calls++
	f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Session != nil {
		return f.Session, nil
	}
	return &MockSession{}, nil
}

// Calls reports how many sessions were requested.
func (f *MockFactory) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// LastRaw returns the raw dataset content of the most recent New call.
func (f *MockFactory) LastRaw() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastRaw
}
