package contentful

import (
	"context"
	"sync"
)

// FakeClient is an in-memory Client for tests. Respond decides the result per
// query; Calls records every query received.
type FakeClient struct {
	Respond func(q Query) (*EntryCollection, error)

	mu    sync.Mutex
	calls []Query
}

// NewFakeClient returns a FakeClient that answers every query with items.
func NewFakeClient(items ...Entry) *FakeClient {
	return &FakeClient{Respond: func(Query) (*EntryCollection, error) {
		return &EntryCollection{Total: len(items), Items: items}, nil
	}}
}

// Entries implements Client.
func (f *FakeClient) Entries(_ context.Context, q Query) (*EntryCollection, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	f.mu.Unlock()
	return f.Respond(q)
}

// Calls returns the queries received so far.
func (f *FakeClient) Calls() []Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Query(nil), f.calls...)
}
