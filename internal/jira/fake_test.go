package jira

import (
	"context"
	"encoding/json"
	"sync"

	"jira-mcp/internal/client"
)

type call struct {
	endpoint string
	payload  map[string]any
}

// fakeJira serves canned GET answers and records writes. Payloads are
// round-tripped through JSON so tests see what Jira would receive.
type fakeJira struct {
	mu       sync.Mutex
	get      map[string]map[string]any
	postResp map[string]any
	writeErr error
	posts    []call
	puts     []call
	onPut    func(endpoint string, payload map[string]any)
}

func newFakeJira() *fakeJira {
	return &fakeJira{get: map[string]map[string]any{}, postResp: map[string]any{}}
}

func (f *fakeJira) GetJSON(_ context.Context, endpoint string) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	resp, ok := f.get[endpoint]
	if !ok {
		return nil, &client.APIError{Status: 404, Service: "Jira"}
	}
	return roundTrip(resp), nil
}

func (f *fakeJira) PostJSON(_ context.Context, endpoint string, payload any) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	f.posts = append(f.posts, call{endpoint: endpoint, payload: roundTrip(payload)})
	return f.postResp, nil
}

func (f *fakeJira) PutJSON(_ context.Context, endpoint string, payload any) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	c := call{endpoint: endpoint, payload: roundTrip(payload)}
	f.puts = append(f.puts, c)
	if f.onPut != nil {
		f.onPut(endpoint, c.payload)
	}
	return map[string]any{}, nil
}

func roundTrip(v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	return out
}

func mustJSON(s string) map[string]any {
	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		panic(err)
	}
	return out
}
