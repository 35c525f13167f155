package llm

import (
	"context"
	"sync/atomic"
)

// Mock is a canned-response generator for tests. Calls counts invocations so
// tests can assert the model was (or was not) consulted.
type Mock struct {
	Response string
	Err      error
	calls    atomic.Int64
}

func NewMock(response string) *Mock {
	return &Mock{Response: response}
}

func (m *Mock) Generate(_ context.Context, _, _ string) (string, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func (m *Mock) Calls() int {
	return int(m.calls.Load())
}

func (m *Mock) ModelName() string { return "mock" }
