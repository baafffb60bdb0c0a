package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockAdapter provides a controllable Adapter implementation for testing.
// Each call consumes the next scripted error (if any), then the next scripted
// response.
type MockAdapter struct {
	mu            sync.Mutex
	responses     []Envelope
	responseIndex int
	errors        []error
	errorIndex    int
	calls         int
}

// NewMockAdapter creates a mock adapter with predefined responses and errors.
func NewMockAdapter(responses []Envelope, errors []error) *MockAdapter {
	return &MockAdapter{
		responses: responses,
		errors:    errors,
	}
}

// Send returns the next predefined error or response.
func (m *MockAdapter) Send(_ context.Context, req Request) (Envelope, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++

	if err := ValidateRequest(req); err != nil {
		return Envelope{}, err
	}

	if m.errorIndex < len(m.errors) && m.errors[m.errorIndex] != nil {
		err := m.errors[m.errorIndex]
		m.errorIndex++
		return Envelope{}, err
	}

	if m.responseIndex >= len(m.responses) {
		return Envelope{}, fmt.Errorf("mock adapter: no more responses")
	}

	resp := m.responses[m.responseIndex]
	m.responseIndex++
	if resp.ModelName == "" {
		resp.ModelName = m.ModelName()
	}
	return resp, nil
}

// ModelName returns a fixed model identifier for the mock.
func (m *MockAdapter) ModelName() string {
	return "mock-model"
}

// Calls returns how many times Send was invoked.
func (m *MockAdapter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
