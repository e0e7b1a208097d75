package mocks

import (
	"context"
	"sync"

	"github.com/kamal-hamza/grassfier/internal/core/domain"
)

// MockPredictor is a mock implementation of the Predictor interface for testing
type MockPredictor struct {
	mu       sync.Mutex
	response *domain.PredictionResponse
	err      error
	calls    []domain.SourceFile
	gate     chan struct{}
}

// NewMockPredictor creates a predictor that answers with the given response
func NewMockPredictor(resp *domain.PredictionResponse) *MockPredictor {
	return &MockPredictor{response: resp}
}

// NewFailingPredictor creates a predictor that always fails with err
func NewFailingPredictor(err error) *MockPredictor {
	return &MockPredictor{err: err}
}

// Block makes Predict wait until Release is called
func (m *MockPredictor) Block() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gate = make(chan struct{})
}

// Release unblocks pending Predict calls
func (m *MockPredictor) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gate != nil {
		close(m.gate)
		m.gate = nil
	}
}

// Predict records the call and returns the configured outcome
func (m *MockPredictor) Predict(ctx context.Context, file domain.SourceFile) (*domain.PredictionResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, file)
	gate := m.gate
	resp, err := m.response, m.err
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Calls returns the number of Predict invocations
func (m *MockPredictor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastFile returns the file sent by the most recent call
func (m *MockPredictor) LastFile() (domain.SourceFile, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return domain.SourceFile{}, false
	}
	return m.calls[len(m.calls)-1], true
}
