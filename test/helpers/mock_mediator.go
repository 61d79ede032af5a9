package helpers

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/andrescamacho/tradeup-bot/internal/application/common"
)

// MockMediator is a test double for the Mediator interface.
// Responses are scripted per request type; every request is recorded.
type MockMediator struct {
	mu        sync.Mutex
	sendFunc  func(ctx context.Context, request common.Request) (common.Response, error)
	responses map[reflect.Type]common.Response
	errors    map[reflect.Type]error
	callLog   []common.Request
}

// NewMockMediator creates a new MockMediator
func NewMockMediator() *MockMediator {
	return &MockMediator{
		responses: make(map[reflect.Type]common.Response),
		errors:    make(map[reflect.Type]error),
	}
}

// Send implements the Mediator interface
func (m *MockMediator) Send(ctx context.Context, request common.Request) (common.Response, error) {
	m.mu.Lock()
	m.callLog = append(m.callLog, request)
	fn := m.sendFunc
	requestType := reflect.TypeOf(request)
	response, hasResponse := m.responses[requestType]
	err := m.errors[requestType]
	m.mu.Unlock()

	// Use custom function if provided
	if fn != nil {
		return fn(ctx, request)
	}
	if err != nil {
		return nil, err
	}
	if hasResponse {
		return response, nil
	}
	return nil, fmt.Errorf("unsupported request type: %T", request)
}

// SetSendFunc sets a custom function for Send calls
func (m *MockMediator) SetSendFunc(fn func(ctx context.Context, request common.Request) (common.Response, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendFunc = fn
}

// SetResponse scripts the response returned for requests of the same type as sample
func (m *MockMediator) SetResponse(sample common.Request, response common.Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[reflect.TypeOf(sample)] = response
}

// SetError scripts the error returned for requests of the same type as sample
func (m *MockMediator) SetError(sample common.Request, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[reflect.TypeOf(sample)] = err
}

// Calls returns every request sent so far
func (m *MockMediator) Calls() []common.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]common.Request(nil), m.callLog...)
}

// CountCalls returns how many requests of the same type as sample were sent
func (m *MockMediator) CountCalls(sample common.Request) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := reflect.TypeOf(sample)
	n := 0
	for _, req := range m.callLog {
		if reflect.TypeOf(req) == want {
			n++
		}
	}
	return n
}

// Register implements the Mediator interface (no-op for tests)
func (m *MockMediator) Register(requestType reflect.Type, handler common.RequestHandler) error {
	return nil
}

// Use implements the Mediator interface (no-op for tests)
func (m *MockMediator) Use(middleware common.Middleware) {}

// Ensure MockMediator implements the common.Mediator interface
var _ common.Mediator = (*MockMediator)(nil)
