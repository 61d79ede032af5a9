package common

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrNoHandler is returned by Send for a request type nobody registered
var ErrNoHandler = errors.New("no handler registered")

// Request is a command or query. Handlers are looked up by the request's dynamic type,
// so commands are always sent as pointers.
type Request interface{}

// Response is whatever the handler returns; callers assert it to the concrete *Response type
type Response interface{}

// RequestHandler handles one request type
type RequestHandler interface {
	Handle(ctx context.Context, request Request) (Response, error)
}

// HandlerFunc adapts a plain function to RequestHandler
type HandlerFunc func(ctx context.Context, request Request) (Response, error)

// Handle calls f
func (f HandlerFunc) Handle(ctx context.Context, request Request) (Response, error) {
	return f(ctx, request)
}

// Middleware runs around every handler (command metrics, for instance)
type Middleware func(ctx context.Context, request Request, next HandlerFunc) (Response, error)

// Mediator routes commands and queries from the CLI and the run loop to their handlers
type Mediator interface {
	Send(ctx context.Context, request Request) (Response, error)
	Register(requestType reflect.Type, handler RequestHandler) error
	Use(middleware Middleware)
}

type mediator struct {
	mu          sync.RWMutex
	handlers    map[reflect.Type]RequestHandler
	middlewares []Middleware
}

// NewMediator returns an empty mediator. The run loop sends from several goroutines, so it is safe for concurrent use.
func NewMediator() Mediator {
	return &mediator{handlers: make(map[reflect.Type]RequestHandler)}
}

func (m *mediator) Register(requestType reflect.Type, handler RequestHandler) error {
	switch {
	case requestType == nil:
		return fmt.Errorf("request type cannot be nil")
	case handler == nil:
		return fmt.Errorf("handler for %s cannot be nil", requestType)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.handlers[requestType]; taken {
		return fmt.Errorf("handler already registered for type %s", requestType)
	}
	m.handlers[requestType] = handler
	return nil
}

// Use adds a middleware. Middlewares run in registration order, outermost first.
func (m *mediator) Use(middleware Middleware) {
	if middleware == nil {
		return
	}
	m.mu.Lock()
	m.middlewares = append(m.middlewares, middleware)
	m.mu.Unlock()
}

func (m *mediator) Send(ctx context.Context, request Request) (Response, error) {
	if request == nil {
		return nil, fmt.Errorf("request cannot be nil")
	}

	m.mu.RLock()
	handler, ok := m.handlers[reflect.TypeOf(request)]
	middlewares := m.middlewares
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w for %s", ErrNoHandler, RequestName(request))
	}
	return chain(middlewares, handler.Handle)(ctx, request)
}

// chain wraps final so that middlewares[0] is called first
func chain(middlewares []Middleware, final HandlerFunc) HandlerFunc {
	next := final
	for i := len(middlewares) - 1; i >= 0; i-- {
		mw, inner := middlewares[i], next
		next = func(ctx context.Context, request Request) (Response, error) {
			return mw(ctx, request, inner)
		}
	}
	return next
}

// RegisterHandler registers handler for the request type T, e.g. RegisterHandler[*PlaceBuyOrdersCommand]
func RegisterHandler[T Request](m Mediator, handler RequestHandler) error {
	return m.Register(reflect.TypeOf((*T)(nil)).Elem(), handler)
}

// RequestName is the bare type name of a request ("PlaceBuyOrdersCommand"), used in errors and metric labels
func RequestName(request Request) string {
	if request == nil {
		return "UnknownRequest"
	}
	t := reflect.TypeOf(request)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
