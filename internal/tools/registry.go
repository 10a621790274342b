package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrToolNotFound is returned when no handler is registered for a tool name.
var ErrToolNotFound = errors.New("tool not found")

// Message is the unit delivered to a tool handler. Its shape is
// identical whether it arrives over a transport or in-process; identity
// travels alongside in the context, never inside the payload.
type Message struct {
	Tool    string          `json:"tool"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Result is a tool handler's response payload.
type Result struct {
	Payload json.RawMessage `json:"payload,omitempty"`
}

// HandlerFunc handles a single tool invocation. Handlers that need the
// acting identity read it with auth.RequireIdentity; a missing identity
// means the call is unauthenticated.
type HandlerFunc func(ctx context.Context, msg *Message) (*Result, error)

// Registry maps tool names to handlers and dispatches invocations.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]HandlerFunc),
	}
}

// Register adds a handler under the given tool name, replacing any
// existing registration.
func (r *Registry) Register(name string, fn HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[name] = fn
}

// Dispatch invokes the handler registered for the message's tool name.
func (r *Registry) Dispatch(ctx context.Context, msg *Message) (*Result, error) {
	r.mu.RLock()
	fn, ok := r.handlers[msg.Tool]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, msg.Tool)
	}

	result, err := fn(ctx, msg)
	if err != nil {
		log.Debug().Err(err).Str("tool", msg.Tool).Msg("Tool invocation failed")
		return nil, err
	}

	return result, nil
}
