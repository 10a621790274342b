package tools

import (
	"context"
	"errors"
	"sync"

	"github.com/recoupable/api-sub002/internal/auth"
)

// ErrTransportClosed is returned by Send after Close.
var ErrTransportClosed = errors.New("transport closed")

// Transport is the hook surface of an in-process tool channel: messages
// go out through Send, results and errors come back through the
// callbacks, and Close tears the channel down.
type Transport interface {
	Send(ctx context.Context, msg *Message) error
	OnResult(fn func(msg *Message, result *Result))
	OnError(fn func(msg *Message, err error))
	Close() error
}

// IdentityTransport decorates a Transport so every outbound message
// carries a previously resolved identity as context metadata. The
// message payload is never touched and all hooks pass through
// unchanged; only what travels alongside a message differs.
type IdentityTransport struct {
	next     Transport
	identity auth.Identity
}

// WithIdentity wraps next so downstream handlers see the same identity
// the inbound transport authenticated.
func WithIdentity(next Transport, identity auth.Identity) *IdentityTransport {
	return &IdentityTransport{next: next, identity: identity}
}

// Send attaches the identity to the context and delegates.
func (t *IdentityTransport) Send(ctx context.Context, msg *Message) error {
	return t.next.Send(auth.WithIdentity(ctx, t.identity), msg)
}

// OnResult delegates unchanged.
func (t *IdentityTransport) OnResult(fn func(msg *Message, result *Result)) {
	t.next.OnResult(fn)
}

// OnError delegates unchanged.
func (t *IdentityTransport) OnError(fn func(msg *Message, err error)) {
	t.next.OnError(fn)
}

// Close delegates unchanged.
func (t *IdentityTransport) Close() error {
	return t.next.Close()
}

// LocalTransport delivers messages straight to a Registry without a
// network hop. It deliberately does not resolve credentials; wrap it
// with WithIdentity to authenticate calls.
type LocalTransport struct {
	registry *Registry

	mu       sync.Mutex
	onResult func(msg *Message, result *Result)
	onError  func(msg *Message, err error)
	closed   bool
}

// NewLocalTransport creates a transport dispatching into registry.
func NewLocalTransport(registry *Registry) *LocalTransport {
	return &LocalTransport{registry: registry}
}

// Send dispatches the message synchronously and routes the outcome to
// the registered hooks.
func (t *LocalTransport) Send(ctx context.Context, msg *Message) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrTransportClosed
	}
	onResult, onError := t.onResult, t.onError
	t.mu.Unlock()

	result, err := t.registry.Dispatch(ctx, msg)
	if err != nil {
		if onError != nil {
			onError(msg, err)
		}
		return err
	}

	if onResult != nil {
		onResult(msg, result)
	}
	return nil
}

// OnResult registers the result hook.
func (t *LocalTransport) OnResult(fn func(msg *Message, result *Result)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onResult = fn
}

// OnError registers the error hook.
func (t *LocalTransport) OnError(fn func(msg *Message, err error)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onError = fn
}

// Close marks the transport closed; subsequent sends fail.
func (t *LocalTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}
