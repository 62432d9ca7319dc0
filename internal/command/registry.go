// Package command implements the reserved in-session command set: tokens
// that, when typed as a whole input line, are handled by the session host
// instead of being forwarded to the shell.
package command

import (
	"sort"
	"strings"
)

// Handler is a zero-argument reserved-command implementation. Handlers are
// synchronous and print directly to the real terminal.
type Handler func()

// Registry maps reserved tokens to handlers. New commands are added by
// registration; the relay's control flow never changes.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds a token to a handler, replacing any previous binding.
func (r *Registry) Register(token string, h Handler) {
	r.handlers[token] = h
}

// Lookup returns the handler bound to token.
func (r *Registry) Lookup(token string) (Handler, bool) {
	h, ok := r.handlers[token]
	return h, ok
}

// Names returns the registered tokens in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch checks whether the chunk, trimmed of surrounding whitespace and
// line endings, exactly matches a registered token. On a match the handler
// runs and Dispatch reports true: the chunk must not be forwarded to the
// PTY. Anything else is forwarded unchanged.
func (r *Registry) Dispatch(chunk []byte) bool {
	token := strings.TrimSpace(string(chunk))
	if token == "" {
		return false
	}
	h, ok := r.handlers[token]
	if !ok {
		return false
	}
	h()
	return true
}
