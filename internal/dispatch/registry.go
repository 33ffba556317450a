package dispatch

import (
	"sort"
	"sync"
)

// Token identifies a registration. The zero Token is never issued.
type Token uint64

// Registry holds handlers by token. Holders of a Registry keep no other
// reference to the handlers, so unregistering is enough to release them.
type Registry[H any] struct {
	mu       sync.RWMutex
	next     Token
	handlers map[Token]H
}

// Add registers h and returns its token.
func (r *Registry[H]) Add(h H) Token {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.handlers == nil {
		r.handlers = make(map[Token]H)
	}
	r.next++
	r.handlers[r.next] = h
	return r.next
}

// Remove unregisters the handler behind t. Unknown tokens are ignored.
func (r *Registry[H]) Remove(t Token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, t)
}

// Each calls fn for every registered handler in registration order.
func (r *Registry[H]) Each(fn func(H)) {
	r.mu.RLock()
	tokens := make([]Token, 0, len(r.handlers))
	for t := range r.handlers {
		tokens = append(tokens, t)
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i] < tokens[j] })
	handlers := make([]H, 0, len(tokens))
	for _, t := range tokens {
		handlers = append(handlers, r.handlers[t])
	}
	r.mu.RUnlock()

	for _, h := range handlers {
		fn(h)
	}
}

// Len returns the number of registered handlers.
func (r *Registry[H]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}
