// Package seq orders responses of concurrent requests against one target.
//
// Every request takes a token when it is dispatched. When its response
// arrives, Commit accepts it only if no request dispatched later for the
// same target has already been applied. The newest dispatched request that
// succeeds therefore always ends up on screen, whatever the arrival order.
package seq

import "sync"

// Token identifies one dispatched request.
type Token struct {
	Target string
	N      uint64
}

// Guard tracks issued and applied tokens per target.
type Guard struct {
	mu      sync.Mutex
	issued  map[string]uint64
	applied map[string]uint64
}

func NewGuard() *Guard {
	return &Guard{
		issued:  make(map[string]uint64),
		applied: make(map[string]uint64),
	}
}

// Begin issues the next token for target.
func (g *Guard) Begin(target string) Token {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.issued[target]++
	return Token{Target: target, N: g.issued[target]}
}

// Commit reports whether the response for tok may be applied and, if so,
// records it as the latest applied one. Only applied tokens count: a newer
// request that failed does not block an older one. Call it in the same
// event-loop turn that applies the response.
func (g *Guard) Commit(tok Token) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if tok.N < g.applied[tok.Target] {
		return false
	}
	g.applied[tok.Target] = tok.N
	return true
}

// Latest returns the last issued token number for target.
func (g *Guard) Latest(target string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.issued[target]
}
