package engine

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// FlowTokenGenerator produces the correlation token attached to each thunk
// run. Every log line a thunk emits through the store carries it.
type FlowTokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 flow tokens, so log lines
// from concurrent thunks sort by start time.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator hands out predetermined tokens in order. For tests.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator creates a generator that returns tokens in order and
// panics once they run out.
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next predetermined token.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.tokens) {
		panic("FixedGenerator: all tokens exhausted")
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}

type flowTokenKey struct{}

// WithFlowToken returns a context carrying the given flow token.
func WithFlowToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, flowTokenKey{}, token)
}

// FlowToken returns the flow token of the thunk run owning ctx, or "".
func FlowToken(ctx context.Context) string {
	token, _ := ctx.Value(flowTokenKey{}).(string)
	return token
}
