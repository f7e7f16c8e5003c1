package testutil

// FixedFlowGenerator returns the same flow token on every call, so every
// thunk in a test run logs under one flow.
//
// Unlike engine.FixedGenerator, which hands out a sequence and panics when
// exhausted, it never runs out. Safe for concurrent use.
type FixedFlowGenerator struct {
	token string
}

// NewFixedFlowGenerator returns a generator for token. An empty token
// becomes "test-flow-default".
func NewFixedFlowGenerator(token string) *FixedFlowGenerator {
	if token == "" {
		token = "test-flow-default"
	}
	return &FixedFlowGenerator{token: token}
}

// Generate implements engine.FlowTokenGenerator.
func (g *FixedFlowGenerator) Generate() string {
	return g.token
}
