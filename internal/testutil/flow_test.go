package testutil

import (
	"testing"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"

	"github.com/roach88/lumos/internal/engine"
	"github.com/roach88/lumos/internal/ldl"
)

var _ engine.FlowTokenGenerator = (*FixedFlowGenerator)(nil)

func TestFixedFlowGenerator_ReturnsSameToken(t *testing.T) {
	gen := NewFixedFlowGenerator("test-flow-123")

	assert.Equal(t, "test-flow-123", gen.Generate())
	assert.Equal(t, "test-flow-123", gen.Generate())
}

func TestFixedFlowGenerator_EmptyTokenDefault(t *testing.T) {
	assert.Equal(t, "test-flow-default", NewFixedFlowGenerator("").Generate())
}

func TestFixedFlowGenerator_ThreadSafe(t *testing.T) {
	gen := NewFixedFlowGenerator("thread-safe-token")

	var wg conc.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Go(func() {
			for j := 0; j < 100; j++ {
				assert.Equal(t, "thread-safe-token", gen.Generate())
			}
		})
	}
	wg.Wait()
}

func TestDemoDocument_FreshCopies(t *testing.T) {
	a, b := DemoDocument(), DemoDocument()
	a.Agents[0].Name = "changed"

	assert.Equal(t, "Researcher", b.Agents[0].Name)
	assert.NoError(t, b.Validate(ldl.ModeSave))
}
