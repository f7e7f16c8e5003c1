package actions

import (
	"context"
	"fmt"

	"github.com/roach88/lumos/internal/ldl"
	"github.com/roach88/lumos/internal/store"
)

// Save runs the save thunk through r and returns the typed result.
func Save(ctx context.Context, r Runner, s Saver, doc *ldl.Document) (store.Result, error) {
	out, err := r.Run(ctx, SaveProject(s, doc))
	if err != nil {
		return store.Result{}, err
	}
	return as[store.Result](out)
}

// Export runs the export thunk through r and returns the typed result.
func Export(ctx context.Context, r Runner, e Exporter, doc *ldl.Document) (ExportResult, error) {
	out, err := r.Run(ctx, ExportProject(e, doc))
	if err != nil {
		return ExportResult{}, err
	}
	return as[ExportResult](out)
}

// GenerateToolWith runs the tool generation thunk through r.
func GenerateToolWith(ctx context.Context, r Runner, g Generator, prompt string) (*ldl.Tool, error) {
	out, err := r.Run(ctx, GenerateTool(g, prompt))
	if err != nil {
		return nil, err
	}
	return as[*ldl.Tool](out)
}

// GenerateAgentWith runs the agent generation thunk through r.
func GenerateAgentWith(ctx context.Context, r Runner, g Generator, prompt string) (*ldl.Agent, error) {
	out, err := r.Run(ctx, GenerateAgent(g, prompt))
	if err != nil {
		return nil, err
	}
	return as[*ldl.Agent](out)
}

func as[T any](out any) (T, error) {
	v, ok := out.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("thunk returned %T, want %T", out, zero)
	}
	return v, nil
}
