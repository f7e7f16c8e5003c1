package actions

import (
	"context"
	"strings"

	"github.com/roach88/lumos/internal/engine"
	"github.com/roach88/lumos/internal/ldl"
	"github.com/roach88/lumos/internal/store"
)

// Saver persists a project with upsert-replace semantics.
// *store.Store satisfies it.
type Saver interface {
	SaveProject(ctx context.Context, doc *ldl.Document) store.Result
}

// ExportResult is the outcome of an export. A failed export carries a Status
// of "error" or "error:<detail>".
type ExportResult struct {
	Status    string `json:"status"`
	URL       string `json:"url,omitempty"`
	ProjectID int64  `json:"project_id,omitempty"`
}

// Failed reports whether the status carries the error prefix.
func (r ExportResult) Failed() bool {
	return strings.HasPrefix(r.Status, "error")
}

// Exporter publishes a project somewhere reachable and reports where.
type Exporter interface {
	Export(ctx context.Context, doc *ldl.Document) (ExportResult, error)
}

// Generator produces tool and agent definitions from a free-text prompt.
type Generator interface {
	GenerateTool(ctx context.Context, prompt string) (*ldl.Tool, error)
	GenerateAgent(ctx context.Context, prompt string) (*ldl.Agent, error)
}

// Runner executes thunks. *engine.Store satisfies it.
type Runner interface {
	Run(ctx context.Context, thunk engine.Thunk) (any, error)
}

// DefaultExportMessage is reported when an export status has no detail.
const DefaultExportMessage = "Error exporting project"

// SplitStatus extracts the human-readable message from an "error:<detail>"
// status, splitting on the first colon. A bare "error" yields
// DefaultExportMessage; a status without the error prefix yields "".
func SplitStatus(status string) string {
	if !strings.HasPrefix(status, "error") {
		return ""
	}
	_, detail, found := strings.Cut(status, ":")
	if !found {
		return DefaultExportMessage
	}
	return strings.TrimSpace(detail)
}

// SaveProject returns a thunk that saves doc and records the outcome.
// The thunk's result is the store.Result; its error is always nil.
func SaveProject(s Saver, doc *ldl.Document) engine.Thunk {
	return func(ctx context.Context, d engine.Dispatcher) (any, error) {
		d.Dispatch(engine.Command{Type: engine.SaveProjectRequest})

		result := s.SaveProject(ctx, doc)
		if result.Status == store.StatusError {
			d.Dispatch(engine.Command{Type: engine.SaveProjectFailure, Error: result})
		} else {
			d.Dispatch(engine.Command{Type: engine.SaveProjectSuccess, Payload: result})
		}
		return result, nil
	}
}

// ExportProject returns a thunk that exports doc and records the outcome.
func ExportProject(e Exporter, doc *ldl.Document) engine.Thunk {
	return func(ctx context.Context, d engine.Dispatcher) (any, error) {
		d.Dispatch(engine.Command{Type: engine.ExportProjectRequest})

		result, err := e.Export(ctx, doc)
		if err != nil {
			return nil, fail(ctx, d, engine.ExportProjectFailure, err)
		}
		if result.Failed() {
			d.Dispatch(engine.Command{Type: engine.ExportProjectFailure, Error: result})
		} else {
			d.Dispatch(engine.Command{Type: engine.ExportProjectSuccess, Payload: result})
		}
		return result, nil
	}
}

// GenerateTool returns a thunk that asks g for a tool definition.
func GenerateTool(g Generator, prompt string) engine.Thunk {
	return func(ctx context.Context, d engine.Dispatcher) (any, error) {
		d.Dispatch(engine.Command{Type: engine.GenerateToolRequest})

		tool, err := g.GenerateTool(ctx, prompt)
		if err != nil {
			return nil, fail(ctx, d, engine.GenerateToolFailure, err)
		}
		d.Dispatch(engine.Command{Type: engine.GenerateToolSuccess, Payload: tool})
		return tool, nil
	}
}

// GenerateAgent returns a thunk that asks g for an agent definition.
func GenerateAgent(g Generator, prompt string) engine.Thunk {
	return func(ctx context.Context, d engine.Dispatcher) (any, error) {
		d.Dispatch(engine.Command{Type: engine.GenerateAgentRequest})

		agent, err := g.GenerateAgent(ctx, prompt)
		if err != nil {
			return nil, fail(ctx, d, engine.GenerateAgentFailure, err)
		}
		d.Dispatch(engine.Command{Type: engine.GenerateAgentSuccess, Payload: agent})
		return agent, nil
	}
}

// fail records the error text under the failure command, then returns the
// error for the caller to propagate.
func fail(ctx context.Context, d engine.Dispatcher, typ engine.Type, err error) error {
	d.Dispatch(engine.Command{Type: typ, Error: err.Error()})
	return &engine.DispatchError{Type: typ, FlowToken: engine.FlowToken(ctx), Err: err}
}
