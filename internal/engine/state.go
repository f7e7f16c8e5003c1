package engine

// ProjectState is the project subdomain of the state tree.
type ProjectState struct {
	ExportResult any `json:"exportResult,omitempty"`
	ExportError  any `json:"exportError,omitempty"`
	SaveResult   any `json:"saveResult,omitempty"`
	SaveError    any `json:"saveError,omitempty"`
}

// GeneratorState is the generator subdomain of the state tree.
type GeneratorState struct {
	Tool       any `json:"tool,omitempty"`
	ToolError  any `json:"toolError,omitempty"`
	Agent      any `json:"agent,omitempty"`
	AgentError any `json:"agentError,omitempty"`
}

// State is the root state tree. It is a value: reducers return a modified
// copy and State() hands out a copy, so the tree itself cannot be mutated
// from outside the store. Payloads inside it are shared and must be treated
// as read-only.
type State struct {
	Project   ProjectState   `json:"project"`
	Generator GeneratorState `json:"generator"`
}
