package engine

// Type identifies a command. The set is closed: reducers ignore anything else.
type Type string

const (
	ExportProjectRequest Type = "EXPORT_PROJECT_REQUEST"
	ExportProjectSuccess Type = "EXPORT_PROJECT_SUCCESS"
	ExportProjectFailure Type = "EXPORT_PROJECT_FAILURE"

	SaveProjectRequest Type = "SAVE_PROJECT_REQUEST"
	SaveProjectSuccess Type = "SAVE_PROJECT_SUCCESS"
	SaveProjectFailure Type = "SAVE_PROJECT_FAILURE"

	GenerateToolRequest Type = "GENERATE_TOOL_REQUEST"
	GenerateToolSuccess Type = "GENERATE_TOOL_SUCCESS"
	GenerateToolFailure Type = "GENERATE_TOOL_FAILURE"

	GenerateAgentRequest Type = "GENERATE_AGENT_REQUEST"
	GenerateAgentSuccess Type = "GENERATE_AGENT_SUCCESS"
	GenerateAgentFailure Type = "GENERATE_AGENT_FAILURE"
)

var knownTypes = map[Type]bool{
	ExportProjectRequest: true, ExportProjectSuccess: true, ExportProjectFailure: true,
	SaveProjectRequest: true, SaveProjectSuccess: true, SaveProjectFailure: true,
	GenerateToolRequest: true, GenerateToolSuccess: true, GenerateToolFailure: true,
	GenerateAgentRequest: true, GenerateAgentSuccess: true, GenerateAgentFailure: true,
}

// Known reports whether t is one of the recognized command types.
func (t Type) Known() bool {
	return knownTypes[t]
}

// Command is a plain state-change record: {type, payload?, error?}.
// Payload and Error are opaque to the store; reducers copy them into state.
type Command struct {
	Type    Type `json:"type"`
	Payload any  `json:"payload,omitempty"`
	Error   any  `json:"error,omitempty"`
}
