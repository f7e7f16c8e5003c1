package ldl

// DefaultModelVersion is stored when an agent model omits its version.
const DefaultModelVersion = "latest"

// Document is a complete project document.
type Document struct {
	Project      Header        `json:"project" yaml:"project"`
	Agents       []Agent       `json:"agents,omitempty" yaml:"agents,omitempty"`
	Tools        []Tool        `json:"tools,omitempty" yaml:"tools,omitempty"`
	Tasks        []Task        `json:"tasks,omitempty" yaml:"tasks,omitempty"`
	Interactions []Interaction `json:"interactions,omitempty" yaml:"interactions,omitempty"`
	Connections  []Connection  `json:"connections,omitempty" yaml:"connections,omitempty"`
}

// Header holds the project's own fields. Name is the business key.
type Header struct {
	Name        string   `json:"name" yaml:"name"`
	Version     string   `json:"version" yaml:"version"`
	Description string   `json:"description" yaml:"description"`
	Authors     []string `json:"authors,omitempty" yaml:"authors,omitempty"`
}

// Position is a canvas coordinate.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Agent is a node on the canvas backed by an LLM.
// ID is caller-assigned and unique within the project.
type Agent struct {
	ID           string      `json:"id" yaml:"id"`
	Name         string      `json:"name" yaml:"name"`
	Description  string      `json:"description" yaml:"description"`
	Type         string      `json:"type" yaml:"type"`
	Subtype      string      `json:"subtype,omitempty" yaml:"subtype,omitempty"`
	Position     *Position   `json:"position,omitempty" yaml:"position,omitempty"`
	Model        *Model      `json:"model,omitempty" yaml:"model,omitempty"`
	Capabilities []string    `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
	Tools        []AgentTool `json:"tools,omitempty" yaml:"tools,omitempty"`
}

// Model describes the LLM behind an agent.
type Model struct {
	LLMType    string `json:"llmType,omitempty" yaml:"llmType,omitempty"`
	Name       string `json:"name" yaml:"name"`
	Version    string `json:"version,omitempty" yaml:"version,omitempty"`
	Provider   string `json:"provider,omitempty" yaml:"provider,omitempty"`
	Parameters Object `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// VersionOrDefault returns the model version, or DefaultModelVersion when unset.
func (m *Model) VersionOrDefault() string {
	if m.Version == "" {
		return DefaultModelVersion
	}
	return m.Version
}

// AgentTool is a tool owned by a single agent. Project-scoped tools use Tool.
type AgentTool struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Type        string `json:"type" yaml:"type"`
	Subtype     string `json:"subtype,omitempty" yaml:"subtype,omitempty"`
	Parameters  Object `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Tool is a project-scoped tool node.
type Tool struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Type        string    `json:"type" yaml:"type"`
	Subtype     string    `json:"subtype,omitempty" yaml:"subtype,omitempty"`
	Position    *Position `json:"position,omitempty" yaml:"position,omitempty"`
	Parameters  Object    `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Task is a project-scoped task node.
type Task struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Type        string    `json:"type" yaml:"type"`
	Position    *Position `json:"position,omitempty" yaml:"position,omitempty"`
	Parameters  Object    `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Interaction groups participating agents under an optional protocol.
// Participants are agent IDs; they are not checked against Agents.
type Interaction struct {
	ID           string    `json:"id" yaml:"id"`
	Type         string    `json:"type" yaml:"type"`
	Subtype      string    `json:"subtype,omitempty" yaml:"subtype,omitempty"`
	Pattern      string    `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Participants []string  `json:"participants,omitempty" yaml:"participants,omitempty"`
	Protocol     *Protocol `json:"protocol,omitempty" yaml:"protocol,omitempty"`
}

// Protocol names the message types exchanged in an interaction.
type Protocol struct {
	Type         string   `json:"type" yaml:"type"`
	MessageTypes []string `json:"messageTypes,omitempty" yaml:"messageTypes,omitempty"`
}

// EndpointType tags the node kind at either end of a connection.
type EndpointType string

const (
	EndpointAgent EndpointType = "agent"
	EndpointTool  EndpointType = "tool"
	EndpointTask  EndpointType = "task"
)

// Connection is an edge between two canvas nodes.
// SourceType and TargetType are optional in the document; see ResolveEndpoint.
type Connection struct {
	ID         string       `json:"id" yaml:"id"`
	Source     string       `json:"source" yaml:"source"`
	Target     string       `json:"target" yaml:"target"`
	SourceType EndpointType `json:"sourceType,omitempty" yaml:"sourceType,omitempty"`
	TargetType EndpointType `json:"targetType,omitempty" yaml:"targetType,omitempty"`
	Label      string       `json:"label,omitempty" yaml:"label,omitempty"`
}

// ResolveEndpoint returns the node kind for a connection endpoint.
// An explicit tag wins; otherwise the id is looked up among agents, tools,
// and tasks in that order. Unknown ids fall back to EndpointAgent.
func (d *Document) ResolveEndpoint(explicit EndpointType, id string) EndpointType {
	if explicit != "" {
		return explicit
	}
	for _, a := range d.Agents {
		if a.ID == id {
			return EndpointAgent
		}
	}
	for _, t := range d.Tools {
		if t.ID == id {
			return EndpointTool
		}
	}
	for _, t := range d.Tasks {
		if t.ID == id {
			return EndpointTask
		}
	}
	return EndpointAgent
}
