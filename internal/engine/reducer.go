package engine

// Reducer computes the next state from the current state and a command.
// It must be pure: no I/O, no mutation of its inputs.
type Reducer func(State, Command) State

// ReduceProject folds project export/save outcomes into the project slice.
// Sibling fields are left as they were; unknown commands return s unchanged.
func ReduceProject(s ProjectState, c Command) ProjectState {
	switch c.Type {
	case ExportProjectSuccess:
		s.ExportResult = c.Payload
	case ExportProjectFailure:
		s.ExportError = c.Error
	case SaveProjectSuccess:
		s.SaveResult = c.Payload
	case SaveProjectFailure:
		s.SaveError = c.Error
	}
	return s
}

// ReduceGenerator folds tool/agent generation outcomes into the generator slice.
func ReduceGenerator(s GeneratorState, c Command) GeneratorState {
	switch c.Type {
	case GenerateToolSuccess:
		s.Tool = c.Payload
	case GenerateToolFailure:
		s.ToolError = c.Error
	case GenerateAgentSuccess:
		s.Agent = c.Payload
	case GenerateAgentFailure:
		s.AgentError = c.Error
	}
	return s
}

// Reduce is the root reducer: each subdomain reducer sees only its own slice.
func Reduce(s State, c Command) State {
	return State{
		Project:   ReduceProject(s.Project, c),
		Generator: ReduceGenerator(s.Generator, c),
	}
}
