package ldl

import (
	"errors"
	"fmt"
)

// Mode selects which document fields are required.
type Mode int

const (
	// ModeCreate is the insert-only path: positions are optional.
	ModeCreate Mode = iota + 1
	// ModeSave is the upsert-replace path: agents, tools, and tasks need positions.
	ModeSave
)

// FieldError reports a missing or malformed document field.
type FieldError struct {
	Path    string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// IsFieldError reports whether err wraps a *FieldError.
func IsFieldError(err error) bool {
	var fe *FieldError
	return errors.As(err, &fe)
}

func missing(path string) *FieldError {
	return &FieldError{Path: path, Message: "is required"}
}

// Validate checks the fields the persistence paths dereference and returns the
// first violation found, walking the document in storage order.
func (d *Document) Validate(mode Mode) error {
	if d == nil {
		return missing("project")
	}
	if d.Project.Name == "" {
		return missing("project.name")
	}

	needPosition := mode == ModeSave
	for i, a := range d.Agents {
		path := fmt.Sprintf("agents[%d]", i)
		if a.ID == "" {
			return missing(path + ".id")
		}
		if needPosition && a.Position == nil {
			return missing(path + ".position")
		}
		if a.Model != nil && a.Model.Name == "" && a.Model.LLMType == "" {
			return &FieldError{Path: path + ".model", Message: "needs a name or llmType"}
		}
	}
	for i, t := range d.Tools {
		path := fmt.Sprintf("tools[%d]", i)
		if t.ID == "" {
			return missing(path + ".id")
		}
		if needPosition && t.Position == nil {
			return missing(path + ".position")
		}
	}
	for i, t := range d.Tasks {
		path := fmt.Sprintf("tasks[%d]", i)
		if t.ID == "" {
			return missing(path + ".id")
		}
		if needPosition && t.Position == nil {
			return missing(path + ".position")
		}
	}
	for i, in := range d.Interactions {
		path := fmt.Sprintf("interactions[%d]", i)
		if in.ID == "" {
			return missing(path + ".id")
		}
		if in.Protocol != nil && in.Protocol.Type == "" {
			return missing(path + ".protocol.type")
		}
	}
	for i, c := range d.Connections {
		path := fmt.Sprintf("connections[%d]", i)
		if c.ID == "" {
			return missing(path + ".id")
		}
		if c.Source == "" {
			return missing(path + ".source")
		}
		if c.Target == "" {
			return missing(path + ".target")
		}
	}
	return nil
}
