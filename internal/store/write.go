package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sourcegraph/conc/panics"

	"github.com/roach88/lumos/internal/ldl"
)

// CreateProject inserts a project and its whole subgraph in one transaction.
// It never checks name uniqueness: two creates with the same name produce two
// projects.
//
// Rows are written in dependency order: project header, authors, agents (each
// followed by its model, capabilities, and agent-scoped tools), project tools
// and tasks with their parameters, interactions with participants and
// protocol, then connections. Any failure rolls back the transaction and is
// reported as a StatusError result.
func (s *Store) CreateProject(ctx context.Context, doc *ldl.Document) Result {
	s.logger.Info("creating project", summarize(doc)...)

	id, hash, err := s.guard("create project", func() (int64, string, error) {
		return s.createProject(ctx, doc)
	})
	if err != nil {
		s.logger.Error("create project failed", "error", err)
		return failure(err)
	}

	s.logger.Info("project created", "project_id", id)
	return success(id, hash)
}

// SaveProject upserts a project by name and replaces its children.
//
//  1. The project is looked up by name. If found, version and description are
//     updated in place and the id is reused; otherwise a new row is inserted.
//  2. Authors, agents, tools, tasks, interactions, and connections of that
//     project are deleted (cascading to models, capabilities, parameters,
//     participants, and protocols).
//  3. The children are re-inserted from the document.
//
// All three steps share one transaction, so a failure at any row restores the
// pre-save state, deletions included.
func (s *Store) SaveProject(ctx context.Context, doc *ldl.Document) Result {
	s.logger.Info("saving project", summarize(doc)...)

	id, hash, err := s.guard("save project", func() (int64, string, error) {
		return s.saveProject(ctx, doc)
	})
	if err != nil {
		s.logger.Error("save project failed", "error", err)
		return failure(err)
	}

	s.logger.Info("project saved", "project_id", id)
	return success(id, hash)
}

// guard runs fn and converts a panic into an error so that nothing escapes
// the persistence boundary. Driver errors and recovered panics are wrapped as
// *PersistenceError; validation errors pass through unchanged.
func (s *Store) guard(op string, fn func() (int64, string, error)) (int64, string, error) {
	var (
		catcher panics.Catcher
		id      int64
		hash    string
		err     error
	)
	catcher.Try(func() {
		id, hash, err = fn()
	})
	if recovered := catcher.Recovered(); recovered != nil {
		return 0, "", &PersistenceError{Op: op, Err: recovered.AsError()}
	}
	if err != nil && !ldl.IsFieldError(err) {
		return 0, "", &PersistenceError{Op: op, Err: err}
	}
	return id, hash, err
}

func (s *Store) createProject(ctx context.Context, doc *ldl.Document) (int64, string, error) {
	if err := doc.Validate(ldl.ModeCreate); err != nil {
		return 0, "", err
	}
	hash, err := doc.Hash()
	if err != nil {
		return 0, "", err
	}

	var projectID int64
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		projectID, err = insertProject(ctx, tx, doc.Project, hash)
		if err != nil {
			return err
		}
		return insertChildren(ctx, tx, projectID, doc)
	})
	if err != nil {
		return 0, "", err
	}
	return projectID, hash, nil
}

func (s *Store) saveProject(ctx context.Context, doc *ldl.Document) (int64, string, error) {
	if err := doc.Validate(ldl.ModeSave); err != nil {
		return 0, "", err
	}
	hash, err := doc.Hash()
	if err != nil {
		return 0, "", err
	}

	var projectID int64
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := findProjectID(ctx, tx, doc.Project.Name)
		switch {
		case err == nil:
			projectID = existing
			if err := updateProject(ctx, tx, projectID, doc.Project, hash); err != nil {
				return err
			}
			if err := deleteChildren(ctx, tx, projectID); err != nil {
				return err
			}
		case errors.Is(err, ErrNotFound):
			projectID, err = insertProject(ctx, tx, doc.Project, hash)
			if err != nil {
				return err
			}
		default:
			return err
		}
		return insertChildren(ctx, tx, projectID, doc)
	})
	if err != nil {
		return 0, "", err
	}
	return projectID, hash, nil
}

// childTables are the project-scoped tables cleared on save. Rows hanging off
// agents, tools, tasks, and interactions go with them through ON DELETE CASCADE.
var childTables = []string{"authors", "agents", "tools", "tasks", "interactions", "connections"}

func deleteChildren(ctx context.Context, tx *sql.Tx, projectID int64) error {
	for _, table := range childTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE project_id = ?", projectID); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	return nil
}

func insertProject(ctx context.Context, tx *sql.Tx, h ldl.Header, hash string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO projects (name, version, description, content_hash)
		VALUES (?, ?, ?, ?)
	`, h.Name, h.Version, h.Description, hash)
	if err != nil {
		return 0, fmt.Errorf("insert project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert project: last insert id: %w", err)
	}
	return id, nil
}

func updateProject(ctx context.Context, tx *sql.Tx, id int64, h ldl.Header, hash string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE projects SET version = ?, description = ?, content_hash = ?
		WHERE id = ?
	`, h.Version, h.Description, hash, id)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

func insertChildren(ctx context.Context, tx *sql.Tx, projectID int64, doc *ldl.Document) error {
	for _, author := range doc.Project.Authors {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO authors (project_id, name) VALUES (?, ?)`, projectID, author); err != nil {
			return fmt.Errorf("insert author %q: %w", author, err)
		}
	}
	for _, agent := range doc.Agents {
		if err := insertAgent(ctx, tx, projectID, agent); err != nil {
			return err
		}
	}
	for _, tool := range doc.Tools {
		if err := insertTool(ctx, tx, projectID, tool); err != nil {
			return err
		}
	}
	for _, task := range doc.Tasks {
		if err := insertTask(ctx, tx, projectID, task); err != nil {
			return err
		}
	}
	for _, in := range doc.Interactions {
		if err := insertInteraction(ctx, tx, projectID, in); err != nil {
			return err
		}
	}
	for _, c := range doc.Connections {
		if err := insertConnection(ctx, tx, projectID, doc, c); err != nil {
			return err
		}
	}
	return nil
}

func insertAgent(ctx context.Context, tx *sql.Tx, projectID int64, a ldl.Agent) error {
	x, y := position(a.Position)
	res, err := tx.ExecContext(ctx, `
		INSERT INTO agents (project_id, agent_id, name, description, type, subtype, position_x, position_y)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, projectID, a.ID, a.Name, a.Description, a.Type, a.Subtype, x, y)
	if err != nil {
		return fmt.Errorf("insert agent %q: %w", a.ID, err)
	}
	agentID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert agent %q: last insert id: %w", a.ID, err)
	}

	if a.Model != nil {
		params, err := ldl.EncodeValue(a.Model.Parameters)
		if err != nil {
			return fmt.Errorf("agent %q model parameters: %w", a.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO agent_models (agent_id, llm_type, model_name, model_version, provider, parameters)
			VALUES (?, ?, ?, ?, ?, ?)
		`, agentID, a.Model.LLMType, a.Model.Name, a.Model.VersionOrDefault(), a.Model.Provider, params)
		if err != nil {
			return fmt.Errorf("insert agent %q model: %w", a.ID, err)
		}
	}

	for _, capability := range a.Capabilities {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO agent_capabilities (agent_id, capability) VALUES (?, ?)`, agentID, capability)
		if err != nil {
			return fmt.Errorf("insert agent %q capability %q: %w", a.ID, capability, err)
		}
	}

	for _, t := range a.Tools {
		params, err := ldl.EncodeValue(t.Parameters)
		if err != nil {
			return fmt.Errorf("agent %q tool %q parameters: %w", a.ID, t.Name, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO agent_tools (agent_id, name, description, type, subtype, parameters)
			VALUES (?, ?, ?, ?, ?, ?)
		`, agentID, t.Name, t.Description, t.Type, t.Subtype, params)
		if err != nil {
			return fmt.Errorf("insert agent %q tool %q: %w", a.ID, t.Name, err)
		}
	}
	return nil
}

func insertTool(ctx context.Context, tx *sql.Tx, projectID int64, t ldl.Tool) error {
	x, y := position(t.Position)
	res, err := tx.ExecContext(ctx, `
		INSERT INTO tools (project_id, tool_id, name, description, type, subtype, position_x, position_y)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, projectID, t.ID, t.Name, t.Description, t.Type, t.Subtype, x, y)
	if err != nil {
		return fmt.Errorf("insert tool %q: %w", t.ID, err)
	}
	toolID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert tool %q: last insert id: %w", t.ID, err)
	}
	if err := insertParameters(ctx, tx, "tool_parameters", "tool_id", toolID, t.Parameters); err != nil {
		return fmt.Errorf("tool %q: %w", t.ID, err)
	}
	return nil
}

func insertTask(ctx context.Context, tx *sql.Tx, projectID int64, t ldl.Task) error {
	x, y := position(t.Position)
	res, err := tx.ExecContext(ctx, `
		INSERT INTO tasks (project_id, task_id, name, description, type, position_x, position_y)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, projectID, t.ID, t.Name, t.Description, t.Type, x, y)
	if err != nil {
		return fmt.Errorf("insert task %q: %w", t.ID, err)
	}
	taskID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert task %q: last insert id: %w", t.ID, err)
	}
	if err := insertParameters(ctx, tx, "task_parameters", "task_id", taskID, t.Parameters); err != nil {
		return fmt.Errorf("task %q: %w", t.ID, err)
	}
	return nil
}

// insertParameters writes one row per parameter in key order. The type tag is
// the value's variant; required is always set.
func insertParameters(ctx context.Context, tx *sql.Tx, table, ownerColumn string, ownerID int64, params ldl.Object) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, param_name, param_type, default_value, required)
		VALUES (?, ?, ?, ?, 1)
	`, table, ownerColumn)

	for _, name := range params.SortedKeys() {
		v := params[name]
		if v == nil {
			v = ldl.Null{}
		}
		text, err := ldl.ParameterText(v)
		if err != nil {
			return fmt.Errorf("parameter %q: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, query, ownerID, name, string(v.Kind()), text); err != nil {
			return fmt.Errorf("insert parameter %q: %w", name, err)
		}
	}
	return nil
}

func insertInteraction(ctx context.Context, tx *sql.Tx, projectID int64, in ldl.Interaction) error {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO interactions (project_id, interaction_id, type, subtype, pattern)
		VALUES (?, ?, ?, ?, ?)
	`, projectID, in.ID, in.Type, in.Subtype, in.Pattern)
	if err != nil {
		return fmt.Errorf("insert interaction %q: %w", in.ID, err)
	}
	interactionID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert interaction %q: last insert id: %w", in.ID, err)
	}

	for _, participant := range in.Participants {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO interaction_participants (interaction_id, agent_id) VALUES (?, ?)`,
			interactionID, participant)
		if err != nil {
			return fmt.Errorf("insert interaction %q participant %q: %w", in.ID, participant, err)
		}
	}

	if in.Protocol != nil {
		messageTypes := make(ldl.Array, len(in.Protocol.MessageTypes))
		for i, mt := range in.Protocol.MessageTypes {
			messageTypes[i] = ldl.String(mt)
		}
		encoded, err := ldl.EncodeValue(messageTypes)
		if err != nil {
			return fmt.Errorf("interaction %q message types: %w", in.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO interaction_protocols (interaction_id, type, message_types)
			VALUES (?, ?, ?)
		`, interactionID, in.Protocol.Type, encoded)
		if err != nil {
			return fmt.Errorf("insert interaction %q protocol: %w", in.ID, err)
		}
	}
	return nil
}

func insertConnection(ctx context.Context, tx *sql.Tx, projectID int64, doc *ldl.Document, c ldl.Connection) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO connections (project_id, connection_id, source_type, source_id, target_type, target_id, label)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, projectID, c.ID,
		string(doc.ResolveEndpoint(c.SourceType, c.Source)), c.Source,
		string(doc.ResolveEndpoint(c.TargetType, c.Target)), c.Target,
		c.Label)
	if err != nil {
		return fmt.Errorf("insert connection %q: %w", c.ID, err)
	}
	return nil
}

// position maps an optional canvas position onto nullable columns.
func position(p *ldl.Position) (x, y sql.NullFloat64) {
	if p == nil {
		return x, y
	}
	return sql.NullFloat64{Float64: p.X, Valid: true}, sql.NullFloat64{Float64: p.Y, Valid: true}
}

// summarize returns slog attributes describing the document about to be written.
func summarize(doc *ldl.Document) []any {
	if doc == nil {
		return []any{"name", ""}
	}
	return []any{
		"name", doc.Project.Name,
		"agents", len(doc.Agents),
		"tools", len(doc.Tools),
		"tasks", len(doc.Tasks),
		"interactions", len(doc.Interactions),
		"connections", len(doc.Connections),
	}
}
