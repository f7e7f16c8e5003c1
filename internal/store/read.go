package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/lumos/internal/ldl"
)

// ProjectSummary is one row of ListProjects.
type ProjectSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	ContentHash string `json:"content_hash"`
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// FindProject returns the id of the oldest project with the given name,
// or ErrNotFound.
func (s *Store) FindProject(ctx context.Context, name string) (int64, error) {
	return findProjectID(ctx, s.db, name)
}

func findProjectID(ctx context.Context, q queryer, name string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx,
		`SELECT id FROM projects WHERE name = ? ORDER BY id ASC LIMIT 1`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("find project %q: %w", name, err)
	}
	return id, nil
}

// ListProjects returns every project ordered by id.
// Returns an empty slice (not nil) when there are none.
func (s *Store) ListProjects(ctx context.Context) ([]ProjectSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, version, description, content_hash
		FROM projects
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	projects := []ProjectSummary{}
	for rows.Next() {
		var p ProjectSummary
		if err := rows.Scan(&p.ID, &p.Name, &p.Version, &p.Description, &p.ContentHash); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

// DeleteProject removes a project and, through cascades, everything under it.
func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return &PersistenceError{Op: "delete project", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &PersistenceError{Op: "delete project", Err: err}
	}
	if n == 0 {
		return ErrNotFound
	}
	s.logger.Info("project deleted", "project_id", id)
	return nil
}

// LoadProject reassembles the stored document of a project.
//
// Every table is read with its own query, and each result set is drained
// before the next one opens, so the read works on a single-connection pool.
// Rows come back in insertion order. Stored connection endpoint types are
// returned explicitly and an empty model version reads back as "latest".
func (s *Store) LoadProject(ctx context.Context, id int64) (*ldl.Document, error) {
	doc := &ldl.Document{}
	err := s.db.QueryRowContext(ctx, `
		SELECT name, version, description FROM projects WHERE id = ?
	`, id).Scan(&doc.Project.Name, &doc.Project.Version, &doc.Project.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load project %d: %w", id, err)
	}

	steps := []func(context.Context, int64, *ldl.Document) error{
		s.loadAuthors,
		s.loadAgents,
		s.loadTools,
		s.loadTasks,
		s.loadInteractions,
		s.loadConnections,
	}
	for _, step := range steps {
		if err := step(ctx, id, doc); err != nil {
			return nil, fmt.Errorf("load project %d: %w", id, err)
		}
	}
	return doc, nil
}

// each runs query and calls scan for every row, closing the result set
// before returning.
func (s *Store) each(ctx context.Context, query string, projectID int64, scan func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *Store) loadAuthors(ctx context.Context, projectID int64, doc *ldl.Document) error {
	return s.each(ctx, `SELECT name FROM authors WHERE project_id = ? ORDER BY id`, projectID,
		func(rows *sql.Rows) error {
			var name string
			if err := rows.Scan(&name); err != nil {
				return fmt.Errorf("scan author: %w", err)
			}
			doc.Project.Authors = append(doc.Project.Authors, name)
			return nil
		})
}

func (s *Store) loadAgents(ctx context.Context, projectID int64, doc *ldl.Document) error {
	index := map[int64]int{}
	err := s.each(ctx, `
		SELECT id, agent_id, name, description, type, subtype, position_x, position_y
		FROM agents WHERE project_id = ? ORDER BY id
	`, projectID, func(rows *sql.Rows) error {
		var (
			rowID int64
			a     ldl.Agent
			x, y  sql.NullFloat64
		)
		if err := rows.Scan(&rowID, &a.ID, &a.Name, &a.Description, &a.Type, &a.Subtype, &x, &y); err != nil {
			return fmt.Errorf("scan agent: %w", err)
		}
		a.Position = fromColumns(x, y)
		index[rowID] = len(doc.Agents)
		doc.Agents = append(doc.Agents, a)
		return nil
	})
	if err != nil || len(index) == 0 {
		return err
	}

	err = s.each(ctx, `
		SELECT m.agent_id, m.llm_type, m.model_name, m.model_version, m.provider, m.parameters
		FROM agent_models m JOIN agents a ON a.id = m.agent_id
		WHERE a.project_id = ? ORDER BY m.id
	`, projectID, func(rows *sql.Rows) error {
		var (
			rowID  int64
			m      ldl.Model
			params string
		)
		if err := rows.Scan(&rowID, &m.LLMType, &m.Name, &m.Version, &m.Provider, &params); err != nil {
			return fmt.Errorf("scan agent model: %w", err)
		}
		obj, err := decodeObject(params)
		if err != nil {
			return fmt.Errorf("agent model parameters: %w", err)
		}
		m.Parameters = obj
		doc.Agents[index[rowID]].Model = &m
		return nil
	})
	if err != nil {
		return err
	}

	err = s.each(ctx, `
		SELECT c.agent_id, c.capability
		FROM agent_capabilities c JOIN agents a ON a.id = c.agent_id
		WHERE a.project_id = ? ORDER BY c.id
	`, projectID, func(rows *sql.Rows) error {
		var (
			rowID      int64
			capability string
		)
		if err := rows.Scan(&rowID, &capability); err != nil {
			return fmt.Errorf("scan agent capability: %w", err)
		}
		agent := &doc.Agents[index[rowID]]
		agent.Capabilities = append(agent.Capabilities, capability)
		return nil
	})
	if err != nil {
		return err
	}

	return s.each(ctx, `
		SELECT t.agent_id, t.name, t.description, t.type, t.subtype, t.parameters
		FROM agent_tools t JOIN agents a ON a.id = t.agent_id
		WHERE a.project_id = ? ORDER BY t.id
	`, projectID, func(rows *sql.Rows) error {
		var (
			rowID  int64
			t      ldl.AgentTool
			params string
		)
		if err := rows.Scan(&rowID, &t.Name, &t.Description, &t.Type, &t.Subtype, &params); err != nil {
			return fmt.Errorf("scan agent tool: %w", err)
		}
		obj, err := decodeObject(params)
		if err != nil {
			return fmt.Errorf("agent tool parameters: %w", err)
		}
		t.Parameters = obj
		agent := &doc.Agents[index[rowID]]
		agent.Tools = append(agent.Tools, t)
		return nil
	})
}

func (s *Store) loadTools(ctx context.Context, projectID int64, doc *ldl.Document) error {
	index := map[int64]int{}
	err := s.each(ctx, `
		SELECT id, tool_id, name, description, type, subtype, position_x, position_y
		FROM tools WHERE project_id = ? ORDER BY id
	`, projectID, func(rows *sql.Rows) error {
		var (
			rowID int64
			t     ldl.Tool
			x, y  sql.NullFloat64
		)
		if err := rows.Scan(&rowID, &t.ID, &t.Name, &t.Description, &t.Type, &t.Subtype, &x, &y); err != nil {
			return fmt.Errorf("scan tool: %w", err)
		}
		t.Position = fromColumns(x, y)
		index[rowID] = len(doc.Tools)
		doc.Tools = append(doc.Tools, t)
		return nil
	})
	if err != nil || len(index) == 0 {
		return err
	}

	return s.each(ctx, `
		SELECT p.tool_id, p.param_name, p.param_type, p.default_value
		FROM tool_parameters p JOIN tools t ON t.id = p.tool_id
		WHERE t.project_id = ? ORDER BY p.id
	`, projectID, func(rows *sql.Rows) error {
		rowID, name, v, err := scanParameter(rows)
		if err != nil {
			return err
		}
		tool := &doc.Tools[index[rowID]]
		if tool.Parameters == nil {
			tool.Parameters = ldl.Object{}
		}
		tool.Parameters[name] = v
		return nil
	})
}

func (s *Store) loadTasks(ctx context.Context, projectID int64, doc *ldl.Document) error {
	index := map[int64]int{}
	err := s.each(ctx, `
		SELECT id, task_id, name, description, type, position_x, position_y
		FROM tasks WHERE project_id = ? ORDER BY id
	`, projectID, func(rows *sql.Rows) error {
		var (
			rowID int64
			t     ldl.Task
			x, y  sql.NullFloat64
		)
		if err := rows.Scan(&rowID, &t.ID, &t.Name, &t.Description, &t.Type, &x, &y); err != nil {
			return fmt.Errorf("scan task: %w", err)
		}
		t.Position = fromColumns(x, y)
		index[rowID] = len(doc.Tasks)
		doc.Tasks = append(doc.Tasks, t)
		return nil
	})
	if err != nil || len(index) == 0 {
		return err
	}

	return s.each(ctx, `
		SELECT p.task_id, p.param_name, p.param_type, p.default_value
		FROM task_parameters p JOIN tasks t ON t.id = p.task_id
		WHERE t.project_id = ? ORDER BY p.id
	`, projectID, func(rows *sql.Rows) error {
		rowID, name, v, err := scanParameter(rows)
		if err != nil {
			return err
		}
		task := &doc.Tasks[index[rowID]]
		if task.Parameters == nil {
			task.Parameters = ldl.Object{}
		}
		task.Parameters[name] = v
		return nil
	})
}

func (s *Store) loadInteractions(ctx context.Context, projectID int64, doc *ldl.Document) error {
	index := map[int64]int{}
	err := s.each(ctx, `
		SELECT id, interaction_id, type, subtype, pattern
		FROM interactions WHERE project_id = ? ORDER BY id
	`, projectID, func(rows *sql.Rows) error {
		var (
			rowID int64
			in    ldl.Interaction
		)
		if err := rows.Scan(&rowID, &in.ID, &in.Type, &in.Subtype, &in.Pattern); err != nil {
			return fmt.Errorf("scan interaction: %w", err)
		}
		index[rowID] = len(doc.Interactions)
		doc.Interactions = append(doc.Interactions, in)
		return nil
	})
	if err != nil || len(index) == 0 {
		return err
	}

	err = s.each(ctx, `
		SELECT p.interaction_id, p.agent_id
		FROM interaction_participants p JOIN interactions i ON i.id = p.interaction_id
		WHERE i.project_id = ? ORDER BY p.id
	`, projectID, func(rows *sql.Rows) error {
		var (
			rowID   int64
			agentID string
		)
		if err := rows.Scan(&rowID, &agentID); err != nil {
			return fmt.Errorf("scan participant: %w", err)
		}
		in := &doc.Interactions[index[rowID]]
		in.Participants = append(in.Participants, agentID)
		return nil
	})
	if err != nil {
		return err
	}

	return s.each(ctx, `
		SELECT p.interaction_id, p.type, p.message_types
		FROM interaction_protocols p JOIN interactions i ON i.id = p.interaction_id
		WHERE i.project_id = ? ORDER BY p.id
	`, projectID, func(rows *sql.Rows) error {
		var (
			rowID   int64
			proto   ldl.Protocol
			encoded string
		)
		if err := rows.Scan(&rowID, &proto.Type, &encoded); err != nil {
			return fmt.Errorf("scan protocol: %w", err)
		}
		v, err := ldl.ParseValue(encoded)
		if err != nil {
			return fmt.Errorf("protocol message types: %w", err)
		}
		arr, ok := v.(ldl.Array)
		if !ok {
			return fmt.Errorf("protocol message types: expected array, got %s", v.Kind())
		}
		for _, e := range arr {
			str, ok := e.(ldl.String)
			if !ok {
				return fmt.Errorf("protocol message type: expected string, got %s", e.Kind())
			}
			proto.MessageTypes = append(proto.MessageTypes, string(str))
		}
		doc.Interactions[index[rowID]].Protocol = &proto
		return nil
	})
}

func (s *Store) loadConnections(ctx context.Context, projectID int64, doc *ldl.Document) error {
	return s.each(ctx, `
		SELECT connection_id, source_type, source_id, target_type, target_id, label
		FROM connections WHERE project_id = ? ORDER BY id
	`, projectID, func(rows *sql.Rows) error {
		var (
			c                      ldl.Connection
			sourceType, targetType string
		)
		if err := rows.Scan(&c.ID, &sourceType, &c.Source, &targetType, &c.Target, &c.Label); err != nil {
			return fmt.Errorf("scan connection: %w", err)
		}
		c.SourceType = ldl.EndpointType(sourceType)
		c.TargetType = ldl.EndpointType(targetType)
		doc.Connections = append(doc.Connections, c)
		return nil
	})
}

func scanParameter(rows *sql.Rows) (ownerID int64, name string, v ldl.Value, err error) {
	var kind, text string
	if err := rows.Scan(&ownerID, &name, &kind, &text); err != nil {
		return 0, "", nil, fmt.Errorf("scan parameter: %w", err)
	}
	v, err = ldl.ParameterValue(ldl.Kind(kind), text)
	if err != nil {
		return 0, "", nil, fmt.Errorf("parameter %q: %w", name, err)
	}
	return ownerID, name, v, nil
}

// decodeObject parses a stored object column. An empty object reads back as nil.
func decodeObject(text string) (ldl.Object, error) {
	v, err := ldl.ParseValue(text)
	if err != nil {
		return nil, err
	}
	switch obj := v.(type) {
	case ldl.Object:
		if len(obj) == 0 {
			return nil, nil
		}
		return obj, nil
	case ldl.Null:
		return nil, nil
	default:
		return nil, fmt.Errorf("expected object, got %s", v.Kind())
	}
}

func fromColumns(x, y sql.NullFloat64) *ldl.Position {
	if !x.Valid || !y.Valid {
		return nil
	}
	return &ldl.Position{X: x.Float64, Y: y.Float64}
}

// countQueries scopes each table's row count to one project, joining through
// the owning row for tables that do not carry project_id.
var countQueries = map[string]string{
	"projects":                 `SELECT COUNT(*) FROM projects WHERE id = ?`,
	"authors":                  `SELECT COUNT(*) FROM authors WHERE project_id = ?`,
	"agents":                   `SELECT COUNT(*) FROM agents WHERE project_id = ?`,
	"agent_models":             `SELECT COUNT(*) FROM agent_models m JOIN agents a ON a.id = m.agent_id WHERE a.project_id = ?`,
	"agent_capabilities":       `SELECT COUNT(*) FROM agent_capabilities c JOIN agents a ON a.id = c.agent_id WHERE a.project_id = ?`,
	"agent_tools":              `SELECT COUNT(*) FROM agent_tools t JOIN agents a ON a.id = t.agent_id WHERE a.project_id = ?`,
	"tools":                    `SELECT COUNT(*) FROM tools WHERE project_id = ?`,
	"tool_parameters":          `SELECT COUNT(*) FROM tool_parameters p JOIN tools t ON t.id = p.tool_id WHERE t.project_id = ?`,
	"tasks":                    `SELECT COUNT(*) FROM tasks WHERE project_id = ?`,
	"task_parameters":          `SELECT COUNT(*) FROM task_parameters p JOIN tasks t ON t.id = p.task_id WHERE t.project_id = ?`,
	"interactions":             `SELECT COUNT(*) FROM interactions WHERE project_id = ?`,
	"interaction_participants": `SELECT COUNT(*) FROM interaction_participants p JOIN interactions i ON i.id = p.interaction_id WHERE i.project_id = ?`,
	"interaction_protocols":    `SELECT COUNT(*) FROM interaction_protocols p JOIN interactions i ON i.id = p.interaction_id WHERE i.project_id = ?`,
	"connections":              `SELECT COUNT(*) FROM connections WHERE project_id = ?`,
}

// CountRows returns how many rows of table belong to the project.
func (s *Store) CountRows(ctx context.Context, table string, projectID int64) (int, error) {
	query, ok := countQueries[table]
	if !ok {
		return 0, fmt.Errorf("count rows: unknown table %q", table)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, projectID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
