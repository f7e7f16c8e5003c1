// Package export publishes a project as a YAML file after persisting it
// through the insert-only create path.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"

	"github.com/roach88/lumos/internal/actions"
	"github.com/roach88/lumos/internal/ldl"
	"github.com/roach88/lumos/internal/store"
)

// Creator persists a project with insert-only semantics.
// *store.Store satisfies it.
type Creator interface {
	CreateProject(ctx context.Context, doc *ldl.Document) store.Result
}

// Service exports projects into a local directory.
type Service struct {
	Creator Creator
	Dir     string
	Logger  *slog.Logger
}

var _ actions.Exporter = (*Service)(nil)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName is the file an export of project id named name is written to.
func FileName(name string, id int64) string {
	return fmt.Sprintf("%s-%d.yaml", unsafeName.ReplaceAllString(name, "-"), id)
}

// Export creates the project, then writes its YAML document to
// Dir/<name>-<id>.yaml. Failures of either step are reported in the status
// as "error:<message>"; only a cancelled context returns an error.
func (s *Service) Export(ctx context.Context, doc *ldl.Document) (actions.ExportResult, error) {
	if err := ctx.Err(); err != nil {
		return actions.ExportResult{}, err
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	res := s.Creator.CreateProject(ctx, doc)
	if !res.OK() {
		return actions.ExportResult{Status: "error:" + res.Message}, nil
	}

	data, err := ldl.Encode(doc, ldl.FormatYAML)
	if err != nil {
		return actions.ExportResult{Status: "error:" + err.Error(), ProjectID: res.ProjectID}, nil
	}

	path := filepath.Join(s.Dir, FileName(doc.Project.Name, res.ProjectID))
	if err := writeFile(path, data); err != nil {
		return actions.ExportResult{Status: "error:" + err.Error(), ProjectID: res.ProjectID}, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}

	logger.Info("project exported", "project_id", res.ProjectID, "path", path)
	return actions.ExportResult{Status: "success", URL: u.String(), ProjectID: res.ProjectID}, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
