package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lumos/internal/actions"
	"github.com/roach88/lumos/internal/export"
	"github.com/roach88/lumos/internal/ldl"
	"github.com/roach88/lumos/internal/store"
	"github.com/roach88/lumos/internal/testutil"
)

type saveResponse struct {
	Status string        `json:"status"`
	Data   []SaveOutcome `json:"data"`
}

type resultResponse struct {
	Status string       `json:"status"`
	Data   store.Result `json:"data"`
	Error  *CLIError    `json:"error"`
}

func TestCreate_InsertsEveryTime(t *testing.T) {
	opts := newTestOptions(t, "json")
	file := writeDoc(t, t.TempDir(), "demo.yaml", testutil.DemoDocument())

	var ids []int64
	for i := 0; i < 2; i++ {
		out, _, err := execute(NewCreateCommand(opts), file)
		require.NoError(t, err)

		var resp resultResponse
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, store.StatusSuccess, resp.Data.Status)
		ids = append(ids, resp.Data.ProjectID)
	}
	assert.NotEqual(t, ids[0], ids[1])
}

func TestCreate_TextOutput(t *testing.T) {
	opts := newTestOptions(t, "text")
	file := writeDoc(t, t.TempDir(), "demo.json", testutil.DemoDocument())

	out, _, err := execute(NewCreateCommand(opts), file)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ created project 1")
}

func TestCreate_MissingFile(t *testing.T) {
	opts := newTestOptions(t, "text")

	out, _, err := execute(NewCreateCommand(opts), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]")
}

func TestCreate_SchemaViolation(t *testing.T) {
	opts := newTestOptions(t, "json")
	file := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"project": {"version": "1"}}`), 0o644))

	out, _, err := execute(NewCreateCommand(opts), file)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp resultResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidDocument, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "project.name")
}

func TestCreate_AcceptsCanvasDocument(t *testing.T) {
	opts := newTestOptions(t, "text")
	file := filepath.Join(t.TempDir(), "canvas.json")
	canvas := `{
  "project": {"name": "Canvas"},
  "agents": [{"id": "a1", "name": "Planner", "position": {"x": 0, "y": 0}}],
  "tools": [{"id": "t1", "name": "search", "agentId": "a1", "position": {"x": 0, "y": 0}}],
  "interactions": [{"id": "i1", "name": "handoff", "participants": ["a1"]}]
}`
	require.NoError(t, os.WriteFile(file, []byte(canvas), 0o644))

	out, _, err := execute(NewCreateCommand(opts), file)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ created project 1")
}

func TestSave_ConcurrentFiles(t *testing.T) {
	opts := newTestOptions(t, "json")
	dir := t.TempDir()

	var files []string
	for _, name := range []string{"alpha", "beta", "gamma", "delta"} {
		files = append(files, writeDoc(t, dir, name+".yaml", testutil.MinimalDocument(name)))
	}

	out, _, err := execute(NewSaveCommand(opts), append([]string{"--concurrency", "2"}, files...)...)
	require.NoError(t, err)

	var resp saveResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 4)
	seen := make(map[int64]bool)
	for i, o := range resp.Data {
		assert.Equal(t, files[i], o.File, "outcomes keep argument order")
		assert.True(t, o.OK(), o.Error)
		seen[o.Result.ProjectID] = true
	}
	assert.Len(t, seen, 4)
}

func TestSave_UpsertKeepsID(t *testing.T) {
	opts := newTestOptions(t, "json")
	dir := t.TempDir()
	first := writeDoc(t, dir, "v1.yaml", testutil.DemoDocument())

	changed := testutil.DemoDocument()
	changed.Project.Version = "2.0.0"
	changed.Agents = changed.Agents[1:]
	second := writeDoc(t, dir, "v2.yaml", changed)

	out, _, err := execute(NewSaveCommand(opts), first)
	require.NoError(t, err)
	var r1 saveResponse
	require.NoError(t, json.Unmarshal([]byte(out), &r1))

	out, _, err = execute(NewSaveCommand(opts), second)
	require.NoError(t, err)
	var r2 saveResponse
	require.NoError(t, json.Unmarshal([]byte(out), &r2))

	assert.Equal(t, r1.Data[0].Result.ProjectID, r2.Data[0].Result.ProjectID)
	assert.NotEqual(t, r1.Data[0].Result.ContentHash, r2.Data[0].Result.ContentHash)
}

func TestSave_PartialFailure(t *testing.T) {
	opts := newTestOptions(t, "text")
	dir := t.TempDir()

	good := writeDoc(t, dir, "good.yaml", testutil.MinimalDocument("Good"))
	unplaced := testutil.MinimalDocument("Unplaced")
	unplaced.Agents[0].Position = nil
	bad := writeDoc(t, dir, "bad.yaml", unplaced)

	out, _, err := execute(NewSaveCommand(opts), good, bad)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 of 2 save(s) failed")
	assert.Contains(t, out, "✓ "+good)
	assert.Contains(t, out, "✗ "+bad+": agents[0].position: is required")
}

func TestSave_FlowTokenInVerboseLogs(t *testing.T) {
	opts := newTestOptions(t, "text")
	opts.Verbose = true
	opts.FlowGenerator = testutil.NewFixedFlowGenerator("flow-cli")
	file := writeDoc(t, t.TempDir(), "demo.yaml", testutil.DemoDocument())

	_, diag, err := execute(NewSaveCommand(opts), file)
	require.NoError(t, err)
	assert.Contains(t, diag, "flow=flow-cli")
	assert.Contains(t, diag, "state changed")
	assert.Contains(t, diag, "Saving 1 file(s)")
}

func TestSaveShow_RoundTrip(t *testing.T) {
	opts := newTestOptions(t, "json")
	file := writeDoc(t, t.TempDir(), "demo.json", testutil.DemoDocument())

	_, _, err := execute(NewSaveCommand(opts), file)
	require.NoError(t, err)

	out, _, err := execute(NewShowCommand(opts), "Demo")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   *ldl.Document `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, testutil.DemoDocument(), resp.Data)
}

func TestShow_TextIsYAML(t *testing.T) {
	opts := newTestOptions(t, "text")
	file := writeDoc(t, t.TempDir(), "demo.yaml", testutil.DemoDocument())
	_, _, err := execute(NewSaveCommand(opts), file)
	require.NoError(t, err)

	out, _, err := execute(NewShowCommand(opts), "Demo")
	require.NoError(t, err)

	doc, err := ldl.Decode([]byte(out), ldl.FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, testutil.DemoDocument(), doc)
}

func TestShow_NotFound(t *testing.T) {
	opts := newTestOptions(t, "text")

	out, _, err := execute(NewShowCommand(opts), "ghost")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, `project "ghost" not found`)
}

func TestList(t *testing.T) {
	opts := newTestOptions(t, "text")

	out, _, err := execute(NewListCommand(opts))
	require.NoError(t, err)
	assert.Equal(t, "No projects\n", out)

	dir := t.TempDir()
	_, _, err = execute(NewSaveCommand(opts), writeDoc(t, dir, "a.yaml", testutil.DemoDocument()), writeDoc(t, dir, "b.yaml", testutil.MinimalDocument("Other")))
	require.NoError(t, err)

	opts.Format = "json"
	out, _, err = execute(NewListCommand(opts))
	require.NoError(t, err)

	var resp struct {
		Data []store.ProjectSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)
	names := []string{resp.Data[0].Name, resp.Data[1].Name}
	assert.ElementsMatch(t, []string{"Demo", "Other"}, names)
}

func TestDelete(t *testing.T) {
	opts := newTestOptions(t, "text")
	_, _, err := execute(NewSaveCommand(opts), writeDoc(t, t.TempDir(), "demo.yaml", testutil.DemoDocument()))
	require.NoError(t, err)

	out, _, err := execute(NewDeleteCommand(opts), "Demo")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ deleted project 1 (Demo)")

	_, _, err = execute(NewDeleteCommand(opts), "Demo")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExport_WritesFile(t *testing.T) {
	root := newTestOptions(t, "json")
	outDir := t.TempDir()
	file := writeDoc(t, t.TempDir(), "demo.yaml", testutil.DemoDocument())

	out, _, err := execute(NewExportCommand(root), "--out", outDir, file)
	require.NoError(t, err)

	var resp struct {
		Status string               `json:"status"`
		Data   actions.ExportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "success", resp.Data.Status)
	assert.True(t, strings.HasPrefix(resp.Data.URL, "file://"))
	assert.FileExists(t, filepath.Join(outDir, export.FileName("Demo", resp.Data.ProjectID)))
}

func TestExport_UsesEnvDirByDefault(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "from-env")
	t.Setenv("LUMOS_EXPORT_DIR", outDir)
	root := newTestOptions(t, "text")
	file := writeDoc(t, t.TempDir(), "demo.yaml", testutil.DemoDocument())

	out, _, err := execute(NewExportCommand(root), file)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ exported project 1")
	assert.FileExists(t, filepath.Join(outDir, "Demo-1.yaml"))
}

func TestExport_Failure(t *testing.T) {
	root := newTestOptions(t, "text")
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	file := writeDoc(t, t.TempDir(), "demo.yaml", testutil.DemoDocument())

	out, _, err := execute(NewExportCommand(root), "--out", filepath.Join(blocker, "sub"), file)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E006]")
}

func TestValidate_Valid(t *testing.T) {
	opts := newTestOptions(t, "text")
	file := writeDoc(t, t.TempDir(), "demo.yaml", testutil.DemoDocument())

	out, _, err := execute(NewValidateCommand(opts), "--mode", "save", file)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Document valid")
}

func TestValidate_SchemaViolationsJSON(t *testing.T) {
	opts := newTestOptions(t, "json")
	file := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"project": {"description": "no name"}}`), 0o644))

	out, _, err := execute(NewValidateCommand(opts), file)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.NotEmpty(t, resp.Data.Violations)
	assert.Equal(t, "project.name", resp.Data.Violations[0].Path)
}

func TestValidate_SaveModeNeedsPositions(t *testing.T) {
	opts := newTestOptions(t, "text")
	doc := testutil.MinimalDocument("p")
	doc.Agents[0].Position = nil
	file := writeDoc(t, t.TempDir(), "p.yaml", doc)

	_, _, err := execute(NewValidateCommand(opts), "--mode", "create", file)
	require.NoError(t, err)

	out, _, err := execute(NewValidateCommand(opts), "--mode", "save", file)
	require.Error(t, err)
	assert.Contains(t, out, "agents[0].position: is required")
}

func TestValidate_InvalidMode(t *testing.T) {
	opts := newTestOptions(t, "text")
	file := writeDoc(t, t.TempDir(), "p.yaml", testutil.MinimalDocument("p"))

	_, _, err := execute(NewValidateCommand(opts), "--mode", "upsert", file)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExitErrors_ReportedOnlyWhenPrinted(t *testing.T) {
	opts := newTestOptions(t, "json")

	out, _, err := execute(NewShowCommand(opts), "ghost")
	require.Error(t, err)
	assert.NotEmpty(t, out)
	assert.True(t, IsReported(err), "formatter already printed the not-found error")

	unreachable := &RootOptions{Format: "json", Database: filepath.Join(t.TempDir(), "missing", "dir", "test.db")}
	out, _, err = execute(NewListCommand(unreachable))
	require.Error(t, err)
	assert.Empty(t, out)
	assert.False(t, IsReported(err), "open failures are left for the entry point to print")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
