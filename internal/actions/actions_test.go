package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lumos/internal/engine"
	"github.com/roach88/lumos/internal/ldl"
	"github.com/roach88/lumos/internal/store"
	"github.com/roach88/lumos/internal/testutil"
)

type fakeSaver struct {
	result store.Result
	docs   []*ldl.Document
}

func (f *fakeSaver) SaveProject(_ context.Context, doc *ldl.Document) store.Result {
	f.docs = append(f.docs, doc)
	return f.result
}

type fakeExporter struct {
	result ExportResult
	err    error
}

func (f *fakeExporter) Export(context.Context, *ldl.Document) (ExportResult, error) {
	return f.result, f.err
}

type fakeGenerator struct {
	tool  *ldl.Tool
	agent *ldl.Agent
	err   error
}

func (f *fakeGenerator) GenerateTool(context.Context, string) (*ldl.Tool, error) {
	return f.tool, f.err
}

func (f *fakeGenerator) GenerateAgent(context.Context, string) (*ldl.Agent, error) {
	return f.agent, f.err
}

// recordStore builds a command store that records every dispatched type.
func recordStore(t *testing.T) (*engine.Store, *[]engine.Type) {
	t.Helper()
	var types []engine.Type
	record := func(st engine.State, c engine.Command) engine.State {
		types = append(types, c.Type)
		return engine.Reduce(st, c)
	}
	return engine.New(record, engine.State{}), &types
}

func TestSave_Success(t *testing.T) {
	s, types := recordStore(t)
	saver := &fakeSaver{result: store.Result{Status: store.StatusSuccess, ProjectID: 7}}
	doc := testutil.DemoDocument()

	res, err := Save(context.Background(), s, saver, doc)
	require.NoError(t, err)

	assert.Equal(t, int64(7), res.ProjectID)
	assert.Same(t, doc, saver.docs[0])
	assert.Equal(t, []engine.Type{engine.SaveProjectRequest, engine.SaveProjectSuccess}, *types)
	assert.Equal(t, res, s.State().Project.SaveResult)
	assert.Nil(t, s.State().Project.SaveError)
}

func TestSave_StatusFailureRecordedNotRaised(t *testing.T) {
	s, types := recordStore(t)
	failed := store.Result{Status: store.StatusError, Message: "project.name: is required"}
	saver := &fakeSaver{result: failed}

	res, err := Save(context.Background(), s, saver, &ldl.Document{})
	require.NoError(t, err, "status failures are results, not errors")

	assert.Equal(t, failed, res)
	assert.Equal(t, []engine.Type{engine.SaveProjectRequest, engine.SaveProjectFailure}, *types)
	assert.Equal(t, failed, s.State().Project.SaveError)
	assert.Nil(t, s.State().Project.SaveResult)
}

func TestExport_Success(t *testing.T) {
	s, types := recordStore(t)
	ok := ExportResult{Status: "success", URL: "file:///tmp/demo-1.yaml", ProjectID: 1}

	res, err := Export(context.Background(), s, &fakeExporter{result: ok}, testutil.DemoDocument())
	require.NoError(t, err)

	assert.Equal(t, ok, res)
	assert.Equal(t, []engine.Type{engine.ExportProjectRequest, engine.ExportProjectSuccess}, *types)
	assert.Equal(t, ok, s.State().Project.ExportResult)
}

func TestExport_ErrorPrefixedStatus(t *testing.T) {
	s, types := recordStore(t)
	failed := ExportResult{Status: "error: disk full"}

	res, err := Export(context.Background(), s, &fakeExporter{result: failed}, testutil.DemoDocument())
	require.NoError(t, err)

	assert.True(t, res.Failed())
	assert.Equal(t, "disk full", SplitStatus(res.Status))
	assert.Equal(t, []engine.Type{engine.ExportProjectRequest, engine.ExportProjectFailure}, *types)
	assert.Equal(t, failed, s.State().Project.ExportError)
}

func TestExport_CallFailureRaised(t *testing.T) {
	s, types := recordStore(t)
	boom := errors.New("tunnel down")

	_, err := Export(context.Background(), s, &fakeExporter{err: boom}, testutil.DemoDocument())
	require.Error(t, err)

	assert.True(t, engine.IsDispatchError(err))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []engine.Type{engine.ExportProjectRequest, engine.ExportProjectFailure}, *types)
	assert.Equal(t, "tunnel down", s.State().Project.ExportError)
}

func TestGenerateTool(t *testing.T) {
	s, types := recordStore(t)
	tool := &ldl.Tool{ID: "t1", Name: "search"}

	got, err := GenerateToolWith(context.Background(), s, &fakeGenerator{tool: tool}, "search the web")
	require.NoError(t, err)

	assert.Same(t, tool, got)
	assert.Equal(t, []engine.Type{engine.GenerateToolRequest, engine.GenerateToolSuccess}, *types)
	assert.Same(t, tool, s.State().Generator.Tool)
}

func TestGenerateTool_FailureRecordedThenRaised(t *testing.T) {
	s, types := recordStore(t)
	boom := errors.New("model unavailable")

	_, err := GenerateToolWith(context.Background(), s, &fakeGenerator{err: boom}, "x")

	var de *engine.DispatchError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, engine.GenerateToolFailure, de.Type)
	assert.NotEmpty(t, de.FlowToken)
	assert.Equal(t, []engine.Type{engine.GenerateToolRequest, engine.GenerateToolFailure}, *types)
	assert.Equal(t, "model unavailable", s.State().Generator.ToolError)
}

func TestGenerateAgent(t *testing.T) {
	s, _ := recordStore(t)
	agent := &ldl.Agent{ID: "a9"}

	got, err := GenerateAgentWith(context.Background(), s, &fakeGenerator{agent: agent}, "planner")
	require.NoError(t, err)
	assert.Same(t, agent, got)
	assert.Same(t, agent, s.State().Generator.Agent)
}

func TestGenerateAgent_Failure(t *testing.T) {
	s, types := recordStore(t)

	_, err := GenerateAgentWith(context.Background(), s, &fakeGenerator{err: errors.New("quota")}, "planner")
	assert.True(t, engine.IsDispatchError(err))
	assert.Equal(t, []engine.Type{engine.GenerateAgentRequest, engine.GenerateAgentFailure}, *types)
	assert.Equal(t, "quota", s.State().Generator.AgentError)
}

func TestSplitStatus(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{"success", ""},
		{"error", DefaultExportMessage},
		{"error:boom", "boom"},
		{"error: spaced out ", "spaced out"},
		{"error:a:b", "a:b"},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitStatus(tt.status))
		})
	}
}
