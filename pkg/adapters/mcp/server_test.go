package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/ports"
	"github.com/aretw0/aoflow/pkg/registry"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompiler struct {
	override map[string]any
	err      error
}

func (c *stubCompiler) GenerateCode(_ context.Context, id string, override map[string]any) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	c.override = override
	return domain.WrapFragment(id, "print(1)"), nil
}

func (c *stubCompiler) AssembleProgram(context.Context) (*ports.Program, error) {
	if c.err != nil {
		return nil, c.err
	}
	return &ports.Program{
		Source:   "print(1)",
		Nodes:    []string{"a"},
		Failures: []*domain.ProvisionError{{NodeID: "t", Attempts: 1, Err: errors.New("offline")}},
	}, nil
}

func (c *stubCompiler) NodeTypes() []registry.NodeType {
	return []registry.NodeType{{ID: "print", Name: "Print"}}
}

func (c *stubCompiler) Inspect(context.Context) (*domain.Snapshot, error) {
	if c.err != nil {
		return nil, c.err
	}
	return domain.NewSnapshot([]domain.Node{{ID: "a", Type: domain.NodeTypeStart}}, nil), nil
}

type stubRunner struct{ fail bool }

func (r stubRunner) RunNode(_ context.Context, id, _ string) (ports.ExecutionResult, error) {
	res := ports.ExecutionResult{ID: "run-1", Output: id}
	if r.fail {
		res.Error = "lua error"
	}
	return res, nil
}

func call(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestGenerateCode(t *testing.T) {
	c := &stubCompiler{}
	s := NewServer(c)

	res, err := s.handleGenerateCode(context.Background(), call(map[string]any{
		"node_id":  "n1",
		"override": `{"var":"x"}`,
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), domain.StartMarker("n1"))
	assert.Equal(t, map[string]any{"var": "x"}, c.override)
}

func TestGenerateCode_Errors(t *testing.T) {
	s := NewServer(&stubCompiler{})

	res, err := s.handleGenerateCode(context.Background(), call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleGenerateCode(context.Background(), call(map[string]any{"node_id": "n1", "override": "[1"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	s = NewServer(&stubCompiler{err: domain.ErrNodeNotFound})
	res, err = s.handleGenerateCode(context.Background(), call(map[string]any{"node_id": "ghost"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "not found")
}

func TestAssembleProgram(t *testing.T) {
	s := NewServer(&stubCompiler{})

	resp, err := s.handleAssembleProgram(context.Background(), call(nil), nil)
	require.NoError(t, err)
	assert.Equal(t, "print(1)", resp.Source)
	assert.Equal(t, []string{"a"}, resp.Nodes)
	require.Len(t, resp.Failures, 1)
	assert.Contains(t, resp.Failures[0], "offline")
}

func TestListNodeTypesAndGraph(t *testing.T) {
	s := NewServer(&stubCompiler{})

	res, err := s.handleListNodeTypes(context.Background(), call(nil))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), `"id":"print"`)

	res, err = s.handleGetGraph(context.Background(), call(nil))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), `"id":"a"`)

	contents, err := s.readGraph(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	tc, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, GraphURI, tc.URI)
	assert.Contains(t, tc.Text, `"nodes"`)
}

func TestReadGraph_Error(t *testing.T) {
	s := NewServer(&stubCompiler{err: errors.New("disk")})
	_, err := s.readGraph(context.Background(), mcp.ReadResourceRequest{})
	assert.Error(t, err)
}

func TestRunNode(t *testing.T) {
	s := NewServer(&stubCompiler{}, WithRunner(stubRunner{}))

	res, err := s.handleRunNode(context.Background(), call(map[string]any{"node_id": "n1", "target": "proc"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), `"output":"n1"`)

	res, err = s.handleRunNode(context.Background(), call(map[string]any{"node_id": "n1"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	s = NewServer(&stubCompiler{}, WithRunner(stubRunner{fail: true}))
	res, err = s.handleRunNode(context.Background(), call(map[string]any{"node_id": "n1", "target": "proc"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "lua error")
}
