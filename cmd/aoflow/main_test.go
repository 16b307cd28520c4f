package main

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGraph = `{
  "nodes": [
    {"id": "start", "type": "start", "position": {"x": 0, "y": 0}},
    {"id": "check", "type": "conditional", "position": {"x": 0, "y": 100},
     "data": {"useAdvanced": true, "advancedCondition": "msg.From == Owner"}},
    {"id": "hello", "type": "print", "position": {"x": 0, "y": 200},
     "data": {"var": "hello", "varType": "TEXT"}},
    {"id": "add", "type": "add", "position": {"x": 0, "y": 50}}
  ],
  "edges": [
    {"id": "e1", "source": "start", "target": "check"},
    {"id": "e2", "source": "check", "target": "hello"},
    {"id": "e3", "source": "check", "target": "add"}
  ]
}`

func writeGraph(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, os.WriteFile(path, []byte(testGraph), 0644))
	return path
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "aoflow version")
}

func TestGenerate(t *testing.T) {
	graph := writeGraph(t)

	out, err := execute(t, "generate", "check", "--graph", graph)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "-- [start:check]"))
	assert.Contains(t, out, "if msg.From == Owner then")
	assert.Contains(t, out, `    print("hello")`)

	out, err = execute(t, "generate", "hello", "--graph", graph, "--override", `{"var":"msg.Data","varType":"VARIABLE"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "print(msg.Data)")

	_, err = execute(t, "generate", "hello", "--graph", graph, "--override", "[")
	assert.ErrorContains(t, err, "invalid --override")

	_, err = execute(t, "generate", "ghost", "--graph", graph)
	assert.Error(t, err)
}

func TestAssemble(t *testing.T) {
	graph := writeGraph(t)
	dest := filepath.Join(t.TempDir(), "process.lua")

	_, err := execute(t, "assemble", "--graph", graph, "-o", dest)
	require.NoError(t, err)

	src, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(src), "-- [start:check]")
	assert.Contains(t, string(src), "-- [end:hello]")

	out, err := execute(t, "assemble", "--graph", graph)
	require.NoError(t, err)
	assert.Contains(t, out, "if msg.From == Owner then")
}

func TestTypes(t *testing.T) {
	graph := writeGraph(t)

	out, err := execute(t, "types", "--graph", graph)
	require.NoError(t, err)
	assert.Contains(t, out, "conditional")
	assert.Contains(t, out, "BLOCK")

	out, err = execute(t, "types", "--graph", graph, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "loop"`)
}

func TestGraph(t *testing.T) {
	out, err := execute(t, "graph", "--graph", writeGraph(t))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph LR"))
	assert.Contains(t, out, "check")
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "validate", "--graph", writeGraph(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Graph is valid")

	broken := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"nodes":[{"id":"start","type":"start"},{"id":"x","type":"teleport"}],"edges":[]}`), 0644))
	out, err = execute(t, "validate", "--graph", broken)
	assert.ErrorContains(t, err, "unknown type")
	assert.Contains(t, out, `Warning: node "x" is not reachable`)
}

func TestRun_RequiresTarget(t *testing.T) {
	_, err := execute(t, "run", "--graph", writeGraph(t))
	assert.ErrorContains(t, err, "no target process")
}

func TestRun_NoExecutor(t *testing.T) {
	_, err := execute(t, "run", "hello", "--graph", writeGraph(t), "--target", "proc")
	assert.ErrorContains(t, err, "no executor configured")
}

func TestStore_FileBackend(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "aoflow.yaml")
	require.NoError(t, os.WriteFile(config, []byte(
		"store:\n  backend: file\n  dir: "+filepath.Join(dir, "graphs")+"\ngraph:\n  source: store\n  name: main\n",
	), 0644))

	out, err := execute(t, "--config", config, "store", "push", "main", writeGraph(t))
	require.NoError(t, err)
	assert.Contains(t, out, "saved main (4 nodes, 3 edges)")

	out, err = execute(t, "--config", config, "store", "list")
	require.NoError(t, err)
	assert.Equal(t, "main\n", out)

	out, err = execute(t, "--config", config, "store", "pull", "main", "--yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "id: check")

	out, err = execute(t, "--config", config, "generate", "hello")
	require.NoError(t, err)
	assert.Contains(t, out, `print("hello")`)

	_, err = execute(t, "--config", config, "store", "delete", "main")
	require.NoError(t, err)
	out, err = execute(t, "--config", config, "store", "list")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestStore_EncryptedFileBackend(t *testing.T) {
	dir := t.TempDir()
	graphs := filepath.Join(dir, "graphs")
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
	config := filepath.Join(dir, "aoflow.yaml")
	require.NoError(t, os.WriteFile(config, []byte(
		"store:\n  backend: file\n  dir: "+graphs+"\n  encryption_key: "+key+"\ngraph:\n  source: store\n  name: main\n",
	), 0644))

	_, err := execute(t, "--config", config, "store", "push", "main", writeGraph(t))
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(graphs, "main.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "__encrypted__")
	assert.NotContains(t, string(raw), "Owner")

	out, err := execute(t, "--config", config, "generate", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "if msg.From == Owner then")
}
