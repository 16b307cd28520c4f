package process

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("process tests rely on sh")
	}
}

func TestRunner_Execute(t *testing.T) {
	requireShell(t)
	runner := NewRunner()

	t.Run("Pipes Code And Target", func(t *testing.T) {
		runner.Register(CommandExecute, "sh", "-c", `printf '%s@%s' "$(cat)" "$AOFLOW_ARG_TARGET"`)

		result, err := runner.Execute(context.Background(), `print("hi")`, "proc-1")
		require.NoError(t, err)
		assert.Empty(t, result.Error)
		assert.Equal(t, `print("hi")@proc-1`, result.Output)
		_, err = uuid.Parse(result.ID)
		assert.NoError(t, err)
	})

	t.Run("Unpacks JSON Replies", func(t *testing.T) {
		runner.Register(CommandExecute, "sh", "-c", `echo '{"output": {"n": 1}, "error": ""}'`)

		result, err := runner.Execute(context.Background(), "return 1", "p")
		require.NoError(t, err)
		assert.Equal(t, `{"n":1}`, result.Output)

		runner.Register(CommandExecute, "sh", "-c", `echo '{"error": "attempt to call a nil value"}'`)
		result, err = runner.Execute(context.Background(), "x()", "p")
		require.NoError(t, err)
		assert.Equal(t, "attempt to call a nil value", result.Error)
	})

	t.Run("Failed Command Is A Failed Run", func(t *testing.T) {
		runner.Register(CommandExecute, "sh", "-c", "echo broken >&2; exit 3")

		result, err := runner.Execute(context.Background(), "x", "p")
		require.NoError(t, err)
		assert.Contains(t, result.Error, "exit status 3")
		assert.Contains(t, result.Error, "broken")
	})

	t.Run("Fails For Unregistered Command", func(t *testing.T) {
		_, err := NewRunner().Execute(context.Background(), "x", "p")
		assert.ErrorIs(t, err, ErrNotRegistered)
	})
}

func TestRunner_Provision(t *testing.T) {
	requireShell(t)
	node := &domain.Node{ID: "t1", Type: domain.NodeTypeToken, Data: map[string]any{"name": "Points"}}

	runner := NewRunner()
	runner.Register(CommandProvision, "sh", "-c", `echo "generic-$AOFLOW_ARG_NODE_ID"`)

	id, err := runner.Provision(context.Background(), node)
	require.NoError(t, err)
	assert.Equal(t, "generic-t1", id)

	runner.Register(CommandProvision+":"+domain.NodeTypeToken, "sh", "-c", `echo "{\"id\": \"tok-$AOFLOW_ARG_NAME\"}"`)
	id, err = runner.Provision(context.Background(), node)
	require.NoError(t, err)
	assert.Equal(t, "tok-Points", id)

	runner.Register(CommandProvision+":"+domain.NodeTypeToken, "sh", "-c", "true")
	_, err = runner.Provision(context.Background(), node)
	assert.Error(t, err)

	_, err = NewRunner().Provision(context.Background(), node)
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestRunner_ToLua(t *testing.T) {
	requireShell(t)
	runner := NewRunner()
	runner.Register(CommandEditor, "sh", "-c", `sed 's/<print>\(.*\)<\/print>/print("\1")/'`)

	lua, err := runner.ToLua("<print>gm</print>")
	require.NoError(t, err)
	assert.Equal(t, `print("gm")`, lua)
}

func TestRunner_ContextCancel(t *testing.T) {
	requireShell(t)
	runner := NewRunner()
	runner.Register(CommandExecute, "sh", "-c", "sleep 5")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := runner.Execute(ctx, "x", "p")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Error)
}

func TestLoadCommands(t *testing.T) {
	dir := t.TempDir()

	missing, err := LoadCommands(filepath.Join(dir, "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, missing)

	yamlPath := filepath.Join(dir, "commands.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
commands:
  - name: execute
    command: aos
    args: ["--run"]
    env:
      AO_WALLET: wallet.json
  - name: broken
`), 0o644))

	cmds, err := LoadCommands(yamlPath)
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	assert.Equal(t, "aos", cmds["execute"].Command)
	assert.Equal(t, []string{"--run"}, cmds["execute"].Args)
	assert.Equal(t, "wallet.json", cmds["execute"].Environment["AO_WALLET"])

	jsonPath := filepath.Join(dir, "commands.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"commands":[{"name":"editor","command":"blockly2lua"}]}`), 0o644))
	cmds, err = LoadCommands(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "blockly2lua", cmds["editor"].Command)

	r := NewRunner(WithCommands(cmds))
	assert.True(t, r.Has(CommandEditor))
	assert.False(t, r.Has(CommandExecute))
}
