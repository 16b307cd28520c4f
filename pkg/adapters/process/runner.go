// Package process bridges aoflow to local commands: running generated Lua on
// an AO process, spawning token processes and converting visual-editor markup.
// Only allow-listed commands are ever executed.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/ports"
	"github.com/google/uuid"
)

// ErrNotRegistered is returned when a required command is not on the allow-list.
var ErrNotRegistered = errors.New("command not registered")

// Runner executes allow-listed local processes.
// It implements ports.Executor, ports.Provisioner and ports.EditorConverter.
type Runner struct {
	registry map[string]RegisteredProcess
	baseDir  string
}

// RegisteredProcess defines an allowed command execution.
type RegisteredProcess struct {
	Command string
	Args    []string
	Env     map[string]string
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithCommands populates the allow-list from a loaded config.
func WithCommands(commands map[string]ProcessConfig) RunnerOption {
	return func(r *Runner) {
		for name, c := range commands {
			r.registry[name] = RegisteredProcess{Command: c.Command, Args: c.Args, Env: c.Environment}
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// NewRunner creates a new process runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: make(map[string]RegisteredProcess),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted command to the allow-list.
func (r *Runner) Register(name string, command string, args ...string) {
	r.registry[name] = RegisteredProcess{
		Command: command,
		Args:    args,
	}
}

// Has reports whether name is on the allow-list.
func (r *Runner) Has(name string) bool {
	_, ok := r.registry[name]
	return ok
}

// Execute runs code on target through the "execute" command. The code is
// written to stdin and the target is passed as AOFLOW_ARG_TARGET.
//
// A command that fails is a failed run, not an error: the result carries the
// error text. Output shaped like {"output": ..., "error": ...} is unpacked.
func (r *Runner) Execute(ctx context.Context, code, target string) (ports.ExecutionResult, error) {
	result := ports.ExecutionResult{ID: uuid.NewString()}

	stdout, err := r.run(ctx, CommandExecute, code, map[string]any{"target": target, "run_id": result.ID})
	if errors.Is(err, ErrNotRegistered) {
		return result, err
	}
	if err != nil {
		result.Error = err.Error()
		return result, nil
	}

	var reply struct {
		Output any    `json:"output"`
		Error  string `json:"error"`
	}
	if strings.HasPrefix(stdout, "{") && json.Unmarshal([]byte(stdout), &reply) == nil && (reply.Output != nil || reply.Error != "") {
		result.Error = reply.Error
		switch v := reply.Output.(type) {
		case nil:
		case string:
			result.Output = v
		default:
			b, _ := json.Marshal(v)
			result.Output = string(b)
		}
		return result, nil
	}
	result.Output = stdout
	return result, nil
}

// Provision spawns the remote process of node through "provision:<type>" or
// "provision". Node data is passed as AOFLOW_ARG_* variables. The identifier
// is the trimmed stdout, or the "id" field when stdout is a JSON object.
func (r *Runner) Provision(ctx context.Context, node *domain.Node) (string, error) {
	name := CommandProvision + ":" + node.Type
	if !r.Has(name) {
		name = CommandProvision
	}

	args := map[string]any{"node_id": node.ID, "node_type": node.Type}
	for k, v := range node.Data {
		args[k] = v
	}
	stdout, err := r.run(ctx, name, "", args)
	if err != nil {
		return "", err
	}

	if strings.HasPrefix(stdout, "{") {
		var reply struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal([]byte(stdout), &reply); err == nil && reply.ID != "" {
			return reply.ID, nil
		}
	}
	if stdout == "" {
		return "", fmt.Errorf("%s returned no identifier", name)
	}
	return stdout, nil
}

// ToLua converts visual-editor markup through the "editor" command.
func (r *Runner) ToLua(markup string) (string, error) {
	return r.run(context.Background(), CommandEditor, markup, nil)
}

func (r *Runner) run(ctx context.Context, name, stdin string, args map[string]any) (string, error) {
	proc, ok := r.registry[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}

	cmd := exec.CommandContext(ctx, proc.Command, proc.Args...)
	cmd.Dir = r.baseDir
	cmd.Env = append(cmd.Environ(), environment(proc.Env, args)...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s failed: %w. Stderr: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// environment renders static variables and arguments as KEY=VALUE pairs.
// Arguments never become command-line flags.
func environment(static map[string]string, args map[string]any) []string {
	var env []string
	for k, v := range static {
		env = append(env, k+"="+v)
	}

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		var val string
		switch v := args[k].(type) {
		case nil:
		case string, int, int64, float64, bool:
			val = fmt.Sprintf("%v", v)
		default:
			if b, err := json.Marshal(v); err == nil {
				val = string(b)
			} else {
				val = fmt.Sprintf("%v", v)
			}
		}
		env = append(env, fmt.Sprintf("AOFLOW_ARG_%s=%s", strings.ToUpper(k), val))
	}
	return env
}
