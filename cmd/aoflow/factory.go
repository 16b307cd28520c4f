package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/aoflow"
	"github.com/aretw0/aoflow/internal/config"
	"github.com/aretw0/aoflow/internal/presentation/tui"
	fileAdapter "github.com/aretw0/aoflow/pkg/adapters/file"
	"github.com/aretw0/aoflow/pkg/adapters/memory"
	"github.com/aretw0/aoflow/pkg/adapters/process"
	redisAdapter "github.com/aretw0/aoflow/pkg/adapters/redis"
	"github.com/aretw0/aoflow/pkg/observability"
	"github.com/aretw0/aoflow/pkg/persistence/middleware"
	"github.com/aretw0/aoflow/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// app bundles the compiler with what the commands need to know about its wiring.
type app struct {
	compiler *aoflow.Compiler
	// executes is set when an execute command is on the allow-list.
	executes bool
	closers  []func() error
}

func (a *app) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// newApp builds the compiler described by c. Metrics are registered on reg
// when it is not nil.
func newApp(c *config.Config, log *slog.Logger, reg prometheus.Registerer) (*app, error) {
	a := &app{}

	hooks := observability.LogHooks(log)
	if reg != nil {
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
		hooks = observability.Combine(metrics.Hooks(), hooks)
	}

	retry := c.Provision.Retry
	opts := []aoflow.Option{
		aoflow.WithLogger(log),
		aoflow.WithLifecycleHooks(hooks),
		aoflow.WithRetryPolicy(&retry),
	}

	path := c.Graph.Path
	if c.Graph.Source == "store" {
		store, locker, closeFn, err := openStore(c.Store)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, closeFn)
		opts = append(opts, aoflow.WithStore(store, c.Graph.Name))
		if locker != nil {
			opts = append(opts, aoflow.WithLocker(locker))
		}
		path = ""
	}

	commands, err := process.LoadCommands(c.Executor.Commands)
	if err != nil {
		return nil, fmt.Errorf("loading commands: %w", err)
	}
	if len(commands) > 0 {
		runner := process.NewRunner(
			process.WithCommands(commands),
			process.WithBaseDir(filepath.Dir(c.Executor.Commands)),
		)
		if runner.Has(process.CommandExecute) {
			opts = append(opts, aoflow.WithExecutor(runner))
			a.executes = true
		}
		if provisions(commands) {
			opts = append(opts, aoflow.WithProvisioner(runner))
		}
		if runner.Has(process.CommandEditor) {
			opts = append(opts, aoflow.WithEditor(runner))
		}
	}

	compiler, err := aoflow.New(path, opts...)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.compiler = compiler
	return a, nil
}

func provisions(commands map[string]process.ProcessConfig) bool {
	for name := range commands {
		if name == process.CommandProvision || strings.HasPrefix(name, process.CommandProvision+":") {
			return true
		}
	}
	return false
}

// openStore opens the configured GraphStore. Redis stores come with a
// distributed locker so replicas never provision the same node twice.
func openStore(c config.StoreConfig) (ports.GraphStore, ports.DistributedLocker, func() error, error) {
	mws, err := storeMiddleware(c)
	if err != nil {
		return nil, nil, nil, err
	}

	noop := func() error { return nil }
	switch c.Backend {
	case "memory":
		return middleware.Chain(memory.NewStore(), mws...), nil, noop, nil
	case "file":
		return middleware.Chain(fileAdapter.New(c.Dir), mws...), nil, noop, nil
	case "redis":
		store := redisAdapter.New(c.RedisAddr, os.Getenv("AOFLOW_REDIS_PASSWORD"), 0,
			redisAdapter.WithPrefix(c.Prefix+"graph:"),
			redisAdapter.WithTTL(c.TTL),
		)
		locker := redisAdapter.NewLocker(store.Client(), c.Prefix+"lock:")
		return middleware.Chain(store, mws...), locker, store.Close, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend %q", c.Backend)
	}
}

// storeMiddleware redacts before it encrypts.
func storeMiddleware(c config.StoreConfig) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(c.Redact) > 0 {
		mw, err := middleware.NewRedactMiddleware(c.Redact)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}

	active, fallback, err := c.Keys()
	if err != nil {
		return nil, err
	}
	if active != nil {
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback})
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	return mws, nil
}

// withApp builds the app from the loaded config and closes it after fn.
func withApp(reg prometheus.Registerer, fn func(*app) error) error {
	a, err := newApp(cfg, logger, reg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close failed", "err", err)
		}
	}()
	return fn(a)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printCode writes Lua to the command output. With --pretty on a terminal it
// is rendered as highlighted markdown.
func printCode(cmd *cobra.Command, title, code string) error {
	out := cmd.OutOrStdout()
	pretty, _ := cmd.Flags().GetBool("pretty")
	if pretty && isTerminal(out) {
		render, err := tui.NewRenderer()
		if err != nil {
			return err
		}
		rendered, err := render(tui.LuaMarkdown(title, code))
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, rendered)
		return err
	}
	_, err := fmt.Fprintln(out, strings.Trim(code, "\n"))
	return err
}
