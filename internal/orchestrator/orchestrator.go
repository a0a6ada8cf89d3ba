// Package orchestrator discovers the configured processing units and runs
// them as a sequential pipeline. Each unit receives the original task text;
// intermediate results travel through the shared context store, and the
// return value of the last unit is the pipeline result.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dusk-indust/issueforge/internal/config"
	"github.com/dusk-indust/issueforge/internal/contextstore"
	"github.com/dusk-indust/issueforge/internal/github"
	"github.com/dusk-indust/issueforge/internal/llm"
	"github.com/dusk-indust/issueforge/internal/template"
	"github.com/dusk-indust/issueforge/internal/unit"
)

// State tracks where a run is in its lifecycle.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateCompleted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	}
	return "unknown"
}

// Option customizes orchestrator construction.
type Option func(*options)

type options struct {
	registry *unit.Registry
	invoker  llm.Invoker
	logger   *slog.Logger
}

// WithRegistry replaces the built-in unit registry, letting an embedding
// program register its own unit constructors.
func WithRegistry(r *unit.Registry) Option { return func(o *options) { o.registry = r } }

// WithInvoker replaces the configured LLM manager, e.g. with llm.Dry for
// --dry-run or a fake in tests.
func WithInvoker(inv llm.Invoker) Option { return func(o *options) { o.invoker = inv } }

// WithLogger replaces the logger built from the log_level setting.
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// Orchestrator owns one pipeline: the discovered units, their shared
// context store, and the resolved execution order.
type Orchestrator struct {
	cfg    *config.Store
	store  *contextstore.Store
	units  *unit.Set
	order  []string
	logger *slog.Logger

	runID string
	state State
}

// New discovers units under the configured units directory and resolves the
// execution order. An execution_order entry naming an unknown unit is an
// error here, before anything runs. An empty execution_order falls back to
// every discovered unit in discovery order, with a warning.
func New(cfg *config.Store, opts ...Option) (*Orchestrator, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = unit.Builtins()
	}
	logger := o.logger
	if logger == nil {
		logger = newLogger(cfg.GetString("log_level", "info"))
	}

	invoker := o.invoker
	if invoker == nil {
		invoker = llm.NewManager(cfg)
	}

	store := contextstore.New()
	templates := template.NewLoader(templateDirs(cfg))
	publisher := github.NewPublisher(cfg)

	units, err := unit.Discover(cfg.UnitsDir(), o.registry, func(dirName string) unit.Deps {
		return unit.Deps{
			Config:    config.NewView(cfg, dirName),
			LLM:       invoker,
			Store:     store,
			Templates: templates,
			Publisher: publisher,
			Logger:    logger.With("unit", dirName),
		}
	})
	if err != nil {
		return nil, err
	}

	order := cfg.ExecutionOrder()
	if len(order) == 0 {
		logger.Warn("execution_order not configured, running all discovered units in discovery order",
			"count", units.Len())
		order = units.Names()
	} else {
		for _, name := range order {
			if _, ok := units.Get(name); !ok {
				return nil, fmt.Errorf("orchestrator: unit %q from execution_order not found", name)
			}
		}
	}

	return &Orchestrator{
		cfg:    cfg,
		store:  store,
		units:  units,
		order:  order,
		logger: logger,
		state:  StateNotStarted,
	}, nil
}

// RunSequence executes the units in order. Every unit receives the original
// task; a unit's return value becomes the running result, and the last one
// is returned. The first unit error aborts the run.
func (o *Orchestrator) RunSequence(ctx context.Context, task string) (string, error) {
	o.runID = uuid.NewString()
	o.state = StateRunning

	logger := o.logger.With("run_id", o.runID)
	logger.Info("starting unit execution sequence", "units", len(o.order))
	logger.Debug("initial task", "task", sanitizeForLog(task))

	currentInput := task
	for i, name := range o.order {
		u, _ := o.units.Get(name)
		logger.Info(fmt.Sprintf("executing unit %d/%d", i+1, len(o.order)), "unit", name)

		start := time.Now()
		output, err := u.Execute(ctx, task)
		elapsed := time.Since(start)
		if err != nil {
			o.state = StateAborted
			logger.Error("unit failed", "unit", name, "elapsed", elapsed.Round(time.Millisecond), "error", err)
			return "", fmt.Errorf("orchestrator: unit %q failed: %w", name, err)
		}

		currentInput = output
		logger.Info("unit completed", "unit", name, "elapsed", elapsed.Round(time.Millisecond))
		logger.Debug("unit output", "unit", name, "output", sanitizeForLog(output))
	}

	o.state = StateCompleted
	logger.Info("unit execution sequence completed")
	return currentInput, nil
}

// UnitNames returns the discovered unit names in discovery order.
func (o *Orchestrator) UnitNames() []string { return o.units.Names() }

// ExecutionOrder returns the resolved execution order.
func (o *Orchestrator) ExecutionOrder() []string {
	out := make([]string, len(o.order))
	copy(out, o.order)
	return out
}

// Context returns the shared context store.
func (o *Orchestrator) Context() *contextstore.Store { return o.store }

// State reports the lifecycle state of the most recent run.
func (o *Orchestrator) State() State { return o.state }

// RunID returns the identifier of the most recent run, or "" before the
// first run.
func (o *Orchestrator) RunID() string { return o.runID }

// newLogger builds a text logger at the configured level.
func newLogger(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
}

// parseLevel maps the log_level setting to a slog level. "critical" maps
// above error so that only the most severe records pass.
func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "critical":
		return slog.LevelError + 4
	default:
		return slog.LevelInfo
	}
}

// templateDirs resolves templates.directories against the project root.
func templateDirs(cfg *config.Store) []string {
	root := cfg.GetString("project.root", "")
	if root == "" {
		root, _ = os.Getwd()
	}
	dirs := cfg.GetStringSlice("templates.directories")
	out := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		out = append(out, dir)
	}
	return out
}
