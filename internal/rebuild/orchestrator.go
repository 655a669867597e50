package rebuild

import (
	"database/sql"
	"fmt"

	"github.com/kayabey/schemasync/internal/config"
	"github.com/kayabey/schemasync/internal/convert"
	"github.com/kayabey/schemasync/internal/database"
	"github.com/kayabey/schemasync/internal/dialect"
	"github.com/kayabey/schemasync/internal/fieldtype"
	"github.com/kayabey/schemasync/internal/metadata"
	"github.com/kayabey/schemasync/internal/schema"
	"github.com/kayabey/schemasync/pkg/logger"
	"github.com/kayabey/schemasync/pkg/progress"
)

// StatementExecutor submits a single statement to the database. *sql.DB
// satisfies it.
type StatementExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// SnapshotSource produces the current live schema snapshot.
type SnapshotSource interface {
	Read() (*schema.Snapshot, error)
}

type Options struct {
	Config   *config.Config
	Metadata *metadata.Metadata
	Types    *fieldtype.Registry
	Hooks    *HookRegistry
	Conn     *database.Connection
	Logger   *logger.Logger

	// Filled in from Conn when unset. Tests set them directly.
	Dialect  dialect.Dialect
	Executor StatementExecutor
	Live     SnapshotSource

	ShowProgress bool
}

// Result aggregates one rebuild invocation. Success is false as soon as any
// statement or hook failed, but Failures keeps the per-statement detail that
// the boolean alone would lose.
type Result struct {
	Success    bool
	Statements []string
	Failures   []*StatementError
}

// Rebuilder sequences a schema rebuild: convert metadata, read live schema,
// run pre hooks, diff and emit, execute statements best-effort, run post
// hooks, aggregate the outcome. A rebuilder assumes exclusive use of its
// connection for the duration of each Rebuild call.
type Rebuilder struct {
	converter    *convert.Converter
	comparator   *schema.Comparator
	emitter      *dialect.Emitter
	live         SnapshotSource
	executor     StatementExecutor
	hooks        []namedFactory
	env          Env
	log          *logger.Logger
	showProgress bool
}

func New(opts Options) (*Rebuilder, error) {
	if opts.Logger == nil {
		opts.Logger = logger.NewLogger(false)
	}
	if opts.Conn != nil {
		if opts.Dialect == nil {
			opts.Dialect = opts.Conn.Dialect
		}
		if opts.Executor == nil {
			opts.Executor = opts.Conn.DB
		}
		if opts.Live == nil {
			opts.Live = database.NewReader(opts.Conn, opts.Logger)
		}
	}

	switch {
	case opts.Metadata == nil:
		return nil, fmt.Errorf("rebuild: metadata is required")
	case opts.Types == nil:
		return nil, fmt.Errorf("rebuild: field type registry is required")
	case opts.Dialect == nil:
		return nil, fmt.Errorf("rebuild: dialect is required")
	case opts.Executor == nil:
		return nil, fmt.Errorf("rebuild: statement executor is required")
	case opts.Live == nil:
		return nil, fmt.Errorf("rebuild: live snapshot source is required")
	}

	if err := validateFieldTypes(opts.Metadata, opts.Types); err != nil {
		return nil, err
	}

	registry := opts.Hooks
	if registry == nil {
		registry = NewHookRegistry()
	}
	var enabled []string
	if opts.Config != nil {
		enabled = opts.Config.Hooks
	}
	hooks, err := registry.resolve(enabled)
	if err != nil {
		return nil, err
	}

	return &Rebuilder{
		converter:  convert.New(opts.Metadata, opts.Types),
		comparator: schema.NewComparator(opts.Dialect),
		emitter:    dialect.NewEmitter(opts.Dialect),
		live:       opts.Live,
		executor:   opts.Executor,
		hooks:      hooks,
		env: Env{
			Metadata: opts.Metadata,
			Config:   opts.Config,
			Conn:     opts.Conn,
			Logger:   opts.Logger,
		},
		log:          opts.Logger,
		showProgress: opts.ShowProgress,
	}, nil
}

// validateFieldTypes fails fast on any logical type the metadata references
// but the registry cannot resolve. Surfacing this at startup keeps a broken
// type plugin from aborting a half-prepared rebuild later.
func validateFieldTypes(meta *metadata.Metadata, types *fieldtype.Registry) error {
	defs, err := meta.Entities(nil)
	if err != nil {
		return err
	}
	for _, def := range defs {
		for _, field := range def.Fields {
			if _, err := types.ResolveNativeName(field.Type); err != nil {
				return fmt.Errorf("entity %s field %s: %w", def.Name, field.Name, err)
			}
		}
	}
	return nil
}

// Rebuild reconciles the live schema with the metadata, restricted to the
// given entity names when the list is non-empty. The returned error is
// non-nil only for fail-fast aborts (conversion, live read, hook failure);
// individual statement failures are folded into the result instead.
func (r *Rebuilder) Rebuild(entityList []string) (*Result, error) {
	target, err := r.converter.Convert(entityList)
	if err != nil {
		r.log.Alertf("rebuild aborted: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}

	current, err := r.live.Read()
	if err != nil {
		r.log.Alertf("rebuild aborted: failed to read live schema: %v", err)
		return nil, fmt.Errorf("failed to read live schema: %w", err)
	}

	// Hook instances are built fresh for every invocation so no hook can
	// observe snapshots from a previous rebuild.
	before, after := r.buildHooks(current, target)

	for _, h := range before {
		r.log.Debugf("Running beforeRebuild hook: %s", h.hook.Name())
		if err := h.before.BeforeRebuild(); err != nil {
			r.log.Alertf("beforeRebuild hook %s failed: %v", h.hook.Name(), err)
			return nil, fmt.Errorf("%w: beforeRebuild %s: %v", ErrHook, h.hook.Name(), err)
		}
	}

	diff := r.comparator.Compare(current, target)
	statements := r.emitter.ToSQL(diff)

	result := &Result{Success: true, Statements: statements}

	if len(statements) == 0 {
		r.log.Info("Schema is up to date")
	}

	var bar *progress.Bar
	if r.showProgress && len(statements) > 0 {
		bar = progress.NewBar(int64(len(statements)), "Executing statements")
	}

	for _, stmt := range statements {
		r.log.Infof("Executing: %s", stmt)
		if _, err := r.executor.Exec(stmt); err != nil {
			stmtErr := &StatementError{SQL: stmt, Err: err}
			r.log.Alert(stmtErr.Error())
			result.Failures = append(result.Failures, stmtErr)
			result.Success = false
		}
		if bar != nil {
			bar.Increment()
		}
	}
	if bar != nil {
		bar.Finish()
	}

	for _, h := range after {
		r.log.Debugf("Running afterRebuild hook: %s", h.hook.Name())
		if err := h.after.AfterRebuild(); err != nil {
			r.log.Alertf("afterRebuild hook %s failed: %v", h.hook.Name(), err)
			result.Success = false
			return result, fmt.Errorf("%w: afterRebuild %s: %v", ErrHook, h.hook.Name(), err)
		}
	}

	if result.Success {
		r.log.Infof("Rebuild finished: %d statements executed", len(statements))
	} else {
		r.log.Alertf("Rebuild finished with %d failed statements", len(result.Failures))
	}

	return result, nil
}

// Target builds the target snapshot from metadata without touching the
// database.
func (r *Rebuilder) Target(entityList []string) (*schema.Snapshot, error) {
	target, err := r.converter.Convert(entityList)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	return target, nil
}

// Current reads the live schema snapshot.
func (r *Rebuilder) Current() (*schema.Snapshot, error) {
	return r.live.Read()
}

// DiffSQL diffs two snapshots and renders the statements without executing
// anything.
func (r *Rebuilder) DiffSQL(from, to *schema.Snapshot) []string {
	return r.emitter.ToSQL(r.comparator.Compare(from, to))
}

// ToSQL renders an already-computed diff.
func (r *Rebuilder) ToSQL(diff *schema.Diff) []string {
	return r.emitter.ToSQL(diff)
}

type beforeEntry struct {
	hook   Hook
	before BeforeRebuilder
}

type afterEntry struct {
	hook  Hook
	after AfterRebuilder
}

func (r *Rebuilder) buildHooks(current, target *schema.Snapshot) ([]beforeEntry, []afterEntry) {
	var before []beforeEntry
	var after []afterEntry

	for _, nf := range r.hooks {
		h := nf.factory(r.env)
		if aware, ok := h.(SnapshotAware); ok {
			aware.SetSnapshots(current, target)
		}
		if b, ok := h.(BeforeRebuilder); ok {
			before = append(before, beforeEntry{hook: h, before: b})
		}
		if a, ok := h.(AfterRebuilder); ok {
			after = append(after, afterEntry{hook: h, after: a})
		}
	}

	return before, after
}
