package rebuild

import (
	"fmt"

	"github.com/kayabey/schemasync/internal/config"
	"github.com/kayabey/schemasync/internal/database"
	"github.com/kayabey/schemasync/internal/metadata"
	"github.com/kayabey/schemasync/internal/schema"
	"github.com/kayabey/schemasync/pkg/logger"
)

// Env is the shared infrastructure handed to every hook when it is built.
type Env struct {
	Metadata *metadata.Metadata
	Config   *config.Config
	Conn     *database.Connection
	Logger   *logger.Logger
}

// Hook is a rebuild extension point. Which phases a hook participates in is
// declared by the optional interfaces below; a hook may implement either or
// both. Instances live for a single rebuild invocation.
type Hook interface {
	Name() string
}

// BeforeRebuilder hooks run after both snapshots are built and before any
// statement executes. A failure here aborts the whole rebuild.
type BeforeRebuilder interface {
	BeforeRebuild() error
}

// AfterRebuilder hooks run after statement execution, even when some
// statements failed. A failure here collapses the overall result to failed.
type AfterRebuilder interface {
	AfterRebuild() error
}

// SnapshotAware hooks get read access to the current and target snapshots
// for the invocation they belong to.
type SnapshotAware interface {
	SetSnapshots(current, target *schema.Snapshot)
}

type Factory func(Env) Hook

type namedFactory struct {
	name    string
	factory Factory
}

// HookRegistry maps hook names to factories. The config file's hooks list
// selects which registered hooks run, in list order; a name with no
// registered factory is a startup error.
type HookRegistry struct {
	order     []string
	factories map[string]Factory
}

func NewHookRegistry() *HookRegistry {
	return &HookRegistry{factories: map[string]Factory{}}
}

func (r *HookRegistry) Register(name string, factory Factory) {
	if _, exists := r.factories[name]; !exists {
		r.order = append(r.order, name)
	}
	r.factories[name] = factory
}

func (r *HookRegistry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

func (r *HookRegistry) resolve(names []string) ([]namedFactory, error) {
	resolved := make([]namedFactory, 0, len(names))
	for _, name := range names {
		factory, ok := r.factories[name]
		if !ok {
			return nil, fmt.Errorf("unknown rebuild hook: %s", name)
		}
		resolved = append(resolved, namedFactory{name: name, factory: factory})
	}
	return resolved, nil
}
