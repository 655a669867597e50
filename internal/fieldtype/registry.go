package fieldtype

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kayabey/schemasync/internal/metadata"
	"github.com/kayabey/schemasync/internal/schema"
)

// ErrResolution marks a logical field type the registry cannot resolve.
// Hitting it at startup is a configuration error, not a rebuild failure.
var ErrResolution = errors.New("field type resolution failed")

// Definition describes one logical field type and how it maps to a native
// column. NativeType defaults to the lower-cased logical name. Apply, when
// set, gets the last word on the synthesized column.
type Definition struct {
	Name       string
	NativeType string
	Length     *int
	Precision  *int
	Scale      *int
	Apply      func(field metadata.FieldDef, col *schema.Column)
}

// Platform receives logical-to-native mappings as they are registered, so
// the active dialect can fold live native types back to logical ones.
type Platform interface {
	RegisterTypeMapping(logical, native string)
}

// Registry holds the logical field types. Registration order is preserved;
// re-registering a name replaces the definition in place (last wins).
type Registry struct {
	order    []string
	defs     map[string]Definition
	platform Platform
}

func NewRegistry(platform Platform) *Registry {
	return &Registry{
		defs:     map[string]Definition{},
		platform: platform,
	}
}

func (r *Registry) Register(def Definition) {
	if _, exists := r.defs[def.Name]; !exists {
		r.order = append(r.order, def.Name)
	}
	r.defs[def.Name] = def

	if r.platform != nil {
		r.platform.RegisterTypeMapping(def.Name, nativeName(def))
	}
}

// RegisterOverride registers a configured type definition. Unlike the
// built-ins, a configured entry must name its native type explicitly; an
// empty one is rejected instead of silently falling back to the logical
// name.
func (r *Registry) RegisterOverride(def Definition) error {
	if strings.TrimSpace(def.NativeType) == "" {
		return fmt.Errorf("%w: type %q has no native type", ErrResolution, def.Name)
	}
	r.Register(def)
	return nil
}

func (r *Registry) Definition(name string) (Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// ResolveNativeName maps a logical type to its native column type name.
func (r *Registry) ResolveNativeName(logical string) (string, error) {
	def, ok := r.defs[logical]
	if !ok {
		return "", fmt.Errorf("%w: unknown logical type %q", ErrResolution, logical)
	}
	return nativeName(def), nil
}

func nativeName(def Definition) string {
	if def.NativeType != "" {
		return def.NativeType
	}
	return strings.ToLower(def.Name)
}
