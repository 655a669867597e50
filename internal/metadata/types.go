package metadata

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type FieldDef struct {
	Name      string
	Type      string  `yaml:"type"`
	Required  bool    `yaml:"required"`
	MaxLength *int    `yaml:"maxLength"`
	Precision *int    `yaml:"precision"`
	Scale     *int    `yaml:"scale"`
	Default   *string `yaml:"default"`
}

const (
	LinkBelongsTo  = "belongsTo"
	LinkHasMany    = "hasMany"
	LinkManyToMany = "manyToMany"
)

type LinkDef struct {
	Name     string
	Type     string `yaml:"type"`
	Entity   string `yaml:"entity"`
	OnDelete string `yaml:"onDelete"`
	OnUpdate string `yaml:"onUpdate"`
}

type EntityDef struct {
	Name   string
	Fields []FieldDef
	Links  []LinkDef
}

// Metadata is the full entity declaration tree.
type Metadata struct {
	entities []EntityDef
	byName   map[string]int
}

func New(entities []EntityDef) (*Metadata, error) {
	m := &Metadata{byName: make(map[string]int, len(entities))}
	for _, e := range entities {
		if _, exists := m.byName[e.Name]; exists {
			return nil, fmt.Errorf("duplicate entity definition: %s", e.Name)
		}
		m.byName[e.Name] = len(m.entities)
		m.entities = append(m.entities, e)
	}
	return m, nil
}

func (m *Metadata) Entity(name string) (EntityDef, bool) {
	i, ok := m.byName[name]
	if !ok {
		return EntityDef{}, false
	}
	return m.entities[i], true
}

// Entities returns the declarations for the requested entity names, or all
// of them when the filter is empty. An unknown name in the filter is an
// error rather than a silent skip.
func (m *Metadata) Entities(filter []string) ([]EntityDef, error) {
	if len(filter) == 0 {
		out := make([]EntityDef, len(m.entities))
		copy(out, m.entities)
		return out, nil
	}

	out := make([]EntityDef, 0, len(filter))
	for _, name := range filter {
		e, ok := m.Entity(name)
		if !ok {
			return nil, fmt.Errorf("unknown entity: %s", name)
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *Metadata) EntityNames() []string {
	names := make([]string, len(m.entities))
	for i, e := range m.entities {
		names[i] = e.Name
	}
	return names
}

// entityFile is the on-disk shape of a single entity definition. Fields and
// links are kept as raw nodes so that mapping order survives decoding; a
// plain map would randomize it and break diff determinism.
type entityFile struct {
	Entity string    `yaml:"entity"`
	Fields yaml.Node `yaml:"fields"`
	Links  yaml.Node `yaml:"links"`
}

func parseEntity(data []byte) (EntityDef, error) {
	var file entityFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return EntityDef{}, fmt.Errorf("failed to parse entity definition: %w", err)
	}
	if file.Entity == "" {
		return EntityDef{}, fmt.Errorf("entity definition is missing the entity name")
	}

	def := EntityDef{Name: file.Entity}

	if err := eachMappingEntry(&file.Fields, func(name string, value *yaml.Node) error {
		field := FieldDef{Name: name}
		if err := value.Decode(&field); err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		if field.Type == "" {
			return fmt.Errorf("field %s: missing type", name)
		}
		def.Fields = append(def.Fields, field)
		return nil
	}); err != nil {
		return EntityDef{}, fmt.Errorf("entity %s: %w", file.Entity, err)
	}

	if err := eachMappingEntry(&file.Links, func(name string, value *yaml.Node) error {
		link := LinkDef{Name: name}
		if err := value.Decode(&link); err != nil {
			return fmt.Errorf("link %s: %w", name, err)
		}
		switch link.Type {
		case LinkBelongsTo, LinkHasMany, LinkManyToMany:
		default:
			return fmt.Errorf("link %s: unsupported link type %q", name, link.Type)
		}
		if link.Entity == "" {
			return fmt.Errorf("link %s: missing target entity", name)
		}
		def.Links = append(def.Links, link)
		return nil
	}); err != nil {
		return EntityDef{}, fmt.Errorf("entity %s: %w", file.Entity, err)
	}

	return def, nil
}

func eachMappingEntry(node *yaml.Node, fn func(name string, value *yaml.Node) error) error {
	if node.Kind == 0 || node.IsZero() {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected a mapping, got %s", node.Tag)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := fn(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}
