package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Load reads every *.yaml / *.yml file under dir as one entity definition
// and assembles the metadata tree. File order (lexicographic, as returned
// by os.ReadDir) is the declaration order of the entities.
func Load(dir string) (*Metadata, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata directory: %w", err)
	}

	var entities []EntityDef
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		def, err := parseEntity(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		entities = append(entities, def)
	}

	return New(entities)
}
