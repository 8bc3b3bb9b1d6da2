package registry

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed routes.yaml
var defaultRoutes []byte

type document struct {
	Routes []Record `yaml:"routes"`
}

// ParseYAML decodes a `routes:` document into a memory registry.
func ParseYAML(data []byte) (*Memory, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse route registry: %w", err)
	}
	m, _ := NewMemory()
	for i, rec := range doc.Routes {
		d, err := rec.Descriptor()
		if err != nil {
			return nil, fmt.Errorf("route %d (%s): %w", i, rec.ID, err)
		}
		if err := m.Add(d); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// LoadYAML reads a registry file.
func LoadYAML(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read route registry: %w", err)
	}
	return ParseYAML(data)
}

// Default returns the reference route set shipped with the planner.
func Default() (*Memory, error) {
	return ParseYAML(defaultRoutes)
}

// MarshalYAML renders records as a `routes:` document.
func MarshalYAML(records []Record) ([]byte, error) {
	return yaml.Marshal(document{Routes: records})
}
