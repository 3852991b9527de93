package framework

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadCycle reads a cycle document from disk. Files ending in .yaml or .yml
// are parsed as YAML, anything else as JSON.
func LoadCycle(path string) (*Cycle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cycle: %w", err)
	}
	return ParseCycle(data, isYAML(path))
}

// ParseCycle decodes a cycle document.
func ParseCycle(data []byte, asYAML bool) (*Cycle, error) {
	var c Cycle
	if asYAML {
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parsing cycle yaml: %w", err)
		}
		return &c, nil
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshaling cycle: %w", err)
	}
	return &c, nil
}

// SaveCycle writes a cycle document to disk, choosing the encoding from the
// file extension.
func SaveCycle(path string, c *Cycle) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for cycle: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshaling cycle: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing cycle: %w", err)
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
