package site

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"launchpad/pkg/domain"
)

// LoadSeed reads a site document from a .json, .yaml or .yml file.
func LoadSeed(path string) (*domain.Site, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc domain.Site
		if err := yaml.Unmarshal(payload, &doc); err != nil {
			return nil, fmt.Errorf("decode seed %s: %w", path, err)
		}
		doc.Normalize()
		return &doc, nil
	default:
		doc, err := Decode(payload)
		if err != nil {
			return nil, fmt.Errorf("decode seed %s: %w", path, err)
		}
		return doc, nil
	}
}
