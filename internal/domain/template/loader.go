package template

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Strob0t/SiteForge/internal/domain"
)

// catalogFile is the on-disk shape of a catalog override.
type catalogFile struct {
	Templates []TaskTemplate `yaml:"templates"`
}

// LoadCatalog reads a YAML catalog file. A missing file is not an error: the
// seeded DefaultCatalog is returned so the engine always has rules to apply.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from operator config
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultCatalog(), nil
		}
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	if err := validateTemplates(f.Templates); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}

	return NewCatalog(f.Templates), nil
}

// validateTemplates checks IDs are unique and required fields are present.
func validateTemplates(templates []TaskTemplate) error {
	if len(templates) == 0 {
		return fmt.Errorf("%w: catalog has no templates", domain.ErrValidation)
	}

	seen := make(map[string]struct{}, len(templates))
	for i, t := range templates {
		if t.ID == "" {
			return fmt.Errorf("%w: template %d has no id", domain.ErrValidation, i)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("%w: duplicate template id %q", domain.ErrValidation, t.ID)
		}
		seen[t.ID] = struct{}{}
		if t.Title == "" {
			return fmt.Errorf("%w: template %q has no title", domain.ErrValidation, t.ID)
		}
		if t.Stakeholder == "" {
			return fmt.Errorf("%w: template %q has no stakeholder", domain.ErrValidation, t.ID)
		}
	}
	return nil
}
