// Package seed provides the mock company collection shipped with the
// binaries. It backs the simulated record source and populates the database
// on first start.
package seed

import (
	_ "embed"
	"fmt"

	"github.com/gartstein/companydir/internal/directory/models"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed companies.yaml
var companiesYAML []byte

// Namespace scopes the deterministic identifiers of seeded companies.
var Namespace = uuid.MustParse("6f1c8d7e-3b3a-4f0e-9a52-1c2d3e4f5a6b")

type seedFile struct {
	Companies []models.Company `yaml:"companies"`
}

// Companies decodes the embedded collection.
func Companies() ([]models.Company, error) {
	return Parse(companiesYAML)
}

// Parse decodes a seed document. Records without an explicit id get one
// derived from their name, so reloading the same document yields the same ids.
func Parse(data []byte) ([]models.Company, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode seed: %w", err)
	}
	seen := make(map[uuid.UUID]struct{}, len(f.Companies))
	for i := range f.Companies {
		c := &f.Companies[i]
		if c.Name == "" {
			return nil, fmt.Errorf("seed record %d: empty name", i)
		}
		if c.Employees < 0 {
			return nil, fmt.Errorf("seed record %q: negative employee count", c.Name)
		}
		if c.ID == uuid.Nil {
			c.ID = uuid.NewSHA1(Namespace, []byte(c.Name))
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("seed record %q: duplicate id %s", c.Name, c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return f.Companies, nil
}
