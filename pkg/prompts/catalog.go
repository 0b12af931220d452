// Package prompts builds the system prompt that instructs the LLM how
// to translate report questions into SQL over the wedding schema.
package prompts

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Column describes one column the generator may reference.
type Column struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description,omitempty"`
}

// Table describes one table the generator may query.
type Table struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Columns     []Column `yaml:"columns"`
}

// Catalog is the reference schema exposed to the SQL generator. The
// validator's table allowlist is derived from it, keeping the prompt
// and the safety policy in lockstep.
type Catalog struct {
	Tables []Table `yaml:"tables"`
}

// LoadCatalog parses the embedded schema catalog.
func LoadCatalog() (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(catalogYAML, &c); err != nil {
		return nil, fmt.Errorf("parse schema catalog: %w", err)
	}
	if len(c.Tables) == 0 {
		return nil, fmt.Errorf("schema catalog has no tables")
	}
	return &c, nil
}

// TableNames returns the catalog's table names in declaration order.
func (c *Catalog) TableNames() []string {
	names := make([]string, len(c.Tables))
	for i, t := range c.Tables {
		names[i] = t.Name
	}
	return names
}
