package growth

import (
	"embed"
	"fmt"
	"os"
	"path"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/domain"
)

const (
	StandardWHO      = "who"
	StandardNational = "national"
)

//go:embed standards/*.yaml
var standardsFS embed.FS

// References is the set of growth standards, keyed by name.
type References map[string]domain.ReferenceTable

// Table returns the named standard.
func (r References) Table(name string) (domain.ReferenceTable, bool) {
	t, ok := r[name]
	return t, ok
}

// LoadReferences returns the embedded standards, with tables from the
// optional override file replacing the embedded ones by name.
func LoadReferences(overridePath string) (References, error) {
	refs := References{}
	files, err := standardsFS.ReadDir("standards")
	if err != nil {
		return nil, fmt.Errorf("read embedded standards: %w", err)
	}
	for _, f := range files {
		data, err := standardsFS.ReadFile(path.Join("standards", f.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name(), err)
		}
		var t domain.ReferenceTable
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.Name(), err)
		}
		if err := refs.add(t); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name(), err)
		}
	}

	if overridePath == "" {
		return refs, nil
	}
	data, err := os.ReadFile(overridePath)
	if err != nil {
		return nil, fmt.Errorf("read reference file: %w", err)
	}
	var doc struct {
		Tables []domain.ReferenceTable `yaml:"tables"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse reference file: %w", err)
	}
	for _, t := range doc.Tables {
		if err := refs.add(t); err != nil {
			return nil, fmt.Errorf("reference file: %w", err)
		}
	}
	return refs, nil
}

func (r References) add(t domain.ReferenceTable) error {
	if t.Name == "" {
		return fmt.Errorf("table without name")
	}
	if t.Unit != domain.UnitMonth && t.Unit != domain.UnitDay {
		return fmt.Errorf("table %s: unknown unit %q", t.Name, t.Unit)
	}
	sort.Slice(t.Entries, func(i, j int) bool { return t.Entries[i].Age < t.Entries[j].Age })
	r[t.Name] = t
	return nil
}
