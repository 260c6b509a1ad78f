// File path: internal/viewer/catalog.go
package viewer

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed studies.yaml
var studiesYAML []byte

// ErrUnknownStudy is returned for a study name missing from the catalog.
var ErrUnknownStudy = errors.New("unknown study")

// Study describes how one result grid is coloured in the viewer.
type Study struct {
	Name     string     `yaml:"name" json:"name"`
	Unit     string     `yaml:"unit" json:"unit"`
	Range    [2]float64 `yaml:"range" json:"range"`
	ColorSet string     `yaml:"color_set" json:"color_set"`
}

func (s Study) Min() float64 { return s.Range[0] }
func (s Study) Max() float64 { return s.Range[1] }

// Catalog is an ordered, name-indexed set of studies.
type Catalog struct {
	studies []Study
	byName  map[string]int
}

type catalogFile struct {
	Studies []Study `yaml:"studies"`
}

// DefaultCatalog parses the embedded study list.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(studiesYAML)
}

// ParseCatalog decodes a catalog document and checks each entry.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode study catalog: %w", err)
	}
	c := &Catalog{byName: make(map[string]int, len(file.Studies))}
	for _, study := range file.Studies {
		study.Name = strings.TrimSpace(study.Name)
		if study.Name == "" {
			return nil, errors.New("study catalog: entry without a name")
		}
		if study.Range[0] > study.Range[1] {
			return nil, fmt.Errorf("study catalog: %s has min %g above max %g", study.Name, study.Range[0], study.Range[1])
		}
		if study.ColorSet == "" {
			return nil, fmt.Errorf("study catalog: %s has no color set", study.Name)
		}
		if _, dup := c.byName[study.Name]; dup {
			return nil, fmt.Errorf("study catalog: duplicate study %s", study.Name)
		}
		c.byName[study.Name] = len(c.studies)
		c.studies = append(c.studies, study)
	}
	return c, nil
}

// Studies returns a copy of the catalog in display order.
func (c *Catalog) Studies() []Study {
	out := make([]Study, len(c.studies))
	copy(out, c.studies)
	return out
}

func (c *Catalog) Len() int { return len(c.studies) }

// Lookup finds a study by its exact name.
func (c *Catalog) Lookup(name string) (Study, error) {
	idx, ok := c.byName[name]
	if !ok {
		return Study{}, fmt.Errorf("%w: %q", ErrUnknownStudy, name)
	}
	return c.studies[idx], nil
}
