// File path: internal/narrative/descriptor.go
package narrative

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/prompts"
	"gopkg.in/yaml.v3"

	"github.com/nicodishanthj/spinyleaf/internal/knowledge"
)

//go:embed descriptors.yaml
var defaultDescriptors []byte

// ChunksField receives the joined knowledge texts of a descriptor.
const ChunksField = "chunks"

// Descriptor is the data that distinguishes one section's narrative: the
// fields its template needs, the reference topics it embeds and the image
// placeholder the model is asked to echo.
type Descriptor struct {
	Dimension   string   `yaml:"dimension" json:"dimension"`
	Title       string   `yaml:"title" json:"title"`
	Placeholder string   `yaml:"placeholder" json:"placeholder"`
	Knowledge   []string `yaml:"knowledge" json:"knowledge"`
	Fields      []string `yaml:"fields" json:"fields"`
	Template    string   `yaml:"template" json:"template"`
}

func (d Descriptor) Validate() error {
	var errs []error
	if strings.TrimSpace(d.Dimension) == "" {
		errs = append(errs, errors.New("dimension required"))
	}
	if strings.TrimSpace(d.Template) == "" {
		errs = append(errs, fmt.Errorf("%s: template required", d.Dimension))
	}
	if strings.TrimSpace(d.Placeholder) == "" {
		errs = append(errs, fmt.Errorf("%s: placeholder required", d.Dimension))
	} else if !strings.Contains(d.Template, d.Placeholder) {
		errs = append(errs, fmt.Errorf("%s: template never asks for placeholder %q", d.Dimension, d.Placeholder))
	}
	for _, topic := range d.Knowledge {
		if _, err := knowledge.Text(topic); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.Dimension, err))
		}
	}
	return errors.Join(errs...)
}

// Render fills the template. Every declared field must be present; the
// chunks field is added from the knowledge topics.
func (d Descriptor) Render(values map[string]any) (string, error) {
	var missing []string
	for _, field := range d.Fields {
		if _, ok := values[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("narrative: %s template missing fields: %s", d.Dimension, strings.Join(missing, ", "))
	}
	merged := make(map[string]any, len(values)+1)
	for k, v := range values {
		merged[k] = v
	}
	if _, ok := merged[ChunksField]; !ok {
		chunks, err := knowledge.Join(d.Knowledge...)
		if err != nil {
			return "", fmt.Errorf("narrative: %s knowledge: %w", d.Dimension, err)
		}
		merged[ChunksField] = chunks
	}
	vars := append(append([]string(nil), d.Fields...), ChunksField)
	tmpl := prompts.NewPromptTemplate(d.Template, vars)
	text, err := tmpl.Format(merged)
	if err != nil {
		return "", fmt.Errorf("narrative: render %s template: %w", d.Dimension, err)
	}
	return strings.TrimSpace(text), nil
}

// DefaultDescriptors returns the built-in descriptors in report order.
func DefaultDescriptors() ([]Descriptor, error) {
	return parseDescriptors(defaultDescriptors, "embedded descriptors")
}

// LoadDescriptors reads descriptors from path, or the built-in set when path
// is empty.
func LoadDescriptors(path string) ([]Descriptor, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultDescriptors()
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read descriptors: %w", err)
	}
	return parseDescriptors(data, path)
}

func parseDescriptors(data []byte, source string) ([]Descriptor, error) {
	var descriptors []Descriptor
	if err := yaml.Unmarshal(data, &descriptors); err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}
	if len(descriptors) == 0 {
		return nil, fmt.Errorf("%s: no descriptors defined", source)
	}
	seen := make(map[string]bool, len(descriptors))
	var errs []error
	for i := range descriptors {
		d := &descriptors[i]
		d.Dimension = strings.ToLower(strings.TrimSpace(d.Dimension))
		if d.Title == "" && d.Dimension != "" {
			d.Title = strings.ToUpper(d.Dimension[:1]) + d.Dimension[1:]
		}
		if seen[d.Dimension] {
			errs = append(errs, fmt.Errorf("duplicate descriptor %q", d.Dimension))
		}
		seen[d.Dimension] = true
		if err := d.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return descriptors, nil
}

// Find returns the descriptor for a dimension.
func Find(descriptors []Descriptor, dimension string) (Descriptor, bool) {
	for _, d := range descriptors {
		if strings.EqualFold(d.Dimension, dimension) {
			return d, true
		}
	}
	return Descriptor{}, false
}
