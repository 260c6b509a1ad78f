// File path: internal/viewer/config.go
package viewer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nicodishanthj/spinyleaf/internal/common"
)

// ConfigFileName is the viewer configuration written next to a study's results.
const ConfigFileName = "config.json"

// Config is the document the 3D viewer reads to colour result grids.
type Config struct {
	Data []Layer `json:"data"`
}

type Layer struct {
	Identifier       string           `json:"identifier"`
	ObjectType       string           `json:"object_type"`
	Unit             string           `json:"unit"`
	Path             string           `json:"path"`
	Hide             bool             `json:"hide"`
	LegendParameters LegendParameters `json:"legend_parameters"`
}

type LegendParameters struct {
	HideLegend      bool            `json:"hide_legend"`
	Min             float64         `json:"min"`
	Max             float64         `json:"max"`
	ColorSet        string          `json:"color_set"`
	LabelParameters LabelParameters `json:"label_parameters"`
}

type LabelParameters struct {
	Color [3]int `json:"color"`
	Size  int    `json:"size"`
	Bold  bool   `json:"bold"`
}

// BuildConfig returns the single-layer grid configuration for study whose
// results live in dir.
func BuildConfig(study Study, dir string) Config {
	return Config{Data: []Layer{{
		Identifier: study.Name,
		ObjectType: "grid",
		Unit:       study.Unit,
		Path:       filepath.ToSlash(dir),
		LegendParameters: LegendParameters{
			Min:      study.Min(),
			Max:      study.Max(),
			ColorSet: study.ColorSet,
			LabelParameters: LabelParameters{
				Color: [3]int{0, 0, 0},
				Size:  0,
				Bold:  true,
			},
		},
	}}}
}

// WriteConfig writes config.json for the named study into dir and returns
// the file path.
func (c *Catalog) WriteConfig(dir, name string) (string, error) {
	study, err := c.Lookup(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}
	payload, err := json.MarshalIndent(BuildConfig(study, dir), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode viewer config: %w", err)
	}
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write viewer config: %w", err)
	}
	common.Logger().Info("viewer: config written", "study", study.Name, "path", path)
	return path, nil
}

// WriteConfig uses the embedded catalog.
func WriteConfig(dir, name string) (string, error) {
	catalog, err := DefaultCatalog()
	if err != nil {
		return "", err
	}
	return catalog.WriteConfig(dir, name)
}
