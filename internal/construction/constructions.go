// File path: internal/construction/constructions.go
package construction

import (
	"fmt"
	"strconv"
)

// Construction is an ordered list of layer names, outside to inside.
type Construction struct {
	Name   string   `json:"name"`
	Layers []string `json:"layers"`
}

// Set is the envelope applied to every room of a model.
type Set struct {
	Name      string           `json:"name"`
	Window    Construction     `json:"window"`
	Wall      Construction     `json:"wall"`
	Roof      Construction     `json:"roof"`
	Ground    Construction     `json:"ground"`
	Materials []Material       `json:"materials"`
	NoMass    []NoMassMaterial `json:"no_mass"`
	Glazing   []SimpleGlazing  `json:"glazing"`
}

// Envelope is a sampled set of target properties: window U and SHGC, and
// overall R for wall, roof and ground in m2K/W.
type Envelope struct {
	WindowU float64 `json:"window_u" yaml:"window_u"`
	SHGC    float64 `json:"shgc" yaml:"shgc"`
	WallR   float64 `json:"wall_r" yaml:"wall_r"`
	RoofR   float64 `json:"roof_r" yaml:"roof_r"`
	GroundR float64 `json:"ground_r" yaml:"ground_r"`
}

// Wall assemblies available to layered envelopes.
const (
	WallGRCInsulPlasterboard = "GRC_Insul_Plasterboard"
	WallMetalInsulGRC        = "Metal_Insul_GRC"
)

// LayeredEnvelope picks the wall from a named assembly and insulation level
// instead of a target R.
type LayeredEnvelope struct {
	WindowU         float64 `json:"window_u" yaml:"window_u"`
	SHGC            float64 `json:"shgc" yaml:"shgc"`
	WallType        string  `json:"wall_type" yaml:"wall_type"`
	InsulationLevel int     `json:"insulation_level" yaml:"insulation_level"`
	RoofR           float64 `json:"roof_r" yaml:"roof_r"`
	GroundR         float64 `json:"ground_r" yaml:"ground_r"`
}

type setBuilder struct {
	set  Set
	seen map[string]bool
}

func newSetBuilder(name string) *setBuilder {
	return &setBuilder{set: Set{Name: name}, seen: map[string]bool{}}
}

func (b *setBuilder) mass(names ...string) ([]Material, error) {
	out := make([]Material, 0, len(names))
	for _, name := range names {
		m, err := MaterialByIdentifier(name)
		if err != nil {
			return nil, err
		}
		if !b.seen[name] {
			b.seen[name] = true
			b.set.Materials = append(b.set.Materials, m)
		}
		out = append(out, m)
	}
	return out, nil
}

// padded builds a construction from mass layers plus a no-mass layer that
// makes up the difference to targetR.
func (b *setBuilder) padded(name, noMassName string, targetR float64, massNames ...string) (Construction, error) {
	layers, err := b.mass(massNames...)
	if err != nil {
		return Construction{}, err
	}
	massR := 0.0
	for _, m := range layers {
		massR += m.RValue()
	}
	remainder := targetR - massR
	if remainder <= 0 {
		return Construction{}, &LayerError{Construction: name, TargetR: targetR, MassR: massR}
	}
	b.set.NoMass = append(b.set.NoMass, NoMassMaterial{Name: noMassName, Resistance: remainder})
	return Construction{Name: name, Layers: append(append([]string{}, massNames...), noMassName)}, nil
}

func (b *setBuilder) window(u, shgc float64) (Construction, error) {
	if u <= 0 || shgc <= 0 || shgc >= 1 {
		return Construction{}, fmt.Errorf("construction: window U %.4g and SHGC %.4g out of range", u, shgc)
	}
	glazing := SimpleGlazing{Name: "win_nomass", UFactor: u, SHGC: shgc}
	b.set.Glazing = append(b.set.Glazing, glazing)
	return Construction{Name: fmt.Sprintf("Uv_%s_SHGC_%s", num(u), num(shgc)), Layers: []string{glazing.Name}}, nil
}

func (b *setBuilder) roofAndGround(roofR, groundR float64) error {
	var err error
	if b.set.Roof, err = b.padded("roofR_"+num(roofR), "roof_nomass", roofR, MetalRoofing, ConcreteRoof); err != nil {
		return err
	}
	b.set.Ground, err = b.padded("groundR_"+num(groundR), "ground_nomass", groundR, ConcreteFloor)
	return err
}

// BuildSet creates the construction set for a sampled envelope.
func BuildSet(name string, env Envelope) (Set, error) {
	b := newSetBuilder(name)
	var err error
	if b.set.Window, err = b.window(env.WindowU, env.SHGC); err != nil {
		return Set{}, err
	}
	if b.set.Wall, err = b.padded("wallR_"+num(env.WallR), "wall_nomass", env.WallR, ConcreteWall); err != nil {
		return Set{}, err
	}
	if err := b.roofAndGround(env.RoofR, env.GroundR); err != nil {
		return Set{}, err
	}
	return b.set, nil
}

// BuildLayeredSet creates a set whose wall is a named assembly with a
// library insulation layer.
func BuildLayeredSet(name string, env LayeredEnvelope) (Set, error) {
	b := newSetBuilder(name)
	insulation, err := InsulationMaterial(env.InsulationLevel)
	if err != nil {
		return Set{}, err
	}
	var layers []string
	switch env.WallType {
	case WallGRCInsulPlasterboard:
		layers = []string{LWConcrete, insulation, GypsumBoard}
	case WallMetalInsulGRC:
		layers = []string{MetalSiding, insulation, LWConcrete}
	default:
		return Set{}, &LookupError{Kind: "wall type", Identifier: env.WallType}
	}
	if _, err := b.mass(layers...); err != nil {
		return Set{}, err
	}
	b.set.Wall = Construction{Name: "wallR_" + strconv.Itoa(env.InsulationLevel), Layers: layers}
	if b.set.Window, err = b.window(env.WindowU, env.SHGC); err != nil {
		return Set{}, err
	}
	if err := b.roofAndGround(env.RoofR, env.GroundR); err != nil {
		return Set{}, err
	}
	return b.set, nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
