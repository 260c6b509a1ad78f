// File path: internal/construction/materials.go
package construction

import "fmt"

// Material is an opaque layer with thermal mass. Units are SI.
type Material struct {
	Name         string  `json:"name"`
	Roughness    string  `json:"roughness"`
	Thickness    float64 `json:"thickness"`
	Conductivity float64 `json:"conductivity"`
	Density      float64 `json:"density"`
	SpecificHeat float64 `json:"specific_heat"`
}

// RValue is thickness over conductivity in m2K/W.
func (m Material) RValue() float64 {
	if m.Conductivity == 0 {
		return 0
	}
	return m.Thickness / m.Conductivity
}

// NoMassMaterial is a resistance-only layer.
type NoMassMaterial struct {
	Name       string  `json:"name"`
	Resistance float64 `json:"resistance"`
}

// SimpleGlazing describes a window by U-factor and solar heat gain.
type SimpleGlazing struct {
	Name    string  `json:"name"`
	UFactor float64 `json:"u_factor"`
	SHGC    float64 `json:"shgc"`
}

// Mass layers used by the standard envelope.
const (
	ConcreteWall  = "4 in. Normalweight Concrete Wall"
	MetalRoofing  = "Metal Roofing"
	ConcreteRoof  = "6 in. Heavyweight Concrete Roof"
	ConcreteFloor = "100mm Normalweight concrete floor"
	LWConcrete    = "Generic LW Concrete"
	GypsumBoard   = "Gypsum Or Plaster Board - 3/8 in."
	MetalSiding   = "Metal Siding"
)

const (
	insulationK = 0.03
	ipToSI      = 0.1761
)

var materialLibrary = map[string]Material{
	ConcreteWall:  {Name: ConcreteWall, Roughness: "MediumRough", Thickness: 0.1016, Conductivity: 2.31, Density: 2322, SpecificHeat: 832},
	MetalRoofing:  {Name: MetalRoofing, Roughness: "MediumSmooth", Thickness: 0.0008, Conductivity: 45.006, Density: 7680, SpecificHeat: 418.4},
	ConcreteRoof:  {Name: ConcreteRoof, Roughness: "MediumRough", Thickness: 0.1524, Conductivity: 1.95, Density: 2240, SpecificHeat: 900},
	ConcreteFloor: {Name: ConcreteFloor, Roughness: "MediumRough", Thickness: 0.1, Conductivity: 2.31, Density: 2322, SpecificHeat: 832},
	LWConcrete:    {Name: LWConcrete, Roughness: "MediumRough", Thickness: 0.2, Conductivity: 0.53, Density: 1280, SpecificHeat: 840},
	GypsumBoard:   {Name: GypsumBoard, Roughness: "Smooth", Thickness: 0.0095, Conductivity: 0.16, Density: 800, SpecificHeat: 1090},
	MetalSiding:   {Name: MetalSiding, Roughness: "Smooth", Thickness: 0.0015, Conductivity: 44.96, Density: 7688.86, SpecificHeat: 410},
}

// insulationIP maps an insulation level to its nominal imperial R rating.
var insulationIP = map[int]int{2: 11, 3: 17, 4: 23, 5: 29, 6: 34, 7: 40, 8: 46, 9: 52, 10: 57}

func init() {
	for _, rating := range insulationIP {
		name := insulationName(rating)
		materialLibrary[name] = Material{
			Name:         name,
			Roughness:    "MediumRough",
			Thickness:    float64(rating) * ipToSI * insulationK,
			Conductivity: insulationK,
			Density:      43,
			SpecificHeat: 1210,
		}
	}
}

func insulationName(rating int) string {
	return fmt.Sprintf("Typical Insulation-R%d", rating)
}

// MaterialByIdentifier looks up a mass layer.
func MaterialByIdentifier(name string) (Material, error) {
	m, ok := materialLibrary[name]
	if !ok {
		return Material{}, &LookupError{Kind: "material", Identifier: name}
	}
	return m, nil
}

// InsulationMaterial returns the insulation layer name for a level in 2..10,
// "Typical Insulation-R11" through "Typical Insulation-R57".
func InsulationMaterial(level int) (string, error) {
	rating, ok := insulationIP[level]
	if !ok {
		return "", &LookupError{Kind: "insulation level", Identifier: fmt.Sprint(level)}
	}
	return insulationName(rating), nil
}
