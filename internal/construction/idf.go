// File path: internal/construction/idf.go
package construction

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// IDFWriter emits EnergyPlus input objects. The first write error sticks and
// is returned by Err.
type IDFWriter struct {
	w   io.Writer
	err error
}

func NewIDFWriter(w io.Writer) *IDFWriter {
	return &IDFWriter{w: w}
}

// Object writes one object: the class name followed by its fields.
func (iw *IDFWriter) Object(class string, fields ...string) {
	if iw.err != nil {
		return
	}
	var b strings.Builder
	b.WriteString(class)
	if len(fields) == 0 {
		b.WriteString(";\n\n")
	} else {
		b.WriteString(",\n")
		for i, field := range fields {
			b.WriteString("    ")
			b.WriteString(field)
			if i == len(fields)-1 {
				b.WriteString(";\n\n")
			} else {
				b.WriteString(",\n")
			}
		}
	}
	_, iw.err = io.WriteString(iw.w, b.String())
}

// Raw copies pre-rendered IDF text.
func (iw *IDFWriter) Raw(text string) {
	if iw.err != nil || text == "" {
		return
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	_, iw.err = io.WriteString(iw.w, text+"\n")
}

func (iw *IDFWriter) Err() error { return iw.err }

func f(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// WriteSet renders materials, glazing, no-mass layers and the four
// constructions of a set.
func WriteSet(iw *IDFWriter, set Set) {
	for _, m := range set.Materials {
		iw.Object("Material", m.Name, m.Roughness, f(m.Thickness), f(m.Conductivity), f(m.Density), f(m.SpecificHeat), "0.9", "0.7", "0.7")
	}
	for _, m := range set.NoMass {
		iw.Object("Material:NoMass", m.Name, "MediumRough", f(m.Resistance), "0.9", "0.7", "0.7")
	}
	for _, g := range set.Glazing {
		iw.Object("WindowMaterial:SimpleGlazingSystem", g.Name, f(g.UFactor), f(g.SHGC))
	}
	for _, c := range []Construction{set.Window, set.Wall, set.Roof, set.Ground} {
		if c.Name == "" {
			continue
		}
		iw.Object("Construction", append([]string{c.Name}, c.Layers...)...)
	}
}

// ZoneListName is the zone list every program load applies to.
const ZoneListName = "All_Zones"

// occupiedHours is the daily window in which setpoints replace setbacks.
const (
	occupiedFrom = 7
	occupiedTo   = 19
)

// WriteProgram renders schedules, internal loads, outdoor air and the dual
// setpoint thermostat for a program.
func WriteProgram(iw *IDFWriter, p Program) {
	occ := p.Name + "_occupancy"
	activity := p.Name + "_activity"
	heating := p.Name + "_heating_sp"
	cooling := p.Name + "_cooling_sp"

	iw.Object("Schedule:Compact", occ, "Fraction", "Through: 12/31", "For: AllDays",
		fmt.Sprintf("Until: %02d:00", occupiedFrom), "0.05",
		fmt.Sprintf("Until: %02d:00", occupiedTo), "1",
		"Until: 24:00", "0.05")
	iw.Object("Schedule:Constant", activity, "Any Number", "120")
	iw.Object("Schedule:Compact", heating, "Temperature", "Through: 12/31", "For: AllDays",
		fmt.Sprintf("Until: %02d:00", occupiedFrom), f(p.HeatingSetback),
		fmt.Sprintf("Until: %02d:00", occupiedTo), f(p.HeatingSetpoint),
		"Until: 24:00", f(p.HeatingSetback))
	iw.Object("Schedule:Compact", cooling, "Temperature", "Through: 12/31", "For: AllDays",
		fmt.Sprintf("Until: %02d:00", occupiedFrom), f(p.CoolingSetback),
		fmt.Sprintf("Until: %02d:00", occupiedTo), f(p.CoolingSetpoint),
		"Until: 24:00", f(p.CoolingSetback))

	if p.PeoplePerArea > 0 {
		iw.Object("People", p.Name+"_people", ZoneListName, occ, "People/Area", "", f(p.PeoplePerArea), "", "0.3", "autocalculate", activity)
	}
	iw.Object("Lights", p.Name+"_lighting", ZoneListName, occ, "Watts/Area", "", f(p.LightingPerArea))
	iw.Object("ElectricEquipment", p.Name+"_equipment", ZoneListName, occ, "Watts/Area", "", f(p.EquipmentPerArea))
	if p.GasPerArea > 0 {
		iw.Object("GasEquipment", p.Name+"_gas", ZoneListName, occ, "Watts/Area", "", f(p.GasPerArea))
	}
	iw.Object("ZoneInfiltration:DesignFlowRate", p.Name+"_infiltration", ZoneListName, occ, "Flow/ExteriorArea", "", "", f(p.InfiltrationPerArea))
	iw.Object("DesignSpecification:OutdoorAir", p.Name+"_outdoor_air", "Sum", f(p.VentPerPerson), f(p.VentPerArea), "0", f(p.VentACH))
	iw.Object("ThermostatSetpoint:DualSetpoint", p.Name+"_setpoints", heating, cooling)
}

// WriteVentilation renders the window opening limits for natural ventilation.
func WriteVentilation(iw *IDFWriter, name string, vc VentilationControl) {
	iw.Object("ZoneVentilation:WindandStackOpenArea", name, ZoneListName, "", "", "autocalculate", "", "autocalculate",
		f(vc.MinIndoor), "", f(vc.MaxIndoor), "", "-100", "", f(vc.MinOutdoor), "", f(vc.MaxOutdoor))
}

// WriteOutputs requests hourly output variables and the SQLite results file.
func WriteOutputs(iw *IDFWriter, variables []string) {
	iw.Object("Output:SQLite", "SimpleAndTabular")
	for _, v := range variables {
		iw.Object("Output:Variable", "*", v, "Hourly")
	}
}
