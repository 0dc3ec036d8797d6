package target

import (
	"sort"
	"strings"
)

// Avogadro's number scaled so that g/cm³ divided by amu gives atoms/Å³.
const avogadroA3 = 0.602214076

// ElementData is a periodic table entry.
type ElementData struct {
	Z       int
	Symbol  string
	Name    string
	Mass    float64 // amu
	Density float64 // g/cm³ (solid or gas at STP)
}

var periodicTable = []ElementData{
	{1, "H", "Hydrogen", 1.008, 0.0000899},
	{2, "He", "Helium", 4.0026, 0.0001785},
	{3, "Li", "Lithium", 6.94, 0.534},
	{4, "Be", "Beryllium", 9.0122, 1.85},
	{5, "B", "Boron", 10.81, 2.34},
	{6, "C", "Carbon", 12.011, 2.267},
	{7, "N", "Nitrogen", 14.007, 0.0012506},
	{8, "O", "Oxygen", 15.999, 0.001429},
	{9, "F", "Fluorine", 18.998, 0.001696},
	{10, "Ne", "Neon", 20.180, 0.0009},
	{11, "Na", "Sodium", 22.990, 0.971},
	{12, "Mg", "Magnesium", 24.305, 1.738},
	{13, "Al", "Aluminium", 26.982, 2.698},
	{14, "Si", "Silicon", 28.086, 2.3296},
	{15, "P", "Phosphorus", 30.974, 1.823},
	{16, "S", "Sulfur", 32.06, 2.067},
	{17, "Cl", "Chlorine", 35.45, 0.003214},
	{18, "Ar", "Argon", 39.948, 0.0017837},
	{19, "K", "Potassium", 39.098, 0.862},
	{20, "Ca", "Calcium", 40.078, 1.54},
	{22, "Ti", "Titanium", 47.867, 4.506},
	{24, "Cr", "Chromium", 51.996, 7.19},
	{25, "Mn", "Manganese", 54.938, 7.21},
	{26, "Fe", "Iron", 55.845, 7.874},
	{27, "Co", "Cobalt", 58.933, 8.90},
	{28, "Ni", "Nickel", 58.693, 8.908},
	{29, "Cu", "Copper", 63.546, 8.96},
	{30, "Zn", "Zinc", 65.38, 7.14},
	{31, "Ga", "Gallium", 69.723, 5.91},
	{32, "Ge", "Germanium", 72.630, 5.323},
	{33, "As", "Arsenic", 74.922, 5.727},
	{34, "Se", "Selenium", 78.971, 4.81},
	{36, "Kr", "Krypton", 83.798, 0.003733},
	{42, "Mo", "Molybdenum", 95.95, 10.28},
	{47, "Ag", "Silver", 107.87, 10.49},
	{49, "In", "Indium", 114.82, 7.31},
	{50, "Sn", "Tin", 118.71, 7.287},
	{51, "Sb", "Antimony", 121.76, 6.685},
	{54, "Xe", "Xenon", 131.29, 0.005887},
	{72, "Hf", "Hafnium", 178.49, 13.31},
	{73, "Ta", "Tantalum", 180.95, 16.69},
	{74, "W", "Tungsten", 183.84, 19.25},
	{78, "Pt", "Platinum", 195.08, 21.45},
	{79, "Au", "Gold", 196.97, 19.3},
	{82, "Pb", "Lead", 207.2, 11.34},
	{83, "Bi", "Bismuth", 208.98, 9.78},
}

var (
	byZ      = make(map[int]ElementData, len(periodicTable))
	bySymbol = make(map[string]ElementData, len(periodicTable))
)

func init() {
	for _, e := range periodicTable {
		byZ[e.Z] = e
		bySymbol[strings.ToLower(e.Symbol)] = e
	}
}

// ElementByZ looks up an element by atomic number.
func ElementByZ(z int) (ElementData, bool) {
	e, ok := byZ[z]
	return e, ok
}

// ElementBySymbol looks up an element by symbol, ignoring case.
func ElementBySymbol(sym string) (ElementData, bool) {
	e, ok := bySymbol[strings.ToLower(strings.TrimSpace(sym))]
	return e, ok
}

// Elements returns the table ordered by atomic number.
func Elements() []ElementData {
	out := make([]ElementData, len(periodicTable))
	copy(out, periodicTable)
	sort.Slice(out, func(i, j int) bool { return out[i].Z < out[j].Z })
	return out
}
