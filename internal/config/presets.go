package config

import "sort"

func compoundPreset(symbol string, energy float64, compound string, width float64, unit string) *Config {
	cfg := DefaultConfig()
	cfg.Ion = IonConfig{Symbol: symbol, Energy: energy}
	cfg.Target.Layers = []LayerConfig{{Compound: compound, Width: width, Unit: unit, CompoundCorr: 1}}
	return cfg
}

func siliconPreset(symbol string, energy, width float64) *Config {
	cfg := DefaultConfig()
	cfg.Ion = IonConfig{Symbol: symbol, Energy: energy}
	cfg.Target.Layers[0].Width = width
	return cfg
}

var Presets = map[string]*Config{
	"b-si":   DefaultConfig(),
	"p-si":   siliconPreset("P", 100000, 4000),
	"as-si":  siliconPreset("As", 100000, 2000),
	"he-au":  goldPreset(),
	"n-gaas": compoundPreset("N", 30000, "GaAs", 200, "nm"),
}

func goldPreset() *Config {
	cfg := DefaultConfig()
	cfg.Ion = IonConfig{Symbol: "He", Energy: 10000}
	cfg.Target.Layers = []LayerConfig{{
		Name:     "Au",
		Width:    1000,
		Unit:     "A",
		Density:  19.32,
		Elements: []ElementConfig{{Symbol: "Au", Ratio: 1}},
	}}
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
