package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/iontrim/internal/target"
	"github.com/san-kum/iontrim/internal/trim"
)

const (
	DefaultIons     = 1000
	DefaultSeed     = 1
	DefaultStrategy = trim.NameLoop
	DefaultBins     = 50
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Ion        IonConfig        `yaml:"ion"`
	Target     TargetConfig     `yaml:"target"`
	Simulation SimulationConfig `yaml:"simulation"`
	Histogram  HistogramConfig  `yaml:"histogram"`
	// Compounds optionally replaces the built-in compound dictionary.
	Compounds string `yaml:"compounds,omitempty"`
}

type IonConfig struct {
	Symbol string  `yaml:"symbol,omitempty"`
	Z      int     `yaml:"z,omitempty"`
	Mass   float64 `yaml:"mass,omitempty"`
	Energy float64 `yaml:"energy"`
	Angle  float64 `yaml:"angle"`
}

type TargetConfig struct {
	ZMin   float64       `yaml:"zmin"`
	Layers []LayerConfig `yaml:"layers"`
}

type LayerConfig struct {
	Name          string          `yaml:"name,omitempty"`
	Width         float64         `yaml:"width"`
	Unit          string          `yaml:"unit,omitempty"`
	Density       float64         `yaml:"density,omitempty"`
	AtomicDensity float64         `yaml:"atomic_density,omitempty"`
	CompoundCorr  float64         `yaml:"compound_corr,omitempty"`
	Gas           bool            `yaml:"gas,omitempty"`
	Compound      string          `yaml:"compound,omitempty"`
	Elements      []ElementConfig `yaml:"elements,omitempty"`
}

type ElementConfig struct {
	Symbol string  `yaml:"symbol,omitempty"`
	Z      int     `yaml:"z,omitempty"`
	Mass   float64 `yaml:"mass,omitempty"`
	Ratio  float64 `yaml:"ratio"`
	Disp   float64 `yaml:"disp,omitempty"`
	Latt   float64 `yaml:"latt,omitempty"`
	Surf   float64 `yaml:"surf,omitempty"`
}

type SimulationConfig struct {
	Ions        int     `yaml:"ions"`
	Seed        int64   `yaml:"seed"`
	Strategy    string  `yaml:"strategy"`
	Workers     int     `yaml:"workers,omitempty"`
	UpdateEvery int     `yaml:"update_every,omitempty"`
	EMin        float64 `yaml:"emin,omitempty"`
}

// HistogramConfig bins final depths. Zero Min and Max span the target.
type HistogramConfig struct {
	Bins int     `yaml:"bins"`
	Min  float64 `yaml:"min,omitempty"`
	Max  float64 `yaml:"max,omitempty"`
}

// DefaultConfig is 1000 boron ions at 50 keV into 4000 Å of silicon.
func DefaultConfig() *Config {
	return &Config{
		Ion: IonConfig{Symbol: "B", Z: 5, Mass: 11.009, Energy: 50000},
		Target: TargetConfig{
			Layers: []LayerConfig{{
				Name:          "Si",
				Width:         4000,
				Unit:          "A",
				AtomicDensity: 0.04994,
				CompoundCorr:  1.5,
				Elements:      []ElementConfig{{Symbol: "Si", Z: 14, Mass: 28.086, Ratio: 1}},
			}},
		},
		Simulation: SimulationConfig{
			Ions:     DefaultIons,
			Seed:     DefaultSeed,
			Strategy: DefaultStrategy,
			EMin:     trim.DefaultEMin,
		},
		Histogram: HistogramConfig{Bins: DefaultBins},
	}
}

func Load(path string) (*Config, error) {
	return LoadInto(DefaultConfig(), path)
}

// LoadInto reads a YAML file on top of a copy of base.
func LoadInto(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseInto(base, data)
}

// Parse reads a YAML document on top of DefaultConfig.
func Parse(data []byte) (*Config, error) {
	return ParseInto(DefaultConfig(), data)
}

// ParseInto reads a YAML document on top of a copy of base. A document that
// lists target layers replaces the base stack, and an ion that names its
// symbol, z or mass replaces the base identity as a whole so that no field of
// the previous ion survives.
func ParseInto(base *Config, data []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := base.Clone()
	if ion := mappingValue(&doc, "ion"); ion != nil {
		for _, key := range []string{"symbol", "z", "mass"} {
			if mappingValue(ion, key) != nil {
				cfg.Ion.Symbol, cfg.Ion.Z, cfg.Ion.Mass = "", 0, 0
				break
			}
		}
	}
	if doc.Kind == 0 {
		return cfg, nil
	}
	if err := doc.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// mappingValue returns the value node of key in a mapping or document node.
func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Target.Layers = make([]LayerConfig, len(c.Target.Layers))
	for i, l := range c.Target.Layers {
		l.Elements = append([]ElementConfig(nil), l.Elements...)
		out.Target.Layers[i] = l
	}
	return &out
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate checks the fields that do not need the element table or the
// compound dictionary. Build reports the rest.
func (c *Config) Validate() error {
	if c.Ion.Symbol == "" && c.Ion.Z <= 0 {
		return invalid("ion needs a symbol or an atomic number")
	}
	if c.Ion.Energy <= 0 {
		return invalid("ion energy must be positive, got %g", c.Ion.Energy)
	}
	if c.Ion.Angle < 0 || c.Ion.Angle >= 90 {
		return invalid("ion angle must be in [0, 90), got %g", c.Ion.Angle)
	}
	if len(c.Target.Layers) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, target.ErrNoLayers)
	}
	for i, l := range c.Target.Layers {
		if l.Width <= 0 {
			return invalid("layer %d: width must be positive", i)
		}
		if l.Compound == "" && len(l.Elements) == 0 {
			return invalid("layer %d: needs a compound or elements", i)
		}
		if _, err := target.UnitScale(l.Unit); err != nil {
			return fmt.Errorf("%w: layer %d: %w", ErrInvalid, i, err)
		}
	}
	if c.Simulation.Ions <= 0 {
		return invalid("ions must be positive, got %d", c.Simulation.Ions)
	}
	if c.Simulation.UpdateEvery < 0 {
		return invalid("update_every must not be negative")
	}
	if c.Histogram.Bins < 0 {
		return invalid("histogram bins must not be negative")
	}
	if c.Histogram.Max != 0 && c.Histogram.Max <= c.Histogram.Min {
		return invalid("histogram max must exceed min")
	}
	return nil
}

// Name labels a run as "<ion>-<layers>", e.g. "B-Si".
func (c *Config) Name() string {
	ion := c.Ion.Symbol
	if ion == "" {
		if data, ok := target.ElementByZ(c.Ion.Z); ok {
			ion = data.Symbol
		} else {
			ion = fmt.Sprintf("Z%d", c.Ion.Z)
		}
	}
	names := make([]string, len(c.Target.Layers))
	for i, l := range c.Target.Layers {
		names[i] = layerName(l)
	}
	return ion + "-" + strings.Join(names, "+")
}

func layerName(l LayerConfig) string {
	switch {
	case l.Name != "":
		return l.Name
	case l.Compound != "":
		return l.Compound
	}
	var sb strings.Builder
	for _, e := range l.Elements {
		sb.WriteString(e.Symbol)
	}
	return sb.String()
}
