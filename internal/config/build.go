package config

import (
	"fmt"

	"github.com/san-kum/iontrim/internal/target"
	"github.com/san-kum/iontrim/internal/trim"
)

// Built is a configuration resolved against the element table and the
// compound dictionary.
type Built struct {
	Name       string
	Target     *target.Target
	Projectile target.Projectile
	Source     trim.Source
	Trim       trim.Config
	Strategy   string
	Histogram  HistogramConfig
}

// Build validates c and resolves symbols, compounds and width units. A nil
// dictionary means the file named by Compounds, or the built-in one.
func (c *Config) Build(dict *target.Dictionary) (*Built, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if dict == nil {
		if c.Compounds != "" {
			d, err := target.LoadDictionary(c.Compounds)
			if err != nil {
				return nil, fmt.Errorf("load compounds: %w", err)
			}
			dict = d
		} else {
			dict = target.DefaultDictionary()
		}
	}

	proj, err := c.projectile()
	if err != nil {
		return nil, err
	}

	layers := make([]target.Layer, len(c.Target.Layers))
	for i, lc := range c.Target.Layers {
		l, err := buildLayer(lc, dict)
		if err != nil {
			return nil, fmt.Errorf("%w: layer %d: %w", ErrInvalid, i, err)
		}
		layers[i] = l
	}
	tgt, err := target.New(c.Target.ZMin, layers...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	hist := c.Histogram
	if hist.Bins == 0 {
		hist.Bins = DefaultBins
	}
	if hist.Min == 0 && hist.Max == 0 {
		hist.Min = tgt.ZMin
	}
	if hist.Max == 0 {
		hist.Max = tgt.ZMax()
	}
	if hist.Max <= hist.Min {
		return nil, invalid("histogram range [%g, %g) is empty", hist.Min, hist.Max)
	}

	src := trim.NewSource(c.Ion.Energy, c.Ion.Angle)
	src.Pos[2] = tgt.ZMin

	strategy := c.Simulation.Strategy
	if strategy == "" {
		strategy = DefaultStrategy
	}

	return &Built{
		Name:       c.Name(),
		Target:     tgt,
		Projectile: proj,
		Source:     src,
		Trim: trim.Config{
			Ions:        c.Simulation.Ions,
			Seed:        c.Simulation.Seed,
			Workers:     c.Simulation.Workers,
			EMin:        c.Simulation.EMin,
			UpdateEvery: c.Simulation.UpdateEvery,
		},
		Strategy:  strategy,
		Histogram: hist,
	}, nil
}

func (c *Config) projectile() (target.Projectile, error) {
	data, err := lookup(c.Ion.Symbol, c.Ion.Z)
	if err != nil {
		return target.Projectile{}, fmt.Errorf("%w: ion: %w", ErrInvalid, err)
	}
	mass := c.Ion.Mass
	if mass <= 0 {
		mass = data.Mass
	}
	return target.Projectile{Z: float64(data.Z), Mass: mass}, nil
}

// lookup resolves an element by symbol or Z. When both are given they must
// name the same element.
func lookup(symbol string, z int) (target.ElementData, error) {
	if symbol != "" {
		data, ok := target.ElementBySymbol(symbol)
		if !ok {
			return data, fmt.Errorf("%w: %q", target.ErrUnknownSymbol, symbol)
		}
		if z > 0 && z != data.Z {
			return data, fmt.Errorf("%w: %s has Z=%d, not %d", ErrInvalid, data.Symbol, data.Z, z)
		}
		return data, nil
	}
	data, ok := target.ElementByZ(z)
	if !ok {
		return data, fmt.Errorf("%w: Z=%d", target.ErrUnknownSymbol, z)
	}
	return data, nil
}

func buildLayer(lc LayerConfig, dict *target.Dictionary) (target.Layer, error) {
	scale, err := target.UnitScale(lc.Unit)
	if err != nil {
		return target.Layer{}, err
	}
	width := lc.Width * scale

	var l target.Layer
	if lc.Compound != "" {
		comp, ok := dict.Lookup(lc.Compound)
		if !ok {
			return l, fmt.Errorf("unknown compound %q", lc.Compound)
		}
		if l, err = comp.Layer(width, lc.CompoundCorr); err != nil {
			return l, err
		}
	} else {
		l = target.Layer{Width: width, Corr: lc.CompoundCorr}
		for _, ec := range lc.Elements {
			el, err := buildElement(ec)
			if err != nil {
				return l, err
			}
			l.Elements = append(l.Elements, el)
		}
	}

	if lc.Name != "" {
		l.Name = lc.Name
	} else if l.Name == "" {
		l.Name = layerName(lc)
	}
	if lc.Density > 0 {
		l.Density = lc.Density
	}
	l.AtomicDensity = lc.AtomicDensity
	l.Gas = lc.Gas
	return l, nil
}

func buildElement(ec ElementConfig) (target.Element, error) {
	data, err := lookup(ec.Symbol, ec.Z)
	if err != nil {
		return target.Element{}, err
	}
	el, err := target.NewElement(data.Symbol, ec.Ratio)
	if err != nil {
		return el, err
	}
	if ec.Mass > 0 {
		el.Mass = ec.Mass
	}
	if ec.Disp > 0 {
		el.Disp = ec.Disp
	}
	if ec.Latt > 0 {
		el.Latt = ec.Latt
	}
	if ec.Surf > 0 {
		el.Surf = ec.Surf
	}
	return el, nil
}
