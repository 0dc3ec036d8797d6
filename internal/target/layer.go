package target

import (
	"fmt"
	"strings"

	"github.com/san-kum/iontrim/internal/physics"
)

// Default binding energies (eV) applied when an element leaves them unset.
const (
	DefaultDisp = 25.0
	DefaultLatt = 3.0
	DefaultSurf = 2.0
)

// Element is one atom species of a layer.
type Element struct {
	Symbol string
	Z      int
	Mass   float64 // amu
	Ratio  float64 // stoichiometric ratio, normalized on compile
	Disp   float64 // displacement energy (eV)
	Latt   float64 // lattice binding energy (eV)
	Surf   float64 // surface binding energy (eV)
}

// NewElement fills mass and binding energies from the periodic table.
func NewElement(symbol string, ratio float64) (Element, error) {
	data, ok := ElementBySymbol(symbol)
	if !ok {
		return Element{}, fmt.Errorf("%w: %q", ErrUnknownSymbol, symbol)
	}
	return Element{
		Symbol: data.Symbol,
		Z:      data.Z,
		Mass:   data.Mass,
		Ratio:  ratio,
		Disp:   DefaultDisp,
		Latt:   DefaultLatt,
		Surf:   DefaultSurf,
	}, nil
}

// Layer is a homogeneous amorphous slab.
type Layer struct {
	Name          string
	Width         float64 // Å
	Density       float64 // g/cm³, used when AtomicDensity is zero
	AtomicDensity float64 // atoms/Å³
	Corr          float64 // Lindhard correction factor
	Gas           bool
	Elements      []Element
}

// UnitScale converts a width unit to Å.
func UnitScale(unit string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "", "a", "å", "ang", "angstrom":
		return 1, nil
	case "nm":
		return 10, nil
	case "um", "µm", "micron":
		return 1e4, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
}

func (l Layer) ratioSum() float64 {
	sum := 0.0
	for _, e := range l.Elements {
		sum += e.Ratio
	}
	return sum
}

// MeanMass is the ratio-weighted atomic mass of the layer.
func (l Layer) MeanMass() float64 {
	sum := l.ratioSum()
	if sum <= 0 {
		return 0
	}
	m := 0.0
	for _, e := range l.Elements {
		m += e.Ratio * e.Mass
	}
	return m / sum
}

// NumberDensity returns the atomic density in atoms/Å³.
func (l Layer) NumberDensity() float64 {
	if l.AtomicDensity > 0 {
		return l.AtomicDensity
	}
	m := l.MeanMass()
	if m <= 0 {
		return 0
	}
	return l.Density * avogadroA3 / m
}

func (l Layer) Validate() error {
	if l.Width <= 0 {
		return fmt.Errorf("%w: %s", ErrWidth, l.Name)
	}
	if len(l.Elements) == 0 {
		return fmt.Errorf("%w: %s", ErrNoElements, l.Name)
	}
	for _, e := range l.Elements {
		if e.Ratio < 0 || e.Z <= 0 || e.Mass <= 0 {
			return fmt.Errorf("%w: %s/%s", ErrRatio, l.Name, e.Symbol)
		}
	}
	if l.ratioSum() <= 0 {
		return fmt.Errorf("%w: %s", ErrRatio, l.Name)
	}
	if l.NumberDensity() <= 0 {
		return fmt.Errorf("%w: %s", ErrDensity, l.Name)
	}
	return nil
}

// Target is a stack of planar layers starting at ZMin and extending along +z.
type Target struct {
	ZMin   float64
	Layers []Layer
}

func New(zmin float64, layers ...Layer) (*Target, error) {
	t := &Target{ZMin: zmin, Layers: layers}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Target) Validate() error {
	if len(t.Layers) == 0 {
		return ErrNoLayers
	}
	for _, l := range t.Layers {
		if err := l.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (t *Target) Thickness() float64 {
	w := 0.0
	for _, l := range t.Layers {
		w += l.Width
	}
	return w
}

func (t *Target) ZMax() float64 { return t.ZMin + t.Thickness() }

// Inside reports whether pos lies within the slab, boundaries included.
func (t *Target) Inside(pos physics.Vec3) bool {
	return t.ZMin <= pos[2] && pos[2] <= t.ZMax()
}

// LayerAt returns the index of the layer containing z or -1.
func (t *Target) LayerAt(z float64) int {
	if z < t.ZMin {
		return -1
	}
	start := t.ZMin
	for i, l := range t.Layers {
		end := start + l.Width
		if z < end || (i == len(t.Layers)-1 && z == end) {
			return i
		}
		start = end
	}
	return -1
}

// Name joins layer names for labels such as run ids.
func (t *Target) Name() string {
	names := make([]string, 0, len(t.Layers))
	for _, l := range t.Layers {
		names = append(names, l.Name)
	}
	return strings.Join(names, "+")
}
