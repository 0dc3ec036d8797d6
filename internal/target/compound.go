package target

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

//go:embed compounds.json
var defaultCompounds []byte

const uncategorized = "Uncategorized"

// Component is one element of a compound, by atomic number.
type Component struct {
	Z        int     `json:"Z"`
	Fraction float64 `json:"fraction"`
}

// Compound is an entry of the compound dictionary.
type Compound struct {
	Name        string      `json:"name"`
	NameDisplay string      `json:"name_display,omitempty"`
	Section     string      `json:"section,omitempty"`
	Density     float64     `json:"density_g_cm3,omitempty"`
	Composition []Component `json:"composition"`
}

// Label is the human readable name.
func (c Compound) Label() string {
	if c.NameDisplay != "" {
		return c.NameDisplay
	}
	return c.Name
}

// MassDensity returns the stored density, or the fraction-weighted mean of
// the element densities when none is stored.
func (c Compound) MassDensity() float64 {
	if c.Density > 0 {
		return c.Density
	}
	total, weighted := 0.0, 0.0
	for _, part := range c.Composition {
		data, ok := ElementByZ(part.Z)
		if !ok {
			continue
		}
		total += part.Fraction
		weighted += part.Fraction * data.Density
	}
	if total <= 0 {
		return 0
	}
	return weighted / total
}

// Elements converts the composition into layer elements with default
// binding energies.
func (c Compound) Elements() ([]Element, error) {
	out := make([]Element, 0, len(c.Composition))
	for _, part := range c.Composition {
		data, ok := ElementByZ(part.Z)
		if !ok {
			return nil, fmt.Errorf("%w: Z=%d in %s", ErrUnknownSymbol, part.Z, c.Name)
		}
		el, err := NewElement(data.Symbol, part.Fraction)
		if err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: compound %s", ErrNoElements, c.Name)
	}
	return out, nil
}

// Dictionary is a searchable list of compounds.
type Dictionary struct {
	compounds []Compound
}

var (
	lineComment   = regexp.MustCompile(`(?m)^\s*//.*?$`)
	blockComment  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	trailingComma = regexp.MustCompile(`,(\s*[}\]])`)
)

// sanitize strips comments, trailing commas and ellipsis placeholders that
// hand-edited dictionaries tend to contain.
func sanitize(s string) string {
	s = lineComment.ReplaceAllString(s, "")
	s = blockComment.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "{…}", "{}")
	s = strings.ReplaceAll(s, "…", "null")
	return trailingComma.ReplaceAllString(s, "$1")
}

// ParseDictionary decodes a JSON compound list. Strict JSON is tried first,
// then a sanitized copy.
func ParseDictionary(data []byte) (*Dictionary, error) {
	var raw []*Compound
	if err := json.Unmarshal(data, &raw); err != nil {
		if err2 := json.Unmarshal([]byte(sanitize(string(data))), &raw); err2 != nil {
			return nil, fmt.Errorf("parse compounds: %w", err)
		}
	}

	d := &Dictionary{compounds: make([]Compound, 0, len(raw))}
	for _, c := range raw {
		if c == nil || strings.TrimSpace(c.Name) == "" {
			continue
		}
		parts := c.Composition[:0]
		for _, p := range c.Composition {
			if p.Z > 0 {
				parts = append(parts, p)
			}
		}
		c.Composition = parts
		if c.NameDisplay == "" {
			c.NameDisplay = c.Name
		}
		d.compounds = append(d.compounds, *c)
	}
	return d, nil
}

func LoadDictionary(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDictionary(data)
}

// DefaultDictionary returns the built-in compound list.
func DefaultDictionary() *Dictionary {
	d, err := ParseDictionary(defaultCompounds)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Dictionary) Compounds() []Compound {
	out := make([]Compound, len(d.compounds))
	copy(out, d.compounds)
	return out
}

// Lookup finds a compound by name or display name, ignoring case.
func (d *Dictionary) Lookup(name string) (Compound, bool) {
	name = strings.TrimSpace(name)
	for _, c := range d.compounds {
		if strings.EqualFold(c.Name, name) || strings.EqualFold(c.NameDisplay, name) {
			return c, true
		}
	}
	return Compound{}, false
}

// Sections groups compounds by section, sorted by name within each group.
func (d *Dictionary) Sections() map[string][]Compound {
	out := make(map[string][]Compound)
	for _, c := range d.compounds {
		key := strings.TrimSpace(c.Section)
		if key == "" {
			key = uncategorized
		}
		out[key] = append(out[key], c)
	}
	for _, list := range out {
		sort.Slice(list, func(i, j int) bool { return list[i].Label() < list[j].Label() })
	}
	return out
}

// Save writes the dictionary as indented JSON.
func (d *Dictionary) Save(path string) error {
	data, err := json.MarshalIndent(d.compounds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// Layer builds a layer of the given width (Å) from a compound.
func (c Compound) Layer(width, corr float64) (Layer, error) {
	els, err := c.Elements()
	if err != nil {
		return Layer{}, err
	}
	return Layer{
		Name:     c.Name,
		Width:    width,
		Density:  c.MassDensity(),
		Corr:     corr,
		Elements: els,
	}, nil
}
