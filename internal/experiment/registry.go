package experiment

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/iontrim/internal/target"
	"github.com/san-kum/iontrim/internal/trim"
)

var ErrUnknownStrategy = errors.New("unknown strategy")

// Factory builds a strategy for one compiled target.
type Factory func(tgt *target.Compiled, cfg trim.Config) trim.Strategy

type Registry struct {
	strategies map[string]Factory
}

func NewRegistry() *Registry {
	r := &Registry{strategies: make(map[string]Factory)}

	r.Register(trim.NameLoop, func(t *target.Compiled, c trim.Config) trim.Strategy { return trim.NewLoop(t, c) })
	r.Register(trim.NameBulk, func(t *target.Compiled, c trim.Config) trim.Strategy { return trim.NewBulk(t, c) })
	r.Register(trim.NameParallel, func(t *target.Compiled, c trim.Config) trim.Strategy { return trim.NewParallel(t, c) })
	r.Register(trim.NameParallelBulk, func(t *target.Compiled, c trim.Config) trim.Strategy { return trim.NewParallelBulk(t, c) })

	return r
}

func (r *Registry) Register(name string, f Factory) {
	r.strategies[name] = f
}

func (r *Registry) GetStrategy(name string, tgt *target.Compiled, cfg trim.Config) (trim.Strategy, error) {
	fn, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownStrategy, name, strings.Join(r.ListStrategies(), ", "))
	}
	return fn(tgt, cfg), nil
}

func (r *Registry) ListStrategies() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListStrategies names the built-in strategies.
func ListStrategies() []string {
	return NewRegistry().ListStrategies()
}
