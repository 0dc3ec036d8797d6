package trim

import (
	"fmt"
	"math"
	"time"

	"github.com/san-kum/iontrim/internal/physics"
)

// DefaultEMin is the energy (eV) below which an ion counts as stopped.
const DefaultEMin = 5.0

type Ion struct {
	Pos           physics.Vec3 `json:"pos"`
	Dir           physics.Vec3 `json:"dir"`
	E             float64      `json:"e"`
	Inside        bool         `json:"inside"`
	Collisions    int          `json:"collisions"`
	Displacements int          `json:"displacements"`
	Clamped       int          `json:"clamped,omitempty"`
}

// Source is the initial state shared by all ions of a batch.
type Source struct {
	Energy float64      `json:"energy"`
	Pos    physics.Vec3 `json:"pos"`
	Dir    physics.Vec3 `json:"dir"`
}

// NewSource starts ions at the origin with energy (eV) and a tilt angle
// (degrees) from the surface normal in the x-z plane. Callers move Pos onto
// the target surface when it does not sit at z = 0.
func NewSource(energy, angle float64) Source {
	sin, cos := math.Sincos(angle * math.Pi / 180)
	return Source{Energy: energy, Dir: physics.Vec3{sin, 0, cos}}
}

func (s Source) Validate() error {
	if !(s.Energy > 0) || math.IsInf(s.Energy, 0) {
		return fmt.Errorf("%w: energy must be positive, got %g", ErrInvalidSource, s.Energy)
	}
	if !s.Pos.IsValid() || !s.Dir.IsValid() {
		return fmt.Errorf("%w: position and direction must be finite", ErrInvalidSource)
	}
	if math.Abs(s.Dir.Norm()-1) > 1e-9 {
		return fmt.Errorf("%w: direction must be a unit vector, |dir|=%g", ErrInvalidSource, s.Dir.Norm())
	}
	return nil
}

// Batch is a fixed-size ordered set of ions. Strategies write every ion in
// place and never let one ion read another.
type Batch struct {
	Ions []Ion `json:"ions"`
}

func NewBatch(n int, src Source) (*Batch, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: n=%d", ErrEmptyBatch, n)
	}
	if err := src.Validate(); err != nil {
		return nil, err
	}
	b := &Batch{Ions: make([]Ion, n)}
	for i := range b.Ions {
		b.Ions[i] = Ion{Pos: src.Pos, Dir: src.Dir, E: src.Energy, Inside: true}
	}
	return b, nil
}

func (b *Batch) Len() int { return len(b.Ions) }

type Config struct {
	Ions        int     `json:"ions"`
	Seed        int64   `json:"seed"`
	Workers     int     `json:"workers"`
	EMin        float64 `json:"emin"`
	UpdateEvery int     `json:"update_every"`
}

func DefaultConfig() Config {
	return Config{Ions: 1000, Seed: 1, EMin: DefaultEMin}
}

func (c Config) emin() float64 {
	if c.EMin <= 0 {
		return DefaultEMin
	}
	return c.EMin
}

// updateEvery defaults to one notification per percent of the batch.
func (c Config) updateEvery(n int) int {
	if c.UpdateEvery > 0 {
		return c.UpdateEvery
	}
	if n/100 > 1 {
		return n / 100
	}
	return 1
}

type Progress struct {
	Done    int
	Total   int
	Elapsed time.Duration
}

func (p Progress) Ratio() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Done) / float64(p.Total)
}

// Rate is the number of finished ions per second.
func (p Progress) Rate() float64 {
	if p.Elapsed <= 0 {
		return 0
	}
	return float64(p.Done) / p.Elapsed.Seconds()
}

// Observer receives progress notifications. Calls never overlap.
type Observer interface {
	OnProgress(Progress)
}

type ObserverFunc func(Progress)

func (f ObserverFunc) OnProgress(p Progress) { f(p) }

type Result struct {
	Strategy      string        `json:"strategy"`
	Batch         *Batch        `json:"-"`
	Summary       Summary       `json:"summary"`
	Elapsed       time.Duration `json:"elapsed"`
	Collisions    int           `json:"collisions"`
	Displacements int           `json:"displacements"`
	Clamped       int           `json:"clamped"`
	Backscattered int           `json:"backscattered"`
	Transmitted   int           `json:"transmitted"`
}

// IonsPerSecond is the throughput of the run.
func (r *Result) IonsPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Batch.Len()) / r.Elapsed.Seconds()
}

type multiObserver []Observer

func (m multiObserver) OnProgress(p Progress) {
	for _, o := range m {
		o.OnProgress(p)
	}
}

// MultiObserver forwards progress to every non-nil observer.
func MultiObserver(obs ...Observer) Observer {
	var m multiObserver
	for _, o := range obs {
		if o != nil {
			m = append(m, o)
		}
	}
	switch len(m) {
	case 0:
		return nil
	case 1:
		return m[0]
	}
	return m
}
