package trim

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/iontrim/internal/target"
)

const (
	NameLoop         = "loop"
	NameBulk         = "bulk"
	NameParallel     = "parallel"
	NameParallelBulk = "parallel-bulk"
)

// Strategy computes the final state of every ion of a batch in place.
type Strategy interface {
	Name() string
	Run(ctx context.Context, b *Batch, obs Observer) error
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func checkBatch(b *Batch) error {
	if b == nil || b.Len() == 0 {
		return ErrEmptyBatch
	}
	return nil
}

type Loop struct {
	k   kernel
	cfg Config
}

func NewLoop(tgt *target.Compiled, cfg Config) *Loop {
	return &Loop{k: newKernel(tgt, cfg), cfg: cfg}
}

func (s *Loop) Name() string { return NameLoop }

func (s *Loop) Run(ctx context.Context, b *Batch, obs Observer) error {
	if err := checkBatch(b); err != nil {
		return err
	}
	rep := newReporter(obs, b.Len(), s.cfg.updateEvery(b.Len()))
	if err := runLoop(ctx, s.k, b.Ions, newRand(s.cfg.Seed), rep); err != nil {
		return fmt.Errorf("%s: %w", s.Name(), err)
	}
	rep.finish()
	return nil
}

func runLoop(ctx context.Context, k kernel, ions []Ion, rng *rand.Rand, rep *reporter) error {
	for i := range ions {
		if err := ctx.Err(); err != nil {
			return err
		}
		k.trajectory(&ions[i], rng)
		rep.add(1)
	}
	return nil
}

type Bulk struct {
	k   kernel
	cfg Config
}

func NewBulk(tgt *target.Compiled, cfg Config) *Bulk {
	return &Bulk{k: newKernel(tgt, cfg), cfg: cfg}
}

func (s *Bulk) Name() string { return NameBulk }

func (s *Bulk) Run(ctx context.Context, b *Batch, obs Observer) error {
	if err := checkBatch(b); err != nil {
		return err
	}
	rep := newReporter(obs, b.Len(), s.cfg.updateEvery(b.Len()))
	if err := runBulk(ctx, s.k, b.Ions, newRand(s.cfg.Seed), rep); err != nil {
		return fmt.Errorf("%s: %w", s.Name(), err)
	}
	rep.finish()
	return nil
}

// Parallel splits a batch into equal partitions and runs either the per-ion
// loop or the bulk sweep on each of them concurrently. Partition i draws
// from its own source seeded with Seed+i.
type Parallel struct {
	k    kernel
	cfg  Config
	bulk bool
}

func NewParallel(tgt *target.Compiled, cfg Config) *Parallel {
	return &Parallel{k: newKernel(tgt, cfg), cfg: cfg}
}

func NewParallelBulk(tgt *target.Compiled, cfg Config) *Parallel {
	return &Parallel{k: newKernel(tgt, cfg), cfg: cfg, bulk: true}
}

func (s *Parallel) Name() string {
	if s.bulk {
		return NameParallelBulk
	}
	return NameParallel
}

func (s *Parallel) Run(ctx context.Context, b *Batch, obs Observer) error {
	if err := checkBatch(b); err != nil {
		return err
	}

	n := b.Len()
	parts, size := Partition(n, s.cfg.Workers)
	rep := newReporter(obs, n, s.cfg.updateEvery(n))

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < parts; i++ {
		ions := b.Ions[i*size : (i+1)*size]
		rng := newRand(s.cfg.Seed + int64(i))
		g.Go(func() error {
			if s.bulk {
				return runBulk(gctx, s.k, ions, rng, rep)
			}
			return runLoop(gctx, s.k, ions, rng, rep)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("%s: %w", s.Name(), err)
	}
	rep.finish()
	return nil
}

// Partition returns the number of partitions and their size for n ions. The
// count is the largest k <= workers that divides n, so all partitions are
// equal. workers <= 0 means one per CPU.
func Partition(n, workers int) (parts, size int) {
	if n <= 0 {
		return 0, 0
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}
	for k := workers; k > 1; k-- {
		if n%k == 0 {
			return k, n / k
		}
	}
	return 1, n
}
