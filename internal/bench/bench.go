// Package bench times the trajectory strategies against each other.
package bench

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/iontrim/internal/config"
	"github.com/san-kum/iontrim/internal/experiment"
	"github.com/san-kum/iontrim/internal/trim"
)

// DefaultWarmup is the batch size of the untimed run that precedes each
// measurement.
const DefaultWarmup = 8

type Options struct {
	Strategies []string
	Counts     []int
	Iterations int
	Warmup     int
	Workers    int
	Seed       int64
}

func DefaultOptions() Options {
	return Options{
		Strategies: experiment.ListStrategies(),
		Counts:     []int{100, 1000},
		Iterations: 5,
		Warmup:     DefaultWarmup,
		Seed:       1,
	}
}

type Result struct {
	Name          string    `json:"name"`
	Strategy      string    `json:"strategy"`
	Ions          int       `json:"ions"`
	Iterations    int       `json:"iterations"`
	Mean          float64   `json:"mean"`
	Min           float64   `json:"min"`
	Max           float64   `json:"max"`
	IonsPerSecond float64   `json:"ions_per_second"`
	Timestamp     time.Time `json:"timestamp"`
}

type Runner struct {
	cfg      *config.Config
	log      *zap.Logger
	registry *experiment.Registry
}

func NewRunner(cfg *config.Config, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{cfg: cfg, log: log, registry: experiment.NewRegistry()}
}

// Run measures every strategy at every ion count. onResult, if set, is called
// after each measurement.
func (r *Runner) Run(ctx context.Context, opts Options, onResult func(Result)) ([]Result, error) {
	if opts.Iterations <= 0 {
		return nil, fmt.Errorf("iterations must be positive, got %d", opts.Iterations)
	}
	if opts.Warmup <= 0 {
		opts.Warmup = DefaultWarmup
	}
	if len(opts.Strategies) == 0 {
		opts.Strategies = r.registry.ListStrategies()
	}

	built, err := r.cfg.Build(nil)
	if err != nil {
		return nil, err
	}
	tgt := built.Target.Compile(built.Projectile)
	tcfg := built.Trim
	tcfg.Seed = opts.Seed
	tcfg.Workers = opts.Workers

	results := make([]Result, 0, len(opts.Strategies)*len(opts.Counts))
	for _, name := range opts.Strategies {
		strategy, err := r.registry.GetStrategy(name, tgt, tcfg)
		if err != nil {
			return results, err
		}

		if err := r.runOnce(ctx, strategy, built.Source, opts.Warmup); err != nil {
			return results, err
		}

		for _, n := range opts.Counts {
			times := make([]float64, 0, opts.Iterations)
			for i := 0; i < opts.Iterations; i++ {
				start := time.Now()
				if err := r.runOnce(ctx, strategy, built.Source, n); err != nil {
					return results, err
				}
				times = append(times, time.Since(start).Seconds())
			}

			res := summarize(built.Name, name, n, times)
			r.log.Debug("Benchmark measured",
				zap.String("strategy", name),
				zap.Int("ions", n),
				zap.Float64("mean_seconds", res.Mean),
				zap.Float64("ions_per_second", res.IonsPerSecond))

			results = append(results, res)
			if onResult != nil {
				onResult(res)
			}
		}
	}
	return results, nil
}

func (r *Runner) runOnce(ctx context.Context, s trim.Strategy, src trim.Source, n int) error {
	batch, err := trim.NewBatch(n, src)
	if err != nil {
		return err
	}
	return s.Run(ctx, batch, nil)
}

func summarize(name, strategy string, ions int, times []float64) Result {
	res := Result{
		Name:       name,
		Strategy:   strategy,
		Ions:       ions,
		Iterations: len(times),
		Min:        math.Inf(1),
		Max:        math.Inf(-1),
		Timestamp:  time.Now(),
	}
	sum := 0.0
	for _, t := range times {
		sum += t
		res.Min = math.Min(res.Min, t)
		res.Max = math.Max(res.Max, t)
	}
	res.Mean = sum / float64(len(times))
	if res.Mean > 0 {
		res.IonsPerSecond = float64(ions) / res.Mean
	}
	return res
}
