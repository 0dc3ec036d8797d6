package experiment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/iontrim/internal/config"
	"github.com/san-kum/iontrim/internal/stats"
	"github.com/san-kum/iontrim/internal/target"
	"github.com/san-kum/iontrim/internal/trim"
)

// Report is everything a finished run produces.
type Report struct {
	Name       string           `json:"name"`
	Strategy   string           `json:"strategy"`
	Partitions int              `json:"partitions"`
	Started    time.Time        `json:"started"`
	Config     *config.Config   `json:"config"`
	Result     *trim.Result     `json:"result"`
	Histogram  *stats.Histogram `json:"histogram"`
}

type Experiment struct {
	cfg      *config.Config
	log      *zap.Logger
	registry *Registry
	built    *config.Built
	compiled *target.Compiled
}

func New(cfg *config.Config, log *zap.Logger) *Experiment {
	if log == nil {
		log = zap.NewNop()
	}
	return &Experiment{cfg: cfg, log: log, registry: NewRegistry()}
}

// Setup resolves the configuration and compiles the target for the ion.
func (e *Experiment) Setup() error {
	built, err := e.cfg.Build(nil)
	if err != nil {
		return err
	}
	if _, err := e.registry.GetStrategy(built.Strategy, nil, built.Trim); err != nil {
		return err
	}
	e.built = built
	e.compiled = built.Target.Compile(built.Projectile)

	e.log.Debug("Target compiled",
		zap.String("name", built.Name),
		zap.Int("layers", len(e.compiled.Layers)),
		zap.Float64("thickness", built.Target.Thickness()))
	return nil
}

func (e *Experiment) Built() *config.Built { return e.built }

func (e *Experiment) Target() *target.Compiled { return e.compiled }

// Run executes the configured strategy.
func (e *Experiment) Run(ctx context.Context, obs trim.Observer) (*Report, error) {
	if e.built == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.RunStrategy(ctx, e.built.Strategy, obs)
}

// RunStrategy executes the named strategy on a fresh batch.
func (e *Experiment) RunStrategy(ctx context.Context, name string, obs trim.Observer) (*Report, error) {
	if e.built == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	strategy, err := e.registry.GetStrategy(name, e.compiled, e.built.Trim)
	if err != nil {
		return nil, err
	}
	batch, err := trim.NewBatch(e.built.Trim.Ions, e.built.Source)
	if err != nil {
		return nil, err
	}

	hist, err := stats.NewHistogram(1, e.built.Histogram.Bins, e.built.Histogram.Min, e.built.Histogram.Max)
	if err != nil {
		return nil, err
	}

	partitions := 1
	if name == trim.NameParallel || name == trim.NameParallelBulk {
		partitions, _ = trim.Partition(batch.Len(), e.built.Trim.Workers)
	}

	log := e.log.With(zap.String("run", e.built.Name), zap.String("strategy", name))
	log.Info("Run started",
		zap.Int("ions", batch.Len()),
		zap.Int("partitions", partitions),
		zap.Int64("seed", e.built.Trim.Seed))

	started := time.Now()
	res, err := trim.Execute(ctx, strategy, e.compiled, batch, obs)
	if err != nil {
		log.Warn("Run aborted", zap.Error(err))
		return nil, err
	}

	for _, z := range trim.Depths(batch) {
		hist.Score(0, z)
	}

	if res.Clamped > 0 {
		log.Warn("Magic formula clamped", zap.Int("events", res.Clamped))
	}
	log.Info("Run finished",
		zap.Duration("elapsed", res.Elapsed),
		zap.Int("inside", res.Summary.Inside),
		zap.Int("backscattered", res.Backscattered),
		zap.Int("transmitted", res.Transmitted),
		zap.Float64("mean_depth", res.Summary.Depth.Mean.V),
		zap.Float64("std_depth", res.Summary.Depth.Std.V))

	return &Report{
		Name:       e.built.Name,
		Strategy:   name,
		Partitions: partitions,
		Started:    started,
		Config:     e.cfg,
		Result:     res,
		Histogram:  hist,
	}, nil
}

// Compare runs every registered strategy on the same configuration.
func (e *Experiment) Compare(ctx context.Context, obs trim.Observer) ([]*Report, error) {
	names := e.registry.ListStrategies()
	reports := make([]*Report, 0, len(names))
	for _, name := range names {
		rep, err := e.RunStrategy(ctx, name, obs)
		if err != nil {
			return reports, err
		}
		reports = append(reports, rep)
	}
	return reports, nil
}
