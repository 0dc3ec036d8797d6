package trim

import (
	"context"
	"time"

	"github.com/san-kum/iontrim/internal/target"
)

// Execute runs s over b and summarizes the final batch against tgt.
func Execute(ctx context.Context, s Strategy, tgt *target.Compiled, b *Batch, obs Observer) (*Result, error) {
	start := time.Now()
	if err := s.Run(ctx, b, obs); err != nil {
		return nil, err
	}

	res := &Result{
		Strategy: s.Name(),
		Batch:    b,
		Elapsed:  time.Since(start),
		Summary:  Summarize(b, tgt),
	}
	for _, ion := range b.Ions {
		res.Collisions += ion.Collisions
		res.Displacements += ion.Displacements
		res.Clamped += ion.Clamped
	}
	res.Backscattered = res.Summary.Backscattered
	res.Transmitted = res.Summary.Transmitted
	return res, nil
}
