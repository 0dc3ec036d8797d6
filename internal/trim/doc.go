// Package trim transports ions through an amorphous layered target.
//
// Each ion alternates between a free flight of constant length, during which
// it loses energy to the target electrons, and a binary nuclear collision
// with a target atom drawn from the current layer. An ion is followed until
// its energy falls below EMin or it leaves the target.
//
// Four strategies produce the trajectories of a Batch:
//
//   - loop: one ion after the other with a single random source
//   - bulk: every sweep advances each active ion by one collision
//   - parallel: equal partitions, each running loop on its own goroutine
//   - parallel-bulk: equal partitions, each running bulk
//
// Identical seed, strategy and worker count give identical batches.
//
// Example:
//
//	c := tgt.Compile(target.Projectile{Z: 5, Mass: 11.009})
//	b, _ := trim.NewBatch(1000, trim.NewSource(50000, 0))
//	res, err := trim.Execute(ctx, trim.NewLoop(c, cfg), c, b, nil)
package trim
