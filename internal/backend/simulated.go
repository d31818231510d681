package backend

import (
	"context"
	"math/rand/v2"
)

// Bounds are the inclusive upper limits of simulated counts
type Bounds struct {
	StuckLPN         int
	AgingWaves       int
	CloudStuckTasks  int
	FusionExceptions int
}

// DefaultBounds mirrors the demo generators the dashboard was built against
func DefaultBounds() Bounds {
	return Bounds{
		StuckLPN:         3,
		AgingWaves:       2,
		CloudStuckTasks:  3,
		FusionExceptions: 2,
	}
}

// Simulator generates bounded random counts for every capability.
// Not safe for concurrent use; the collector is sequential.
type Simulator struct {
	rng    *rand.Rand
	bounds Bounds
}

// NewSimulator creates a simulator; equal seeds yield equal sequences
func NewSimulator(seed int64, bounds Bounds) *Simulator {
	return &Simulator{
		rng:    rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)),
		bounds: bounds,
	}
}

func (s *Simulator) draw(max int) int {
	if max <= 0 {
		return 0
	}
	return s.rng.IntN(max + 1)
}

// StuckLicensePlates returns a count in [0, Bounds.StuckLPN]
func (s *Simulator) StuckLicensePlates(ctx context.Context) (int, error) {
	return s.draw(s.bounds.StuckLPN), nil
}

// AgingWaves returns a count in [0, Bounds.AgingWaves]
func (s *Simulator) AgingWaves(ctx context.Context) (int, error) {
	return s.draw(s.bounds.AgingWaves), nil
}

// CloudStuckTasks returns a count in [0, Bounds.CloudStuckTasks]
func (s *Simulator) CloudStuckTasks(ctx context.Context, status string) (int, error) {
	return s.draw(s.bounds.CloudStuckTasks), nil
}

// InventoryExceptions returns a count in [0, min(limit, Bounds.FusionExceptions)]
func (s *Simulator) InventoryExceptions(ctx context.Context, limit int) (int, error) {
	max := s.bounds.FusionExceptions
	if limit > 0 && limit < max {
		max = limit
	}
	return s.draw(max), nil
}
