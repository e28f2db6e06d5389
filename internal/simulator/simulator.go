package simulator

import (
	"context"
	"log"
	"math/rand"
	"time"

	"studymap-backend/config"
	"studymap-backend/internal/model"
	"studymap-backend/internal/store"
)

// Service fabricates plausible occupancy samples in the background,
// standing in for real sensor and check-in traffic.
type Service struct {
	cfg   *config.SimulatorConfig
	store store.Store
	rng   *rand.Rand
	now   func() time.Time
}

// NewService creates a simulator with an unseeded random source. The noise
// is intentionally non-reproducible; it models live traffic.
func NewService(cfg *config.SimulatorConfig, s store.Store) *Service {
	return &Service{
		cfg:   cfg,
		store: s,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		now:   time.Now,
	}
}

// NewServiceWithSource creates a simulator with an injected random source
// and clock, for deterministic tests.
func NewServiceWithSource(cfg *config.SimulatorConfig, s store.Store, rng *rand.Rand, now func() time.Time) *Service {
	return &Service{cfg: cfg, store: s, rng: rng, now: now}
}

// Run starts the generator loop. Cycles fire on a fixed interval
// regardless of how long each cycle takes; any cycle failure is logged
// and the loop continues. Returns when the context is cancelled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Println("Occupancy simulator is disabled. Not starting.")
		return
	}
	log.Println("Starting occupancy simulator...")

	s.RunOnce(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Occupancy simulator shutting down.")
			return
		case <-timer.C:
			s.RunOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

// RunOnce performs a single generation cycle: pick a random subset of
// rooms and append one Gaussian-drawn sample for each, as one batch.
func (s *Service) RunOnce(ctx context.Context) {
	ids, err := s.store.RoomIDs(ctx, s.cfg.RoomPoolSize)
	if err != nil {
		log.Printf("simulator: failed to list room ids: %v", err)
		return
	}
	if len(ids) == 0 {
		return
	}

	count := s.cfg.BatchSize
	if count > len(ids) {
		count = len(ids)
	}

	now := s.now().UTC()
	samples := make([]model.OccupancySample, 0, count)
	for _, idx := range s.rng.Perm(len(ids))[:count] {
		samples = append(samples, model.OccupancySample{
			RoomID:    ids[idx],
			Timestamp: now,
			Level:     s.drawLevel(),
		})
	}

	if err := s.store.AppendSamples(ctx, samples); err != nil {
		log.Printf("simulator: failed to append sample batch: %v", err)
		return
	}
}

// drawLevel samples a Gaussian occupancy level and clamps it to [0, 100].
func (s *Service) drawLevel() int {
	level := int(s.rng.NormFloat64()*s.cfg.LevelStdDev + s.cfg.LevelMean)
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	return level
}
