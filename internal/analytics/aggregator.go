package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"studymap-backend/internal/model"
	"studymap-backend/internal/status"
	"studymap-backend/internal/store"
)

// insertRateWindow is the trailing window of the sample insert-rate counter.
const insertRateWindow = 5 * time.Minute

// BlockHeat is one block's average latest occupancy for the heatmap.
type BlockHeat struct {
	Block        string `json:"block"`
	AvgOccupancy int    `json:"avg_occupancy"`
}

// BlockSummary aggregates rooms of one block.
type BlockSummary struct {
	Block           string `json:"block"`
	Rooms           int    `json:"rooms"`
	Capacity        int    `json:"capacity"`
	AvgOccupancy    int    `json:"avg_occupancy"`
	UsedCapacityPct int    `json:"used_capacity_pct"`
}

// Summary is the campus-wide analytics rollup.
type Summary struct {
	TotalRooms             int              `json:"total_rooms"`
	TotalCapacity          int              `json:"total_capacity"`
	Types                  map[string]int   `json:"types"`
	Blocks                 []BlockSummary   `json:"blocks"`
	TimetableCoveragePct   map[string][]int `json:"timetable_coverage_pct"`
	OccupancyInsertsLast5  int              `json:"occupancy_inserts_last_5m"`
	OccupancyInsertsPerMin map[string]int   `json:"occupancy_inserts_per_minute"`
}

// Aggregator computes campus analytics from current storage contents.
// Nothing is persisted; every call recomputes.
type Aggregator struct {
	store store.Store
	now   func() time.Time
}

// NewAggregator creates an aggregator reading the wall clock.
func NewAggregator(s store.Store) *Aggregator {
	return &Aggregator{store: s, now: time.Now}
}

// NewAggregatorWithClock creates an aggregator with an injected clock.
func NewAggregatorWithClock(s store.Store, now func() time.Time) *Aggregator {
	return &Aggregator{store: s, now: now}
}

// Heatmap groups rooms by block and averages each block's latest
// occupancy level. The average uses integer floor division; rooms
// without samples count as level 0. Blocks with no rooms never appear.
func (a *Aggregator) Heatmap(ctx context.Context) ([]BlockHeat, error) {
	rooms, err := a.store.AllRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	levels, err := a.store.LatestLevels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest levels: %w", err)
	}

	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, r := range rooms {
		sums[r.Block] += levels[r.RoomID]
		counts[r.Block]++
	}

	heat := make([]BlockHeat, 0, len(sums))
	for block, sum := range sums {
		heat = append(heat, BlockHeat{Block: block, AvgOccupancy: sum / counts[block]})
	}
	sort.Slice(heat, func(i, j int) bool { return heat[i].Block < heat[j].Block })
	return heat, nil
}

// Summarize computes the campus-wide rollup: per-block totals, room-type
// counts, timetable coverage per day/slot and the sample insert rate over
// the trailing five minutes.
func (a *Aggregator) Summarize(ctx context.Context) (*Summary, error) {
	rooms, err := a.store.AllRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	levels, err := a.store.LatestLevels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest levels: %w", err)
	}

	summary := &Summary{
		TotalRooms: len(rooms),
		Types:      make(map[string]int),
	}

	type blockAcc struct {
		rooms    int
		capacity int
		levelSum int
	}
	blocks := make(map[string]*blockAcc)
	var lectureIDs []string

	for _, r := range rooms {
		summary.TotalCapacity += r.Capacity

		roomType := r.Type
		if roomType == "" {
			roomType = model.RoomTypeLecture
		}
		summary.Types[roomType]++
		if roomType == model.RoomTypeLecture {
			lectureIDs = append(lectureIDs, r.RoomID)
		}

		acc, ok := blocks[r.Block]
		if !ok {
			acc = &blockAcc{}
			blocks[r.Block] = acc
		}
		acc.rooms++
		acc.capacity += r.Capacity
		acc.levelSum += levels[r.RoomID]
	}

	for block, acc := range blocks {
		avg := int(math.Round(float64(acc.levelSum) / float64(acc.rooms)))
		summary.Blocks = append(summary.Blocks, BlockSummary{
			Block:        block,
			Rooms:        acc.rooms,
			Capacity:     acc.capacity,
			AvgOccupancy: avg,
			// Placeholder proxy: utilization is reported as the average level.
			UsedCapacityPct: avg,
		})
	}
	sort.Slice(summary.Blocks, func(i, j int) bool {
		return summary.Blocks[i].Block < summary.Blocks[j].Block
	})

	coverage, err := a.coverage(ctx, lectureIDs)
	if err != nil {
		return nil, err
	}
	summary.TimetableCoveragePct = coverage

	total, perMinute, err := a.insertRate(ctx)
	if err != nil {
		return nil, err
	}
	summary.OccupancyInsertsLast5 = total
	summary.OccupancyInsertsPerMin = perMinute

	return summary, nil
}

// coverage computes, for every (day, slot) cell, the rounded percentage of
// lecture rooms with at least one timetable entry there. The denominator
// is floored at 1 so a campus with no lecture rooms yields all zeros.
func (a *Aggregator) coverage(ctx context.Context, lectureIDs []string) (map[string][]int, error) {
	denom := len(lectureIDs)
	if denom < 1 {
		denom = 1
	}

	coverage := make(map[string][]int, len(status.DayNames))
	for _, day := range status.DayNames {
		cells := make([]int, status.NumSlots)
		for slot := 0; slot < status.NumSlots; slot++ {
			count, err := a.store.CountDistinctRoomsWithEntry(ctx, day, slot, lectureIDs)
			if err != nil {
				return nil, fmt.Errorf("coverage count for %s slot %d: %w", day, slot, err)
			}
			cells[slot] = int(math.Round(float64(count) / float64(denom) * 100))
		}
		coverage[day] = cells
	}
	return coverage, nil
}

// insertRate counts samples appended within the trailing five minutes and
// buckets them per minute, keyed by the minute-truncated RFC3339 timestamp.
func (a *Aggregator) insertRate(ctx context.Context) (int, map[string]int, error) {
	since := a.now().UTC().Add(-insertRateWindow)
	recent, err := a.store.SamplesSince(ctx, since)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to fetch recent samples: %w", err)
	}

	perMinute := make(map[string]int)
	for _, sample := range recent {
		minute := sample.Timestamp.UTC().Truncate(time.Minute).Format(time.RFC3339)
		perMinute[minute]++
	}
	return len(recent), perMinute, nil
}
