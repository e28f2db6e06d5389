package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"studymap-backend/internal/db"
	"studymap-backend/internal/model"
	"studymap-backend/internal/store"
)

var fixedNow = time.Date(2025, 9, 1, 9, 15, 0, 0, time.UTC)

func newTestAggregator(t *testing.T) (*Aggregator, store.Store) {
	t.Helper()
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(gormDB))

	s := store.NewGormStore(gormDB)
	return NewAggregatorWithClock(s, func() time.Time { return fixedNow }), s
}

func seedRoomWithLevel(t *testing.T, s store.Store, roomID, block, roomType string, capacity, level int) {
	t.Helper()
	require.NoError(t, s.DB().Create(&model.Room{
		RoomID: roomID, Block: block, Type: roomType, Capacity: capacity,
	}).Error)
	if level >= 0 {
		require.NoError(t, s.DB().Create(&model.OccupancySample{
			RoomID: roomID, Timestamp: fixedNow.Add(-time.Minute), Level: level,
		}).Error)
	}
}

func TestHeatmap(t *testing.T) {
	ctx := context.Background()
	agg, st := newTestAggregator(t)

	// Block A averages with floor division: (10+20+30)/3 = 20.
	seedRoomWithLevel(t, st, "A-1", "A", "lecture", 40, 10)
	seedRoomWithLevel(t, st, "A-2", "A", "lecture", 40, 20)
	seedRoomWithLevel(t, st, "A-3", "A", "lecture", 40, 30)
	// Block B: floor(25/2) = 12; one room has no samples and counts as 0.
	seedRoomWithLevel(t, st, "B-1", "B", "lab", 20, 25)
	seedRoomWithLevel(t, st, "B-2", "B", "lab", 20, -1)

	heat, err := agg.Heatmap(ctx)
	require.NoError(t, err)
	require.Len(t, heat, 2)
	assert.Equal(t, BlockHeat{Block: "A", AvgOccupancy: 20}, heat[0])
	assert.Equal(t, BlockHeat{Block: "B", AvgOccupancy: 12}, heat[1])
}

func TestHeatmapUsesLatestSampleOnly(t *testing.T) {
	ctx := context.Background()
	agg, st := newTestAggregator(t)

	seedRoomWithLevel(t, st, "A-1", "A", "lecture", 40, 80)
	// A newer sample supersedes the old one.
	require.NoError(t, st.DB().Create(&model.OccupancySample{
		RoomID: "A-1", Timestamp: fixedNow.Add(-10 * time.Second), Level: 4,
	}).Error)

	heat, err := agg.Heatmap(ctx)
	require.NoError(t, err)
	require.Len(t, heat, 1)
	assert.Equal(t, 4, heat[0].AvgOccupancy)
}

func TestSummarizeBlocksAndTypes(t *testing.T) {
	ctx := context.Background()
	agg, st := newTestAggregator(t)

	// Block A: levels 10, 10, 11 -> sum 31, round(31/3) = 10.
	seedRoomWithLevel(t, st, "A-1", "A", "lecture", 40, 10)
	seedRoomWithLevel(t, st, "A-2", "A", "lecture", 30, 10)
	seedRoomWithLevel(t, st, "A-3", "A", "lab", 20, 11)
	seedRoomWithLevel(t, st, "B-1", "B", "auditorium", 200, 50)

	summary, err := agg.Summarize(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.TotalRooms)
	assert.Equal(t, 290, summary.TotalCapacity)
	assert.Equal(t, map[string]int{"lecture": 2, "lab": 1, "auditorium": 1}, summary.Types)

	require.Len(t, summary.Blocks, 2)
	a := summary.Blocks[0]
	assert.Equal(t, "A", a.Block)
	assert.Equal(t, 3, a.Rooms)
	assert.Equal(t, 90, a.Capacity)
	assert.Equal(t, 10, a.AvgOccupancy)
	assert.Equal(t, a.AvgOccupancy, a.UsedCapacityPct)
}

func TestSummarizeCoverage(t *testing.T) {
	ctx := context.Background()
	agg, st := newTestAggregator(t)

	// Five lecture rooms, three of which have a Mon slot 2 entry.
	for _, id := range []string{"L-1", "L-2", "L-3", "L-4", "L-5"} {
		seedRoomWithLevel(t, st, id, "A", "lecture", 40, -1)
	}
	for _, id := range []string{"L-1", "L-2", "L-3"} {
		require.NoError(t, st.DB().Create(&model.TimetableEntry{
			RoomID: id, Day: "Mon", Slot: 2, Course: "Calculus",
		}).Error)
	}
	// A duplicate entry must not inflate the distinct-room count.
	require.NoError(t, st.DB().Create(&model.TimetableEntry{
		RoomID: "L-1", Day: "Mon", Slot: 2, Course: "Calculus",
	}).Error)
	// Non-lecture rooms never count toward coverage.
	seedRoomWithLevel(t, st, "X-1", "A", "lab", 20, -1)
	require.NoError(t, st.DB().Create(&model.TimetableEntry{
		RoomID: "X-1", Day: "Mon", Slot: 2, Course: "Chemistry",
	}).Error)

	summary, err := agg.Summarize(ctx)
	require.NoError(t, err)

	coverage := summary.TimetableCoveragePct
	require.Len(t, coverage, 7)
	require.Len(t, coverage["Mon"], 10)
	assert.Equal(t, 60, coverage["Mon"][2])
	assert.Equal(t, 0, coverage["Mon"][3])
	assert.Equal(t, 0, coverage["Tue"][2])
}

func TestSummarizeCoverageWithoutLectureRooms(t *testing.T) {
	ctx := context.Background()
	agg, st := newTestAggregator(t)

	seedRoomWithLevel(t, st, "X-1", "A", "lab", 20, -1)

	summary, err := agg.Summarize(ctx)
	require.NoError(t, err)
	for _, cells := range summary.TimetableCoveragePct {
		for _, pct := range cells {
			assert.Equal(t, 0, pct)
		}
	}
}

func TestSummarizeInsertRate(t *testing.T) {
	ctx := context.Background()
	agg, st := newTestAggregator(t)
	seedRoomWithLevel(t, st, "A-1", "A", "lecture", 40, -1)

	// Three samples inside the 5-minute window, one outside.
	inWindow := []time.Time{
		fixedNow.Add(-30 * time.Second),
		fixedNow.Add(-90 * time.Second),
		fixedNow.Add(-100 * time.Second),
	}
	for _, ts := range inWindow {
		require.NoError(t, st.DB().Create(&model.OccupancySample{
			RoomID: "A-1", Timestamp: ts, Level: 5,
		}).Error)
	}
	require.NoError(t, st.DB().Create(&model.OccupancySample{
		RoomID: "A-1", Timestamp: fixedNow.Add(-10 * time.Minute), Level: 5,
	}).Error)

	summary, err := agg.Summarize(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.OccupancyInsertsLast5)

	// -90s and -100s fall in the same minute bucket.
	bucket := fixedNow.Add(-100 * time.Second).Truncate(time.Minute).Format(time.RFC3339)
	assert.Equal(t, 2, summary.OccupancyInsertsPerMin[bucket])
}
