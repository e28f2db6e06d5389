package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"studymap-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	// Rooms
	ListRooms(ctx context.Context, offset, limit int) ([]model.Room, error)
	AllRooms(ctx context.Context) ([]model.Room, error)
	GetRoom(ctx context.Context, roomID string) (*model.Room, error)
	FilterRooms(ctx context.Context, block string, minCapacity int, limit int) ([]model.Room, error)
	RoomIDs(ctx context.Context, limit int) ([]string, error)

	// Timetable
	TimetableFor(ctx context.Context, roomID string) ([]model.TimetableEntry, error)
	HasEntry(ctx context.Context, roomID, day string, slot int) (bool, error)
	CountDistinctRoomsWithEntry(ctx context.Context, day string, slot int, roomIDs []string) (int64, error)

	// Occupancy samples
	LatestSample(ctx context.Context, roomID string) (*model.OccupancySample, error)
	LatestLevels(ctx context.Context) (map[string]int, error)
	RecentSamples(ctx context.Context, roomID string, limit int) ([]model.OccupancySample, error)
	AppendSample(ctx context.Context, roomID string, level int, ts time.Time) (*model.OccupancySample, error)
	AppendSamples(ctx context.Context, samples []model.OccupancySample) error
	SamplesSince(ctx context.Context, since time.Time) ([]model.OccupancySample, error)

	// Bulk load
	ReplaceAll(ctx context.Context, rooms []model.Room, entries []model.TimetableEntry) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) ListRooms(ctx context.Context, offset, limit int) ([]model.Room, error) {
	var rooms []model.Room
	err := s.db.WithContext(ctx).
		Order("room_id").
		Offset(offset).Limit(limit).
		Find(&rooms).Error
	return rooms, err
}

func (s *gormStore) AllRooms(ctx context.Context) ([]model.Room, error) {
	var rooms []model.Room
	err := s.db.WithContext(ctx).Order("room_id").Find(&rooms).Error
	return rooms, err
}

// GetRoom returns the room with the given external identifier, or
// gorm.ErrRecordNotFound when no such room exists.
func (s *gormStore) GetRoom(ctx context.Context, roomID string) (*model.Room, error) {
	var room model.Room
	if err := s.db.WithContext(ctx).First(&room, "room_id = ?", roomID).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *gormStore) FilterRooms(ctx context.Context, block string, minCapacity int, limit int) ([]model.Room, error) {
	q := s.db.WithContext(ctx).Model(&model.Room{})
	if block != "" {
		q = q.Where("block = ?", block)
	}
	if minCapacity > 0 {
		q = q.Where("capacity >= ?", minCapacity)
	}
	var rooms []model.Room
	err := q.Order("room_id").Limit(limit).Find(&rooms).Error
	return rooms, err
}

func (s *gormStore) RoomIDs(ctx context.Context, limit int) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&model.Room{}).
		Order("room_id").Limit(limit).
		Pluck("room_id", &ids).Error
	return ids, err
}

func (s *gormStore) TimetableFor(ctx context.Context, roomID string) ([]model.TimetableEntry, error) {
	var entries []model.TimetableEntry
	err := s.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("day, slot").
		Find(&entries).Error
	return entries, err
}

func (s *gormStore) HasEntry(ctx context.Context, roomID, day string, slot int) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.TimetableEntry{}).
		Where("room_id = ? AND day = ? AND slot = ?", roomID, day, slot).
		Count(&count).Error
	return count > 0, err
}

// CountDistinctRoomsWithEntry counts how many of the given rooms have at
// least one timetable entry at (day, slot). Duplicate entries per room do
// not inflate the count.
func (s *gormStore) CountDistinctRoomsWithEntry(ctx context.Context, day string, slot int, roomIDs []string) (int64, error) {
	if len(roomIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&model.TimetableEntry{}).
		Distinct("room_id").
		Where("day = ? AND slot = ? AND room_id IN ?", day, slot, roomIDs).
		Count(&count).Error
	return count, err
}

// LatestSample returns the most recent sample for a room, or nil when the
// room has none.
func (s *gormStore) LatestSample(ctx context.Context, roomID string) (*model.OccupancySample, error) {
	var sample model.OccupancySample
	err := s.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("timestamp DESC, id DESC").
		First(&sample).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sample, nil
}

// LatestLevels returns the latest occupancy level per room in one pass.
// Rooms without samples are absent from the map.
func (s *gormStore) LatestLevels(ctx context.Context) (map[string]int, error) {
	type row struct {
		RoomID string
		Level  int
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Table("occupancy_samples AS s").
		Select("s.room_id AS room_id, s.occupancy_level AS level").
		Joins("JOIN (SELECT room_id, MAX(timestamp) AS ts FROM occupancy_samples GROUP BY room_id) latest "+
			"ON latest.room_id = s.room_id AND latest.ts = s.timestamp").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	levels := make(map[string]int, len(rows))
	for _, r := range rows {
		levels[r.RoomID] = r.Level
	}
	return levels, nil
}

func (s *gormStore) RecentSamples(ctx context.Context, roomID string, limit int) ([]model.OccupancySample, error) {
	var samples []model.OccupancySample
	err := s.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&samples).Error
	return samples, err
}

func (s *gormStore) AppendSample(ctx context.Context, roomID string, level int, ts time.Time) (*model.OccupancySample, error) {
	sample := model.OccupancySample{
		RoomID:    roomID,
		Timestamp: ts,
		Level:     level,
	}
	if err := s.db.WithContext(ctx).Create(&sample).Error; err != nil {
		return nil, fmt.Errorf("failed to append occupancy sample for room %s: %w", roomID, err)
	}
	return &sample, nil
}

// AppendSamples inserts a batch of samples in one transaction.
func (s *gormStore) AppendSamples(ctx context.Context, samples []model.OccupancySample) error {
	if len(samples) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&samples).Error; err != nil {
			return fmt.Errorf("failed to append sample batch: %w", err)
		}
		return nil
	})
}

func (s *gormStore) SamplesSince(ctx context.Context, since time.Time) ([]model.OccupancySample, error) {
	var samples []model.OccupancySample
	err := s.db.WithContext(ctx).
		Where("timestamp >= ?", since).
		Find(&samples).Error
	return samples, err
}

// ReplaceAll clears all room, timetable and occupancy data and loads the
// given rooms and entries in one transaction. Used by the CSV loader.
func (s *gormStore) ReplaceAll(ctx context.Context, rooms []model.Room, entries []model.TimetableEntry) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&model.OccupancySample{}, &model.TimetableEntry{}, &model.Room{}} {
			if err := tx.Where("1 = 1").Delete(m).Error; err != nil {
				return fmt.Errorf("failed to clear table: %w", err)
			}
		}
		if len(rooms) > 0 {
			if err := tx.Create(&rooms).Error; err != nil {
				return fmt.Errorf("failed to insert rooms: %w", err)
			}
		}
		if len(entries) > 0 {
			if err := tx.Create(&entries).Error; err != nil {
				return fmt.Errorf("failed to insert timetable entries: %w", err)
			}
		}
		return nil
	})
}
