package rooms

import (
	"context"
	"fmt"
	"time"

	"studymap-backend/internal/model"
	"studymap-backend/internal/status"
	"studymap-backend/internal/store"
)

// freeQueryLimit caps the candidate set of a free-room query to bound
// per-request work.
const freeQueryLimit = 100

// historyLimit is how many recent samples a room detail response carries.
const historyLimit = 50

// RoomView is a room with its derived status attached.
type RoomView struct {
	RoomID    string       `json:"room_id"`
	Block     string       `json:"block"`
	Capacity  int          `json:"capacity"`
	Type      string       `json:"type"`
	AC        string       `json:"AC"`
	Lat       float64      `json:"lat"`
	Lon       float64      `json:"lon"`
	Amenities string       `json:"amenities"`
	Status    status.Label `json:"status"`
	Level     int          `json:"occupancy_level"`
}

// Detail is the full view of a single room.
type Detail struct {
	Room      model.Room              `json:"room"`
	Timetable []model.TimetableEntry  `json:"timetable"`
	History   []model.OccupancySample `json:"occupancy_history"`
}

// Service answers room queries with derived status attached.
type Service struct {
	store store.Store
	now   func() time.Time
}

// NewService creates a room query service reading the wall clock.
func NewService(s store.Store) *Service {
	return &Service{store: s, now: time.Now}
}

// NewServiceWithClock creates a room query service with an injected clock,
// for deterministic tests.
func NewServiceWithClock(s store.Store, now func() time.Time) *Service {
	return &Service{store: s, now: now}
}

// Status derives the current status of a room: a timetable entry at the
// current day/slot means Booked; otherwise the latest occupancy level
// decides, defaulting to 0 when the room has no samples.
func (s *Service) Status(ctx context.Context, roomID string) (status.Label, int, error) {
	day, slot := status.DaySlot(s.now())
	booked, err := s.store.HasEntry(ctx, roomID, day, slot)
	if err != nil {
		return "", 0, fmt.Errorf("timetable lookup for room %s: %w", roomID, err)
	}

	level := 0
	sample, err := s.store.LatestSample(ctx, roomID)
	if err != nil {
		return "", 0, fmt.Errorf("latest sample lookup for room %s: %w", roomID, err)
	}
	if sample != nil {
		level = sample.Level
	}

	return status.Derive(booked, level), level, nil
}

// ListAll returns every room with derived status, ordered by room id.
func (s *Service) ListAll(ctx context.Context) ([]RoomView, error) {
	all, err := s.store.AllRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return s.withStatus(ctx, all, nil)
}

// ListFree returns rooms matching the optional block and minimum-capacity
// filters whose derived status is FreeAndEmpty. The candidate set is
// capped at 100 rooms.
func (s *Service) ListFree(ctx context.Context, block string, minCapacity int) ([]RoomView, error) {
	candidates, err := s.store.FilterRooms(ctx, block, minCapacity, freeQueryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to filter rooms: %w", err)
	}
	keep := func(label status.Label) bool { return label == status.FreeAndEmpty }
	return s.withStatus(ctx, candidates, keep)
}

func (s *Service) withStatus(ctx context.Context, rooms []model.Room, keep func(status.Label) bool) ([]RoomView, error) {
	views := make([]RoomView, 0, len(rooms))
	for _, r := range rooms {
		label, level, err := s.Status(ctx, r.RoomID)
		if err != nil {
			return nil, err
		}
		if keep != nil && !keep(label) {
			continue
		}
		views = append(views, RoomView{
			RoomID:    r.RoomID,
			Block:     r.Block,
			Capacity:  r.Capacity,
			Type:      r.Type,
			AC:        r.AC,
			Lat:       r.Lat,
			Lon:       r.Lon,
			Amenities: r.Amenities,
			Status:    label,
			Level:     level,
		})
	}
	return views, nil
}

// Detail returns a room's static attributes, its timetable entries and its
// last 50 samples newest-first. Returns gorm.ErrRecordNotFound for an
// unknown room id.
func (s *Service) Detail(ctx context.Context, roomID string) (*Detail, error) {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	entries, err := s.store.TimetableFor(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("timetable for room %s: %w", roomID, err)
	}

	history, err := s.store.RecentSamples(ctx, roomID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("occupancy history for room %s: %w", roomID, err)
	}

	return &Detail{Room: *room, Timetable: entries, History: history}, nil
}

// CheckIn appends an occupancy sample for a room at the current time.
// The level is stored as submitted; no range validation is performed.
// Returns gorm.ErrRecordNotFound for an unknown room id.
func (s *Service) CheckIn(ctx context.Context, roomID string, level int) (int64, error) {
	if _, err := s.store.GetRoom(ctx, roomID); err != nil {
		return 0, err
	}
	sample, err := s.store.AppendSample(ctx, roomID, level, s.now().UTC())
	if err != nil {
		return 0, err
	}
	return sample.ID, nil
}
