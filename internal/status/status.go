package status

import "time"

// Label classifies a room's derived status.
type Label string

const (
	// Booked means a timetable entry covers the current day/slot,
	// regardless of the measured occupancy level.
	Booked Label = "Booked"
	// FreeButOccupied means no booking, but the latest sample is above
	// the occupancy threshold.
	FreeButOccupied Label = "FreeButOccupied"
	// FreeAndEmpty means no booking and at most threshold occupancy.
	FreeAndEmpty Label = "FreeAndEmpty"
)

// OccupancyThreshold is the level above which an unbooked room counts as
// occupied. Strictly-greater-than semantics: level 30 is still empty.
const OccupancyThreshold = 30

// NumSlots is the number of intra-day time buckets.
const NumSlots = 10

// DayNames are the fixed day tokens, ISO order (Monday first).
var DayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// DaySlot maps an instant to its (day, slot) key on the fixed 7x10 grid.
// The slot is hour-of-day mod 10, a coarse bucketing that is not aligned
// to class-period lengths.
func DaySlot(now time.Time) (string, int) {
	now = now.UTC()
	day := DayNames[(int(now.Weekday())+6)%7]
	slot := now.Hour() % NumSlots
	return day, slot
}

// Derive computes the status label from a booking flag and the latest
// occupancy level. Total: absent data is expressed as (false, 0).
func Derive(booked bool, level int) Label {
	if booked {
		return Booked
	}
	if level > OccupancyThreshold {
		return FreeButOccupied
	}
	return FreeAndEmpty
}
