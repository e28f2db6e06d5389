package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"

	"studymap-backend/internal/model"
	"studymap-backend/internal/store"
)

// Load reads room and timetable CSV files and replaces all stored data
// with their contents. Existing occupancy samples are cleared too, since
// they reference the old room set.
func Load(ctx context.Context, s store.Store, roomsPath, timetablePath string) error {
	rooms, err := readRooms(roomsPath)
	if err != nil {
		return fmt.Errorf("failed to read rooms CSV: %w", err)
	}
	entries, err := readTimetable(timetablePath)
	if err != nil {
		return fmt.Errorf("failed to read timetable CSV: %w", err)
	}

	if err := s.ReplaceAll(ctx, rooms, entries); err != nil {
		return err
	}
	log.Printf("Loaded %d rooms and %d timetable entries", len(rooms), len(entries))
	return nil
}

func readRooms(path string) ([]model.Room, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	var rooms []model.Room
	for _, row := range rows {
		rooms = append(rooms, model.Room{
			RoomID:    row["room_id"],
			Block:     row["block"],
			Capacity:  atoiOr(row["capacity"], 0),
			Type:      stringOr(row["type"], model.RoomTypeLecture),
			AC:        stringOr(row["AC"], "No"),
			Lat:       atofOr(row["lat"], 0),
			Lon:       atofOr(row["lon"], 0),
			Amenities: row["amenities"],
		})
	}
	return rooms, nil
}

func readTimetable(path string) ([]model.TimetableEntry, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	var entries []model.TimetableEntry
	for _, row := range rows {
		entries = append(entries, model.TimetableEntry{
			RoomID: row["room_id"],
			Day:    row["day"],
			Slot:   atoiOr(row["slot"], 0),
			Course: stringOr(row["course"], "-"),
		})
	}
	return entries, nil
}

// readCSV parses a headered CSV file into one map per data row.
func readCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	var out []map[string]string
	for _, row := range rows[1:] {
		m := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				m[col] = row[i]
			}
		}
		out = append(out, m)
	}
	return out, nil
}

func atoiOr(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func atofOr(s string, def float64) float64 {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return def
}

func stringOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
