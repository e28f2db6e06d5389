package model

import "time"

// OccupancySample is one append-only reading of how busy a room is.
// The latest sample per room (max timestamp) drives status derivation.
type OccupancySample struct {
	ID        int64     `gorm:"primaryKey" json:"-"`
	RoomID    string    `gorm:"index;size:64;not null" json:"room_id"`
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
	Level     int       `gorm:"column:occupancy_level;not null" json:"occupancy_level"`
}
