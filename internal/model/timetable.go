package model

// TimetableEntry represents one scheduled booking of a room.
// Duplicate (room, day, slot) rows are tolerated; status derivation
// only checks for existence.
type TimetableEntry struct {
	ID     int64  `gorm:"primaryKey" json:"-"`
	RoomID string `gorm:"index;size:64;not null" json:"room_id"`
	Day    string `gorm:"index;size:8;not null" json:"day"` // Mon..Sun
	Slot   int    `gorm:"not null" json:"slot"`             // 0..9
	Course string `gorm:"size:128;default:-" json:"course"`
}
