package model

import "time"

// Room represents a bookable campus room.
type Room struct {
	ID        int64     `gorm:"primaryKey" json:"-"`
	RoomID    string    `gorm:"uniqueIndex;size:64;not null" json:"room_id"`
	Block     string    `gorm:"index;size:64" json:"block"`
	Capacity  int       `json:"capacity"`
	Type      string    `gorm:"size:32;default:lecture" json:"type"`
	AC        string    `gorm:"size:8;default:No" json:"AC"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Amenities string    `gorm:"size:512" json:"amenities"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// RoomTypeLecture is the default room type; coverage analytics only
// count rooms of this type.
const RoomTypeLecture = "lecture"
