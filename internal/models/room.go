package models

import (
	"time"

	"github.com/lib/pq"
)

// RoomStatus is the availability state of a room.
type RoomStatus string

const (
	RoomStatusAvailable   RoomStatus = "available"
	RoomStatusOccupied    RoomStatus = "occupied"
	RoomStatusMaintenance RoomStatus = "maintenance"
)

// SeatColorPalette lists every seat color a room may offer.
var SeatColorPalette = []string{"Red", "Green", "Blue", "Yellow", "Orange", "Purple"}

// Room is an exam venue partitioned into seat colors.
type Room struct {
	ID             string         `db:"id" json:"id" yaml:"id"`
	Name           string         `db:"name" json:"name" yaml:"name" validate:"required"`
	Building       string         `db:"building" json:"building" yaml:"building"`
	Capacity       int            `db:"capacity" json:"capacity" yaml:"capacity" validate:"gt=0"`
	Status         RoomStatus     `db:"status" json:"status" yaml:"status" validate:"omitempty,oneof=available occupied maintenance"`
	SeatColors     pq.StringArray `db:"seat_colors" json:"seat_colors" yaml:"seat_colors" validate:"dive,oneof=Red Green Blue Yellow Orange Purple"`
	UsedSeatColors pq.StringArray `db:"used_seat_colors" json:"used_seat_colors" yaml:"used_seat_colors"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at" yaml:"-"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at" yaml:"-"`
}

// IsAvailable reports whether the room can host exams.
func (r Room) IsAvailable() bool {
	return r.Status == RoomStatusAvailable
}

// UnclaimedSeatColors returns the room's colors, in room order, not present in claimed.
func (r Room) UnclaimedSeatColors(claimed map[string]bool) []string {
	free := make([]string, 0, len(r.SeatColors))
	for _, color := range r.SeatColors {
		if !claimed[color] {
			free = append(free, color)
		}
	}
	return free
}
