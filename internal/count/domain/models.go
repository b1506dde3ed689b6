package domain

import "time"

// RoomCount is the persisted fact "as of UpdatedAt, this room held Quantity
// of this item." At most one row exists per (room, item); a quantity of zero
// is never persisted, so absence of a row means zero on read. UpdatedAt is
// assigned by the persistence layer on write, never by the client.
type RoomCount struct {
	RoomID    int64     `json:"room_id" gorm:"primaryKey;autoIncrement:false"`
	ItemID    int64     `json:"item_id" gorm:"primaryKey;autoIncrement:false"`
	OrgID     int64     `json:"organization_id" gorm:"column:org_id;not null"`
	Quantity  float64   `json:"quantity" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (RoomCount) TableName() string { return "room_counts" }
