package domain

import "time"

// Room is a physical counting location scoped to an organization. This
// workflow reads rooms; location management owns their lifecycle.
type Room struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	OrgID        int64     `json:"organization_id" gorm:"column:org_id;not null;index:ux_rooms_org_name,priority:1"`
	Name         string    `json:"name" gorm:"type:text;not null;index:ux_rooms_org_name,priority:2"`
	DisplayOrder int       `json:"display_order" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Room) TableName() string { return "rooms" }
