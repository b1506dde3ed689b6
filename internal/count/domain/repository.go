package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindByRoom(ctx context.Context, db *gorm.DB, orgID, roomID int64) ([]RoomCount, error)
	// ReplaceForRoom deletes every count row for the room and inserts the
	// given rows. The caller supplies the transaction handle; delete and
	// insert must never be visible as separate states.
	ReplaceForRoom(ctx context.Context, tx *gorm.DB, orgID, roomID int64, rows []RoomCount) error
}
