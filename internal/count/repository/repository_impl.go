package repository

import (
	"context"

	"github.com/smallbiznis/stocktake/internal/count/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByRoom(ctx context.Context, db *gorm.DB, orgID, roomID int64) ([]domain.RoomCount, error) {
	var rows []domain.RoomCount
	err := db.WithContext(ctx).Raw(
		`SELECT room_id, item_id, org_id, quantity, updated_at
		 FROM room_counts WHERE org_id = ? AND room_id = ?`,
		orgID,
		roomID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) ReplaceForRoom(ctx context.Context, tx *gorm.DB, orgID, roomID int64, rows []domain.RoomCount) error {
	if err := tx.WithContext(ctx).Exec(
		`DELETE FROM room_counts WHERE org_id = ? AND room_id = ?`,
		orgID,
		roomID,
	).Error; err != nil {
		return err
	}

	for _, row := range rows {
		// updated_at is assigned here, by the store, not by the client.
		if err := tx.WithContext(ctx).Exec(
			`INSERT INTO room_counts (room_id, item_id, org_id, quantity, updated_at)
			 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)`,
			roomID,
			row.ItemID,
			orgID,
			row.Quantity,
		).Error; err != nil {
			return err
		}
	}
	return nil
}
