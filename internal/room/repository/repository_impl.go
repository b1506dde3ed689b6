package repository

import (
	"context"

	"github.com/smallbiznis/stocktake/internal/room/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB, orgID int64) ([]domain.Room, error) {
	var rooms []domain.Room
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, name, display_order, created_at, updated_at
		 FROM rooms WHERE org_id = ? ORDER BY display_order ASC, name ASC`,
		orgID,
	).Scan(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*domain.Room, error) {
	var room domain.Room
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, name, display_order, created_at, updated_at
		 FROM rooms WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&room).Error
	if err != nil {
		return nil, err
	}
	if room.ID == 0 {
		return nil, nil
	}
	return &room, nil
}
