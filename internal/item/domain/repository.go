package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindAll(ctx context.Context, db *gorm.DB, orgID int64) ([]ItemWithCategory, error)
	FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*ItemWithCategory, error)
}
