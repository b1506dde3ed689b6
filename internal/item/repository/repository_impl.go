package repository

import (
	"context"

	"github.com/smallbiznis/stocktake/internal/item/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const selectColumns = `items.id, items.org_id, items.category_id, items.brand_name,
	items.size_label, items.barcode, items.unit_price, items.low_stock_threshold,
	items.par_level, items.stock_on_hand, items.metadata, items.created_at,
	items.updated_at, item_categories.name AS category_name`

func (r *repo) FindAll(ctx context.Context, db *gorm.DB, orgID int64) ([]domain.ItemWithCategory, error) {
	var items []domain.ItemWithCategory
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+`
		 FROM items
		 JOIN item_categories ON item_categories.id = items.category_id
		 WHERE items.org_id = ?
		 ORDER BY items.brand_name ASC`,
		orgID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*domain.ItemWithCategory, error) {
	var item domain.ItemWithCategory
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+`
		 FROM items
		 JOIN item_categories ON item_categories.id = items.category_id
		 WHERE items.org_id = ? AND items.id = ?`,
		orgID,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}
