package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Item is a trackable catalog product. StockOnHand is the cross-room
// aggregate maintained by database triggers; this workflow only reads it.
type Item struct {
	ID                int64             `json:"id" gorm:"primaryKey"`
	OrgID             int64             `json:"organization_id" gorm:"column:org_id;not null"`
	CategoryID        int64             `json:"category_id" gorm:"not null"`
	BrandName         string            `json:"brand_name" gorm:"type:text;not null"`
	SizeLabel         *string           `json:"size_label,omitempty" gorm:"type:text"`
	Barcode           *string           `json:"barcode,omitempty" gorm:"type:text"`
	UnitPrice         float64           `json:"unit_price" gorm:"not null;default:0"`
	LowStockThreshold float64           `json:"low_stock_threshold" gorm:"not null;default:0"`
	ParLevel          float64           `json:"par_level" gorm:"not null;default:0"`
	StockOnHand       float64           `json:"stock_on_hand" gorm:"not null;default:0"`
	Metadata          datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt         time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Item) TableName() string { return "items" }

// Category groups items for display and search.
type Category struct {
	ID    int64  `json:"id" gorm:"primaryKey"`
	OrgID int64  `json:"organization_id" gorm:"column:org_id;not null"`
	Name  string `json:"name" gorm:"type:text;not null"`
}

func (Category) TableName() string { return "item_categories" }

// ItemWithCategory is the listing row: an item annotated with its category name.
type ItemWithCategory struct {
	Item
	CategoryName string `json:"category_name" gorm:"column:category_name"`
}
