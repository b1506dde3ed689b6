package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	List(ctx context.Context) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	// AggregateStock reads the trigger-maintained cross-room total for an
	// item. It never computes the sum itself.
	AggregateStock(ctx context.Context, id string) (float64, error)
}

type Response struct {
	ID                string         `json:"id"`
	OrganizationID    string         `json:"organization_id"`
	CategoryID        string         `json:"category_id"`
	CategoryName      string         `json:"category_name"`
	BrandName         string         `json:"brand_name"`
	SizeLabel         *string        `json:"size_label,omitempty"`
	Barcode           *string        `json:"barcode,omitempty"`
	UnitPrice         float64        `json:"unit_price"`
	LowStockThreshold float64        `json:"low_stock_threshold"`
	ParLevel          float64        `json:"par_level"`
	StockOnHand       float64        `json:"stock_on_hand"`
	LowStock          bool           `json:"low_stock"`
	Metadata          map[string]any `json:"metadata,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)
