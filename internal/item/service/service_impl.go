package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stocktake/internal/item/domain"
	"github.com/smallbiznis/stocktake/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("item.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	items, err := s.repo.FindAll(ctx, s.db, int64(orgID))
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, toResponse(&item))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) AggregateStock(ctx context.Context, id string) (float64, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return 0, err
	}
	return item.StockOnHand, nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.ItemWithCategory, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	itemID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, int64(orgID), itemID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func toResponse(item *domain.ItemWithCategory) domain.Response {
	resp := domain.Response{
		ID:                snowflake.ID(item.ID).String(),
		OrganizationID:    snowflake.ID(item.OrgID).String(),
		CategoryID:        snowflake.ID(item.CategoryID).String(),
		CategoryName:      item.CategoryName,
		BrandName:         item.BrandName,
		SizeLabel:         item.SizeLabel,
		Barcode:           item.Barcode,
		UnitPrice:         item.UnitPrice,
		LowStockThreshold: item.LowStockThreshold,
		ParLevel:          item.ParLevel,
		StockOnHand:       item.StockOnHand,
		LowStock:          item.LowStockThreshold > 0 && item.StockOnHand <= item.LowStockThreshold,
		CreatedAt:         item.CreatedAt,
		UpdatedAt:         item.UpdatedAt,
	}
	if len(item.Metadata) > 0 {
		resp.Metadata = map[string]any(item.Metadata)
	}
	return resp
}
