package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stocktake/internal/orgcontext"
	"github.com/smallbiznis/stocktake/internal/room/domain"
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
		log:  p.Log.Named("room.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	rooms, err := s.repo.FindAll(ctx, s.db, int64(orgID))
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(rooms))
	for _, room := range rooms {
		resp = append(resp, toResponse(&room))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	roomID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	room, err := s.repo.FindByID(ctx, s.db, int64(orgID), roomID.Int64())
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(room)
	return &resp, nil
}

func toResponse(room *domain.Room) domain.Response {
	return domain.Response{
		ID:             snowflake.ID(room.ID).String(),
		OrganizationID: snowflake.ID(room.OrgID).String(),
		Name:           room.Name,
		DisplayOrder:   room.DisplayOrder,
		CreatedAt:      room.CreatedAt,
		UpdatedAt:      room.UpdatedAt,
	}
}
