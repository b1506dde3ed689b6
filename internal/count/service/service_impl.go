package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stocktake/internal/count/domain"
	"github.com/smallbiznis/stocktake/internal/count/liveevents"
	"github.com/smallbiznis/stocktake/internal/count/session"
	obsmetrics "github.com/smallbiznis/stocktake/internal/observability/metrics"
	"github.com/smallbiznis/stocktake/internal/orgcontext"
	roomdomain "github.com/smallbiznis/stocktake/internal/room/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Repo     domain.Repository
	RoomRepo roomdomain.Repository
	Hub      *liveevents.Hub     `optional:"true"`
	Metrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	roomRepo roomdomain.Repository
	hub      *liveevents.Hub
	metrics  *obsmetrics.Metrics
	sessions *session.Manager
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("count.service"),
		repo:     p.Repo,
		roomRepo: p.RoomRepo,
		hub:      p.Hub,
		metrics:  p.Metrics,
		sessions: session.NewManager(),
	}
}

func (s *Service) Session(ctx context.Context, roomID string) (*domain.SessionView, error) {
	orgID, room, err := s.scope(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if sess, ok := s.sessions.Get(orgID, room); ok {
		return buildView(sess), nil
	}
	return s.hydrate(ctx, orgID, room)
}

func (s *Service) Hydrate(ctx context.Context, roomID string) (*domain.SessionView, error) {
	orgID, room, err := s.scope(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, orgID, room)
}

// hydrate loads the room's rows and only then swaps the session in, so a
// failed load leaves any previously hydrated session untouched.
func (s *Service) hydrate(ctx context.Context, orgID, roomID int64) (*domain.SessionView, error) {
	rows, err := s.repo.FindByRoom(ctx, s.db, orgID, roomID)
	if err != nil {
		return nil, err
	}

	sess := session.New(orgID, roomID, toSessionRows(rows), time.Now().UTC())
	s.sessions.Put(sess)
	return buildView(sess), nil
}

func (s *Service) Adjust(ctx context.Context, req domain.AdjustRequest) (*domain.EntryView, error) {
	if req.Delta != 1 && req.Delta != -1 {
		return nil, domain.ErrInvalidDelta
	}

	sess, itemID, err := s.activeSession(ctx, req.RoomID, req.ItemID)
	if err != nil {
		return nil, err
	}

	sess.Adjust(itemID, float64(req.Delta))
	return entryView(sess, itemID), nil
}

func (s *Service) SetText(ctx context.Context, req domain.SetTextRequest) (*domain.EntryView, error) {
	sess, itemID, err := s.activeSession(ctx, req.RoomID, req.ItemID)
	if err != nil {
		return nil, err
	}

	sess.SetText(itemID, req.Text)
	return entryView(sess, itemID), nil
}

// Discard throws away the room's in-memory ledger. Idempotent: discarding a
// room with no active session is a no-op.
func (s *Service) Discard(ctx context.Context, roomID string) error {
	orgID, room, err := s.scope(ctx, roomID)
	if err != nil {
		return err
	}

	s.sessions.Drop(orgID, room)
	s.log.Info("session discarded",
		zap.String("room_id", snowflake.ID(room).String()),
	)
	return nil
}

func (s *Service) Commit(ctx context.Context, roomID string) (*domain.CommitResult, error) {
	orgID, room, err := s.scope(ctx, roomID)
	if err != nil {
		return nil, err
	}

	sess, ok := s.sessions.Get(orgID, room)
	if !ok {
		return nil, domain.ErrNoActiveSession
	}

	toPersist := sess.PersistableRows()
	rows := make([]domain.RoomCount, 0, len(toPersist))
	for _, row := range toPersist {
		rows = append(rows, domain.RoomCount{
			RoomID:   room,
			ItemID:   row.ItemID,
			OrgID:    orgID,
			Quantity: row.Quantity,
		})
	}

	// Full replace, no merge: whichever commit physically completes last
	// wins the whole room. Delete and insert share one transaction so a
	// failed insert can never surface as "room counted empty".
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.ReplaceForRoom(ctx, tx, orgID, room, rows)
	})
	if err != nil {
		s.log.Error("room commit failed",
			zap.String("room_id", snowflake.ID(room).String()),
			zap.Int("rows", len(rows)),
			zap.Error(err),
		)
		s.metrics.RecordCommitFailure(ctx, snowflake.ID(orgID).String(), "replace_failed")
		return nil, domain.ErrCommitFailed
	}

	// The in-memory ledger is not trusted as final: reload so
	// last-counted timestamps carry the store-assigned update times.
	view, err := s.hydrate(ctx, orgID, room)
	if err != nil {
		// The commit itself succeeded; surface the stale view rather
		// than failing the operation.
		s.log.Warn("post-commit refresh failed",
			zap.String("room_id", snowflake.ID(room).String()),
			zap.Error(err),
		)
		view = buildView(sess)
	}

	committedAt := time.Now().UTC()
	s.metrics.RecordCommit(ctx, snowflake.ID(orgID).String(), len(rows))
	s.publishRecommit(orgID, room, rows, committedAt)

	return &domain.CommitResult{
		RoomID:        snowflake.ID(room).String(),
		RowsPersisted: len(rows),
		CommittedAt:   committedAt,
		Session:       view,
	}, nil
}

func (s *Service) publishRecommit(orgID, roomID int64, rows []domain.RoomCount, committedAt time.Time) {
	if s.hub == nil {
		return
	}
	itemIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		itemIDs = append(itemIDs, snowflake.ID(row.ItemID).String())
	}
	sort.Strings(itemIDs)
	s.hub.Publish(snowflake.ID(orgID).String(), liveevents.RoomRecommitted{
		RoomID:        snowflake.ID(roomID).String(),
		ItemIDs:       itemIDs,
		RowsPersisted: len(rows),
		CommittedAt:   committedAt.Format(time.RFC3339Nano),
	})
}

// scope validates the org context and the room, returning numeric IDs.
func (s *Service) scope(ctx context.Context, roomID string) (int64, int64, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return 0, 0, domain.ErrInvalidOrganization
	}

	parsed, err := snowflake.ParseString(strings.TrimSpace(roomID))
	if err != nil {
		return 0, 0, domain.ErrInvalidID
	}

	room, err := s.roomRepo.FindByID(ctx, s.db, int64(orgID), parsed.Int64())
	if err != nil {
		return 0, 0, err
	}
	if room == nil {
		return 0, 0, domain.ErrRoomNotFound
	}
	return int64(orgID), parsed.Int64(), nil
}

func (s *Service) activeSession(ctx context.Context, roomID, itemID string) (*session.Session, int64, error) {
	orgID, room, err := s.scope(ctx, roomID)
	if err != nil {
		return nil, 0, err
	}

	item, err := snowflake.ParseString(strings.TrimSpace(itemID))
	if err != nil {
		return nil, 0, domain.ErrInvalidID
	}

	sess, ok := s.sessions.Get(orgID, room)
	if !ok {
		return nil, 0, domain.ErrNoActiveSession
	}
	return sess, item.Int64(), nil
}

func toSessionRows(rows []domain.RoomCount) []session.Row {
	out := make([]session.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, session.Row{
			ItemID:    row.ItemID,
			Quantity:  row.Quantity,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return out
}

func entryView(sess *session.Session, itemID int64) *domain.EntryView {
	return &domain.EntryView{
		ItemID:   snowflake.ID(itemID).String(),
		Quantity: sess.Get(itemID),
		Display:  sess.Display(itemID),
	}
}

func buildView(sess *session.Session) *domain.SessionView {
	entries := sess.Entries()
	views := make([]domain.EntryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, domain.EntryView{
			ItemID:        snowflake.ID(entry.ItemID).String(),
			Quantity:      entry.Quantity,
			Display:       entry.Display,
			LastCountedAt: entry.LastCountedAt,
		})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ItemID < views[j].ItemID })

	total := sess.Total()
	return &domain.SessionView{
		RoomID:       snowflake.ID(sess.RoomID()).String(),
		Entries:      views,
		TotalUnits:   total,
		TotalDisplay: session.FormatQuantity(total),
		ItemsTouched: len(views),
		HydratedAt:   sess.HydratedAt(),
	}
}
