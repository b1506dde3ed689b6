package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stocktake/internal/count/domain"
	"github.com/smallbiznis/stocktake/internal/count/liveevents"
	countrepository "github.com/smallbiznis/stocktake/internal/count/repository"
	"github.com/smallbiznis/stocktake/internal/orgcontext"
	roomrepository "github.com/smallbiznis/stocktake/internal/room/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestCommitDropsZeroQuantities(t *testing.T) {
	node := mustNode(t)
	orgID := node.Generate()
	roomID := node.Generate()
	itemA := node.Generate()
	itemB := node.Generate()
	itemC := node.Generate()

	svc, db, _ := setupCountService(t, orgID, roomID)
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	if _, err := svc.Hydrate(ctx, roomID.String()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	setText(t, svc, ctx, roomID, itemA, "2")
	setText(t, svc, ctx, roomID, itemB, "0")
	setText(t, svc, ctx, roomID, itemC, "3")

	result, err := svc.Commit(ctx, roomID.String())
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if result.RowsPersisted != 2 {
		t.Fatalf("expected 2 rows persisted, got %d", result.RowsPersisted)
	}

	persisted := roomCounts(t, db, orgID, roomID)
	if len(persisted) != 2 {
		t.Fatalf("expected 2 stored rows, got %d", len(persisted))
	}
	if persisted[int64(itemA)] != 2 || persisted[int64(itemC)] != 3 {
		t.Fatalf("unexpected stored quantities: %v", persisted)
	}
	if _, ok := persisted[int64(itemB)]; ok {
		t.Fatalf("zero-quantity item must not be stored")
	}
}

func TestCommitReplacesPriorRows(t *testing.T) {
	node := mustNode(t)
	orgID := node.Generate()
	roomID := node.Generate()
	itemA := node.Generate()
	itemB := node.Generate()
	itemC := node.Generate()

	svc, db, _ := setupCountService(t, orgID, roomID)
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	seedCount(t, db, orgID, roomID, itemA, 1)
	seedCount(t, db, orgID, roomID, itemB, 4)

	view, err := svc.Session(ctx, roomID.String())
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if view.ItemsTouched != 2 {
		t.Fatalf("expected hydrated session with 2 items, got %d", view.ItemsTouched)
	}

	setText(t, svc, ctx, roomID, itemB, "0")
	setText(t, svc, ctx, roomID, itemC, "7")

	if _, err := svc.Commit(ctx, roomID.String()); err != nil {
		t.Fatalf("commit: %v", err)
	}

	persisted := roomCounts(t, db, orgID, roomID)
	if len(persisted) != 2 {
		t.Fatalf("expected replaced set of 2 rows, got %d", len(persisted))
	}
	if persisted[int64(itemA)] != 1 || persisted[int64(itemC)] != 7 {
		t.Fatalf("unexpected stored quantities after replace: %v", persisted)
	}
}

func TestAdjustCommitRecountFlow(t *testing.T) {
	node := mustNode(t)
	orgID := node.Generate()
	roomID := node.Generate()
	itemA := node.Generate()
	itemB := node.Generate()

	svc, db, _ := setupCountService(t, orgID, roomID)
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	seedCount(t, db, orgID, roomID, itemA, 5)

	if _, err := svc.Hydrate(ctx, roomID.String()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	adjust(t, svc, ctx, roomID, itemB, 1)
	adjust(t, svc, ctx, roomID, itemB, 1)
	adjust(t, svc, ctx, roomID, itemA, -1)

	result, err := svc.Commit(ctx, roomID.String())
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	persisted := roomCounts(t, db, orgID, roomID)
	if persisted[int64(itemA)] != 4 || persisted[int64(itemB)] != 2 {
		t.Fatalf("unexpected quantities after commit: %v", persisted)
	}

	// The returned session is re-hydrated from storage, so every entry
	// carries a store-assigned last-counted timestamp.
	if result.Session == nil || len(result.Session.Entries) != 2 {
		t.Fatalf("expected refreshed session with 2 entries")
	}
	for _, entry := range result.Session.Entries {
		if entry.LastCountedAt == nil {
			t.Fatalf("expected last_counted_at on %s", entry.ItemID)
		}
	}
}

func TestCommitFailureKeepsPendingLedger(t *testing.T) {
	node := mustNode(t)
	orgID := node.Generate()
	roomID := node.Generate()
	itemA := node.Generate()

	svc, db, _ := setupCountService(t, orgID, roomID)
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	if _, err := svc.Hydrate(ctx, roomID.String()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	setText(t, svc, ctx, roomID, itemA, "6")

	if err := db.Exec(`DROP TABLE room_counts`).Error; err != nil {
		t.Fatalf("drop table: %v", err)
	}

	_, err := svc.Commit(ctx, roomID.String())
	if err != domain.ErrCommitFailed {
		t.Fatalf("expected ErrCommitFailed, got %v", err)
	}

	// The in-memory ledger survives the failure so the operator can retry.
	view, err := svc.Session(ctx, roomID.String())
	if err != nil {
		t.Fatalf("session after failed commit: %v", err)
	}
	if len(view.Entries) != 1 || view.Entries[0].Quantity != 6 {
		t.Fatalf("expected pending ledger to survive, got %+v", view.Entries)
	}
}

func TestHydrateFailurePreservesSession(t *testing.T) {
	node := mustNode(t)
	orgID := node.Generate()
	roomID := node.Generate()
	itemA := node.Generate()

	svc, db, _ := setupCountService(t, orgID, roomID)
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	if _, err := svc.Hydrate(ctx, roomID.String()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	setText(t, svc, ctx, roomID, itemA, "9")

	if err := db.Exec(`DROP TABLE room_counts`).Error; err != nil {
		t.Fatalf("drop table: %v", err)
	}

	if _, err := svc.Hydrate(ctx, roomID.String()); err == nil {
		t.Fatalf("expected hydrate to fail")
	}

	view, err := svc.Session(ctx, roomID.String())
	if err != nil {
		t.Fatalf("session after failed hydrate: %v", err)
	}
	if len(view.Entries) != 1 || view.Entries[0].Quantity != 9 {
		t.Fatalf("expected prior session to survive failed hydrate, got %+v", view.Entries)
	}
}

func TestDiscardDropsPendingLedger(t *testing.T) {
	node := mustNode(t)
	orgID := node.Generate()
	roomID := node.Generate()
	itemA := node.Generate()

	svc, db, _ := setupCountService(t, orgID, roomID)
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	seedCount(t, db, orgID, roomID, itemA, 5)

	if _, err := svc.Hydrate(ctx, roomID.String()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	setText(t, svc, ctx, roomID, itemA, "9")

	if err := svc.Discard(ctx, roomID.String()); err != nil {
		t.Fatalf("discard: %v", err)
	}
	// Discard with no active session is a no-op.
	if err := svc.Discard(ctx, roomID.String()); err != nil {
		t.Fatalf("repeat discard: %v", err)
	}

	// Uncommitted edits are gone; the next read hydrates from storage.
	view, err := svc.Session(ctx, roomID.String())
	if err != nil {
		t.Fatalf("session after discard: %v", err)
	}
	if len(view.Entries) != 1 || view.Entries[0].Quantity != 5 {
		t.Fatalf("expected stored quantity after discard, got %+v", view.Entries)
	}
}

func TestAdjustValidation(t *testing.T) {
	node := mustNode(t)
	orgID := node.Generate()
	roomID := node.Generate()
	itemA := node.Generate()

	svc, _, _ := setupCountService(t, orgID, roomID)
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	if _, err := svc.Adjust(ctx, domain.AdjustRequest{
		RoomID: roomID.String(),
		ItemID: itemA.String(),
		Delta:  2,
	}); err != domain.ErrInvalidDelta {
		t.Fatalf("expected ErrInvalidDelta, got %v", err)
	}

	// No hydrate happened yet, so a stepper press has nothing to mutate.
	if _, err := svc.Adjust(ctx, domain.AdjustRequest{
		RoomID: roomID.String(),
		ItemID: itemA.String(),
		Delta:  1,
	}); err != domain.ErrNoActiveSession {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestSessionUnknownRoom(t *testing.T) {
	node := mustNode(t)
	orgID := node.Generate()
	roomID := node.Generate()

	svc, _, _ := setupCountService(t, orgID, roomID)
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	other := node.Generate()
	if _, err := svc.Session(ctx, other.String()); err != domain.ErrRoomNotFound {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}

	if _, err := svc.Session(context.Background(), roomID.String()); err != domain.ErrInvalidOrganization {
		t.Fatalf("expected ErrInvalidOrganization, got %v", err)
	}
}

func TestCommitPublishesRecommitEvent(t *testing.T) {
	node := mustNode(t)
	orgID := node.Generate()
	roomID := node.Generate()
	itemA := node.Generate()

	svc, _, hub := setupCountService(t, orgID, roomID)
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	sub, backlog, err := hub.Subscribe(orgID.String())
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()
	if len(backlog) != 0 {
		t.Fatalf("expected empty backlog, got %d", len(backlog))
	}

	if _, err := svc.Hydrate(ctx, roomID.String()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	setText(t, svc, ctx, roomID, itemA, "3")

	if _, err := svc.Commit(ctx, roomID.String()); err != nil {
		t.Fatalf("commit: %v", err)
	}

	select {
	case event := <-sub.Events():
		if event.RoomID != roomID.String() {
			t.Fatalf("expected event for room %s, got %s", roomID.String(), event.RoomID)
		}
		if event.RowsPersisted != 1 || len(event.ItemIDs) != 1 || event.ItemIDs[0] != itemA.String() {
			t.Fatalf("unexpected event payload: %+v", event)
		}
	default:
		t.Fatalf("expected recommit event")
	}
}

func setupCountService(t *testing.T, orgID, roomID snowflake.ID) (domain.Service, *gorm.DB, *liveevents.Hub) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	_ = db.Exec("PRAGMA busy_timeout = 5000").Error

	prepareCountSchema(t, db)
	seedRoom(t, db, orgID, roomID)

	hub := liveevents.NewHub()
	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		Repo:     countrepository.Provide(),
		RoomRepo: roomrepository.Provide(),
		Hub:      hub,
	})
	return svc, db, hub
}

func prepareCountSchema(t *testing.T, db *gorm.DB) {
	t.Helper()
	if err := db.Exec(`CREATE TABLE rooms (
		id BIGINT PRIMARY KEY,
		org_id BIGINT NOT NULL,
		name TEXT NOT NULL,
		display_order INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`).Error; err != nil {
		t.Fatalf("create rooms: %v", err)
	}
	if err := db.Exec(`CREATE TABLE room_counts (
		room_id BIGINT NOT NULL,
		item_id BIGINT NOT NULL,
		org_id BIGINT NOT NULL,
		quantity DOUBLE PRECISION NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (room_id, item_id)
	)`).Error; err != nil {
		t.Fatalf("create room_counts: %v", err)
	}
}

func seedRoom(t *testing.T, db *gorm.DB, orgID, roomID snowflake.ID) {
	t.Helper()
	if err := db.Exec(
		`INSERT INTO rooms (id, org_id, name) VALUES (?, ?, ?)`,
		roomID,
		orgID,
		"Main Bar",
	).Error; err != nil {
		t.Fatalf("seed room: %v", err)
	}
}

func seedCount(t *testing.T, db *gorm.DB, orgID, roomID, itemID snowflake.ID, qty float64) {
	t.Helper()
	if err := db.Exec(
		`INSERT INTO room_counts (room_id, item_id, org_id, quantity, updated_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		roomID,
		itemID,
		orgID,
		qty,
	).Error; err != nil {
		t.Fatalf("seed count: %v", err)
	}
}

func roomCounts(t *testing.T, db *gorm.DB, orgID, roomID snowflake.ID) map[int64]float64 {
	t.Helper()
	var rows []struct {
		ItemID   int64
		Quantity float64
	}
	if err := db.Raw(
		`SELECT item_id, quantity FROM room_counts WHERE org_id = ? AND room_id = ?`,
		orgID,
		roomID,
	).Scan(&rows).Error; err != nil {
		t.Fatalf("read counts: %v", err)
	}
	out := make(map[int64]float64, len(rows))
	for _, row := range rows {
		out[row.ItemID] = row.Quantity
	}
	return out
}

func setText(t *testing.T, svc domain.Service, ctx context.Context, roomID, itemID snowflake.ID, text string) {
	t.Helper()
	if _, err := svc.SetText(ctx, domain.SetTextRequest{
		RoomID: roomID.String(),
		ItemID: itemID.String(),
		Text:   text,
	}); err != nil {
		t.Fatalf("set text: %v", err)
	}
}

func adjust(t *testing.T, svc domain.Service, ctx context.Context, roomID, itemID snowflake.ID, delta int) {
	t.Helper()
	if _, err := svc.Adjust(ctx, domain.AdjustRequest{
		RoomID: roomID.String(),
		ItemID: itemID.String(),
		Delta:  delta,
	}); err != nil {
		t.Fatalf("adjust: %v", err)
	}
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return node
}
