package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/stocktake/internal/barcode"
	"github.com/smallbiznis/stocktake/internal/clock"
	"github.com/smallbiznis/stocktake/internal/config"
	"github.com/smallbiznis/stocktake/internal/count/liveevents"
	countrepository "github.com/smallbiznis/stocktake/internal/count/repository"
	countservice "github.com/smallbiznis/stocktake/internal/count/service"
	itemrepository "github.com/smallbiznis/stocktake/internal/item/repository"
	itemservice "github.com/smallbiznis/stocktake/internal/item/service"
	roomrepository "github.com/smallbiznis/stocktake/internal/room/repository"
	roomservice "github.com/smallbiznis/stocktake/internal/room/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type serverFixture struct {
	engine *gin.Engine
	db     *gorm.DB
	clock  *clock.FakeClock
	node   *snowflake.Node
	orgID  snowflake.ID
	roomID snowflake.ID
}

func TestListRoomsEndpoint(t *testing.T) {
	f := setupServer(t)

	res := f.request(t, http.MethodGet, "/api/rooms", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var body struct {
		Data []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"data"`
	}
	mustDecode(t, res, &body)
	if len(body.Data) != 1 || body.Data[0].Name != "Main Bar" {
		t.Fatalf("unexpected rooms payload: %s", res.Body.String())
	}
}

func TestUnauthorizedWithoutOrg(t *testing.T) {
	f := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	req.Header.Set(HeaderOrg, "not-a-snowflake")
	res := httptest.NewRecorder()
	f.engine.ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestCountFlowOverHTTP(t *testing.T) {
	f := setupServer(t)
	itemA := f.seedItem(t, "Ketel One", "0835229000838")
	itemB := f.seedItem(t, "Campari", "")

	sessionPath := fmt.Sprintf("/api/rooms/%s/session", f.roomID.String())

	res := f.request(t, http.MethodPost, sessionPath+"/hydrate", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("hydrate: expected 200, got %d: %s", res.Code, res.Body.String())
	}

	res = f.request(t, http.MethodPost, sessionPath+"/adjust", map[string]any{
		"item_id": itemA.String(),
		"delta":   1,
	})
	if res.Code != http.StatusOK {
		t.Fatalf("adjust: expected 200, got %d: %s", res.Code, res.Body.String())
	}

	res = f.request(t, http.MethodPut, sessionPath+"/text", map[string]any{
		"item_id": itemB.String(),
		"text":    "2.5",
	})
	if res.Code != http.StatusOK {
		t.Fatalf("set text: expected 200, got %d: %s", res.Code, res.Body.String())
	}

	res = f.request(t, http.MethodPost, sessionPath+"/commit", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("commit: expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var commit struct {
		RowsPersisted int `json:"rows_persisted"`
	}
	mustDecode(t, res, &commit)
	if commit.RowsPersisted != 2 {
		t.Fatalf("expected 2 rows persisted, got %d", commit.RowsPersisted)
	}
}

func TestAdjustWithoutSessionConflicts(t *testing.T) {
	f := setupServer(t)
	itemA := f.seedItem(t, "Ketel One", "")

	res := f.request(t, http.MethodPost,
		fmt.Sprintf("/api/rooms/%s/session/adjust", f.roomID.String()),
		map[string]any{"item_id": itemA.String(), "delta": 1},
	)
	if res.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", res.Code, res.Body.String())
	}
}

func TestAdjustRejectsLargeDelta(t *testing.T) {
	f := setupServer(t)
	itemA := f.seedItem(t, "Ketel One", "")

	f.request(t, http.MethodPost, fmt.Sprintf("/api/rooms/%s/session/hydrate", f.roomID.String()), nil)

	res := f.request(t, http.MethodPost,
		fmt.Sprintf("/api/rooms/%s/session/adjust", f.roomID.String()),
		map[string]any{"item_id": itemA.String(), "delta": 5},
	)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", res.Code, res.Body.String())
	}
}

func TestScanMatchSetsSpotlight(t *testing.T) {
	f := setupServer(t)
	itemA := f.seedItem(t, "Ketel One", "0835229000838")

	scanPath := fmt.Sprintf("/api/rooms/%s/scan", f.roomID.String())
	res := f.request(t, http.MethodPost, scanPath, map[string]any{"code": "0835229000838"})
	if res.Code != http.StatusOK {
		t.Fatalf("scan: expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var scan struct {
		Matched bool `json:"matched"`
		Item    struct {
			ID string `json:"id"`
		} `json:"item"`
	}
	mustDecode(t, res, &scan)
	if !scan.Matched || scan.Item.ID != itemA.String() {
		t.Fatalf("unexpected scan payload: %s", res.Body.String())
	}

	spotPath := fmt.Sprintf("/api/rooms/%s/session/spotlight", f.roomID.String())
	res = f.request(t, http.MethodGet, spotPath, nil)
	var spot struct {
		Active bool `json:"active"`
	}
	mustDecode(t, res, &spot)
	if !spot.Active {
		t.Fatalf("expected active spotlight")
	}

	f.clock.Advance(4 * time.Second)
	res = f.request(t, http.MethodGet, spotPath, nil)
	mustDecode(t, res, &spot)
	if spot.Active {
		t.Fatalf("expected spotlight to lapse")
	}
}

func TestScanMissIsOK(t *testing.T) {
	f := setupServer(t)
	f.seedItem(t, "Ketel One", "0835229000838")

	res := f.request(t, http.MethodPost,
		fmt.Sprintf("/api/rooms/%s/scan", f.roomID.String()),
		map[string]any{"code": "0000000000000"},
	)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var scan struct {
		Matched bool   `json:"matched"`
		Code    string `json:"code"`
	}
	mustDecode(t, res, &scan)
	if scan.Matched || scan.Code != "0000000000000" {
		t.Fatalf("unexpected miss payload: %s", res.Body.String())
	}
}

func (f *serverFixture) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderOrg, f.orgID.String())
	res := httptest.NewRecorder()
	f.engine.ServeHTTP(res, req)
	return res
}

func (f *serverFixture) seedItem(t *testing.T, brand, barcodeValue string) snowflake.ID {
	t.Helper()
	if err := f.db.Exec(
		`INSERT OR IGNORE INTO item_categories (id, org_id, name) VALUES (1, ?, 'Spirits')`,
		f.orgID,
	).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}

	id := f.node.Generate()
	var code *string
	if barcodeValue != "" {
		code = &barcodeValue
	}
	if err := f.db.Exec(
		`INSERT INTO items (id, org_id, category_id, brand_name, barcode)
		 VALUES (?, ?, 1, ?, ?)`,
		id,
		f.orgID,
		brand,
		code,
	).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return id
}

func mustDecode(t *testing.T, res *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(res.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", res.Body.String(), err)
	}
}

func setupServer(t *testing.T) *serverFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	orgID := node.Generate()
	roomID := node.Generate()

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

	prepareServerSchema(t, db)
	if err := db.Exec(
		`INSERT INTO rooms (id, org_id, name) VALUES (?, ?, 'Main Bar')`,
		roomID,
		orgID,
	).Error; err != nil {
		t.Fatalf("seed room: %v", err)
	}

	log := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))

	roomSvc := roomservice.New(roomservice.Params{DB: db, Log: log, Repo: roomrepository.Provide()})
	itemSvc := itemservice.New(itemservice.Params{DB: db, Log: log, Repo: itemrepository.Provide()})
	countSvc := countservice.New(countservice.Params{
		DB:       db,
		Log:      log,
		Repo:     countrepository.Provide(),
		RoomRepo: roomrepository.Provide(),
		Hub:      liveevents.NewHub(),
	})

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	srv := NewServer(ServerParams{
		Gin:       engine,
		Cfg:       config.Config{DefaultOrgID: int64(orgID)},
		DB:        db,
		RoomSvc:   roomSvc,
		ItemSvc:   itemSvc,
		CountSvc:  countSvc,
		Spotlight: barcode.NewTracker(clk, 3*time.Second),
	})
	srv.RegisterAPIRoutes()

	return &serverFixture{
		engine: engine,
		db:     db,
		clock:  clk,
		node:   node,
		orgID:  orgID,
		roomID: roomID,
	}
}

func prepareServerSchema(t *testing.T, db *gorm.DB) {
	t.Helper()
	statements := []string{
		`CREATE TABLE rooms (
			id BIGINT PRIMARY KEY,
			org_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			display_order INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE item_categories (
			id BIGINT PRIMARY KEY,
			org_id BIGINT NOT NULL,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE items (
			id BIGINT PRIMARY KEY,
			org_id BIGINT NOT NULL,
			category_id BIGINT NOT NULL,
			brand_name TEXT NOT NULL,
			size_label TEXT,
			barcode TEXT,
			unit_price DOUBLE PRECISION NOT NULL DEFAULT 0,
			low_stock_threshold DOUBLE PRECISION NOT NULL DEFAULT 0,
			par_level DOUBLE PRECISION NOT NULL DEFAULT 0,
			stock_on_hand DOUBLE PRECISION NOT NULL DEFAULT 0,
			metadata JSON,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE room_counts (
			room_id BIGINT NOT NULL,
			item_id BIGINT NOT NULL,
			org_id BIGINT NOT NULL,
			quantity DOUBLE PRECISION NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (room_id, item_id)
		)`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("prepare schema: %v", err)
		}
	}
}
