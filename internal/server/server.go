package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/stocktake/internal/barcode"
	"github.com/smallbiznis/stocktake/internal/config"
	"github.com/smallbiznis/stocktake/internal/count"
	countdomain "github.com/smallbiznis/stocktake/internal/count/domain"
	"github.com/smallbiznis/stocktake/internal/count/liveevents"
	"github.com/smallbiznis/stocktake/internal/item"
	itemdomain "github.com/smallbiznis/stocktake/internal/item/domain"
	"github.com/smallbiznis/stocktake/internal/observability"
	obslogger "github.com/smallbiznis/stocktake/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/stocktake/internal/observability/metrics"
	obstracing "github.com/smallbiznis/stocktake/internal/observability/tracing"
	"github.com/smallbiznis/stocktake/internal/room"
	roomdomain "github.com/smallbiznis/stocktake/internal/room/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	config.Module,
	room.Module,
	item.Module,
	count.Module,
	barcode.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(RunHTTP),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine    *gin.Engine
	cfg       config.Config
	db        *gorm.DB
	roomSvc   roomdomain.Service
	itemSvc   itemdomain.Service
	countSvc  countdomain.Service
	spotlight *barcode.Tracker
	hub       *liveevents.Hub
	metrics   *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin       *gin.Engine
	Cfg       config.Config
	DB        *gorm.DB
	RoomSvc   roomdomain.Service
	ItemSvc   itemdomain.Service
	CountSvc  countdomain.Service
	Spotlight *barcode.Tracker
	Hub       *liveevents.Hub     `optional:"true"`
	Metrics   *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:    p.Gin,
		cfg:       p.Cfg,
		db:        p.DB,
		roomSvc:   p.RoomSvc,
		itemSvc:   p.ItemSvc,
		countSvc:  p.CountSvc,
		spotlight: p.Spotlight,
		hub:       p.Hub,
		metrics:   p.Metrics,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func RegisterRoutes(s *Server) {
	s.RegisterAPIRoutes()
	s.RegisterAdminRoutes()
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api", s.OrgContext())

	api.GET("/rooms", s.ListRooms)
	api.GET("/rooms/:roomId", s.GetRoomByID)

	api.GET("/items", s.ListItems)
	api.GET("/items/:id", s.GetItemByID)
	api.GET("/items/:id/stock", s.GetItemStock)

	// -------- Count session --------
	api.GET("/rooms/:roomId/session", s.GetRoomSession)
	api.POST("/rooms/:roomId/session/hydrate", s.HydrateRoomSession)
	api.POST("/rooms/:roomId/session/adjust", s.AdjustCount)
	api.PUT("/rooms/:roomId/session/text", s.SetCountText)
	api.POST("/rooms/:roomId/session/commit", s.CommitRoomCounts)
	api.DELETE("/rooms/:roomId/session", s.DiscardRoomSession)

	// -------- Barcode --------
	api.POST("/rooms/:roomId/scan", s.ScanBarcode)
	api.GET("/rooms/:roomId/session/spotlight", s.GetSpotlight)
	api.DELETE("/rooms/:roomId/session/spotlight", s.ClearSpotlight)
}

func (s *Server) RegisterAdminRoutes() {
	admin := s.engine.Group("/admin", s.OrgContext())

	admin.GET("/count-events", s.StreamCountEvents)
}

func RunHTTP(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
