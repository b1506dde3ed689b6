package barcode

import (
	"time"

	"github.com/smallbiznis/stocktake/internal/clock"
	"github.com/smallbiznis/stocktake/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("barcode",
	fx.Provide(func(cfg config.Config, clk clock.Clock) *Tracker {
		return NewTracker(clk, time.Duration(cfg.SpotlightTTLSeconds)*time.Second)
	}),
)
