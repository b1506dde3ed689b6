package count

import (
	"github.com/smallbiznis/stocktake/internal/count/liveevents"
	"github.com/smallbiznis/stocktake/internal/count/repository"
	"github.com/smallbiznis/stocktake/internal/count/service"
	"go.uber.org/fx"
)

var Module = fx.Module("count.service",
	fx.Provide(repository.Provide),
	fx.Provide(liveevents.NewHub),
	fx.Provide(service.New),
)
