package jobmetrics

import (
	"github.com/inkworks/printshop/internal/jobmetrics/repository"
	"github.com/inkworks/printshop/internal/jobmetrics/service"
	"go.uber.org/fx"
)

var Module = fx.Module("jobmetrics",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
