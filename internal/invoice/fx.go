package invoice

import (
	"github.com/inkworks/printshop/internal/invoice/repository"
	"github.com/inkworks/printshop/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
