package job

import (
	"github.com/inkworks/printshop/internal/job/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("job",
	fx.Provide(repository.Provide),
)
