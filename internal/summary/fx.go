package summary

import (
	"github.com/altura-labs/countryatlas/internal/refresh"
	"go.uber.org/fx"
)

var Module = fx.Module("summary",
	fx.Provide(New),
	fx.Provide(func(r *ImageRenderer) refresh.Renderer { return r }),
)
