package country

import (
	"github.com/altura-labs/countryatlas/internal/country/repository"
	"github.com/altura-labs/countryatlas/internal/country/service"
	"go.uber.org/fx"
)

var Module = fx.Module("country.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
