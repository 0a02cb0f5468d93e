package pricingrule

import (
	"github.com/mentorly/mentorly/internal/pricingrule/repository"
	"github.com/mentorly/mentorly/internal/pricingrule/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricingrule.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
