package discountrule

import (
	"github.com/mentorly/mentorly/internal/discountrule/repository"
	"github.com/mentorly/mentorly/internal/discountrule/service"
	"go.uber.org/fx"
)

var Module = fx.Module("discountrule.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
