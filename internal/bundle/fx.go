package bundle

import (
	"github.com/mentorly/mentorly/internal/bundle/repository"
	"github.com/mentorly/mentorly/internal/bundle/service"
	"go.uber.org/fx"
)

var Module = fx.Module("bundle.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
