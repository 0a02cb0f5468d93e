package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/mentorly/mentorly/internal/clock"
	"github.com/mentorly/mentorly/internal/config"
	"github.com/mentorly/mentorly/internal/migration"
	"github.com/mentorly/mentorly/internal/observability"
	"github.com/mentorly/mentorly/internal/server"
	"github.com/mentorly/mentorly/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
