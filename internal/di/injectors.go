//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"github.com/Tiliavir/file-time-tracker/internal/app"
	"github.com/Tiliavir/file-time-tracker/internal/config"
)

func InitApp(opts config.Options) (*app.App, func(), error) {

	wire.Build(
		config.Load,
		ProviderSet,
		app.New,
	)

	return nil, nil, nil
}
