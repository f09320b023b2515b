package di

import (
	"github.com/google/wire"

	"github.com/Tiliavir/file-time-tracker/internal/config"
	"github.com/Tiliavir/file-time-tracker/internal/identity"
	"github.com/Tiliavir/file-time-tracker/internal/logger"
	"github.com/Tiliavir/file-time-tracker/internal/metrics"
	"github.com/Tiliavir/file-time-tracker/internal/report"
	"github.com/Tiliavir/file-time-tracker/internal/session"
	"github.com/Tiliavir/file-time-tracker/internal/storage"
)

// reportCacheTTL bounds how long an aggregated view is kept. Entries are
// keyed by the log contents, so this only limits memory held by stale views.
const reportCacheTTL = 600

// ProviderSet builds everything below the app from a loaded config.
var ProviderSet = wire.NewSet(
	NewLogger,
	NewMetrics,
	NewStore,
	NewIdentity,
	NewWorkspace,
	NewReportCache,
	report.NewService,
	session.NewTracker,
	wire.Bind(new(session.Recorder), new(*storage.Store)),
)

// NewLogger opens the configured logger; the cleanup closes it.
func NewLogger(conf *config.Config) (logger.Logger, func(), error) {
	log, err := logger.New(logger.Options{Level: conf.Logger.Level, File: conf.Logger.File})
	if err != nil {
		return nil, nil, err
	}
	return log, log.Close, nil
}

func NewMetrics(conf *config.Config) metrics.Recorder {
	return metrics.New(conf.Metrics.Enabled)
}

func NewStore(conf *config.Config, log logger.Logger, m metrics.Recorder) *storage.Store {
	return storage.NewStore(conf.LogPath(), log, m)
}

func NewIdentity(conf *config.Config, log logger.Logger) identity.Resolver {
	return identity.New(conf.User.Name, conf.User.Email, conf.Root(), log)
}

func NewWorkspace(conf *config.Config) session.Workspace {
	return session.NewWorkspace(conf.Workspace.Project, conf.Workspace.Roots...)
}

func NewReportCache(conf *config.Config, log logger.Logger) report.Cache {
	return report.NewCache(conf.Cache.Size, reportCacheTTL, log)
}
