package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/Tiliavir/file-time-tracker/internal/config"
	"github.com/Tiliavir/file-time-tracker/internal/identity"
	"github.com/Tiliavir/file-time-tracker/internal/logger"
	"github.com/Tiliavir/file-time-tracker/internal/metrics"
	"github.com/Tiliavir/file-time-tracker/internal/model"
	"github.com/Tiliavir/file-time-tracker/internal/refresh"
	"github.com/Tiliavir/file-time-tracker/internal/report"
	"github.com/Tiliavir/file-time-tracker/internal/session"
	"github.com/Tiliavir/file-time-tracker/internal/storage"
	"github.com/Tiliavir/file-time-tracker/internal/timecalc"
	"github.com/Tiliavir/file-time-tracker/internal/watcher"
)

// App wires the tracker to its event sources and runs the single event loop.
type App struct {
	Config   *config.Config
	Store    *storage.Store
	Tracker  *session.Tracker
	Reports  *report.Service
	Identity identity.Resolver
	Metrics  metrics.Recorder
	Logger   logger.Logger

	// Status receives the periodic status line; nil disables it.
	Status io.Writer
	now    func() time.Time
}

func New(conf *config.Config, store *storage.Store, tracker *session.Tracker, reports *report.Service, id identity.Resolver, m metrics.Recorder, log logger.Logger) *App {
	return &App{
		Config:   conf,
		Store:    store,
		Tracker:  tracker,
		Reports:  reports,
		Identity: id,
		Metrics:  m,
		Logger:   log,
		now:      time.Now,
	}
}

// Run starts every source and applies their events one at a time until ctx
// is cancelled, all sources finish, a source fails or a Deactivated event
// arrives. The running session is always closed out before Run returns.
func (a *App) Run(ctx context.Context, sources ...watcher.Source) error {
	srcCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan session.Event)
	failed := make(chan error, len(sources))
	drained := make(chan struct{})

	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(src watcher.Source) {
			defer wg.Done()
			if err := src.Run(srcCtx, events); err != nil {
				failed <- err
			}
		}(src)
	}
	go func() {
		wg.Wait()
		close(drained)
	}()

	if a.Status != nil {
		tk := refresh.New(a.Config.Status.Interval, a.printStatus)
		tk.Start()
		defer tk.Stop()
	}

	if a.Config.Metrics.Enabled {
		srv := a.serveMetrics()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	a.Logger.Infof(logger.TypeApp, "watching %v, logging to %s", a.Tracker.Workspace().Roots(), a.Store.Path())

	for {
		select {
		case ev := <-events:
			a.apply(ctx, ev)
			if ev.Kind == session.Deactivated {
				return nil
			}
		case err := <-failed:
			a.deactivate(ctx)
			return err
		case <-drained:
			a.deactivate(ctx)
			select {
			case err := <-failed:
				return err
			default:
				return nil
			}
		case <-ctx.Done():
			a.deactivate(ctx)
			return nil
		}
	}
}

func (a *App) apply(ctx context.Context, ev session.Event) {
	a.Logger.Debugf(logger.TypeApp, "event %s %s", ev.Kind, ev.File)
	// Persisting must not be cut short by shutdown.
	if err := a.Tracker.Handle(context.WithoutCancel(ctx), ev); err != nil {
		a.Logger.Errorf(logger.TypeApp, "%v", err)
	}
}

func (a *App) deactivate(ctx context.Context) {
	a.apply(ctx, session.Event{Kind: session.Deactivated})
}

func (a *App) serveMetrics() *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.Metrics.Handler())
	srv := &http.Server{Addr: a.Config.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Errorf(logger.TypeApp, "metrics server: %v", err)
		}
	}()
	a.Logger.Infof(logger.TypeApp, "serving metrics on http://%s/metrics", a.Config.Metrics.Addr)
	return srv
}

// StatusLine renders the live readout: tracker state, elapsed time of the
// running session and the total logged today.
func (a *App) StatusLine() string {
	st := a.Tracker.Snapshot()
	today, err := a.Reports.TodayTotal(a.now())
	if err != nil {
		a.Logger.Warnf(logger.TypeApp, "status: %v", err)
	}

	switch st.State {
	case session.Tracking:
		return fmt.Sprintf("%s  %s  today %s", st.File, timecalc.FormatDurationHHMMSS(st.Elapsed), timecalc.FormatDuration(today))
	case session.Paused:
		return fmt.Sprintf("%s (paused)  today %s", st.File, timecalc.FormatDuration(today))
	}
	return fmt.Sprintf("%s  today %s", st.State, timecalc.FormatDuration(today))
}

func (a *App) printStatus() {
	fmt.Fprintf(a.Status, "\r\033[K%s", a.StatusLine())
}

// Record appends a manual entry for file, attributed to the current identity.
// The file must lie inside the workspace; an empty project falls back to the
// workspace project.
func (a *App) Record(ctx context.Context, file, project string, seconds int64, at time.Time) (string, error) {
	if seconds < 0 {
		return "", fmt.Errorf("negative duration %ds", seconds)
	}
	ws := a.Tracker.Workspace()
	key, ok := ws.Key(file)
	if !ok {
		return "", fmt.Errorf("%s is outside the workspace %v", file, ws.Roots())
	}
	if project == "" {
		project = ws.Project()
	}
	entry := model.TimeEntry{
		Date:      at.UTC().Truncate(time.Millisecond),
		User:      a.Identity.Resolve(ctx),
		TimeSpent: seconds,
	}
	if err := a.Store.Record(project, key, entry); err != nil {
		return "", err
	}
	a.Logger.Infof(logger.TypeApp, "recorded %s on %s", timecalc.FormatDuration(seconds), key)
	return key, nil
}
