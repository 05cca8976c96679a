package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"k8s.io/utils/clock"

	"github.com/five82/trackside/internal/config"
	"github.com/five82/trackside/internal/live"
	"github.com/five82/trackside/internal/logging"
	"github.com/five82/trackside/internal/prefs"
	"github.com/five82/trackside/internal/race"
	"github.com/five82/trackside/internal/state"
	"github.com/five82/trackside/internal/ui"
)

// Options configure the trackside application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/trackside/prefs.toml
	PollEvery  int    // seconds; zero uses the configured interval
	Server     string // overrides the configured server when set
}

// Run boots the trackside TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.PollEvery > 0 {
		cfg.PollInterval = time.Duration(opts.PollEvery) * time.Second
	}
	if opts.Server != "" {
		cfg.Server = opts.Server
	}

	logger, closer, err := logging.Open(cfg.LogPath(), cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closer.Close()

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, err := prefs.Load(prefsPath)
	if err != nil {
		logger.Warn("preferences unreadable, using defaults", "path", prefsPath, "error", err)
	}

	client, err := race.NewClient(cfg.Server)
	if err != nil {
		return fmt.Errorf("init race client: %w", err)
	}
	logger.Info("trackside starting",
		"server", cfg.Server,
		"session", client.SessionID(),
		"poll_interval", cfg.PollInterval,
		"pause_poll_interval", cfg.PausePollInterval,
	)

	clk := clock.RealClock{}
	notices := state.NewNotices(clk)
	deps := live.Deps{Store: client, Logger: logger, Notices: notices, Clock: clk}

	pause := live.NewPause(deps, userPrefs.Checkpoint)
	start := live.NewStart(deps, cfg.LookupDebounce)
	finish := live.NewFinish(deps)
	dashboard := live.NewDashboard(deps)
	defer func() {
		pause.Close()
		start.Close()
		finish.Close()
		dashboard.Close()
	}()

	act := NewActivator(ctx, clk, cfg.TickInterval, logger)
	act.Route(ui.ViewPause, pause, cfg.PausePollInterval, pause)
	act.Route(ui.ViewStart, start, cfg.PollInterval, nil)
	act.Route(ui.ViewFinish, finish, cfg.PollInterval, nil)
	act.Route(ui.ViewDashboard, dashboard, cfg.PollInterval, nil)
	defer act.Stop()

	view := ui.ParseView(userPrefs.View)
	act.Activate(view)

	err = ui.Run(ui.Options{
		Context:   ctx,
		Pause:     pause,
		Start:     start,
		Finish:    finish,
		Dashboard: dashboard,
		Notices:   notices,
		Activate:  act.Activate,
		View:      view,
		LogPath:   cfg.LogPath(),
		Server:    cfg.Server,
		PrefsPath: prefsPath,
		Prefs:     userPrefs,
	})
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		err = nil
	}
	if err != nil {
		logger.Error("ui exited", "error", err)
		return err
	}
	logger.Info("trackside stopped")
	return nil
}
