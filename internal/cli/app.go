package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"notat/internal/config"
	"notat/internal/feedback"
	"notat/internal/logging"
	"notat/internal/notify"
	"notat/internal/profile"
	"notat/internal/service/notes"
	"notat/internal/service/termins"
	"notat/internal/store/file"
)

// app bundles the wired-up stores for one command invocation. Commands
// construct it lazily in RunE so `--help` never touches the disk.
type app struct {
	cfg        config.Config
	log        *zap.Logger
	termins    *termins.Service
	notes      *notes.Service
	profile    *profile.Store
	dispatcher *notify.Dispatcher
}

func newApp(ctx context.Context, opts *RootOptions) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	if cfg.DataDir == "" {
		cfg.DataDir, err = file.ResolveDataDir()
		if err != nil {
			return nil, fmt.Errorf("resolve data dir: %w", err)
		}
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}

	log := logging.New(cfg.LogLevel)

	gateway, err := file.New(cfg.DataDir, log)
	if err != nil {
		return nil, fmt.Errorf("open data dir: %w", err)
	}

	signal := feedback.Discard
	if cfg.HapticsEnabled {
		signal = func(e feedback.Event) {
			log.Debug("feedback", zap.String("event", string(e)))
		}
	}

	dispatcher := notify.NewDispatcher(log)
	scheduler := notify.NewScheduler(dispatcher, log)

	a := &app{
		cfg:        cfg,
		log:        log,
		dispatcher: dispatcher,
		profile:    profile.New(gateway, log, cfg.SaveDebounce),
	}
	a.termins = termins.New(termins.Config{
		Documents: gateway,
		Scheduler: scheduler,
		Reminders: notify.Options{
			DayBeforeAtNine: cfg.NotifyDayBefore,
			HourBefore:      cfg.NotifyHourBefore,
		},
		Signal:    signal,
		Log:       log,
		SaveDelay: cfg.SaveDebounce,
	})
	a.notes = notes.New(notes.Config{
		Documents: gateway,
		Signal:    signal,
		Log:       log,
		SaveDelay: cfg.SaveDebounce,
	})

	if err := a.termins.Load(ctx); err != nil {
		return nil, err
	}
	if err := a.notes.Load(ctx); err != nil {
		return nil, err
	}
	if err := a.profile.Load(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// close flushes pending debounced writes so the last mutation of a short
// command run is never lost.
func (a *app) close() {
	a.termins.Flush()
	a.notes.Flush()
	a.profile.Flush()
	a.dispatcher.Close()
	_ = a.log.Sync()
}
