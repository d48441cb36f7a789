// Command kart drives a race in the terminal: the track minimap, the kart
// arrow and a status line, stepped at the configured tick rate.
//
// With feed.addr set, every pose is also streamed to websocket clients at
// /ws.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"github.com/cxd309/kart-engine/internal/config"
	"github.com/cxd309/kart-engine/internal/log"
	"github.com/cxd309/kart-engine/internal/posefeed"
	"github.com/cxd309/kart-engine/internal/session"
	"github.com/cxd309/kart-engine/internal/track"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	trackID := flag.String("track", "", "track id to start on (overrides tracks.default_id)")
	logPath := flag.String("log", "kart.log", "log file used when log.output points at the terminal")
	flag.Parse()

	if err := run(*configPath, *trackID, *logPath); err != nil {
		fmt.Fprintf(os.Stderr, "kart: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, trackID, logPath string) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}
	if trackID != "" {
		cfg.Tracks.DefaultID = trackID
	}

	// The screen owns the terminal, so log lines go to a file.
	logCfg := cfg.Log
	switch logCfg.Output {
	case "", "stderr", "stdout":
		logCfg.Output = logPath
	}
	logger, err := log.New(logCfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	catalog, err := loadCatalog(cfg.Tracks.File)
	if err != nil {
		return err
	}
	logger.Info("tracks loaded", log.Int("count", catalog.Len()), log.String("file", cfg.Tracks.File))

	sess := session.New(catalog, session.Config{
		Model:          cfg.Kinematics,
		CountdownSteps: cfg.CountdownSteps(),
	}, logger)
	if err := sess.SelectTrack(cfg.Tracks.DefaultID); err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initialising screen: %w", err)
	}
	defer screen.Fini()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	grp, ctx := errgroup.WithContext(ctx)

	if cfg.Feed.Addr != "" {
		var opts []posefeed.Option
		if len(cfg.Feed.AllowedOrigins) > 0 {
			opts = append(opts, posefeed.AllowOrigins(cfg.Feed.AllowedOrigins...))
		}
		hub := posefeed.NewHub(logger.With(log.String("component", "posefeed")), 0, opts...)
		sess.AddSink(hub)

		mux := http.NewServeMux()
		mux.Handle("/ws", hub.Handler())
		srv := &http.Server{Addr: cfg.Feed.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		grp.Go(func() error {
			logger.Info("pose feed listening", log.String("addr", cfg.Feed.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("pose feed: %w", err)
			}
			return nil
		})
		grp.Go(func() error {
			<-ctx.Done()
			hub.Close()
			shutdownCtx, done := context.WithTimeout(context.Background(), time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	// PollEvent blocks and returns nil once the screen is finalised.
	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	g := newGame(screen, sess, catalog.List(), cfg.Sim.TickHz, time.Duration(cfg.Input.HoldMs)*time.Millisecond, logger)
	grp.Go(func() error {
		defer cancel()
		return g.run(ctx, events)
	})

	err = grp.Wait()
	logger.Info("session ended", log.String("session_id", sess.ID().String()))
	return err
}

func loadCatalog(path string) (*track.Catalog, error) {
	if path == "" {
		return track.Default()
	}
	return track.LoadFile(path)
}
