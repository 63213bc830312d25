package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	router "github.com/dkeye/bubble/internal/adapters/http"
	"github.com/dkeye/bubble/internal/adapters/natsbus"
	wsignal "github.com/dkeye/bubble/internal/adapters/signal"
	"github.com/dkeye/bubble/internal/adapters/tui"
	"github.com/dkeye/bubble/internal/app"
	"github.com/dkeye/bubble/internal/app/orch"
	"github.com/dkeye/bubble/internal/config"
	"github.com/dkeye/bubble/internal/core"
)

func main() {
	ui := pflag.String("ui", "tui", "front end: tui or web")
	level := pflag.String("log-level", "", "override log level (debug, info, warn, error)")
	logFile := pflag.String("log-file", "bubble.log", "log destination while the terminal UI owns the screen")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: bubble [flags] [config.toml]\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	path := config.DefaultPath
	if pflag.NArg() > 0 {
		path = pflag.Arg(0)
	}
	if *ui != "tui" && *ui != "web" {
		fmt.Fprintf(os.Stderr, "unknown --ui %q\n", *ui)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *level != "" {
		cfg.Log.Level = *level
	}

	closeLog, err := setupLogging(cfg.Log, *ui, *logFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up logging")
	}
	defer closeLog()

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("no valid server configured")
		closeLog()
		os.Exit(1)
	}

	opener := orch.NATSOpener(natsbus.Options{
		ConnectTimeout: cfg.ConnectTimeout,
		Logger:         &log.Logger,
	})
	logSink := app.LogSink{Logger: log.With().Str("module", "events").Logger()}

	g, gctx := errgroup.WithContext(ctx)
	var o *orch.Orchestrator
	newOrch := func(sink core.EventSink) *orch.Orchestrator {
		return orch.New(orch.Options{
			Sink:             app.NewMultiSink(sink, logSink),
			Endpoints:        cfg.Server,
			User:             cfg.Name,
			DiscoveryTimeout: cfg.DiscoveryTimeout,
			Open:             opener,
			Logger:           &log.Logger,
		})
	}

	switch *ui {
	case "web":
		hub := wsignal.NewHub()
		o = newOrch(hub)
		srv := &http.Server{
			Addr:    cfg.Web.Addr,
			Handler: router.SetupRouter(gctx, &cfg.Web, o, hub),
		}
		g.Go(func() error {
			log.Info().Str("addr", cfg.Web.Addr).Msg("bubble bridge started")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			return srv.Shutdown(shutdownCtx)
		})
	case "tui":
		sink := tui.NewSink(256)
		o = newOrch(sink)
		g.Go(func() error {
			// Quitting the terminal ends the process.
			defer cancel()
			return tui.Run(gctx, o, sink, cfg.Name)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("bubble stopped with error")
	}
	if err := o.Close(); err != nil {
		log.Warn().Err(err).Msg("close session")
	}
	log.Info().Msg("bubble exited")
}

// setupLogging applies the configured level and output. The terminal UI owns
// stdout and stderr, so its logs go to a file.
func setupLogging(cfg config.LogConfig, ui, logFile string) (func(), error) {
	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var out io.Writer = os.Stderr
	closer := func() {}
	if ui == "tui" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		out = f
		closer = func() { _ = f.Close() }
	}
	if cfg.Console {
		out = zerolog.ConsoleWriter{Out: out, NoColor: ui == "tui"}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return closer, nil
}
