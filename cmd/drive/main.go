//go:build ebiten

package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"

	"arcade-drive/internal/app"
	"arcade-drive/internal/config"
	"arcade-drive/internal/core"
	"arcade-drive/internal/logging"
	"arcade-drive/internal/stream"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
)

func main() {
	cfg := config.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	format, err := logging.ParseFormat(cfg.LogFormat)
	if err != nil {
		format = logging.FormatConsole
	}
	log := logging.New(logging.Options{Level: cfg.LogLevel, Format: format})

	if err := cfg.Load(); err != nil {
		log.Fatal().Err(err).Str("config", cfg.Path).Msg("load config")
	}

	var reloads <-chan config.Settings
	if cfg.Path != "" {
		reloads, err = config.NewLoader(cfg.Path).Watch(log)
		if err != nil {
			log.Warn().Err(err).Msg("config watch disabled")
		}
	}

	session := app.NewSession(log, cfg.Settings, core.ClockOptions{})
	defer session.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if cfg.StreamAddr != "" {
		startStream(ctx, cfg, session, log)
	}

	game := app.New(session, cfg, reloads)

	ebiten.SetWindowTitle("arcade-drive")
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(cfg.Width+app.PanelWidth, cfg.Height)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal().Err(err).Msg("run game")
	}
}

func startStream(ctx context.Context, cfg *config.Config, session *app.Session, log zerolog.Logger) {
	hub := stream.NewHub(cfg.StreamRate, log)
	hub.Attach(session.Ctx.Bus)
	go func() {
		if err := stream.Serve(ctx, cfg.StreamAddr, hub); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("pose stream stopped")
		}
	}()
}
