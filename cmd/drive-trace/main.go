package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"time"

	"arcade-drive/internal/app"
	"arcade-drive/internal/config"
	"arcade-drive/internal/core"
	"arcade-drive/internal/logging"
	"arcade-drive/internal/replay"
	"arcade-drive/internal/stream"

	"github.com/rs/zerolog"
)

type kvList []string

func (l *kvList) String() string {
	return strings.Join(*l, ",")
}

func (l *kvList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

func main() {
	cfg := config.NewConfig()
	cfg.Bind(flag.CommandLine)
	scriptSrc := flag.String("script", "KeyW@0-180,ArrowLeft@60-120", "key script, Code@start-end entries")
	scriptFile := flag.String("script-file", "", "read the key script from a file")
	ticks := flag.Int("ticks", 0, "ticks to simulate (default: script span + 2s)")
	dt := flag.Duration("dt", time.Second/60, "fixed step per tick")
	format := flag.String("format", "csv", "trace format: csv, json or summary")
	out := flag.String("out", "", "write the trace here instead of stdout")
	sweep := flag.String("sweep", "", "sweep one parameter: key=v1,v2,...")
	workers := flag.Int("workers", runtime.NumCPU(), "parallel sweep runs")
	realtime := flag.Bool("realtime", false, "play the script on the wall clock at -tps (use with -stream)")
	fixed := flag.Bool("fixed", false, "with -realtime, advance every tick by exactly 1/tps")
	var overrides kvList
	flag.Var(&overrides, "set", "parameter override in key=value form (repeatable)")
	flag.Parse()

	logFormat, err := logging.ParseFormat(cfg.LogFormat)
	if err != nil {
		logFormat = logging.FormatConsole
	}
	log := logging.New(logging.Options{Level: cfg.LogLevel, Format: logFormat})

	if err := cfg.Load(); err != nil {
		log.Fatal().Err(err).Str("config", cfg.Path).Msg("load config")
	}
	if err := cfg.Settings.ApplyOverrides(overrides); err != nil {
		log.Fatal().Err(err).Msg("apply overrides")
	}
	if err := config.Validate(cfg.Settings); err != nil {
		log.Fatal().Err(err).Msg("overrides")
	}

	src := *scriptSrc
	if *scriptFile != "" {
		b, err := os.ReadFile(*scriptFile)
		if err != nil {
			log.Fatal().Err(err).Msg("read script")
		}
		src = string(b)
	}
	script, err := replay.Parse(src)
	if err != nil {
		log.Fatal().Err(err).Msg("parse script")
	}
	if *dt <= 0 {
		log.Fatal().Dur("dt", *dt).Msg("dt must be positive")
	}
	if !*realtime && fitClamp(&cfg.Settings, *dt) {
		log.Warn().Dur("dt", *dt).Msg("dt exceeds clock.maxDelta, raising the cap for this run")
	}
	n := *ticks
	if n <= 0 {
		n = script.Span() + int(2*time.Second / *dt)
	}

	w := io.Writer(os.Stdout)
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatal().Err(err).Msg("create output")
		}
		defer f.Close()
		w = f
	}

	switch {
	case *sweep != "":
		err = runSweep(w, cfg.Settings, *sweep, script, n, *dt, *workers)
	case *realtime:
		err = runRealtime(cfg, script, n, *fixed, log)
	default:
		session := app.NewSession(log, cfg.Settings, core.ClockOptions{})
		frames := replay.Run(session, script, n, *dt)
		session.Close()
		err = writeTrace(w, *format, frames)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("drive-trace")
	}
}

// fitClamp raises the delta cap to dt so every fixed step integrates in full.
// It reports whether the cap was changed.
func fitClamp(s *config.Settings, dt time.Duration) bool {
	if s.Clock.MaxDelta < 0 || dt <= s.Clock.MaxDelta {
		return false
	}
	s.Clock.MaxDelta = dt
	return true
}

func runSweep(w io.Writer, base config.Settings, arg string, script replay.Script, ticks int, dt time.Duration, workers int) error {
	key, list, ok := strings.Cut(arg, "=")
	if !ok {
		return fmt.Errorf("sweep %q: want key=v1,v2", arg)
	}
	var values []float64
	for _, raw := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return fmt.Errorf("sweep %q: %w", arg, err)
		}
		values = append(values, v)
	}
	results, err := replay.Sweep(base, key, values, script, ticks, dt, workers)
	if err != nil {
		return err
	}
	for _, r := range results {
		s := r.Summary
		fmt.Fprintf(w, "%s=%.3f: distance %.2f, top speed %.2f, final yaw %.3f, max steer %.3f, camera settled at %d\n",
			r.Key, r.Value, s.Distance, s.TopSpeed, s.FinalYaw, s.MaxSteering, s.SettledTick)
	}
	return nil
}

// runRealtime plays the script against the wall clock so a connected
// renderer can watch it through the pose stream. With fixed set the run
// reproduces the offline trace tick for tick.
func runRealtime(cfg *config.Config, script replay.Script, ticks int, fixed bool, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	session := app.NewSession(log, cfg.Settings, core.ClockOptions{})
	defer session.Close()
	replay.Attach(session, script)

	if cfg.StreamAddr != "" {
		hub := stream.NewHub(cfg.StreamRate, log)
		hub.Attach(session.Ctx.Bus)
		go func() {
			if err := stream.Serve(ctx, cfg.StreamAddr, hub); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("pose stream stopped")
			}
		}()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	session.Ctx.Bus.On(app.FrameEvent, func(...any) {
		if int(session.Ctx.Clock.Ticks()) >= ticks {
			cancel()
		}
	})

	var err error
	if fixed {
		err = session.Ctx.Clock.RunFixed(runCtx, cfg.TPS)
	} else {
		err = session.Ctx.Clock.Run(runCtx, cfg.TPS)
	}
	f := session.Frame()
	log.Info().
		Uint64("ticks", f.Tick).
		Float64("speed", f.Speed).
		Float64("yaw", f.Yaw).
		Uint64("clamped", session.Ctx.Clock.Clamped()).
		Msg("realtime run finished")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

var csvHeader = []string{
	"tick", "elapsed", "dt", "x", "y", "z", "yaw", "speed", "steering", "target_steering",
	"wheel_fl", "wheel_fr", "wheel_rl", "wheel_rr", "cam_x", "cam_y", "cam_z", "settling",
}

func writeTrace(w io.Writer, format string, frames []app.Frame) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		for _, f := range frames {
			if err := enc.Encode(f); err != nil {
				return fmt.Errorf("write json: %w", err)
			}
		}
		return nil
	case "summary":
		return json.NewEncoder(w).Encode(replay.Summarize(frames))
	case "csv":
		cw := csv.NewWriter(w)
		if err := cw.Write(csvHeader); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		for _, f := range frames {
			if err := cw.Write(csvRow(f)); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
		}
		cw.Flush()
		return cw.Error()
	}
	return fmt.Errorf("unknown format %q", format)
}

func csvRow(f app.Frame) []string {
	ff := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	return []string{
		strconv.FormatUint(f.Tick, 10), ff(f.Elapsed), ff(f.Delta),
		ff(f.Position[0]), ff(f.Position[1]), ff(f.Position[2]),
		ff(f.Yaw), ff(f.Speed), ff(f.Steering), ff(f.TargetSteering),
		ff(f.Wheels[0]), ff(f.Wheels[1]), ff(f.Wheels[2]), ff(f.Wheels[3]),
		ff(f.CameraPosition[0]), ff(f.CameraPosition[1]), ff(f.CameraPosition[2]),
		strconv.FormatBool(f.Settling),
	}
}
