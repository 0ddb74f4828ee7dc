package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-ledpaint/internal/config"
	"github.com/coreman2200/funtimes-ledpaint/internal/led"
	"github.com/coreman2200/funtimes-ledpaint/internal/ledbank"
	"github.com/coreman2200/funtimes-ledpaint/internal/palette"
	"github.com/coreman2200/funtimes-ledpaint/internal/studio"
	"github.com/coreman2200/funtimes-ledpaint/internal/ws"
	"github.com/coreman2200/funtimes-ledpaint/web"
)

func main() {
	// ---- Flags (remain usable; config.yaml can override most) ----
	var (
		addr       = flag.String("addr", ":8080", "HTTP listen address")
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		driver     = flag.String("driver", "sim", "driver: sim | spi | console")
		leds       = flag.Int("leds", 8, "number of LEDs")
		fps        = flag.Int("fps", 60, "frame push rate")
		brightness = flag.Float64("brightness", 1, "hardware brightness 0..1")
		simOnly    = flag.Bool("sim-only", false, "force simulation (no hardware output)")
		logLevel   = flag.String("log-level", "info", "zerolog level")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	if lvl, err := zerolog.ParseLevel(*logLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Str("level", *logLevel).Msg("unknown log level; using info")
	}

	// ---- Load config.yaml (optional) ----
	cfg := loadConfig(*configPath)

	// ---- Effective params: explicit flags, then config, then flag defaults ----
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	eff := config.Defaults()
	if cfg != nil {
		copied := *cfg
		eff = &copied
	}
	override := func(name string, apply func()) {
		if set[name] || cfg == nil {
			apply()
		}
	}
	override("addr", func() { eff.Addr = *addr })
	override("driver", func() { eff.Driver = *driver })
	override("leds", func() { eff.LEDCount = *leds })
	override("fps", func() { eff.FPS = *fps })
	override("brightness", func() { eff.Brightness = *brightness })
	if *simOnly {
		eff.Driver = led.KindSim
	}
	if eff.LEDCount <= 0 {
		eff.LEDCount = ledbank.DefaultCount
	}

	// ---- Schemes ----
	table := palette.DefaultTable()
	names := make([]string, 0, len(eff.Schemes))
	for name := range eff.Schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := table.RegisterHex(name, eff.Schemes[name]); err != nil {
			log.Warn().Err(err).Str("scheme", name).Msg("skipping configured scheme")
		}
	}

	// ---- Driver ----
	drv, kind, err := led.Open(led.Options{
		Kind:    eff.Driver,
		Count:   eff.LEDCount,
		SPIDev:  eff.SPI.Dev,
		SpeedHz: eff.SPI.SpeedHz,
	})
	if err != nil {
		log.Warn().Err(err).Str("driver", eff.Driver).Msg("unknown driver; using SIM")
		drv, kind = led.NewSim(eff.LEDCount), led.KindSim
	}
	if kind != led.KindSim {
		drv = led.Limited(drv, led.Limiter{
			Brightness: eff.Brightness,
			WhiteCap:   eff.Power.WhiteCap,
			ChanMA:     eff.Power.ChanMA,
			BudgetMA:   eff.Power.BudgetMA,
			Knee:       eff.Power.Knee,
		})
	}

	// ---- State ----
	server := ws.NewServer(eff.FPS)
	server.Studio = studio.New(studio.Options{
		Table:        table,
		LEDs:         eff.LEDCount,
		Scheme:       eff.Recording.Scheme,
		Threshold:    eff.Recording.Threshold,
		TimeGate:     eff.TimeGate(),
		Speed:        eff.Playback.Speed,
		PollInterval: eff.PollInterval(),
		OnEvent:      server.PushEvent,
	})
	server.Driver = drv
	server.CurrentDriver = kind
	server.ConfigPath = *configPath
	server.Config = eff

	// ---- HTTP routes ----
	mux := http.NewServeMux()
	server.Routes(mux, web.Static())

	srv := &http.Server{
		Addr:         eff.Addr,
		Handler:      withCORS(mux),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ---- Run render loop & server ----
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go server.RunRenderLoop(ctx)
	go func() {
		log.Info().Str("addr", eff.Addr).Str("driver", kind).Int("leds", eff.LEDCount).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	// ---- Graceful shutdown ----
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	s := <-ch
	log.Info().Str("signal", s.String()).Msg("shutting down")

	cancel()
	server.Studio.StopPlayback()
	shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
	defer done()
	_ = srv.Shutdown(shutdownCtx)
	if err := drv.Close(); err != nil {
		log.Warn().Err(err).Msg("driver close")
	}
}

// loadConfig returns nil when the file exists but cannot be parsed, so the
// flags take over. A missing file is not an error.
func loadConfig(path string) *config.Config {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("config load failed; proceeding with flags")
		return nil
	}
	return cfg
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
