package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-ledpaint/internal/clock"
	"github.com/coreman2200/funtimes-ledpaint/internal/led"
	"github.com/coreman2200/funtimes-ledpaint/internal/ledbank"
	"github.com/coreman2200/funtimes-ledpaint/internal/palette"
	"github.com/coreman2200/funtimes-ledpaint/internal/playback"
	"github.com/coreman2200/funtimes-ledpaint/internal/recording"
)

func main() {
	var (
		dumpPath string
		driver   string
		leds     int
		speed    float64
		mask     string
		verbose  bool
	)
	flag.StringVar(&dumpPath, "sequence", "", "path to an exported sequence (GET /sequence)")
	flag.StringVar(&driver, "driver", "console", "driver: sim | spi | console")
	flag.IntVar(&leds, "leds", ledbank.DefaultCount, "number of LEDs")
	flag.Float64Var(&speed, "speed", playback.DefaultSpeed, "playback speed 0.25..2")
	flag.StringVar(&mask, "select", "all", "active LEDs: all | none | invert | even | odd")
	flag.BoolVar(&verbose, "v", false, "log every frame")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	if !verbose {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if dumpPath == "" {
		log.Fatal().Msg("provide -sequence path to an exported sequence")
	}
	data, err := os.ReadFile(dumpPath)
	if err != nil {
		log.Fatal().Err(err).Msg("read sequence")
	}
	seq, err := recording.ParseDump(data)
	if err != nil {
		log.Fatal().Err(err).Msg("parse sequence")
	}

	drv, kind, err := led.Open(led.Options{Kind: driver, Count: leds})
	if err != nil {
		log.Fatal().Err(err).Msg("open driver")
	}
	defer drv.Close()

	bank := ledbank.New(leds)
	sel, err := ledbank.ParseSelection(mask)
	if err != nil {
		log.Fatal().Err(err).Msg("select")
	}
	_ = bank.Select(sel)

	hooks := playback.Hooks{
		OnFrame: func(i int, c palette.Color) {
			log.Debug().Int("index", i).Str("color", c.String()).Msg("frame")
			if err := drv.Write(bank.RGB()); err != nil {
				log.Warn().Err(err).Msg("write")
			}
		},
	}
	engine := playback.NewEngine(clock.System(), playback.DefaultPollInterval, hooks)

	start := time.Now()
	run, err := engine.Play(seq, speed, bank)
	if err != nil {
		log.Fatal().Err(err).Msg("play")
	}
	log.Info().Str("driver", kind).Int("frames", run.Len()).Float64("speed", run.Speed()).Msg("playback started")

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-run.Done():
		log.Info().Dur("elapsed", time.Since(start)).Msg("playback complete")
	case s := <-ch:
		engine.Stop()
		log.Info().Str("signal", s.String()).Int("cursor", engine.Cursor(run)).Msg("stopped")
	}
}
