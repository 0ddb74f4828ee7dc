package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Recording struct {
	Threshold  float64 `yaml:"threshold"`
	TimeGateMs int     `yaml:"time_gate_ms"`
	Scheme     string  `yaml:"scheme"`
}

type Playback struct {
	Speed          float64 `yaml:"speed"`
	PollIntervalMs int     `yaml:"poll_interval_ms"`
}

type PowerCfg struct {
	WhiteCap float64 `yaml:"white_cap"` // fraction of full white per LED, 0 or 1 = off
	BudgetMA float64 `yaml:"budget_ma"` // whole-strip budget, 0 = off
	ChanMA   float64 `yaml:"chan_ma"`   // per channel at full scale, WS2812 ~ 20
	Knee     float64 `yaml:"knee"`
}

type SPI struct {
	Dev     string `yaml:"dev"`      // e.g. /dev/spidev0.0, empty picks the first port
	SpeedHz int    `yaml:"speed_hz"` // SPI clock; nrzled only runs at 2500000
}

type Config struct {
	Addr       string  `yaml:"addr"`
	Driver     string  `yaml:"driver"` // "sim" | "spi" | "console"
	LEDCount   int     `yaml:"led_count"`
	FPS        int     `yaml:"fps"`
	Brightness float64 `yaml:"brightness"`

	Recording Recording `yaml:"recording"`
	Playback  Playback  `yaml:"playback"`
	Power     PowerCfg  `yaml:"power"`
	SPI       SPI       `yaml:"spi,omitempty"`

	// Extra schemes by name, each a list of hex stops.
	Schemes map[string][]string `yaml:"schemes,omitempty"`
}

func Defaults() *Config {
	return &Config{
		Addr:       ":8080",
		Driver:     "sim",
		LEDCount:   8,
		FPS:        60,
		Brightness: 1,
		Recording: Recording{
			Threshold:  0.005,
			TimeGateMs: 100,
			Scheme:     "rainbow",
		},
		Playback: Playback{
			Speed:          1,
			PollIntervalMs: 10,
		},
		Power: PowerCfg{
			WhiteCap: 0.85,
			ChanMA:   20,
			Knee:     0.9,
		},
		SPI: SPI{SpeedHz: 2500000},
	}
}

func (c *Config) TimeGate() time.Duration {
	return time.Duration(c.Recording.TimeGateMs) * time.Millisecond
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Playback.PollIntervalMs) * time.Millisecond
}

// Load reads path over the defaults, so a partial file only overrides the
// keys it sets.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Defaults()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

// LoadOrDefault is Load, except a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	c, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}
	return c, err
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
