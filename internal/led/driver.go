package led

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Driver abstracts an LED output sink.
type Driver interface {
	// Write pushes an RGB frame to hardware. len(rgb) must be 3*N.
	Write(rgb []byte) error
	// Close releases resources.
	Close() error
}

const (
	KindSim     = "sim"
	KindSPI     = "spi"
	KindConsole = "console"
)

type Options struct {
	Kind    string
	Count   int
	SPIDev  string
	SpeedHz int
}

// Open creates the driver named by opt.Kind. When no SPI port can be opened
// it falls back to printing at the console, and reports the kind it used.
func Open(opt Options) (Driver, string, error) {
	switch opt.Kind {
	case "", KindSim:
		return NewSim(opt.Count), KindSim, nil
	case KindConsole:
		return NewConsole(opt.Count), KindConsole, nil
	case KindSPI:
		d, err := OpenSPI(opt.SPIDev, opt.Count, opt.SpeedHz)
		if err != nil {
			log.Warn().Err(err).Msg("failed to find a SPI port, printing at the console")
			return NewConsole(opt.Count), KindConsole, nil
		}
		return d, KindSPI, nil
	}
	return nil, "", fmt.Errorf("unknown driver %q", opt.Kind)
}

func checkLen(rgb []byte, count int) error {
	if len(rgb) != count*3 {
		return fmt.Errorf("rgb length %d does not match count %d", len(rgb), count)
	}
	return nil
}
