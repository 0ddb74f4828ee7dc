package led

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"
)

// SPIHz is the only port clock nrzled accepts: three SPI bits per bit of
// the 800kHz WS2812b stream, plus slack.
const SPIHz = 2500000

// SPI drives a WS281x strip through the nrzled encoder on an SPI port.
type SPI struct {
	mu     sync.Mutex
	dev    *nrzled.Dev
	closer spi.PortCloser
	count  int
}

// OpenSPI initializes the host and opens the named SPI port. An empty name
// picks the first one available.
func OpenSPI(name string, count int, freqHz int) (*SPI, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	p, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", name, err)
	}
	d, err := NewSPI(p, count, freqHz)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	d.closer = p
	return d, nil
}

// NewSPI wraps an already opened port. The caller keeps ownership of p.
func NewSPI(p spi.Port, count int, freqHz int) (*SPI, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	if freqHz <= 0 {
		freqHz = SPIHz
	}
	if freqHz != SPIHz {
		return nil, fmt.Errorf("spi clock %dHz unsupported, nrzled needs %dHz", freqHz, SPIHz)
	}
	dev, err := nrzled.NewSPI(p, &nrzled.Opts{
		NumPixels: count,
		Channels:  3,
		Freq:      2500 * physic.KiloHertz,
	})
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	_ = dev.Halt()
	return &SPI{dev: dev, count: count}, nil
}

func (s *SPI) String() string { return s.dev.String() }

func (s *SPI) Write(rgb []byte) error {
	if err := checkLen(rgb, s.count); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev == nil {
		return errors.New("spi closed")
	}
	if _, err := s.dev.Write(rgb); err != nil {
		return fmt.Errorf("spi write: %w", err)
	}
	return nil
}

// Close blanks the strip and releases the port.
func (s *SPI) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev == nil {
		return nil
	}
	err := s.dev.Halt()
	s.dev = nil
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
