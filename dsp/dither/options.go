package dither

import (
	"fmt"
	"math"
)

const (
	minBitDepth = 1
	maxBitDepth = 32
)

type config struct {
	bitDepth  int
	typ       Type
	amplitude float64
	shaping   Shaping
	seed      uint64
	seeded    bool
}

func defaultConfig() config {
	return config{
		bitDepth:  16,
		typ:       TypeTriangular,
		amplitude: 1,
		shaping:   ShapingNone,
	}
}

// Option configures a Quantizer.
type Option func(*config) error

// WithBitDepth sets the target bit depth (1..32, default 16).
func WithBitDepth(bits int) Option {
	return func(c *config) error {
		if bits < minBitDepth || bits > maxBitDepth {
			return fmt.Errorf("dither: bit depth must be in [%d, %d]: %d", minBitDepth, maxBitDepth, bits)
		}
		c.bitDepth = bits
		return nil
	}
}

// WithType sets the dither noise distribution (default TypeTriangular).
func WithType(t Type) Option {
	return func(c *config) error {
		if !t.Valid() {
			return fmt.Errorf("dither: invalid type %d", int(t))
		}
		c.typ = t
		return nil
	}
}

// WithAmplitude scales the dither noise in steps (default 1).
func WithAmplitude(amp float64) Option {
	return func(c *config) error {
		if !(amp >= 0) || math.IsInf(amp, 0) {
			return fmt.Errorf("dither: amplitude must be >= 0 and finite: %v", amp)
		}
		c.amplitude = amp
		return nil
	}
}

// WithShaping selects a noise shaping filter (default ShapingNone).
func WithShaping(s Shaping) Option {
	return func(c *config) error {
		if !s.Valid() {
			return fmt.Errorf("dither: invalid noise shaping %d", int(s))
		}
		c.shaping = s
		return nil
	}
}

// WithSeed makes the dither noise reproducible.
func WithSeed(seed uint64) Option {
	return func(c *config) error {
		c.seed = seed
		c.seeded = true
		return nil
	}
}

func applyOptions(opts []Option) (config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}
