// Package config loads equalizer settings and render options for the
// command line tools. Values come from defaults, a YAML config file, an
// optional preset, EQ_ environment variables and bound flags, in increasing
// order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-eq/dsp/dither"
	"github.com/cwbudde/algo-eq/dsp/eq"
)

// EnvPrefix is the prefix of environment variable overrides, as in
// EQ_PEAK_GAIN=3.
const EnvPrefix = "EQ"

// ErrInvalidSettings is returned when loaded values fail validation.
var ErrInvalidSettings = errors.New("config: invalid settings")

// Config is the full application configuration.
type Config struct {
	LowCut  CutBand        `mapstructure:"lowcut" yaml:"lowcut"`
	Peak    PeakBand       `mapstructure:"peak" yaml:"peak"`
	HighCut CutBand        `mapstructure:"highcut" yaml:"highcut"`
	Render  RenderSettings `mapstructure:"render" yaml:"render"`
	Debug   bool           `mapstructure:"debug" yaml:"debug"`
}

// CutBand configures a low or high cut band. Slope accepts "12".."48",
// "24 dB/Oct" or a choice index.
type CutBand struct {
	Freq     float64 `mapstructure:"freq" yaml:"freq"`
	Slope    string  `mapstructure:"slope" yaml:"slope"`
	Bypassed bool    `mapstructure:"bypassed" yaml:"bypassed"`
}

// PeakBand configures the peaking band.
type PeakBand struct {
	Freq     float64 `mapstructure:"freq" yaml:"freq"`
	Gain     float64 `mapstructure:"gain" yaml:"gain"`
	Quality  float64 `mapstructure:"quality" yaml:"quality"`
	Bypassed bool    `mapstructure:"bypassed" yaml:"bypassed"`
}

// RenderSettings configures offline processing. Dither and NoiseShaping
// name the requantization applied to rendered PCM output.
type RenderSettings struct {
	BlockSize    int     `mapstructure:"blocksize" yaml:"blocksize"`
	SampleRate   float64 `mapstructure:"samplerate" yaml:"samplerate"`
	Points       int     `mapstructure:"points" yaml:"points"`
	ChangeGuard  bool    `mapstructure:"changeguard" yaml:"changeguard"`
	Dither       string  `mapstructure:"dither" yaml:"dither"`
	NoiseShaping string  `mapstructure:"noiseshaping" yaml:"noiseshaping"`
}

// Requantization returns the parsed dither type and noise shaping.
func (r RenderSettings) Requantization() (dither.Type, dither.Shaping, error) {
	t, err := dither.ParseType(r.Dither)
	if err != nil {
		return dither.TypeNone, dither.ShapingNone, err
	}
	s, err := dither.ParseShaping(r.NoiseShaping)
	if err != nil {
		return dither.TypeNone, dither.ShapingNone, err
	}
	return t, s, nil
}

// flagKeys maps command line flag names to config keys.
var flagKeys = map[string]string{
	"lowcut-freq":    "lowcut.freq",
	"lowcut-slope":   "lowcut.slope",
	"lowcut-bypass":  "lowcut.bypassed",
	"peak-freq":      "peak.freq",
	"peak-gain":      "peak.gain",
	"peak-quality":   "peak.quality",
	"peak-bypass":    "peak.bypassed",
	"highcut-freq":   "highcut.freq",
	"highcut-slope":  "highcut.slope",
	"highcut-bypass": "highcut.bypassed",
	"block-size":     "render.blocksize",
	"sample-rate":    "render.samplerate",
	"points":         "render.points",
	"change-guard":   "render.changeguard",
	"dither":         "render.dither",
	"noise-shaping":  "render.noiseshaping",
	"debug":          "debug",
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return FromSettings(eq.DefaultSettings(), RenderSettings{
		BlockSize:    512,
		SampleRate:   48000,
		Points:       32,
		Dither:       dither.TypeTriangular.String(),
		NoiseShaping: dither.ShapingNone.String(),
	})
}

// FromSettings builds a Config around s.
func FromSettings(s eq.Settings, render RenderSettings) Config {
	return Config{
		LowCut: CutBand{
			Freq:     s.LowCutFreq,
			Slope:    fmt.Sprint(s.LowCutSlope.DBPerOctave()),
			Bypassed: s.LowCutBypassed,
		},
		Peak: PeakBand{
			Freq:     s.PeakFreq,
			Gain:     s.PeakGainDB,
			Quality:  s.PeakQuality,
			Bypassed: s.PeakBypassed,
		},
		HighCut: CutBand{
			Freq:     s.HighCutFreq,
			Slope:    fmt.Sprint(s.HighCutSlope.DBPerOctave()),
			Bypassed: s.HighCutBypassed,
		},
		Render: render,
	}
}

// SetDefaults registers every key with its default so environment
// variables and Unmarshal see the full key set.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("lowcut.freq", d.LowCut.Freq)
	v.SetDefault("lowcut.slope", d.LowCut.Slope)
	v.SetDefault("lowcut.bypassed", d.LowCut.Bypassed)
	v.SetDefault("peak.freq", d.Peak.Freq)
	v.SetDefault("peak.gain", d.Peak.Gain)
	v.SetDefault("peak.quality", d.Peak.Quality)
	v.SetDefault("peak.bypassed", d.Peak.Bypassed)
	v.SetDefault("highcut.freq", d.HighCut.Freq)
	v.SetDefault("highcut.slope", d.HighCut.Slope)
	v.SetDefault("highcut.bypassed", d.HighCut.Bypassed)
	v.SetDefault("render.blocksize", d.Render.BlockSize)
	v.SetDefault("render.samplerate", d.Render.SampleRate)
	v.SetDefault("render.points", d.Render.Points)
	v.SetDefault("render.changeguard", d.Render.ChangeGuard)
	v.SetDefault("render.dither", d.Render.Dither)
	v.SetDefault("render.noiseshaping", d.Render.NoiseShaping)
	v.SetDefault("debug", d.Debug)
}

// BindFlags binds every known flag present in fs to its config key.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("config: binding flag %q: %w", name, err)
		}
	}
	return nil
}

// Options selects the files Load reads.
type Options struct {
	// ConfigFile is an explicit YAML config path. Empty means none.
	ConfigFile string
	// PresetFile is a preset whose bands override the config file.
	PresetFile string
}

// Load resolves the configuration from v. Flags must already be bound.
func Load(v *viper.Viper, opts Options) (*Config, error) {
	log := GetLogger()

	SetDefaults(v)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", opts.ConfigFile, err)
		}
		log.Debug("config file loaded", "path", v.ConfigFileUsed())
	}

	cfg, err := reload(v, opts)
	if err != nil {
		return nil, err
	}
	if opts.PresetFile != "" {
		log.Debug("preset merged", "path", opts.PresetFile)
	}

	return cfg, nil
}

// mergePreset layers the preset's bands over the config file. Environment
// variables and flags still take precedence.
func mergePreset(v *viper.Viper, p *Preset) error {
	data, err := yaml.Marshal(p.Bands)
	if err != nil {
		return fmt.Errorf("config: encoding preset: %w", err)
	}
	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("config: merging preset: %w", err)
	}
	return nil
}

// Settings converts the band configuration to an eq.Settings value.
func (c *Config) Settings() (eq.Settings, error) {
	lowSlope, err := eq.ParseSlope(c.LowCut.Slope)
	if err != nil {
		return eq.Settings{}, fmt.Errorf("%w: lowcut.slope: %w", ErrInvalidSettings, err)
	}
	highSlope, err := eq.ParseSlope(c.HighCut.Slope)
	if err != nil {
		return eq.Settings{}, fmt.Errorf("%w: highcut.slope: %w", ErrInvalidSettings, err)
	}

	return eq.Settings{
		LowCutFreq:      c.LowCut.Freq,
		HighCutFreq:     c.HighCut.Freq,
		PeakFreq:        c.Peak.Freq,
		PeakGainDB:      c.Peak.Gain,
		PeakQuality:     c.Peak.Quality,
		LowCutSlope:     lowSlope,
		HighCutSlope:    highSlope,
		LowCutBypassed:  c.LowCut.Bypassed,
		PeakBypassed:    c.Peak.Bypassed,
		HighCutBypassed: c.HighCut.Bypassed,
	}, nil
}

// Apply writes the band configuration into store.
func (c *Config) Apply(store *eq.ParameterStore) error {
	s, err := c.Settings()
	if err != nil {
		return err
	}
	store.Apply(s)
	return nil
}

// Validate checks every value against the parameter layout. All problems
// are reported together.
func (c *Config) Validate() error {
	var errs []error

	check := func(key string, id eq.ParameterID, v float64) {
		p, err := eq.LookupParameter(id)
		if err != nil {
			errs = append(errs, err)
			return
		}
		if !(v >= p.Min && v <= p.Max) {
			errs = append(errs, fmt.Errorf("%s = %v outside [%v, %v]", key, v, p.Min, p.Max))
		}
	}

	check("lowcut.freq", eq.ParamLowCutFreq, c.LowCut.Freq)
	check("highcut.freq", eq.ParamHighCutFreq, c.HighCut.Freq)
	check("peak.freq", eq.ParamPeakFreq, c.Peak.Freq)
	check("peak.gain", eq.ParamPeakGain, c.Peak.Gain)
	check("peak.quality", eq.ParamPeakQuality, c.Peak.Quality)

	if _, err := eq.ParseSlope(c.LowCut.Slope); err != nil {
		errs = append(errs, fmt.Errorf("lowcut.slope: %w", err))
	}
	if _, err := eq.ParseSlope(c.HighCut.Slope); err != nil {
		errs = append(errs, fmt.Errorf("highcut.slope: %w", err))
	}

	if c.Render.BlockSize <= 0 {
		errs = append(errs, fmt.Errorf("render.blocksize = %d must be > 0", c.Render.BlockSize))
	}
	if !(c.Render.SampleRate > 0) {
		errs = append(errs, fmt.Errorf("render.samplerate = %v must be > 0", c.Render.SampleRate))
	}
	if c.Render.Points < 2 {
		errs = append(errs, fmt.Errorf("render.points = %d must be >= 2", c.Render.Points))
	}
	if _, err := dither.ParseType(c.Render.Dither); err != nil {
		errs = append(errs, fmt.Errorf("render.dither: %w", err))
	}
	if _, err := dither.ParseShaping(c.Render.NoiseShaping); err != nil {
		errs = append(errs, fmt.Errorf("render.noiseshaping: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, errors.Join(errs...))
	}
	return nil
}

// LogValue implements slog.LogValuer.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Group("lowcut", "freq", c.LowCut.Freq, "slope", c.LowCut.Slope, "bypassed", c.LowCut.Bypassed),
		slog.Group("peak", "freq", c.Peak.Freq, "gain", c.Peak.Gain, "quality", c.Peak.Quality, "bypassed", c.Peak.Bypassed),
		slog.Group("highcut", "freq", c.HighCut.Freq, "slope", c.HighCut.Slope, "bypassed", c.HighCut.Bypassed),
		slog.Int("blocksize", c.Render.BlockSize),
		slog.String("dither", c.Render.Dither),
	)
}

// Watch reloads the config file whenever it changes on disk and calls fn
// with the new configuration or the reason it was rejected. The preset in
// opts is merged again after each reload. Load must have succeeded on v
// with opts.ConfigFile set.
func Watch(v *viper.Viper, opts Options, fn func(*Config, error)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		GetLogger().Debug("config file changed", "path", e.Name, "op", e.Op.String())
		fn(reload(v, opts))
	})
	v.WatchConfig()
}

func reload(v *viper.Viper, opts Options) (*Config, error) {
	if opts.PresetFile != "" {
		p, err := LoadPreset(opts.PresetFile)
		if err != nil {
			return nil, err
		}
		if err := mergePreset(v, p); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
