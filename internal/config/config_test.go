package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-eq/dsp/dither"
	"github.com/cwbudde/algo-eq/dsp/eq"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), Options{})
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)

	s, err := cfg.Settings()
	require.NoError(t, err)
	assert.Equal(t, eq.DefaultSettings(), s)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeFile(t, "eq.yaml", `
lowcut:
  freq: 80
  slope: 24
peak:
  freq: 3000
  gain: -4.5
  quality: 2
highcut:
  freq: 12000
  slope: "48 dB/Oct"
  bypassed: true
render:
  blocksize: 256
`)

	cfg, err := Load(viper.New(), Options{ConfigFile: path})
	require.NoError(t, err)

	s, err := cfg.Settings()
	require.NoError(t, err)
	assert.Equal(t, 80.0, s.LowCutFreq)
	assert.Equal(t, eq.Slope24, s.LowCutSlope)
	assert.Equal(t, 3000.0, s.PeakFreq)
	assert.Equal(t, -4.5, s.PeakGainDB)
	assert.Equal(t, 2.0, s.PeakQuality)
	assert.Equal(t, eq.Slope48, s.HighCutSlope)
	assert.True(t, s.HighCutBypassed)
	assert.Equal(t, 256, cfg.Render.BlockSize)
	assert.Equal(t, 48000.0, cfg.Render.SampleRate, "unset keys keep defaults")
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(viper.New(), Options{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")})
	require.Error(t, err)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeFile(t, "eq.yaml", "peak:\n  gain: 3\n")
	t.Setenv("EQ_PEAK_GAIN", "-6")
	t.Setenv("EQ_HIGHCUT_SLOPE", "36")

	cfg, err := Load(viper.New(), Options{ConfigFile: path})
	require.NoError(t, err)
	assert.Equal(t, -6.0, cfg.Peak.Gain)

	s, err := cfg.Settings()
	require.NoError(t, err)
	assert.Equal(t, eq.Slope36, s.HighCutSlope)
}

func TestPrecedence(t *testing.T) {
	cfgPath := writeFile(t, "eq.yaml", "peak:\n  gain: 3\n  freq: 500\nlowcut:\n  freq: 40\n")
	preset := NewPreset("bright", eq.Settings{
		LowCutFreq: 20, HighCutFreq: 20000, PeakFreq: 8000, PeakGainDB: 5, PeakQuality: 0.7,
	})
	presetPath := filepath.Join(t.TempDir(), "bright.yaml")
	require.NoError(t, SavePreset(presetPath, preset))

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Float64("peak-gain", 0, "")
	require.NoError(t, fs.Parse([]string{"--peak-gain=-2"}))

	v := viper.New()
	require.NoError(t, BindFlags(v, fs))

	cfg, err := Load(v, Options{ConfigFile: cfgPath, PresetFile: presetPath})
	require.NoError(t, err)

	assert.Equal(t, -2.0, cfg.Peak.Gain, "flag beats preset and file")
	assert.Equal(t, 8000.0, cfg.Peak.Freq, "preset beats file")
	assert.Equal(t, 20.0, cfg.LowCut.Freq, "preset bands replace file bands")
}

func TestValidateReportsEveryProblem(t *testing.T) {
	c := Default()
	c.LowCut.Freq = 5
	c.Peak.Gain = 30
	c.HighCut.Slope = "60"
	c.Render.BlockSize = 0

	err := c.Validate()
	require.ErrorIs(t, err, ErrInvalidSettings)
	for _, key := range []string{"lowcut.freq", "peak.gain", "highcut.slope", "render.blocksize"} {
		assert.Contains(t, err.Error(), key)
	}

	_, err = Load(viper.New(), Options{ConfigFile: writeFile(t, "bad.yaml", "peak:\n  quality: 0\n")})
	require.ErrorIs(t, err, ErrInvalidSettings)
}

func TestApplyWritesStore(t *testing.T) {
	c := Default()
	c.Peak.Gain = 7.5
	c.LowCut.Slope = "36"

	store := eq.NewParameterStore()
	require.NoError(t, c.Apply(store))

	got := store.Snapshot()
	assert.Equal(t, 7.5, got.PeakGainDB)
	assert.Equal(t, eq.Slope36, got.LowCutSlope)

	c.LowCut.Slope = "steep"
	require.ErrorIs(t, c.Apply(store), ErrInvalidSettings)
}

func TestBindFlagsIgnoresUnknown(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("unrelated", "", "")
	require.NoError(t, BindFlags(viper.New(), fs))
}

func TestRenderRequantization(t *testing.T) {
	typ, shaping, err := Default().Render.Requantization()
	require.NoError(t, err)
	assert.Equal(t, dither.TypeTriangular, typ)
	assert.Equal(t, dither.ShapingNone, shaping)

	t.Setenv("EQ_RENDER_DITHER", "none")
	path := writeFile(t, "eq.yaml", "render:\n  dither: rpdf\n  noiseshaping: 3FC\n")
	cfg, err := Load(viper.New(), Options{ConfigFile: path})
	require.NoError(t, err)

	typ, shaping, err = cfg.Render.Requantization()
	require.NoError(t, err)
	assert.Equal(t, dither.TypeNone, typ, "environment beats file")
	assert.Equal(t, dither.Shaping3FC, shaping)
}

func TestValidateRejectsUnknownDither(t *testing.T) {
	c := Default()
	c.Render.Dither = "gaussian"
	c.Render.NoiseShaping = "lipshitz"

	err := c.Validate()
	require.ErrorIs(t, err, ErrInvalidSettings)
	assert.Contains(t, err.Error(), "render.dither")
	assert.Contains(t, err.Error(), "render.noiseshaping")

	_, _, err = c.Render.Requantization()
	require.Error(t, err)
}
