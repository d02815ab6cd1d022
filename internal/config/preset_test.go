package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-eq/dsp/eq"
)

func TestPresetSaveLoad(t *testing.T) {
	s := eq.Settings{
		LowCutFreq:      120,
		HighCutFreq:     9000,
		PeakFreq:        2500,
		PeakGainDB:      -3.5,
		PeakQuality:     1.4,
		LowCutSlope:     eq.Slope48,
		HighCutSlope:    eq.Slope24,
		PeakBypassed:    true,
		HighCutBypassed: false,
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "vocal.yaml")
	p := NewPreset("vocal", s)
	p.Description = "presence cut"
	require.NoError(t, SavePreset(path, p))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must be renamed away")

	loaded, err := LoadPreset(path)
	require.NoError(t, err)
	assert.Equal(t, "vocal", loaded.Name)
	assert.Equal(t, "presence cut", loaded.Description)
	assert.Equal(t, PresetVersion, loaded.Version)

	got, err := loaded.Settings()
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestLoadPresetPartialKeepsDefaults(t *testing.T) {
	path := writeFile(t, "p.yaml", "name: warm\nbands:\n  peak:\n    gain: 2\n")

	p, err := LoadPreset(path)
	require.NoError(t, err)

	s, err := p.Settings()
	require.NoError(t, err)
	want := eq.DefaultSettings()
	want.PeakGainDB = 2
	assert.Equal(t, want, s)
}

func TestLoadPresetRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", "name: x\nbands:\n  shelf:\n    gain: 2\n"},
		{"out of range", "name: x\nbands:\n  peak:\n    gain: 48\n"},
		{"bad slope", "name: x\nbands:\n  lowcut:\n    slope: 18\n"},
		{"future version", "version: 99\nname: x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPreset(writeFile(t, "p.yaml", tt.content))
			require.ErrorIs(t, err, ErrInvalidSettings)
		})
	}

	_, err := LoadPreset(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestSavePresetIntoMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "p.yaml")
	require.Error(t, SavePreset(path, NewPreset("x", eq.DefaultSettings())))
}
