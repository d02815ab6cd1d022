package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-eq/dsp/eq"
)

// PresetVersion is written into every saved preset.
const PresetVersion = 1

// Preset is a named set of band settings stored as YAML.
type Preset struct {
	Version     int    `yaml:"version"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Bands       Bands  `yaml:"bands"`
}

// Bands is the band subset of Config stored in a preset.
type Bands struct {
	LowCut  CutBand  `yaml:"lowcut"`
	Peak    PeakBand `yaml:"peak"`
	HighCut CutBand  `yaml:"highcut"`
}

// NewPreset captures s under name.
func NewPreset(name string, s eq.Settings) *Preset {
	c := FromSettings(s, RenderSettings{})
	return &Preset{
		Version: PresetVersion,
		Name:    name,
		Bands:   Bands{LowCut: c.LowCut, Peak: c.Peak, HighCut: c.HighCut},
	}
}

// Settings converts the preset bands to eq.Settings after validating them.
func (p *Preset) Settings() (eq.Settings, error) {
	c := Default()
	c.LowCut, c.Peak, c.HighCut = p.Bands.LowCut, p.Bands.Peak, p.Bands.HighCut
	if err := c.Validate(); err != nil {
		return eq.Settings{}, err
	}
	return c.Settings()
}

// LoadPreset reads and validates a preset file. Unknown keys are rejected.
func LoadPreset(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading preset: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	// Missing keys keep their defaults.
	d := Default()
	p := &Preset{Bands: Bands{LowCut: d.LowCut, Peak: d.Peak, HighCut: d.HighCut}}
	if err := dec.Decode(p); err != nil {
		return nil, fmt.Errorf("%w: preset %s: %w", ErrInvalidSettings, path, err)
	}
	if p.Version > PresetVersion {
		return nil, fmt.Errorf("%w: preset %s has version %d, newest supported is %d",
			ErrInvalidSettings, path, p.Version, PresetVersion)
	}
	if _, err := p.Settings(); err != nil {
		return nil, fmt.Errorf("preset %s: %w", path, err)
	}

	return p, nil
}

// SavePreset writes p to path through a temporary file in the same
// directory so readers never see a partial preset.
func SavePreset(path string, p *Preset) (err error) {
	if p.Version == 0 {
		p.Version = PresetVersion
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("config: encoding preset: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".preset-*.yaml.tmp")
	if err != nil {
		return fmt.Errorf("config: creating temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, removeIfExists(tmp.Name()))
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("config: writing preset: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("config: closing preset: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("config: replacing preset: %w", err)
	}

	GetLogger().Debug("preset saved", "path", path, "name", p.Name)
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
