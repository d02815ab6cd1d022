package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cwbudde/algo-eq/internal/config"
)

// app carries state shared by every subcommand of one invocation.
type app struct {
	v          *viper.Viper
	cfg        *config.Config
	log        *slog.Logger
	stdout     io.Writer
	stderr     io.Writer
	configFile string
	presetFile string
}

// newRootCommand builds the command tree. Each call owns its own viper
// instance, so trees are independent.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		v:      viper.New(),
		stdout: stdout,
		stderr: stderr,
	}

	root := &cobra.Command{
		Use:           "eqrender",
		Short:         "Three-band parametric EQ renderer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initialize(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	setupFlags(root, a)

	root.AddCommand(
		renderCommand(a),
		responseCommand(a),
		paramsCommand(a),
		toneCommand(a),
		presetCommand(a),
	)

	return root
}

func setupFlags(root *cobra.Command, a *app) {
	d := config.Default()
	pf := root.PersistentFlags()

	pf.StringVar(&a.configFile, "config", "", "YAML config file")
	pf.StringVar(&a.presetFile, "preset", "", "preset file applied over the config file")
	pf.BoolP("debug", "d", d.Debug, "enable debug logging")

	pf.Float64("lowcut-freq", d.LowCut.Freq, "low cut frequency in Hz")
	pf.String("lowcut-slope", d.LowCut.Slope, "low cut slope: 12, 24, 36 or 48 dB/oct")
	pf.Bool("lowcut-bypass", d.LowCut.Bypassed, "bypass the low cut band")
	pf.Float64("peak-freq", d.Peak.Freq, "peak frequency in Hz")
	pf.Float64("peak-gain", d.Peak.Gain, "peak gain in dB")
	pf.Float64("peak-quality", d.Peak.Quality, "peak quality (Q)")
	pf.Bool("peak-bypass", d.Peak.Bypassed, "bypass the peak band")
	pf.Float64("highcut-freq", d.HighCut.Freq, "high cut frequency in Hz")
	pf.String("highcut-slope", d.HighCut.Slope, "high cut slope: 12, 24, 36 or 48 dB/oct")
	pf.Bool("highcut-bypass", d.HighCut.Bypassed, "bypass the high cut band")
	pf.Int("block-size", d.Render.BlockSize, "processing block size in frames")
	pf.Float64("sample-rate", d.Render.SampleRate, "sample rate for response and tone")
	pf.Bool("change-guard", d.Render.ChangeGuard, "skip coefficient updates for unchanged blocks")
	pf.String("dither", d.Render.Dither, "dither for rendered PCM: none, rectangular or triangular")
	pf.String("noise-shaping", d.Render.NoiseShaping, "dither noise shaping: none, efb, 2sc, 3fc or 9fc")
}

// initialize resolves the configuration once flags are parsed.
func (a *app) initialize(cmd *cobra.Command) error {
	if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
		return err
	}

	cfg, err := config.Load(a.v, config.Options{
		ConfigFile: a.configFile,
		PresetFile: a.presetFile,
	})
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.log = newLogger(a.stderr, cfg.Debug)
	slog.SetDefault(a.log)
	a.log.Debug("configuration resolved", "command", cmd.Name(), "config", cfg)

	return nil
}
