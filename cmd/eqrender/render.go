package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-eq/dsp/buffer"
	"github.com/cwbudde/algo-eq/dsp/core"
	"github.com/cwbudde/algo-eq/dsp/dither"
	"github.com/cwbudde/algo-eq/dsp/eq"
	"github.com/cwbudde/algo-eq/dsp/eq/analyzer"
	"github.com/cwbudde/algo-eq/dsp/signal"
	"github.com/cwbudde/algo-eq/dsp/window"
)

type renderStats struct {
	frames   int
	blocks   int
	peakIn   float64
	peakOut  float64
	elapsed  time.Duration
	spectrum *analyzer.Spectrum
}

func renderCommand(a *app) *cobra.Command {
	var (
		analyze    bool
		windowName string
	)

	cmd := &cobra.Command{
		Use:   "render IN.wav|IN.flac OUT.wav",
		Short: "Process a WAV or FLAC file through the equalizer into a WAV file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []analyzer.Option
			if analyze {
				wt, err := window.ParseType(windowName)
				if err != nil {
					return err
				}
				opts = append(opts, analyzer.WithWindow(wt))
			}

			stats, err := a.render(cmd, args[0], args[1], analyze, opts...)
			if err != nil {
				return err
			}

			a.log.Info("render complete",
				"input", args[0],
				"output", args[1],
				"frames", stats.frames,
				"blocks", stats.blocks,
				"peak_in_db", core.GainToDB(stats.peakIn),
				"peak_out_db", core.GainToDB(stats.peakOut),
				"elapsed", stats.elapsed)

			if stats.spectrum != nil {
				bin, db := stats.spectrum.Peak()
				fmt.Fprintf(a.stdout, "output spectrum peak: %.1f Hz at %.1f dBFS\n",
					stats.spectrum.Frequency(bin), db)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&analyze, "analyze", false, "print the spectral peak of the last output frame")
	cmd.Flags().StringVar(&windowName, "window", window.TypeHann.String(),
		"analysis window: Rectangular, Hann, Hamming, Blackman, Blackman-Harris or Flat top")

	return cmd
}

// render streams in through a Processor in fixed blocks and writes out with
// the same layout and bit depth.
func (a *app) render(cmd *cobra.Command, in, out string, analyze bool, anOpts ...analyzer.Option) (stats renderStats, err error) {
	ctx := cmd.Context()
	start := time.Now()
	blockSize := a.cfg.Render.BlockSize

	r, err := openSource(in, blockSize)
	if err != nil {
		return stats, err
	}
	defer r.Close()
	f := r.format()

	store := eq.NewParameterStore()
	if err := a.cfg.Apply(store); err != nil {
		return stats, err
	}

	var opts []eq.Option
	if a.cfg.Render.ChangeGuard {
		opts = append(opts, eq.WithChangeGuard())
	}

	var an *analyzer.Analyzer
	if analyze {
		an, err = analyzer.New(analyzer.DefaultFFTSize, float64(f.rate), anOpts...)
		if err != nil {
			return stats, err
		}
		opts = append(opts, eq.WithObserver(an))
	}

	proc, err := eq.NewProcessorWithOptions(store, []core.ProcessorOption{
		core.WithChannels(f.channels),
		core.WithSampleRate(float64(f.rate)),
		core.WithBlockSize(blockSize),
	}, opts...)
	if err != nil {
		return stats, fmt.Errorf("%s: %w", in, err)
	}
	if err := proc.Prepare(float64(f.rate), blockSize); err != nil {
		return stats, err
	}

	ditherType, shaping, err := a.cfg.Render.Requantization()
	if err != nil {
		return stats, err
	}
	quant, err := dither.NewPlanar(f.channels,
		dither.WithBitDepth(f.bitDepth),
		dither.WithType(ditherType),
		dither.WithShaping(shaping))
	if err != nil {
		return stats, err
	}

	a.log.Debug("rendering",
		"input", in,
		"sample_rate", f.rate,
		"channels", f.channels,
		"bit_depth", f.bitDepth,
		"block_size", blockSize,
		"dither", ditherType,
		"noise_shaping", shaping)

	w, err := createWAV(out, f.rate, f.bitDepth, f.channels, blockSize, quant)
	if err != nil {
		return stats, err
	}
	defer func() {
		err = errors.Join(err, w.Close())
	}()

	planar := buffer.NewPlanar(f.channels, blockSize)
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		frames, err := r.read(planar)
		if err != nil {
			return stats, fmt.Errorf("decoding %s: %w", in, err)
		}
		if frames == 0 {
			break
		}

		block := planar.Channels(frames)
		for _, ch := range block {
			stats.peakIn = max(stats.peakIn, signal.PeakAbs(ch))
		}

		proc.ProcessBlock(block)

		for _, ch := range block {
			stats.peakOut = max(stats.peakOut, signal.PeakAbs(ch))
		}

		if err := w.write(planar, frames); err != nil {
			return stats, fmt.Errorf("encoding %s: %w", out, err)
		}

		stats.frames += frames
		stats.blocks++
	}

	if an != nil {
		var s analyzer.Spectrum
		if err := an.Compute(&s); err == nil {
			stats.spectrum = &s
		} else {
			a.log.Warn("spectrum unavailable", "error", err)
		}
	}

	stats.elapsed = time.Since(start)
	return stats, nil
}
