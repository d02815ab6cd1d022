package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-eq/dsp/eq"
	"github.com/cwbudde/algo-eq/dsp/eq/response"
	"github.com/cwbudde/algo-eq/internal/config"
)

func responseCommand(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "response",
		Short: "Print the composite magnitude response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := eq.NewParameterStore()
			if err := a.cfg.Apply(store); err != nil {
				return err
			}

			if watch {
				return a.watchResponse(cmd.Context(), store)
			}

			mon, err := response.NewMonitor(store, a.cfg.Render.SampleRate,
				response.WithPoints(a.cfg.Render.Points))
			if err != nil {
				return err
			}
			return printCurve(a.stdout, mon.Refresh())
		},
	}

	cmd.Flags().Int("points", config.Default().Render.Points, "number of log-spaced frequencies")
	cmd.Flags().BoolVar(&watch, "watch", false, "reprint whenever the config file changes")

	return cmd
}

// watchResponse reprints the curve summary on every config file change
// until ctx is cancelled.
func (a *app) watchResponse(ctx context.Context, store *eq.ParameterStore) error {
	if a.configFile == "" {
		return errors.New("--watch requires --config")
	}

	mon, err := response.NewMonitor(store, a.cfg.Render.SampleRate,
		response.WithPoints(a.cfg.Render.Points),
		response.WithUpdateFunc(func(c *response.Curve) {
			printSummary(a.stdout, c)
		}))
	if err != nil {
		return err
	}

	config.Watch(a.v, config.Options{ConfigFile: a.configFile, PresetFile: a.presetFile},
		func(cfg *config.Config, err error) {
			if err != nil {
				a.log.Warn("config change rejected", "error", err)
				return
			}
			if err := cfg.Apply(store); err != nil {
				a.log.Warn("config change rejected", "error", err)
				return
			}
			a.log.Info("config reloaded", "config", cfg)
		})

	a.log.Info("watching config", "path", a.configFile)
	if err := mon.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func printCurve(w io.Writer, c *response.Curve) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "FREQ (Hz)\tGAIN (dB)\t")
	for i, f := range c.Frequencies {
		fmt.Fprintf(tw, "%.1f\t%.2f\t\n", f, c.MagnitudesDB[i])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	printSummary(w, c)
	return nil
}

func printSummary(w io.Writer, c *response.Curve) {
	lo, hi := c.Range()
	fmt.Fprintf(w, "range: %.2f dB .. %.2f dB (%d points, %.0f Hz)\n", lo, hi, c.Len(), c.SampleRate)
}
