package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-eq/internal/config"
)

func presetCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Save and inspect presets",
	}

	var name, description string
	save := &cobra.Command{
		Use:   "save FILE",
		Short: "Save the resolved band settings as a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			s, err := a.cfg.Settings()
			if err != nil {
				return err
			}

			p := config.NewPreset(name, s)
			p.Description = description
			if err := config.SavePreset(args[0], p); err != nil {
				return err
			}

			a.log.Info("preset saved", "path", args[0], "name", name)
			return nil
		},
	}
	save.Flags().StringVar(&name, "name", "untitled", "preset name")
	save.Flags().StringVar(&description, "description", "", "preset description")

	show := &cobra.Command{
		Use:   "show FILE",
		Short: "Validate a preset and print its settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			p, err := config.LoadPreset(args[0])
			if err != nil {
				return err
			}

			s, err := p.Settings()
			if err != nil {
				return err
			}

			fmt.Fprintf(a.stdout, "%s (v%d)\n", p.Name, p.Version)
			if p.Description != "" {
				fmt.Fprintf(a.stdout, "  %s\n", p.Description)
			}
			fmt.Fprintf(a.stdout, "  low cut:  %g Hz, %s%s\n", s.LowCutFreq, s.LowCutSlope, bypassText(s.LowCutBypassed))
			fmt.Fprintf(a.stdout, "  peak:     %g Hz, %+g dB, Q %g%s\n", s.PeakFreq, s.PeakGainDB, s.PeakQuality, bypassText(s.PeakBypassed))
			fmt.Fprintf(a.stdout, "  high cut: %g Hz, %s%s\n", s.HighCutFreq, s.HighCutSlope, bypassText(s.HighCutBypassed))
			return nil
		},
	}

	cmd.AddCommand(save, show)
	return cmd
}

func bypassText(b bool) string {
	if b {
		return " (bypassed)"
	}
	return ""
}
