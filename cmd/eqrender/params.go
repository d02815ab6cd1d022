package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-eq/dsp/eq"
)

func paramsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "params",
		Short: "List the parameter layout and the resolved values",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			store := eq.NewParameterStore()
			if err := a.cfg.Apply(store); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tKIND\tRANGE\tSTEP\tSKEW\tDEFAULT\tVALUE\tNORMALIZED")
			for _, p := range eq.Parameters() {
				v, err := store.Get(p.ID)
				if err != nil {
					return err
				}
				n, err := store.Normalized(p.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%g\t%g\t%s\t%s\t%.4f\n",
					p.ID, kindName(p.Kind), rangeText(p), p.Step, p.Skew,
					valueText(p, p.Default), valueText(p, v), n)
			}
			return tw.Flush()
		},
	}
}

func kindName(k eq.ParameterKind) string {
	switch k {
	case eq.KindChoice:
		return "choice"
	case eq.KindBool:
		return "bool"
	default:
		return "float"
	}
}

func rangeText(p eq.Parameter) string {
	if p.Kind == eq.KindChoice {
		return strings.Join(p.Choices, " | ")
	}
	return fmt.Sprintf("[%g, %g]", p.Min, p.Max)
}

func valueText(p eq.Parameter, v float64) string {
	switch p.Kind {
	case eq.KindChoice:
		i := int(v + 0.5)
		if i >= 0 && i < len(p.Choices) {
			return p.Choices[i]
		}
	case eq.KindBool:
		return fmt.Sprint(v >= 0.5)
	}
	return fmt.Sprintf("%g", v)
}
