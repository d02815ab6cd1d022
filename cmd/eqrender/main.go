// Command eqrender runs audio through the three-band equalizer and inspects
// its settings.
//
// Usage:
//
//	eqrender [global flags] <command> [args]
//
// Examples:
//
//	eqrender render --peak-gain 6 --peak-freq 3000 in.wav out.wav
//	eqrender render --analyze --window "Flat top" in.flac out.wav
//	eqrender response --lowcut-freq 80 --lowcut-slope 48
//	eqrender response --config eq.yaml --watch
//	eqrender params
//	eqrender tone --type sweep --duration 5s sweep.wav
//	eqrender preset save --name vocal vocal.yaml --peak-gain -3
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand(os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "eqrender:", err)
		stop()
		os.Exit(1)
	}
}
