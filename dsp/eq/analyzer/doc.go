// Package analyzer captures an equalizer's processed output on the audio
// goroutine and turns the most recent frame into a magnitude spectrum on a
// control goroutine.
//
// An [Analyzer] is an [eq.BlockObserver]: hand it to the processor with
// [eq.WithObserver]. ObserveBlock sums the channels to mono and writes them
// into a preallocated ring of atomic words. [Analyzer.Compute] copies the
// newest FFT frame out of the ring, applies the window and produces a
// spectrum in dBFS.
package analyzer
