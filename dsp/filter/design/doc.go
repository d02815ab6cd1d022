// Package design provides the IIR coefficient designers used by the
// equalizer.
//
// The functions return biquad coefficients consumable by dsp/filter/biquad.
// Lowpass, Highpass and Peak follow the RBJ audio EQ cookbook; ButterworthLP
// and ButterworthHP cascade second-order sections with the per-section Q of
// a Butterworth prototype.
//
// Designers never fail. Invalid frequencies or sample rates yield the zero
// coefficient set (or nil for cascades) and callers are expected to clamp
// their inputs.
package design
