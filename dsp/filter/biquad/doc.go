// Package biquad provides the second-order IIR runtime used by the EQ chain.
//
// A [Stage] runs Direct Form II Transposed processing for one section
// defined by [Coefficients]. Its coefficients can be replaced while audio is
// flowing: a replacement is published as a whole value and the processing
// side adopts it between samples, so a sample is never computed from a mix of
// old and new taps. Replacement and processing never allocate or lock.
//
// Coefficient design (RBJ peaking, Butterworth cascades) lives in
// dsp/filter/design.
package biquad
